package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/invoicely/apperr"
	"github.com/yourusername/invoicely/models"
)

// InvoiceFilters narrows invoice queries. Date bounds apply to
// created_at: FromDate is inclusive from start of day, ToDate inclusive
// through the end of that day.
type InvoiceFilters struct {
	CustomerID string
	Status     string
	FromDate   *time.Time
	ToDate     *time.Time
}

// InvoiceListOptions controls filtering, pagination and ordering.
type InvoiceListOptions struct {
	Filters InvoiceFilters
	Limit   int
	Offset  int
	Order   string
}

type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// WithTx returns a repository bound to the given transaction handle.
func (r *InvoiceRepository) WithTx(tx *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: tx}
}

// Transaction runs fn atomically; any error rolls back every write in
// the scope.
func (r *InvoiceRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

func (r *InvoiceRepository) Create(invoice *models.Invoice) error {
	if err := r.db.Create(invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		return apperr.Database(err)
	}
	return nil
}

func (r *InvoiceRepository) CreateItems(items []models.InvoiceItem) error {
	if len(items) == 0 {
		return nil
	}
	if err := r.db.Create(&items).Error; err != nil {
		return apperr.Database(err)
	}
	return nil
}

func (r *InvoiceRepository) Update(id string, updates map[string]any) (*models.Invoice, error) {
	invoice, err := r.FindByID(id)
	if err != nil || invoice == nil {
		return nil, err
	}
	if err := r.db.Model(invoice).Updates(updates).Error; err != nil {
		return nil, apperr.Database(err)
	}
	return invoice, nil
}

func (r *InvoiceRepository) FindOne(conds map[string]any) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.Where(conds).First(&invoice).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Database(err)
	}
	return &invoice, nil
}

func (r *InvoiceRepository) FindByID(id string) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.First(&invoice, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Database(err)
	}
	return &invoice, nil
}

func (r *InvoiceRepository) FindByInvoiceNo(invoiceNo string) (*models.Invoice, error) {
	return r.FindOne(map[string]any{"invoice_no": invoiceNo})
}

// LastInvoiceNo returns the invoice_no of the most recently created
// invoice, or "" when no invoice exists yet.
func (r *InvoiceRepository) LastInvoiceNo() (string, error) {
	var invoice models.Invoice
	err := r.db.Select("invoice_no").Order("created_at DESC, invoice_no DESC").First(&invoice).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", apperr.Database(err)
	}
	return invoice.InvoiceNo, nil
}

func (r *InvoiceRepository) FindAll(opts InvoiceListOptions) ([]models.Invoice, error) {
	q := r.buildQuery(opts.Filters)

	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	order := opts.Order
	if order == "" {
		order = "created_at DESC"
	}

	var invoices []models.Invoice
	if err := q.Order(order).Preload("Items").Find(&invoices).Error; err != nil {
		return nil, apperr.Database(err)
	}
	return invoices, nil
}

func (r *InvoiceRepository) Delete(id string) error {
	if err := r.db.Delete(&models.Invoice{}, "id = ?", id).Error; err != nil {
		return apperr.Database(err)
	}
	return nil
}

// BulkUpdateStatus sets the given status on all invoices matching the
// current status that were created before the cutoff. Returns the number
// of rows updated.
func (r *InvoiceRepository) BulkUpdateStatus(currentStatus string, createdBefore time.Time, newStatus string) (int64, error) {
	res := r.db.Model(&models.Invoice{}).
		Where("status = ? AND created_at < ?", currentStatus, createdBefore).
		Update("status", newStatus)
	if res.Error != nil {
		return 0, apperr.Database(res.Error)
	}
	return res.RowsAffected, nil
}

// Date range handling lives only here.
func (r *InvoiceRepository) buildQuery(f InvoiceFilters) *gorm.DB {
	q := r.db.Model(&models.Invoice{})

	if f.CustomerID != "" {
		q = q.Where("customer_id = ?", f.CustomerID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.FromDate != nil {
		q = q.Where("created_at >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		end := time.Date(f.ToDate.Year(), f.ToDate.Month(), f.ToDate.Day(), 23, 59, 59, int(999*time.Millisecond), f.ToDate.Location())
		q = q.Where("created_at <= ?", end)
	}
	return q
}
