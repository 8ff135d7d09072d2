package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/yourusername/invoicely/apperr"
	"github.com/yourusername/invoicely/models"
	"github.com/yourusername/invoicely/repository"
	"github.com/yourusername/invoicely/validation"
)

const (
	invoiceNoPrefix = "INV-"
	invoiceNoDigits = 4

	// Creation retries once more when the invoice_no unique index
	// rejects a concurrently taken number.
	createAttempts = 3
)

var createInvoiceSchema = validation.Schema{
	"customer_id": {
		Required: true,
		Type:     validation.TypeUUID,
		Messages: map[string]string{"required": MsgCustomerRequired, "type": MsgCustomerInvalid},
	},
	"gst_percentage": {
		Required: true,
		Type:     validation.TypeNumber,
		Min:      validation.Float(0),
		Messages: map[string]string{"required": MsgGstRequired, "type": MsgGstInvalid, "min": MsgGstInvalid},
	},
	"items": {
		Required: true,
		Type:     validation.TypeArray,
		MinItems: 1,
		Elem: validation.Schema{
			"description": {
				Required: true,
				Messages: map[string]string{"required": MsgItemDescRequired},
			},
			"amount": {
				Required:    true,
				Type:        validation.TypeNumber,
				GreaterThan: validation.Float(0),
				Messages: map[string]string{
					"required":    MsgItemAmountRequired,
					"type":        MsgItemAmountInvalid,
					"greaterThan": MsgItemAmountInvalid,
				},
			},
		},
		Messages: map[string]string{"required": MsgItemsRequired, "minItems": MsgItemsRequired},
	},
}

var fetchInvoicesSchema = validation.Schema{
	"customer_id": {Type: validation.TypeUUID, Messages: map[string]string{"type": MsgCustomerInvalid}},
	"status": {
		Enum:     models.InvoiceStatuses,
		Messages: map[string]string{"enum": MsgStatusInvalid},
	},
	"from_date": {Type: validation.TypeDate},
	"to_date":   {Type: validation.TypeDate},
}

var updateInvoiceStatusSchema = validation.Schema{
	"invoice_id": {
		Required: true,
		Type:     validation.TypeUUID,
		Messages: map[string]string{"required": MsgInvoiceIDRequired, "type": MsgInvoiceIDInvalid},
	},
	"status": {
		Required: true,
		Enum:     models.InvoiceStatuses,
		Messages: map[string]string{"required": MsgStatusRequired, "enum": MsgStatusInvalid},
	},
}

type InvoiceService struct {
	invoices *repository.InvoiceRepository
	log      *zap.Logger
}

func NewInvoiceService(invoices *repository.InvoiceRepository, log *zap.Logger) *InvoiceService {
	return &InvoiceService{invoices: invoices, log: log}
}

// GenerateInvoiceNo produces the next number in the INV-0001 sequence
// from the most recently created invoice. The read is not serialized;
// uniqueness is enforced by the invoice_no unique index and the retry
// in CreateInvoice.
func (s *InvoiceService) GenerateInvoiceNo(repo *repository.InvoiceRepository) (string, error) {
	last, err := repo.LastInvoiceNo()
	if err != nil {
		return "", err
	}
	if last == "" {
		return fmt.Sprintf("%s%0*d", invoiceNoPrefix, invoiceNoDigits, 1), nil
	}

	n, err := strconv.Atoi(strings.TrimPrefix(last, invoiceNoPrefix))
	if err != nil {
		return "", apperr.Internal(fmt.Errorf("malformed invoice number %q: %w", last, err))
	}
	return fmt.Sprintf("%s%0*d", invoiceNoPrefix, invoiceNoDigits, n+1), nil
}

// CreateInvoice computes totals, generates the invoice number and writes
// the invoice plus its items in one transaction. Any failure rolls back
// the whole scope.
func (s *InvoiceService) CreateInvoice(payload map[string]any) (*models.Invoice, error) {
	data, verr := createInvoiceSchema.Validate(payload)
	if verr != nil {
		return nil, verr
	}

	customerID, _ := data["customer_id"].(string)
	gstPct := decimalFrom(data["gst_percentage"])
	rawItems, _ := data["items"].([]any)

	subtotal := decimal.Zero
	items := make([]models.InvoiceItem, 0, len(rawItems))
	for _, raw := range rawItems {
		obj, _ := raw.(map[string]any)
		desc, _ := obj["description"].(string)
		amount := decimalFrom(obj["amount"]).Round(2)
		subtotal = subtotal.Add(amount)
		items = append(items, models.InvoiceItem{Description: desc, Amount: amount})
	}

	gstAmount := subtotal.Mul(gstPct).Div(decimal.NewFromInt(100)).Round(2)
	totalAmount := subtotal.Add(gstAmount)

	var invoice *models.Invoice
	for attempt := 1; attempt <= createAttempts; attempt++ {
		invoice = &models.Invoice{
			CustomerID:    customerID,
			Subtotal:      subtotal,
			GstPercentage: gstPct,
			GstAmount:     gstAmount,
			TotalAmount:   totalAmount,
			Status:        models.StatusPending,
		}

		err := s.invoices.Transaction(func(tx *gorm.DB) error {
			txRepo := s.invoices.WithTx(tx)

			no, err := s.GenerateInvoiceNo(txRepo)
			if err != nil {
				return err
			}
			invoice.InvoiceNo = no

			if err := txRepo.Create(invoice); err != nil {
				return err
			}

			for i := range items {
				items[i].ID = ""
				items[i].InvoiceID = invoice.ID
			}
			return txRepo.CreateItems(items)
		})
		if err == nil {
			invoice.Items = items
			return invoice, nil
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) && attempt < createAttempts {
			s.log.Warn("invoice number taken, retrying",
				zap.String("invoice_no", invoice.InvoiceNo),
				zap.Int("attempt", attempt))
			continue
		}
		return nil, apperr.From(err)
	}

	return nil, apperr.Database(errors.New("exhausted invoice number retries"))
}

// GetInvoices lists invoices with optional filters, scoped by the
// caller's role: admins see everything (optionally narrowed to one
// customer), customers only ever see their own invoices.
func (s *InvoiceService) GetInvoices(payload map[string]any) ([]models.Invoice, error) {
	data, verr := fetchInvoicesSchema.Validate(payload)
	if verr != nil {
		return nil, verr
	}

	current, cerr := currentUserFrom(payload)
	if cerr != nil {
		return nil, cerr
	}

	filters := repository.InvoiceFilters{}
	if status, ok := data["status"].(string); ok {
		filters.Status = status
	}
	if from, ok := data["from_date"].(string); ok {
		filters.FromDate = validation.ParseDate(from)
	}
	if to, ok := data["to_date"].(string); ok {
		filters.ToDate = validation.ParseDate(to)
	}

	switch current.Role {
	case models.RoleAdmin:
		if customerID, ok := data["customer_id"].(string); ok {
			filters.CustomerID = customerID
		}
	default:
		// Customers can only ever see their own invoices, whatever
		// filter they pass.
		filters.CustomerID = current.UserID
	}

	return s.invoices.FindAll(repository.InvoiceListOptions{
		Filters: filters,
		Order:   "created_at DESC",
	})
}

// UpdateInvoiceStatus sets a new status on an existing invoice. Any
// status may be set from any status.
func (s *InvoiceService) UpdateInvoiceStatus(payload map[string]any) (*models.Invoice, error) {
	data, verr := updateInvoiceStatusSchema.Validate(payload)
	if verr != nil {
		return nil, verr
	}

	invoiceID, _ := data["invoice_id"].(string)
	status, _ := data["status"].(string)

	invoice, err := s.invoices.FindByID(invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperr.NotFound(MsgInvoiceNotFound)
	}

	return s.invoices.Update(invoiceID, map[string]any{"status": status})
}

func decimalFrom(value any) decimal.Decimal {
	switch n := value.(type) {
	case float64:
		return decimal.NewFromFloat(n)
	case int:
		return decimal.NewFromInt(int64(n))
	case int64:
		return decimal.NewFromInt(n)
	case string:
		d, err := decimal.NewFromString(n)
		if err == nil {
			return d
		}
	}
	return decimal.Zero
}
