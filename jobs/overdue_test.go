package jobs

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/yourusername/invoicely/models"
	"github.com/yourusername/invoicely/repository"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Invoice{}, &models.InvoiceItem{}))
	return db
}

func seedInvoiceAged(t *testing.T, db *gorm.DB, customerID, no, status string, ageDays int) *models.Invoice {
	t.Helper()
	inv := &models.Invoice{
		CustomerID:    customerID,
		InvoiceNo:     no,
		Subtotal:      decimal.NewFromInt(100),
		GstPercentage: decimal.Zero,
		GstAmount:     decimal.Zero,
		TotalAmount:   decimal.NewFromInt(100),
		Status:        status,
	}
	require.NoError(t, db.Create(inv).Error)
	require.NoError(t, db.Model(inv).UpdateColumn("created_at", time.Now().AddDate(0, 0, -ageDays)).Error)
	return inv
}

func TestOverdueJobReclassifiesStalePending(t *testing.T) {
	db := setupTestDB(t)
	customer := &models.User{Name: "C", Email: "c@example.com", Password: "h", Role: models.RoleCustomer}
	require.NoError(t, db.Create(customer).Error)

	stale := seedInvoiceAged(t, db, customer.ID, "INV-0001", models.StatusPending, 31)
	fresh := seedInvoiceAged(t, db, customer.ID, "INV-0002", models.StatusPending, 29)
	paid := seedInvoiceAged(t, db, customer.ID, "INV-0003", models.StatusPaid, 45)
	cancelled := seedInvoiceAged(t, db, customer.ID, "INV-0004", models.StatusCancelled, 45)

	job := NewOverdueJob(repository.NewInvoiceRepository(db), zap.NewNop(), 30)

	updated, err := job.Run()
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)

	status := func(id string) string {
		var inv models.Invoice
		require.NoError(t, db.First(&inv, "id = ?", id).Error)
		return inv.Status
	}
	assert.Equal(t, models.StatusOverdue, status(stale.ID))
	assert.Equal(t, models.StatusPending, status(fresh.ID))
	assert.Equal(t, models.StatusPaid, status(paid.ID))
	assert.Equal(t, models.StatusCancelled, status(cancelled.ID))
}

func TestOverdueJobIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	customer := &models.User{Name: "C", Email: "c@example.com", Password: "h", Role: models.RoleCustomer}
	require.NoError(t, db.Create(customer).Error)
	seedInvoiceAged(t, db, customer.ID, "INV-0001", models.StatusPending, 40)

	job := NewOverdueJob(repository.NewInvoiceRepository(db), zap.NewNop(), 30)

	updated, err := job.Run()
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)

	updated, err = job.Run()
	require.NoError(t, err)
	assert.Equal(t, int64(0), updated)
}

func TestOverdueJobFailureDoesNotStopScheduler(t *testing.T) {
	db := setupTestDB(t)
	// Force the bulk update to fail.
	require.NoError(t, db.Migrator().DropTable(&models.Invoice{}))

	job := NewOverdueJob(repository.NewInvoiceRepository(db), zap.NewNop(), 30)

	_, err := job.Run()
	require.Error(t, err)

	// The scheduled wrapper swallows the error; registering and ticking
	// must not panic.
	c, schedErr := StartScheduler(job, "@every 1h", zap.NewNop())
	require.NoError(t, schedErr)
	c.Stop()
}
