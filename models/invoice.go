package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Invoice statuses
const (
	StatusPending   = "PENDING"
	StatusPaid      = "PAID"
	StatusCancelled = "CANCELLED"
	StatusOverdue   = "OVERDUE"
)

// InvoiceStatuses lists every valid invoice status.
var InvoiceStatuses = []string{StatusPending, StatusPaid, StatusCancelled, StatusOverdue}

type Invoice struct {
	ID            string          `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt     time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"column:updated_at" json:"updated_at"`
	CustomerID    string          `gorm:"type:uuid;not null;index" json:"customer_id"`
	Customer      *User           `gorm:"foreignKey:CustomerID;constraint:OnDelete:RESTRICT" json:"customer,omitempty"`
	InvoiceNo     string          `gorm:"uniqueIndex;size:50;not null" json:"invoice_no"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	GstPercentage decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"gst_percentage"`
	GstAmount     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"gst_amount"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	Status        string          `gorm:"size:20;not null;default:'PENDING'" json:"status"` // PENDING, PAID, CANCELLED, OVERDUE
	Items         []InvoiceItem   `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// BeforeCreate assigns a UUID primary key
func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// TableName overrides the table name
func (Invoice) TableName() string {
	return "invoices"
}

// InvoiceItem rows are immutable once created; there is no update path.
type InvoiceItem struct {
	ID          string          `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt   time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"column:updated_at" json:"updated_at"`
	InvoiceID   string          `gorm:"type:uuid;not null;index" json:"invoice_id"`
	Description string          `gorm:"size:255;not null" json:"description"`
	Amount      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
}

// BeforeCreate assigns a UUID primary key
func (it *InvoiceItem) BeforeCreate(tx *gorm.DB) error {
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	return nil
}

// TableName overrides the table name
func (InvoiceItem) TableName() string {
	return "invoice_items"
}
