package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/yourusername/invoicely/repository"
	"github.com/yourusername/invoicely/services"
)

type InvoiceHandler struct {
	invoices *services.InvoiceService
	log      *zap.Logger
}

func NewInvoiceHandler(db *gorm.DB, log *zap.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		invoices: services.NewInvoiceService(repository.NewInvoiceRepository(db), log),
		log:      log,
	}
}

// Create handles POST /invoices/create (admin only)
func (h *InvoiceHandler) Create(c *gin.Context) {
	payload := bindPayload(c)
	attachCurrentUser(c, payload)

	invoice, err := h.invoices.CreateInvoice(payload)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondCreated(c, invoice)
}

// Get handles POST /invoices/get (any authenticated role)
func (h *InvoiceHandler) Get(c *gin.Context) {
	payload := bindPayload(c)
	attachCurrentUser(c, payload)

	invoices, err := h.invoices.GetInvoices(payload)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, invoices)
}

// UpdateStatus handles POST /invoices/update (admin only)
func (h *InvoiceHandler) UpdateStatus(c *gin.Context) {
	payload := bindPayload(c)
	attachCurrentUser(c, payload)

	invoice, err := h.invoices.UpdateInvoiceStatus(payload)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, invoice)
}
