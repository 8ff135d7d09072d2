package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/yourusername/invoicely/repository"
	"github.com/yourusername/invoicely/services"
)

type CustomerHandler struct {
	customers *services.CustomerService
	log       *zap.Logger
}

func NewCustomerHandler(db *gorm.DB, log *zap.Logger) *CustomerHandler {
	return &CustomerHandler{
		customers: services.NewCustomerService(repository.NewUserRepository(db)),
		log:       log,
	}
}

// Create handles POST /customers (admin only)
func (h *CustomerHandler) Create(c *gin.Context) {
	payload := bindPayload(c)
	attachCurrentUser(c, payload)

	customer, err := h.customers.CreateCustomer(payload)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondCreated(c, customer)
}

// List handles GET /customers (admin only); filters come from the query
// string.
func (h *CustomerHandler) List(c *gin.Context) {
	payload := map[string]any{}
	for _, key := range []string{"name", "email", "phone"} {
		if v := c.Query(key); v != "" {
			payload[key] = v
		}
	}
	attachCurrentUser(c, payload)

	customers, err := h.customers.FetchCustomers(payload)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, customers)
}

// Profile handles GET /customers/profile
func (h *CustomerHandler) Profile(c *gin.Context) {
	payload := map[string]any{}
	attachCurrentUser(c, payload)

	profile, err := h.customers.FetchProfile(payload)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, profile)
}
