package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/yourusername/invoicely/config"
	"github.com/yourusername/invoicely/middleware"
	"github.com/yourusername/invoicely/models"
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

func testConfig() *config.Config {
	return &config.Config{JWTSecret: "test-secret", JWTExpiry: time.Hour}
}

func newTestRouter(db *gorm.DB, cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := zap.NewNop()

	router := gin.New()
	authHandler := NewAuthHandler(db, cfg, log)
	router.POST("/auth/login", authHandler.Login)

	authenticated := middleware.JwtAuthMiddleware(cfg)
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	customerHandler := NewCustomerHandler(db, log)
	router.POST("/customers", authenticated, adminOnly, customerHandler.Create)
	router.GET("/customers", authenticated, adminOnly, customerHandler.List)
	router.GET("/customers/profile", authenticated, customerHandler.Profile)

	invoiceHandler := NewInvoiceHandler(db, log)
	router.POST("/invoices/create", authenticated, adminOnly, invoiceHandler.Create)
	router.POST("/invoices/get", authenticated, invoiceHandler.Get)
	router.POST("/invoices/update", authenticated, adminOnly, invoiceHandler.UpdateStatus)

	return router
}

func seedUser(t *testing.T, db *gorm.DB, email, password, role string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{Name: "Seeded", Email: email, Password: string(hash), Role: role}
	require.NoError(t, db.Create(user).Error)
	return user
}

func tokenFor(t *testing.T, cfg *config.Config, user *models.User) string {
	t.Helper()
	token, err := middleware.GenerateToken(user, cfg.JWTSecret, cfg.JWTExpiry)
	require.NoError(t, err)
	return token
}

func doJSON(router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewBuffer(data)
	} else {
		reader = bytes.NewBuffer(nil)
	}
	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestLoginEndpoint(t *testing.T) {
	db := setupTestDB(t)
	cfg := testConfig()
	router := newTestRouter(db, cfg)
	seedUser(t, db, "admin@example.com", "admin123", models.RoleAdmin)

	t.Run("success", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/auth/login", "", gin.H{
			"email":    "admin@example.com",
			"password": "admin123",
		})
		assert.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Success bool `json:"success"`
			Data    struct {
				User struct {
					Email string `json:"email"`
					Role  string `json:"role"`
				} `json:"user"`
				AccessToken string `json:"accessToken"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.True(t, body.Success)
		assert.Equal(t, "admin@example.com", body.Data.User.Email)
		assert.Equal(t, models.RoleAdmin, body.Data.User.Role)
		assert.NotEmpty(t, body.Data.AccessToken)
	})

	t.Run("wrong password", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/auth/login", "", gin.H{
			"email":    "admin@example.com",
			"password": "wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "UnauthorizedError", body["type"])
		assert.Equal(t, "Invalid email or password", body["message"])
	})

	t.Run("validation failure lists fields", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/auth/login", "", gin.H{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "ValidationError")
		assert.Contains(t, w.Body.String(), "Email is required")
		assert.Contains(t, w.Body.String(), "Password is required")
	})
}

func TestCreateInvoiceEndpoint(t *testing.T) {
	db := setupTestDB(t)
	cfg := testConfig()
	router := newTestRouter(db, cfg)
	admin := seedUser(t, db, "admin@example.com", "admin123", models.RoleAdmin)
	customer := seedUser(t, db, "cust@example.com", "secret123", models.RoleCustomer)
	adminToken := tokenFor(t, cfg, admin)

	t.Run("creates invoice with computed totals", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/invoices/create", adminToken, gin.H{
			"customer_id":    customer.ID,
			"gst_percentage": 18,
			"items":          []gin.H{{"description": "Widget", "amount": 100}},
		})
		assert.Equal(t, http.StatusCreated, w.Code)

		body := w.Body.String()
		assert.Contains(t, body, `"invoice_no":"INV-0001"`)
		assert.Contains(t, body, `"subtotal":"100"`)
		assert.Contains(t, body, `"gst_amount":"18"`)
		assert.Contains(t, body, `"total_amount":"118"`)
		assert.Contains(t, body, `"status":"PENDING"`)
		assert.Contains(t, body, `"description":"Widget"`)
	})

	t.Run("customer role is forbidden", func(t *testing.T) {
		customerToken := tokenFor(t, cfg, customer)
		w := doJSON(router, http.MethodPost, "/invoices/create", customerToken, gin.H{
			"customer_id":    customer.ID,
			"gst_percentage": 18,
			"items":          []gin.H{{"description": "Widget", "amount": 100}},
		})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/invoices/create", "", gin.H{})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestGetInvoicesEndpointRoleScoping(t *testing.T) {
	db := setupTestDB(t)
	cfg := testConfig()
	router := newTestRouter(db, cfg)
	admin := seedUser(t, db, "admin@example.com", "admin123", models.RoleAdmin)
	alice := seedUser(t, db, "alice@example.com", "secret123", models.RoleCustomer)
	bob := seedUser(t, db, "bob@example.com", "secret123", models.RoleCustomer)
	adminToken := tokenFor(t, cfg, admin)

	for _, c := range []*models.User{alice, bob} {
		w := doJSON(router, http.MethodPost, "/invoices/create", adminToken, gin.H{
			"customer_id":    c.ID,
			"gst_percentage": 18,
			"items":          []gin.H{{"description": "Widget", "amount": 100}},
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	listed := func(w *httptest.ResponseRecorder) []map[string]any {
		var body struct {
			Data []map[string]any `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		return body.Data
	}

	t.Run("admin sees all", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/invoices/get", adminToken, gin.H{})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, listed(w), 2)
	})

	t.Run("customer filter override", func(t *testing.T) {
		aliceToken := tokenFor(t, cfg, alice)
		w := doJSON(router, http.MethodPost, "/invoices/get", aliceToken, gin.H{
			"customer_id": bob.ID,
		})
		assert.Equal(t, http.StatusOK, w.Code)

		invoices := listed(w)
		require.Len(t, invoices, 1)
		assert.Equal(t, alice.ID, invoices[0]["customer_id"])
	})
}

func TestUpdateInvoiceStatusEndpoint(t *testing.T) {
	db := setupTestDB(t)
	cfg := testConfig()
	router := newTestRouter(db, cfg)
	admin := seedUser(t, db, "admin@example.com", "admin123", models.RoleAdmin)
	customer := seedUser(t, db, "cust@example.com", "secret123", models.RoleCustomer)
	adminToken := tokenFor(t, cfg, admin)

	w := doJSON(router, http.MethodPost, "/invoices/create", adminToken, gin.H{
		"customer_id":    customer.ID,
		"gst_percentage": 0,
		"items":          []gin.H{{"description": "Widget", "amount": 50}},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	t.Run("updates status", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/invoices/update", adminToken, gin.H{
			"invoice_id": created.Data.ID,
			"status":     models.StatusPaid,
		})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"PAID"`)
	})

	t.Run("unknown invoice is 404", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/invoices/update", adminToken, gin.H{
			"invoice_id": "7c9e6679-7425-40de-944b-e07fc1f90ae7",
			"status":     models.StatusPaid,
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "Invoice not found")
	})
}

func TestCustomerEndpoints(t *testing.T) {
	db := setupTestDB(t)
	cfg := testConfig()
	router := newTestRouter(db, cfg)
	admin := seedUser(t, db, "admin@example.com", "admin123", models.RoleAdmin)
	adminToken := tokenFor(t, cfg, admin)

	t.Run("create", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/customers", adminToken, gin.H{
			"name":     "New Customer",
			"email":    "new@example.com",
			"phone":    "9876543210",
			"password": "secret123",
		})
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"role":"CUSTOMER"`)
		assert.NotContains(t, w.Body.String(), "secret123")
	})

	t.Run("duplicate email", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/customers", adminToken, gin.H{
			"name":     "Other",
			"email":    "new@example.com",
			"password": "secret123",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "already exists")
	})

	t.Run("list with filter", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/customers?email=new@example.com", nil)
		req.Header.Set("Authorization", "Bearer "+adminToken)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "new@example.com")
	})

	t.Run("profile returns caller", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/customers/profile", nil)
		req.Header.Set("Authorization", "Bearer "+adminToken)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "admin@example.com")
	})
}
