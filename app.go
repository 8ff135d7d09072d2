package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/yourusername/invoicely/config"
	"github.com/yourusername/invoicely/handlers"
	"github.com/yourusername/invoicely/middleware"
	"github.com/yourusername/invoicely/models"
)

// buildRouter wires middleware and routes onto a fresh gin engine.
func buildRouter(db *gorm.DB, cfg *config.Config, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))

	router.GET("/healthchecker", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	authHandler := handlers.NewAuthHandler(db, cfg, log)
	router.POST("/auth/login", authHandler.Login)

	authenticated := middleware.JwtAuthMiddleware(cfg)
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	customerHandler := handlers.NewCustomerHandler(db, log)
	customers := router.Group("/customers", authenticated)
	{
		customers.POST("", adminOnly, customerHandler.Create)
		customers.GET("", adminOnly, customerHandler.List)
		customers.GET("/profile", customerHandler.Profile)
	}

	invoiceHandler := handlers.NewInvoiceHandler(db, log)
	invoices := router.Group("/invoices", authenticated)
	{
		invoices.POST("/create", adminOnly, invoiceHandler.Create)
		invoices.POST("/get", invoiceHandler.Get)
		invoices.POST("/update", adminOnly, invoiceHandler.UpdateStatus)
	}

	return router
}
