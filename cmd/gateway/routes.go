package main

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"farmagro-system/config"
	"farmagro-system/internal/database"
	"farmagro-system/internal/gateway/handlers"
	"farmagro-system/internal/gateway/middleware"
	billing "farmagro-system/internal/services/billing/handler"
	customer "farmagro-system/internal/services/customer/handler"
	inventory "farmagro-system/internal/services/inventory/handler"
	ledger "farmagro-system/internal/services/ledger/handler"
	reporting "farmagro-system/internal/services/reporting/handler"
	user "farmagro-system/internal/services/user/handler"
	"farmagro-system/internal/utils"
)

func main() {
	cfg := config.LoadConfig()
	utils.SetJWTSecret(cfg.Auth.JWTSecret)

	db, err := database.NewConnection(cfg.DB.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	redisClient := config.NewRedisClient(cfg.Redis)

	inventoryHandler := handlers.NewInventoryHTTPHandler(inventory.NewInventoryHandler(db, redisClient))
	customerHandler := handlers.NewCustomerHTTPHandler(customer.NewCustomerHandler(db, redisClient))
	billingHandler := handlers.NewBillingHTTPHandler(billing.NewBillingHandler(db, redisClient))
	ledgerHandler := handlers.NewLedgerHTTPHandler(ledger.NewLedgerHandler(db, redisClient))
	reportingHandler := handlers.NewReportingHTTPHandler(reporting.NewReportingHandler(db, redisClient))
	userHandler := handlers.NewUserHTTPHandler(user.NewUserHandler(db))
	eventsHandler := handlers.NewEventsHTTPHandler(redisClient)

	r := gin.New()

	r.Use(middleware.CORS(strings.Split(cfg.HTTP.CORSOrigins, ",")))
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit())

	// --- Public API Group ---
	public := r.Group("/api/v1")
	{
		auth := public.Group("/auth")
		{
			auth.POST("/login", userHandler.Login)
			auth.POST("/register", userHandler.Register)
		}
	}

	// --- Protected API Group ---
	protected := r.Group("/api/v1")
	protected.Use(middleware.JWTAuth())
	{
		protected.GET("/auth/me", userHandler.Me)

		products := protected.Group("/products")
		{
			products.POST("", inventoryHandler.CreateProduct)
			products.GET("", inventoryHandler.ListProducts)
			products.GET("/low-stock", inventoryHandler.ListLowStock)
			products.GET("/:id", inventoryHandler.GetProduct)
			products.PUT("/:id", inventoryHandler.UpdateProduct)
			products.DELETE("/:id", inventoryHandler.DeleteProduct)
			products.POST("/:id/adjust-stock", inventoryHandler.AdjustStock)
		}

		farmers := protected.Group("/farmers")
		{
			farmers.POST("", customerHandler.CreateFarmer)
			farmers.GET("", customerHandler.ListFarmers)
			farmers.GET("/:id", customerHandler.GetFarmer)
			farmers.PUT("/:id", customerHandler.UpdateFarmer)
			farmers.DELETE("/:id", customerHandler.DeleteFarmer)
		}

		bills := protected.Group("/bills")
		{
			bills.POST("", billingHandler.CreateBill)
			bills.GET("", billingHandler.ListBills)
			bills.GET("/pending", billingHandler.ListPendingBills)
			bills.GET("/:id", billingHandler.GetBill)
			bills.PATCH("/:id/status", billingHandler.UpdateBillStatus)
		}

		payments := protected.Group("/payments")
		{
			payments.POST("", ledgerHandler.RecordPayment)
			payments.GET("", ledgerHandler.ListPayments)
		}

		accounts := protected.Group("/accounts")
		{
			accounts.GET("", ledgerHandler.ListAccounts)
			accounts.GET("/:farmer_id", ledgerHandler.GetAccount)
			accounts.PATCH("/:farmer_id", ledgerHandler.UpdateAccountTerms)
			accounts.POST("/:farmer_id/accrue-interest", ledgerHandler.AccrueInterest)
			accounts.GET("/:farmer_id/interest-charges", ledgerHandler.ListInterestCharges)
		}

		reports := protected.Group("/reports")
		{
			reports.GET("/sales", reportingHandler.SalesReport)
			reports.GET("/dashboard", reportingHandler.DashboardStats)
		}

		protected.GET("/events", eventsHandler.Stream)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"message":   "Server is running",
			"timestamp": time.Now(),
		})
	})

	port := ":" + cfg.HTTP.Port
	log.Printf("Starting server on port %s", port)
	if err := r.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
