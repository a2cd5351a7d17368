package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"bitbucket.org/thehouseplantstore/shop_backend/config"
	"bitbucket.org/thehouseplantstore/shop_backend/handlers"
	"bitbucket.org/thehouseplantstore/shop_backend/middlewares"
	"bitbucket.org/thehouseplantstore/shop_backend/models"
	"bitbucket.org/thehouseplantstore/shop_backend/purchasing"
	"bitbucket.org/thehouseplantstore/shop_backend/reconcile"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const defaultPort = "8080"

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func corsConfigFromEnv() cors.Config {
	corsConfig := cors.DefaultConfig()
	// In production require an explicit allowlist; allow all otherwise.
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		if allowedOrigins == "" {
			corsConfig.AllowOrigins = []string{}
		} else {
			corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders("Origin", "Content-Type", "Authorization")
	corsConfig.AddExposeHeaders("Content-Length", "Content-Disposition")
	corsConfig.AllowCredentials = true
	return corsConfig
}

// customErrorLogger logs only requests that accumulated gin errors.
func customErrorLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			logger.Error(c.Errors.String())
		}
	}
}

func registerRoutes(r *gin.Engine) {
	// nil stores/locker resolve the global connections at call time; the
	// readiness gate keeps requests out until those exist.
	reconciler := reconcile.NewEngine(reconcile.NewGormStore(nil), config.GetLogger())
	drafter := purchasing.NewDrafter(purchasing.NewGormStore(nil), nil, config.GetLogger())
	h := handlers.NewHandler(reconciler, drafter, config.GetLogger())

	api := r.Group("/api")
	api.POST("/auth/login", h.Login)
	api.GET("/auth/me", h.Me)

	finance := api.Group("", middlewares.RequireRoles(models.ReconciliationRoles...))
	finance.POST("/reconcile", h.Reconcile)
	finance.GET("/bank-transactions", h.ListBankTransactions)
	finance.GET("/reports/reconciliation.xlsx", h.ReconciliationReport)

	purchasingGroup := api.Group("", middlewares.RequireRoles(models.PurchasingRoles...))
	purchasingGroup.POST("/purchase-orders/auto-draft", h.AutoDraftPurchaseOrders)
	purchasingGroup.PATCH("/purchase-orders", h.ApprovePurchaseOrder)
	purchasingGroup.GET("/purchase-orders", h.ListPurchaseOrders)
	purchasingGroup.GET("/products", h.ListProducts)
	purchasingGroup.GET("/products/low-stock", h.LowStockProducts)
	purchasingGroup.GET("/products/:id", h.GetProduct)
	purchasingGroup.POST("/suppliers", h.CreateSupplier)
	purchasingGroup.GET("/suppliers", h.ListSuppliers)
	purchasingGroup.GET("/suppliers/:id", h.GetSupplier)

	api.GET("/notifications", h.ListNotifications)
	api.PATCH("/notifications/:id/read", h.MarkNotificationRead)
}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	// Start the HTTP server before the DB is ready so the platform's startup
	// probe passes; app endpoints return 503 until dependencies come up.
	r := gin.New()
	r.Use(middlewares.CorrelationMiddleware())
	r.Use(func(c *gin.Context) {
		if c.Request.URL.Path == "/health" {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
			c.Abort()
			return
		}
		if config.GetDB() == nil {
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		c.Next()
	})
	r.GET("/health", handlers.Health)

	r.Use(cors.New(corsConfigFromEnv()))
	r.Use(middlewares.AuthMiddleware())
	r.Use(customErrorLogger(logger))
	r.Use(gin.Recovery())

	registerRoutes(r)

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()

	// Connect dependencies after the port is open.
	config.ConnectDatabaseWithRetry()
	config.ConnectRedis()

	db := config.GetDB()
	sqlDB, _ := db.DB()
	defer func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}()

	// AutoMigrate can run blocking DDL; allow running it as a separate job.
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("SKIP_MIGRATIONS")), "true") {
		if err := models.MigrateDatabase(); err != nil {
			logger.WithFields(logrus.Fields{"field": "migrations"}).Error("auto-migrate failed: " + err.Error())
		}
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}

	logger.WithFields(logrus.Fields{
		"info": "Connection Established",
	}).Info("listening on http://localhost:", port)
	log.Println("Server started successfully")

	select {
	case <-sigCtx.Done():
		// graceful shutdown below
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}

	if rdb := config.GetRedisDB(); rdb != nil {
		_ = rdb.Close()
	}
}
