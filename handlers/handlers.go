// Package handlers exposes the engines and the supporting listings over the
// JSON API.
package handlers

import (
	"context"
	"net/http"
	"time"

	"bitbucket.org/thehouseplantstore/shop_backend/config"
	"bitbucket.org/thehouseplantstore/shop_backend/models"
	"bitbucket.org/thehouseplantstore/shop_backend/purchasing"
	"bitbucket.org/thehouseplantstore/shop_backend/reconcile"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Reconciler is what the reconcile endpoint needs from the matching engine.
type Reconciler interface {
	ManualMatch(ctx context.Context, transactionId int, expenseId int) (*models.BankTransaction, error)
	AutoReconcile(ctx context.Context, accountNumber string, startDate, endDate *time.Time) (int, []reconcile.MatchResult, error)
}

// Drafter is what the purchasing endpoints need from the replenishment
// drafter.
type Drafter interface {
	AutoDraft(ctx context.Context, adminId int) (*purchasing.DraftReport, error)
	Approve(ctx context.Context, orderId int, adminId int) (*models.PurchaseOrder, error)
}

type Handler struct {
	reconciler Reconciler
	drafter    Drafter
	logger     *logrus.Logger
}

func NewHandler(reconciler Reconciler, drafter Drafter, logger *logrus.Logger) *Handler {
	return &Handler{
		reconciler: reconciler,
		drafter:    drafter,
		logger:     logger,
	}
}

func (h *Handler) internalError(c *gin.Context, funcName string, context string, data any, err error) {
	config.LogError(h.logger, "handlers", funcName, context, data, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
