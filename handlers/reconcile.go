package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"bitbucket.org/thehouseplantstore/shop_backend/reconcile"
	"bitbucket.org/thehouseplantstore/shop_backend/utils"
	"github.com/gin-gonic/gin"
)

type reconcileRequest struct {
	Action        string `json:"action" binding:"required"`
	TransactionId int    `json:"transactionId"`
	ExpenseId     int    `json:"expenseId"`
	AccountNumber string `json:"accountNumber"`
	StartDate     string `json:"startDate"`
	EndDate       string `json:"endDate"`
}

// Reconcile dispatches on the action field: "manual" links one explicit
// transaction/expense pair, "auto" runs the proximity scan over an account.
func (h *Handler) Reconcile(c *gin.Context) {
	var req reconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	switch req.Action {
	case "manual":
		h.manualReconcile(c, req)
	case "auto":
		h.autoReconcile(c, req)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Unknown action %q", req.Action)})
	}
}

func (h *Handler) manualReconcile(c *gin.Context, req reconcileRequest) {
	transaction, err := h.reconciler.ManualMatch(c.Request.Context(), req.TransactionId, req.ExpenseId)

	var mismatch *reconcile.AmountMismatchError
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{
			"message":     "Transaction reconciled",
			"transaction": transaction,
		})
	case errors.Is(err, reconcile.ErrMissingTransactionIds):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, reconcile.ErrTransactionNotFound), errors.Is(err, reconcile.ErrExpenseNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &mismatch):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "Amounts do not match",
			"transactionAmount": mismatch.TransactionAmount,
			"expenseAmount":     mismatch.ExpenseAmount,
		})
	default:
		h.internalError(c, "manualReconcile", "ManualMatch",
			map[string]int{"transaction_id": req.TransactionId, "expense_id": req.ExpenseId}, err)
	}
}

func (h *Handler) autoReconcile(c *gin.Context, req reconcileRequest) {
	var startDate, endDate *time.Time
	if req.StartDate != "" {
		t, err := utils.ParseDate(req.StartDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid startDate"})
			return
		}
		startDate = &t
	}
	if req.EndDate != "" {
		t, err := utils.ParseDate(req.EndDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid endDate"})
			return
		}
		endDate = &t
	}

	count, results, err := h.reconciler.AutoReconcile(c.Request.Context(), req.AccountNumber, startDate, endDate)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{
			"message":         fmt.Sprintf("Reconciled %d transactions", count),
			"reconciledCount": count,
			"results":         results,
		})
	case errors.Is(err, reconcile.ErrMissingAccountNumber):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.internalError(c, "autoReconcile", "AutoReconcile", req.AccountNumber, err)
	}
}
