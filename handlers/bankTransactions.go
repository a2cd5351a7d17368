package handlers

import (
	"net/http"
	"strconv"

	"bitbucket.org/thehouseplantstore/shop_backend/models"
	"github.com/gin-gonic/gin"
)

func (h *Handler) ListBankTransactions(c *gin.Context) {
	var accountNumber *string
	if s := c.Query("accountNumber"); s != "" {
		accountNumber = &s
	}
	var reconciled *bool
	if s := c.Query("reconciled"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reconciled flag"})
			return
		}
		reconciled = &v
	}

	transactions, err := models.GetBankTransactionsAll(c.Request.Context(), accountNumber, reconciled)
	if err != nil {
		h.internalError(c, "ListBankTransactions", "GetBankTransactionsAll", nil, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": transactions})
}
