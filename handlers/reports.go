package handlers

import (
	"net/http"

	"bitbucket.org/thehouseplantstore/shop_backend/config"
	"bitbucket.org/thehouseplantstore/shop_backend/models/reports"
	"github.com/gin-gonic/gin"
)

func (h *Handler) ReconciliationReport(c *gin.Context) {
	var accountNumber *string
	if s := c.Query("accountNumber"); s != "" {
		accountNumber = &s
	}

	f, err := reports.BuildReconciliationExcel(c.Request.Context(), accountNumber)
	if err != nil {
		h.internalError(c, "ReconciliationReport", "BuildReconciliationExcel", nil, err)
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=reconciliation.xlsx")
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		config.LogError(h.logger, "handlers", "ReconciliationReport", "excelize.Write", nil, err)
	}
}
