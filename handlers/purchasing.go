package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"bitbucket.org/thehouseplantstore/shop_backend/models"
	"bitbucket.org/thehouseplantstore/shop_backend/purchasing"
	"github.com/gin-gonic/gin"
)

type autoDraftRequest struct {
	AdminId int `json:"adminId"`
}

func (h *Handler) AutoDraftPurchaseOrders(c *gin.Context) {
	var req autoDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing adminId"})
		return
	}

	report, err := h.drafter.AutoDraft(c.Request.Context(), req.AdminId)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, report)
	case errors.Is(err, purchasing.ErrMissingAdminId):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing adminId"})
	default:
		h.internalError(c, "AutoDraftPurchaseOrders", "AutoDraft", req.AdminId, err)
	}
}

type approveOrderRequest struct {
	Id      int `json:"id" binding:"required"`
	AdminId int `json:"adminId" binding:"required"`
}

func (h *Handler) ApprovePurchaseOrder(c *gin.Context) {
	var req approveOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id and adminId are required"})
		return
	}

	order, err := h.drafter.Approve(c.Request.Context(), req.Id, req.AdminId)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, order)
	case errors.Is(err, purchasing.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, purchasing.ErrMissingAdminId):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.internalError(c, "ApprovePurchaseOrder", "Approve",
			map[string]int{"id": req.Id, "admin_id": req.AdminId}, err)
	}
}

func (h *Handler) ListPurchaseOrders(c *gin.Context) {
	var status *models.PurchaseOrderStatus
	if s := c.Query("status"); s != "" {
		v := models.PurchaseOrderStatus(s)
		status = &v
	}
	var adminId *int
	if s := c.Query("adminId"); s != "" {
		id, err := strconv.Atoi(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid adminId"})
			return
		}
		adminId = &id
	}

	orders, err := models.GetPurchaseOrdersAll(c.Request.Context(), status, adminId)
	if err != nil {
		h.internalError(c, "ListPurchaseOrders", "GetPurchaseOrdersAll", nil, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"purchaseOrders": orders})
}
