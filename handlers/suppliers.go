package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"bitbucket.org/thehouseplantstore/shop_backend/models"
	"bitbucket.org/thehouseplantstore/shop_backend/utils"
	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateSupplier(c *gin.Context) {
	var input models.NewSupplier
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	supplier, err := models.CreateSupplier(c.Request.Context(), &input)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, supplier)
	case errors.Is(err, models.ErrInvalidSupplierPhone):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.internalError(c, "CreateSupplier", "models.CreateSupplier", input.Name, err)
	}
}

func (h *Handler) GetSupplier(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid supplier id"})
		return
	}

	supplier, err := models.GetSupplier(c.Request.Context(), id)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, supplier)
	case errors.Is(err, utils.ErrorRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "supplier not found"})
	default:
		h.internalError(c, "GetSupplier", "models.GetSupplier", id, err)
	}
}

func (h *Handler) ListSuppliers(c *gin.Context) {
	var name *string
	if s := c.Query("name"); s != "" {
		name = &s
	}

	suppliers, err := models.GetSuppliersAll(c.Request.Context(), name)
	if err != nil {
		h.internalError(c, "ListSuppliers", "models.GetSuppliersAll", nil, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"suppliers": suppliers})
}
