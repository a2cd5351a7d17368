package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"bitbucket.org/thehouseplantstore/shop_backend/models"
	"bitbucket.org/thehouseplantstore/shop_backend/utils"
	"github.com/gin-gonic/gin"
)

// LowStockProducts previews what the next auto-draft pass would consider,
// including supplier-less products the drafter itself skips.
func (h *Handler) LowStockProducts(c *gin.Context) {
	products, err := models.GetLowStockProducts(c.Request.Context())
	if err != nil {
		h.internalError(c, "LowStockProducts", "GetLowStockProducts", nil, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *Handler) ListProducts(c *gin.Context) {
	var name *string
	if s := c.Query("name"); s != "" {
		name = &s
	}

	products, err := models.GetProductsAll(c.Request.Context(), name)
	if err != nil {
		h.internalError(c, "ListProducts", "models.GetProductsAll", nil, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *Handler) GetProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}

	product, err := models.GetProduct(c.Request.Context(), id)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, product)
	case errors.Is(err, utils.ErrorRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
	default:
		h.internalError(c, "GetProduct", "models.GetProduct", id, err)
	}
}
