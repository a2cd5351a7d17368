package handlers

import (
	"errors"
	"net/http"

	"bitbucket.org/thehouseplantstore/shop_backend/middlewares"
	"bitbucket.org/thehouseplantstore/shop_backend/models"
	"bitbucket.org/thehouseplantstore/shop_backend/utils"
	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	result, err := models.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// Me returns the authenticated user's own record.
func (h *Handler) Me(c *gin.Context) {
	claim := middlewares.CtxValue(c.Request.Context())
	if claim == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	user, err := models.GetUser(c.Request.Context(), claim.ID)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, user)
	case errors.Is(err, utils.ErrorRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	default:
		h.internalError(c, "Me", "models.GetUser", claim.ID, err)
	}
}
