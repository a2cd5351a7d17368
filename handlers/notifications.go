package handlers

import (
	"net/http"
	"strconv"

	"bitbucket.org/thehouseplantstore/shop_backend/middlewares"
	"bitbucket.org/thehouseplantstore/shop_backend/models"
	"github.com/gin-gonic/gin"
)

func (h *Handler) ListNotifications(c *gin.Context) {
	claim := middlewares.CtxValue(c.Request.Context())
	if claim == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	unreadOnly := c.Query("unreadOnly") == "true"

	notifications, err := models.GetNotificationsAll(c.Request.Context(), claim.ID, unreadOnly)
	if err != nil {
		h.internalError(c, "ListNotifications", "GetNotificationsAll", claim.ID, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

func (h *Handler) MarkNotificationRead(c *gin.Context) {
	claim := middlewares.CtxValue(c.Request.Context())
	if claim == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification id"})
		return
	}

	notification, err := models.MarkNotificationRead(c.Request.Context(), id, claim.ID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, notification)
}
