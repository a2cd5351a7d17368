package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/thehouseplantstore/shop_backend/config"
	"gorm.io/gorm"
)

// Notifications are durable rows consumed by the admin UI. Creation is
// fire-and-forget: no delivery guarantee beyond the insert.
type Notification struct {
	ID        int              `gorm:"primary_key" json:"id"`
	UserId    int              `gorm:"index;not null" json:"user_id" binding:"required"`
	Type      NotificationType `gorm:"type:enum('po-draft','po-approved');not null" json:"type"`
	Message   string           `gorm:"type:text;not null" json:"message" binding:"required"`
	Link      string           `gorm:"size:255;default:null" json:"link"`
	Read      bool             `gorm:"not null;default:false" json:"read"`
	CreatedAt time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

func (n Notification) GetId() int {
	return n.ID
}

// PurchaseOrderDeepLink is the admin-UI path for one purchase order.
func PurchaseOrderDeepLink(orderId int) string {
	return fmt.Sprintf("/admin/purchase-orders/%d", orderId)
}

func GetNotificationsAll(ctx context.Context, userId int, unreadOnly bool) ([]*Notification, error) {
	db := config.GetDB()
	var results []*Notification

	dbCtx := db.WithContext(ctx).Where("user_id = ?", userId)
	if unreadOnly {
		dbCtx = dbCtx.Where("`read` = ?", false)
	}

	err := dbCtx.Order("created_at DESC").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func MarkNotificationRead(ctx context.Context, id int, userId int) (*Notification, error) {
	db := config.GetDB()

	var notification Notification
	err := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userId).
		First(&notification).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.New("notification not found")
	}
	if err != nil {
		return nil, err
	}

	if err := db.WithContext(ctx).Model(&notification).Update("read", true).Error; err != nil {
		return nil, err
	}
	notification.Read = true
	return &notification, nil
}
