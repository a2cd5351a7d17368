package purchasing

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/thehouseplantstore/shop_backend/config"
	"bitbucket.org/thehouseplantstore/shop_backend/models"
	"gorm.io/gorm"
)

// GormStore implements Store over the relational schema.
type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormStore wraps a connection. Passing nil defers to the global
// connection at call time, which lets routes be wired before the retry loop
// in ConnectDatabaseWithRetry finishes.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db, now: time.Now}
}

func (s *GormStore) conn() *gorm.DB {
	if s.db != nil {
		return s.db
	}
	return config.GetDB()
}

func (s *GormStore) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := s.conn().WithContext(ctx).Order("id").Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (s *GormStore) GetPurchaseOrder(ctx context.Context, id int) (*models.PurchaseOrder, error) {
	var order models.PurchaseOrder
	err := s.conn().WithContext(ctx).
		Preload("Items").Preload("Supplier").
		First(&order, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// CreateDraftIfAbsent runs the duplicate check, PO-number allocation, order
// insert and notification insert in one transaction, closing the
// check-then-create race between concurrent passes.
func (s *GormStore) CreateDraftIfAbsent(ctx context.Context, order *models.PurchaseOrder, notify *models.Notification) (bool, error) {
	if len(order.Items) == 0 {
		return false, errors.New("purchase order must have at least one item")
	}
	productId := order.Items[0].ProductId

	created := false
	err := s.conn().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&models.PurchaseOrderItem{}).
			Joins("JOIN purchase_orders ON purchase_orders.id = purchase_order_items.purchase_order_id").
			Where("purchase_orders.admin_id = ?", order.AdminId).
			Where("purchase_orders.supplier_id = ?", order.SupplierId).
			Where("purchase_orders.status = ?", models.PurchaseOrderStatusDraft).
			Where("purchase_order_items.product_id = ?", productId).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			// A draft for this product already exists; skip quietly.
			return nil
		}

		orderNumber, err := models.NextOrderNumber(tx, s.now())
		if err != nil {
			return err
		}
		order.OrderNumber = orderNumber

		if err := tx.Create(order).Error; err != nil {
			return err
		}

		notify.Link = models.PurchaseOrderDeepLink(order.ID)
		if err := tx.Create(notify).Error; err != nil {
			return err
		}

		created = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

func (s *GormStore) ApprovePurchaseOrder(ctx context.Context, id int, notify *models.Notification) (*models.PurchaseOrder, error) {
	var order models.PurchaseOrder
	err := s.conn().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Preload("Items").Preload("Supplier").First(&order, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		if err != nil {
			return err
		}

		// Notify only on the actual transition; re-approving an approved
		// order returns it unchanged.
		if order.Status == models.PurchaseOrderStatusApproved {
			return nil
		}

		if err := tx.Model(&order).Update("status", models.PurchaseOrderStatusApproved).Error; err != nil {
			return err
		}
		order.Status = models.PurchaseOrderStatusApproved

		return tx.Create(notify).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}
