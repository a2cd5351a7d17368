// Package purchasing drafts replenishment purchase orders from low-stock
// signals and handles the draft-to-approved transition.
package purchasing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/thehouseplantstore/shop_backend/config"
	"bitbucket.org/thehouseplantstore/shop_backend/models"
	"github.com/bsm/redislock"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var (
	ErrMissingAdminId = errors.New("admin id is required")
	ErrOrderNotFound  = errors.New("purchase order not found")
)

// Store is the persistence surface the drafter needs. CreateDraftIfAbsent
// must run the duplicate check, the order insert and the notification insert
// in one transaction and report created=false when a DRAFT order for the
// same admin and supplier already contains the product.
// ApprovePurchaseOrder persists the notification only when the order
// actually transitions out of Draft.
type Store interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetPurchaseOrder(ctx context.Context, id int) (*models.PurchaseOrder, error)
	CreateDraftIfAbsent(ctx context.Context, order *models.PurchaseOrder, notify *models.Notification) (bool, error)
	ApprovePurchaseOrder(ctx context.Context, id int, notify *models.Notification) (*models.PurchaseOrder, error)
}

// DraftReport is the result of one auto-draft pass.
type DraftReport struct {
	Created        int                     `json:"created"`
	PurchaseOrders []*models.PurchaseOrder `json:"purchaseOrders"`
}

type Drafter struct {
	store  Store
	locker *redislock.Client
	logger *logrus.Logger
}

// NewDrafter builds the drafter. locker may be nil, in which case the global
// lock client is consulted at call time; either way the lock is a best-effort
// guard to serialize concurrent passes per admin and the durable protection
// against duplicate drafts is the store transaction.
func NewDrafter(store Store, locker *redislock.Client, logger *logrus.Logger) *Drafter {
	return &Drafter{
		store:  store,
		locker: locker,
		logger: logger,
	}
}

// ReorderQuantity is enough to bring stock one unit above the threshold,
// never less than one.
func ReorderQuantity(stockQuantity int, lowStockThreshold int) int {
	qty := lowStockThreshold - stockQuantity + 1
	if qty < 1 {
		return 1
	}
	return qty
}

// AutoDraft scans the catalog and creates one single-item DRAFT purchase
// order per qualifying product, skipping products that already sit on a
// DRAFT order for this admin and supplier. Each created draft notifies the
// admin. Products without a supplier are silently skipped.
func (d *Drafter) AutoDraft(ctx context.Context, adminId int) (*DraftReport, error) {
	if adminId <= 0 {
		return nil, ErrMissingAdminId
	}

	// Best-effort: serialize concurrent passes for the same admin. If the
	// lock cannot be obtained, continue anyway; CreateDraftIfAbsent is safe.
	locker := d.locker
	if locker == nil {
		locker = config.GetRedisLock()
	}
	if locker != nil {
		lock, err := locker.Obtain(ctx, fmt.Sprintf("auto-draft:admin:%d", adminId), 30*time.Second, nil)
		if err == nil {
			defer lock.Release(context.Background())
		} else if !errors.Is(err, redislock.ErrNotObtained) {
			config.LogError(d.logger, "purchasing", "AutoDraft", "redislock.Obtain", adminId, err)
		}
	}

	products, err := d.store.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	report := &DraftReport{PurchaseOrders: make([]*models.PurchaseOrder, 0)}

	for _, product := range products {
		if !product.AtOrBelowThreshold() {
			continue
		}
		if product.SupplierId == nil {
			// No supplier assigned: nothing to address the order to.
			continue
		}

		quantity := ReorderQuantity(product.StockQuantity, product.LowStockThreshold)
		total := product.Price.Mul(decimal.NewFromInt(int64(quantity)))

		order := &models.PurchaseOrder{
			Status:     models.PurchaseOrderStatusDraft,
			AdminId:    adminId,
			SupplierId: *product.SupplierId,
			Items: []models.PurchaseOrderItem{{
				ProductId: product.ID,
				Name:      product.Name,
				Quantity:  quantity,
				Price:     product.Price,
			}},
			Total: total,
		}
		notify := &models.Notification{
			UserId:  adminId,
			Type:    models.NotificationTypePoDraft,
			Message: fmt.Sprintf("Draft purchase order created for %s (%d units)", product.Name, quantity),
		}

		created, err := d.store.CreateDraftIfAbsent(ctx, order, notify)
		if err != nil {
			config.LogError(d.logger, "purchasing", "AutoDraft", "CreateDraftIfAbsent",
				map[string]int{"admin_id": adminId, "product_id": product.ID}, err)
			continue
		}
		if !created {
			continue
		}

		report.Created++
		report.PurchaseOrders = append(report.PurchaseOrders, order)
	}

	return report, nil
}

// Approve moves a DRAFT order to APPROVED and notifies the acting admin.
// The transition is one-way; approving an already approved order returns it
// unchanged without emitting another notification.
func (d *Drafter) Approve(ctx context.Context, orderId int, adminId int) (*models.PurchaseOrder, error) {
	if orderId <= 0 || adminId <= 0 {
		return nil, ErrMissingAdminId
	}

	order, err := d.store.GetPurchaseOrder(ctx, orderId)
	if err != nil {
		return nil, err
	}

	notify := &models.Notification{
		UserId:  adminId,
		Type:    models.NotificationTypePoApproved,
		Message: fmt.Sprintf("Purchase order %s approved", order.OrderNumber),
		Link:    models.PurchaseOrderDeepLink(order.ID),
	}

	return d.store.ApprovePurchaseOrder(ctx, orderId, notify)
}
