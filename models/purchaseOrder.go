package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/thehouseplantstore/shop_backend/config"
	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PurchaseOrder struct {
	ID          int                 `gorm:"primary_key" json:"id"`
	OrderNumber string              `gorm:"size:50;uniqueIndex;not null" json:"order_number"`
	Status      PurchaseOrderStatus `gorm:"type:enum('Draft','Approved');not null;default:'Draft'" json:"status"`
	AdminId     int                 `gorm:"index;not null" json:"admin_id" binding:"required"`
	SupplierId  int                 `gorm:"index;not null" json:"supplier_id" binding:"required"`
	Supplier    *Supplier           `json:"supplier,omitempty"`
	Items       []PurchaseOrderItem `json:"items"`
	Total       decimal.Decimal     `gorm:"type:decimal(20,4);default:0" json:"total"`
	CreatedAt   time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

type PurchaseOrderItem struct {
	ID              int             `gorm:"primary_key" json:"id"`
	PurchaseOrderId int             `gorm:"index;not null" json:"purchase_order_id"`
	ProductId       int             `gorm:"index;not null" json:"product_id" binding:"required"`
	Name            string          `gorm:"size:255;not null" json:"name" binding:"required"`
	Quantity        int             `gorm:"not null" json:"quantity" binding:"required"`
	Price           decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"price"`
}

// PurchaseOrderSequence backs the daily PO number counter. Numbers start at
// 1000 each day so the wire format stays PO-YYYYMMDD-NNNN.
type PurchaseOrderSequence struct {
	Day     string `gorm:"primaryKey;size:8" json:"day"`
	NextSeq int    `gorm:"not null" json:"next_seq"`
}

const firstDailySequence = 1000

func (po PurchaseOrder) GetId() int {
	return po.ID
}

// ItemsTotal recomputes the order total from its items. The stored Total is
// set once at creation; this exists for integrity checks and tests.
func (po PurchaseOrder) ItemsTotal() decimal.Decimal {
	var total decimal.Decimal
	for _, item := range po.Items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

func FormatOrderNumber(day time.Time, seq int) string {
	return fmt.Sprintf("PO-%s-%04d", day.Format("20060102"), seq)
}

func isDuplicateKeyError(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return false
}

// NextOrderNumber allocates the next PO number for the given day under row
// lock. Must be called inside the same transaction that creates the order so
// an aborted creation does not burn a number.
func NextOrderNumber(tx *gorm.DB, now time.Time) (string, error) {
	day := now.Format("20060102")

	var seq PurchaseOrderSequence
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("day = ?", day).
		First(&seq).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		seq = PurchaseOrderSequence{Day: day, NextSeq: firstDailySequence}
		if cerr := tx.Create(&seq).Error; cerr != nil {
			if !isDuplicateKeyError(cerr) {
				return "", cerr
			}
			// Lost the race to create today's row; lock the winner's row.
			if rerr := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("day = ?", day).
				First(&seq).Error; rerr != nil {
				return "", rerr
			}
		}
	} else if err != nil {
		return "", err
	}

	n := seq.NextSeq
	if err := tx.Model(&PurchaseOrderSequence{}).
		Where("day = ?", day).
		Update("next_seq", n+1).Error; err != nil {
		return "", err
	}

	return FormatOrderNumber(now, n), nil
}

func GetPurchaseOrdersAll(ctx context.Context, status *PurchaseOrderStatus, adminId *int) ([]*PurchaseOrder, error) {
	db := config.GetDB()
	var results []*PurchaseOrder

	dbCtx := db.WithContext(ctx).Preload("Items").Preload("Supplier")
	if status != nil && *status != "" {
		dbCtx = dbCtx.Where("status = ?", *status)
	}
	if adminId != nil && *adminId > 0 {
		dbCtx = dbCtx.Where("admin_id = ?", *adminId)
	}

	err := dbCtx.Order("created_at DESC").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
