package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/thehouseplantstore/shop_backend/config"
	"bitbucket.org/thehouseplantstore/shop_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID                int             `gorm:"primary_key" json:"id"`
	Name              string          `gorm:"size:255;not null" json:"name" binding:"required"`
	Sku               string          `gorm:"size:100;uniqueIndex;default:null" json:"sku"`
	Description       string          `gorm:"type:text;default:null" json:"description"`
	Price             decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"price"`
	StockQuantity     int             `gorm:"not null;default:0" json:"stock_quantity"`
	LowStockThreshold int             `gorm:"not null;default:0" json:"low_stock_threshold"`
	SupplierId        *int            `gorm:"index;default:null" json:"supplier_id"`
	Supplier          *Supplier       `json:"supplier,omitempty"`
	CreatedAt         time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p Product) GetId() int {
	return p.ID
}

// AtOrBelowThreshold reports whether the product has fallen to its reorder
// point. Products without a supplier still qualify here; the drafter skips
// them separately because no order can be addressed.
func (p Product) AtOrBelowThreshold() bool {
	return p.StockQuantity <= p.LowStockThreshold
}

func GetProduct(ctx context.Context, id int) (*Product, error) {
	db := config.GetDB()
	var product Product
	err := db.WithContext(ctx).Preload("Supplier").First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrorRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func GetProductsAll(ctx context.Context, name *string) ([]*Product, error) {
	db := config.GetDB()
	var results []*Product

	dbCtx := db.WithContext(ctx)
	if name != nil && len(*name) > 0 {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+*name+"%")
	}
	err := dbCtx.Order("name").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// GetLowStockProducts returns products at or below their reorder threshold,
// including those without a supplier so the admin screen can surface them.
func GetLowStockProducts(ctx context.Context) ([]*Product, error) {
	db := config.GetDB()
	var results []*Product
	err := db.WithContext(ctx).
		Preload("Supplier").
		Where("stock_quantity <= low_stock_threshold").
		Order("stock_quantity").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
