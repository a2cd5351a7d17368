package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/thehouseplantstore/shop_backend/config"
	"bitbucket.org/thehouseplantstore/shop_backend/utils"
	"gorm.io/gorm"
)

// Suppliers are the nurseries and wholesalers the store restocks from.
type Supplier struct {
	ID            int       `gorm:"primary_key" json:"id"`
	Name          string    `gorm:"size:255;not null" json:"name" binding:"required"`
	ContactPerson string    `gorm:"size:255;default:null" json:"contact_person"`
	Email         string    `gorm:"size:255;default:null" json:"email"`
	Phone         string    `gorm:"size:50;default:null" json:"phone"`
	Address       string    `gorm:"type:text;default:null" json:"address"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewSupplier struct {
	Name          string `json:"name" binding:"required"`
	ContactPerson string `json:"contact_person"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
}

var ErrInvalidSupplierPhone = errors.New("supplier phone number is not valid")

func (s Supplier) GetId() int {
	return s.ID
}

func (input *NewSupplier) validate() error {
	if input.Phone != "" {
		// The store operates in South Africa.
		if err := utils.ValidatePhoneNumber(input.Phone, "ZA"); err != nil {
			return ErrInvalidSupplierPhone
		}
	}
	return nil
}

func CreateSupplier(ctx context.Context, input *NewSupplier) (*Supplier, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	supplier := Supplier{
		Name:          input.Name,
		ContactPerson: input.ContactPerson,
		Email:         input.Email,
		Phone:         input.Phone,
		Address:       input.Address,
	}

	db := config.GetDB()
	err := db.WithContext(ctx).Create(&supplier).Error
	if err != nil {
		return nil, err
	}
	return &supplier, nil
}

func GetSupplier(ctx context.Context, id int) (*Supplier, error) {
	db := config.GetDB()
	var supplier Supplier
	err := db.WithContext(ctx).First(&supplier, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrorRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &supplier, nil
}

func GetSuppliersAll(ctx context.Context, name *string) ([]*Supplier, error) {
	db := config.GetDB()
	var results []*Supplier

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
