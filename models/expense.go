package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ExpenseCategory struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name" binding:"required"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Expense records are created and approved by the back-office expense
// workflow; the matching engine only reads Approved, unlinked expenses and
// never mutates them directly (the reconciliation link lives on the bank
// transaction side).
type Expense struct {
	ID          int              `gorm:"primary_key" json:"id"`
	Description string           `gorm:"size:255;not null" json:"description" binding:"required"`
	Amount      decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"amount"`
	ExpenseDate time.Time        `gorm:"not null;index" json:"expense_date" binding:"required"`
	CategoryId  *int             `gorm:"index;default:null" json:"category_id"`
	Category    *ExpenseCategory `json:"category,omitempty"`
	VendorName  string           `gorm:"size:255;default:null" json:"vendor_name"`
	Status      ExpenseStatus    `gorm:"type:enum('Draft','PendingApproval','Approved','Rejected','Paid');not null;default:'Draft'" json:"status"`
	CreatedAt   time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

func (e Expense) GetId() int {
	return e.ID
}
