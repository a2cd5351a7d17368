package models

import (
	"context"
	"time"

	"bitbucket.org/thehouseplantstore/shop_backend/config"
	"github.com/shopspring/decimal"
)

// BankTransaction rows are created by the bank-feed import; the matching
// engine only ever flips the reconciliation fields. Rows are never deleted.
type BankTransaction struct {
	ID              int                 `gorm:"primary_key" json:"id"`
	AccountNumber   string              `gorm:"size:50;index;not null" json:"account_number" binding:"required"`
	TransactionDate time.Time           `gorm:"not null;index" json:"transaction_date" binding:"required"`
	Description     string              `gorm:"type:text;default:null" json:"description"`
	Amount          decimal.Decimal     `gorm:"type:decimal(20,4);default:0" json:"amount"`
	TransactionType BankTransactionType `gorm:"type:enum('Credit','Debit');not null" json:"transaction_type"`
	BankReference   string              `gorm:"size:255;uniqueIndex;not null" json:"bank_reference" binding:"required"`
	Category        string              `gorm:"size:100;default:null" json:"category"`
	RunningBalance  decimal.Decimal     `gorm:"type:decimal(20,4);default:0" json:"running_balance"`
	Reconciled      bool                `gorm:"not null;default:false;index" json:"reconciled"`
	ReconciledAt    *time.Time          `gorm:"default:null" json:"reconciled_at"`
	ExpenseId       *int                `gorm:"index;default:null" json:"expense_id"`
	Expense         *Expense            `json:"expense,omitempty"`
	CreatedAt       time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

func (bt BankTransaction) GetId() int {
	return bt.ID
}

func GetBankTransactionsAll(ctx context.Context, accountNumber *string, reconciled *bool) ([]*BankTransaction, error) {
	db := config.GetDB()
	var results []*BankTransaction

	dbCtx := db.WithContext(ctx).Preload("Expense")
	if accountNumber != nil && *accountNumber != "" {
		dbCtx = dbCtx.Where("account_number = ?", *accountNumber)
	}
	if reconciled != nil {
		dbCtx = dbCtx.Where("reconciled = ?", *reconciled)
	}

	err := dbCtx.Order("transaction_date DESC").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
