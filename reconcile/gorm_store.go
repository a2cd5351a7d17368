package reconcile

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
	db *gorm.DB
}

// NewGormStore wraps a connection. Passing nil defers to the global
// connection at call time, which lets routes be wired before the retry loop
// in ConnectDatabaseWithRetry finishes.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) conn() *gorm.DB {
	if s.db != nil {
		return s.db
	}
	return config.GetDB()
}

func (s *GormStore) GetBankTransaction(ctx context.Context, id int) (*models.BankTransaction, error) {
	var transaction models.BankTransaction
	err := s.conn().WithContext(ctx).
		Preload("Expense").Preload("Expense.Category").
		First(&transaction, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &transaction, nil
}

func (s *GormStore) GetExpense(ctx context.Context, id int) (*models.Expense, error) {
	var expense models.Expense
	err := s.conn().WithContext(ctx).Preload("Category").First(&expense, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrExpenseNotFound
	}
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

func (s *GormStore) ListUnreconciledTransactions(ctx context.Context, accountNumber string, startDate, endDate *time.Time) ([]models.BankTransaction, error) {
	var results []models.BankTransaction

	dbCtx := s.conn().WithContext(ctx).
		Where("account_number = ?", accountNumber).
		Where("reconciled = ?", false)
	if startDate != nil {
		dbCtx = dbCtx.Where("transaction_date >= ?", *startDate)
	}
	if endDate != nil {
		dbCtx = dbCtx.Where("transaction_date <= ?", *endDate)
	}

	err := dbCtx.Order("transaction_date DESC").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (s *GormStore) ListMatchableExpenses(ctx context.Context) ([]models.Expense, error) {
	var results []models.Expense
	err := s.conn().WithContext(ctx).
		Where("status = ?", models.ExpenseStatusApproved).
		Where("id NOT IN (SELECT expense_id FROM bank_transactions WHERE expense_id IS NOT NULL)").
		Order("expense_date DESC").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// LinkTransactionToExpense commits one reconciliation link in its own short
// transaction: the three fields must flip together or not at all.
func (s *GormStore) LinkTransactionToExpense(ctx context.Context, transactionId int, expenseId int, at time.Time) error {
	return s.conn().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.BankTransaction{}).
			Where("id = ?", transactionId).
			Updates(map[string]interface{}{
				"reconciled":    true,
				"reconciled_at": at,
				"expense_id":    expenseId,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrTransactionNotFound
		}
		return nil
	})
}
