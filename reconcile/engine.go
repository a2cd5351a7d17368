// Package reconcile links bank transactions to the business expenses they
// paid for, either on explicit operator instruction or by an automatic
// amount/date-proximity scan.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/thehouseplantstore/shop_backend/config"
	"bitbucket.org/thehouseplantstore/shop_backend/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Matching rules: amounts are considered equal within 0.01 currency units
// (rand cents rounding), dates within seven days.
var amountTolerance = decimal.NewFromFloat(0.01)

const dateWindow = 7 * 24 * time.Hour

var (
	ErrTransactionNotFound   = errors.New("bank transaction not found")
	ErrExpenseNotFound       = errors.New("expense not found")
	ErrMissingAccountNumber  = errors.New("account number is required")
	ErrMissingTransactionIds = errors.New("transaction id and expense id are required")
)

// AmountMismatchError carries both amounts so the caller can display the
// discrepancy.
type AmountMismatchError struct {
	TransactionAmount decimal.Decimal
	ExpenseAmount     decimal.Decimal
}

func (e *AmountMismatchError) Error() string {
	return fmt.Sprintf("transaction amount %s does not match expense amount %s",
		e.TransactionAmount.StringFixed(2), e.ExpenseAmount.StringFixed(2))
}

// Store is the persistence surface the engine needs. Implementations must
// return transactions most-recent-first from ListUnreconciledTransactions and
// expenses most-recent-first from ListMatchableExpenses; the first-match-wins
// tie-break depends on that ordering.
type Store interface {
	GetBankTransaction(ctx context.Context, id int) (*models.BankTransaction, error)
	GetExpense(ctx context.Context, id int) (*models.Expense, error)
	ListUnreconciledTransactions(ctx context.Context, accountNumber string, startDate, endDate *time.Time) ([]models.BankTransaction, error)
	ListMatchableExpenses(ctx context.Context) ([]models.Expense, error)
	LinkTransactionToExpense(ctx context.Context, transactionId int, expenseId int, at time.Time) error
}

// MatchResult is one committed link from an automatic pass.
type MatchResult struct {
	TransactionId int             `json:"transactionId"`
	ExpenseId     int             `json:"expenseId"`
	Amount        decimal.Decimal `json:"amount"`
	Date          time.Time       `json:"date"`
}

type Engine struct {
	store  Store
	logger *logrus.Logger
	now    func() time.Time
}

func NewEngine(store Store, logger *logrus.Logger) *Engine {
	return &Engine{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// ManualMatch links one transaction to one expense on operator instruction.
// The amounts must agree within the tolerance; re-matching an already
// reconciled transaction is allowed and replaces the prior link.
func (e *Engine) ManualMatch(ctx context.Context, transactionId int, expenseId int) (*models.BankTransaction, error) {
	if transactionId <= 0 || expenseId <= 0 {
		return nil, ErrMissingTransactionIds
	}

	transaction, err := e.store.GetBankTransaction(ctx, transactionId)
	if err != nil {
		return nil, err
	}
	expense, err := e.store.GetExpense(ctx, expenseId)
	if err != nil {
		return nil, err
	}

	diff := transaction.Amount.Sub(expense.Amount).Abs()
	if diff.GreaterThan(amountTolerance) {
		return nil, &AmountMismatchError{
			TransactionAmount: transaction.Amount,
			ExpenseAmount:     expense.Amount,
		}
	}

	if err := e.store.LinkTransactionToExpense(ctx, transactionId, expenseId, e.now()); err != nil {
		return nil, err
	}

	// Reload so the caller gets the transaction joined with its expense and
	// category.
	return e.store.GetBankTransaction(ctx, transactionId)
}

// AutoReconcile scans the account's unreconciled transactions and links each
// to the first approved, unlinked expense matching on amount and date
// proximity. A matched expense leaves the candidate pool for the rest of the
// pass, so one expense can satisfy at most one transaction. A per-item
// persistence failure is logged and skipped; earlier links stay committed.
func (e *Engine) AutoReconcile(ctx context.Context, accountNumber string, startDate, endDate *time.Time) (int, []MatchResult, error) {
	if accountNumber == "" {
		return 0, nil, ErrMissingAccountNumber
	}

	transactions, err := e.store.ListUnreconciledTransactions(ctx, accountNumber, startDate, endDate)
	if err != nil {
		return 0, nil, err
	}
	expenses, err := e.store.ListMatchableExpenses(ctx)
	if err != nil {
		return 0, nil, err
	}

	results := make([]MatchResult, 0)
	used := make(map[int]bool, len(expenses))

	for _, transaction := range transactions {
		for _, expense := range expenses {
			if used[expense.ID] {
				continue
			}
			if !matches(transaction, expense) {
				continue
			}

			if err := e.store.LinkTransactionToExpense(ctx, transaction.ID, expense.ID, e.now()); err != nil {
				config.LogError(e.logger, "reconcile", "AutoReconcile", "LinkTransactionToExpense",
					map[string]int{"transaction_id": transaction.ID, "expense_id": expense.ID}, err)
				break
			}

			used[expense.ID] = true
			results = append(results, MatchResult{
				TransactionId: transaction.ID,
				ExpenseId:     expense.ID,
				Amount:        transaction.Amount,
				Date:          transaction.TransactionDate,
			})
			break
		}
	}

	return len(results), results, nil
}

func matches(transaction models.BankTransaction, expense models.Expense) bool {
	amountDiff := transaction.Amount.Sub(expense.Amount).Abs()
	if !amountDiff.LessThan(amountTolerance) {
		return false
	}

	dateDiff := transaction.TransactionDate.Sub(expense.ExpenseDate)
	if dateDiff < 0 {
		dateDiff = -dateDiff
	}
	return dateDiff < dateWindow
}
