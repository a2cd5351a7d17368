package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"bitbucket.org/thehouseplantstore/shop_backend/config"
	"bitbucket.org/thehouseplantstore/shop_backend/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	transactions map[int]*models.BankTransaction
	expenses     map[int]*models.Expense

	// listing order is fixed by the test, most-recent-first by convention
	transactionOrder []int
	expenseOrder     []int

	linkErr   map[int]error // per-transaction failures
	linkCalls []link

	gotStart *time.Time
	gotEnd   *time.Time
}

type link struct {
	transactionId int
	expenseId     int
	at            time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		transactions: make(map[int]*models.BankTransaction),
		expenses:     make(map[int]*models.Expense),
		linkErr:      make(map[int]error),
	}
}

func (f *fakeStore) addTransaction(t models.BankTransaction) {
	f.transactions[t.ID] = &t
	f.transactionOrder = append(f.transactionOrder, t.ID)
}

func (f *fakeStore) addExpense(e models.Expense) {
	f.expenses[e.ID] = &e
	f.expenseOrder = append(f.expenseOrder, e.ID)
}

func (f *fakeStore) GetBankTransaction(_ context.Context, id int) (*models.BankTransaction, error) {
	t, ok := f.transactions[id]
	if !ok {
		return nil, ErrTransactionNotFound
	}
	copied := *t
	return &copied, nil
}

func (f *fakeStore) GetExpense(_ context.Context, id int) (*models.Expense, error) {
	e, ok := f.expenses[id]
	if !ok {
		return nil, ErrExpenseNotFound
	}
	copied := *e
	return &copied, nil
}

func (f *fakeStore) ListUnreconciledTransactions(_ context.Context, accountNumber string, startDate, endDate *time.Time) ([]models.BankTransaction, error) {
	f.gotStart = startDate
	f.gotEnd = endDate

	var out []models.BankTransaction
	for _, id := range f.transactionOrder {
		t := f.transactions[id]
		if t.AccountNumber != accountNumber || t.Reconciled {
			continue
		}
		if startDate != nil && t.TransactionDate.Before(*startDate) {
			continue
		}
		if endDate != nil && t.TransactionDate.After(*endDate) {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

func (f *fakeStore) ListMatchableExpenses(_ context.Context) ([]models.Expense, error) {
	var out []models.Expense
	for _, id := range f.expenseOrder {
		e := f.expenses[id]
		if e.Status != models.ExpenseStatusApproved {
			continue
		}
		linked := false
		for _, t := range f.transactions {
			if t.ExpenseId != nil && *t.ExpenseId == e.ID {
				linked = true
				break
			}
		}
		if !linked {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeStore) LinkTransactionToExpense(_ context.Context, transactionId int, expenseId int, at time.Time) error {
	if err := f.linkErr[transactionId]; err != nil {
		return err
	}
	t, ok := f.transactions[transactionId]
	if !ok {
		return ErrTransactionNotFound
	}
	t.Reconciled = true
	t.ReconciledAt = &at
	t.ExpenseId = &expenseId
	f.linkCalls = append(f.linkCalls, link{transactionId: transactionId, expenseId: expenseId, at: at})
	return nil
}

func amount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

var baseDate = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func testEngine(store Store) *Engine {
	e := NewEngine(store, config.GetLogger())
	e.now = func() time.Time { return baseDate.AddDate(0, 1, 0) }
	return e
}

func TestManualMatch(t *testing.T) {
	tests := []struct {
		name              string
		transactionAmount string
		expenseAmount     string
		wantMismatch      bool
	}{
		{name: "exact amounts", transactionAmount: "150.00", expenseAmount: "150.00"},
		{name: "within tolerance", transactionAmount: "150.00", expenseAmount: "150.005"},
		{name: "at tolerance boundary", transactionAmount: "150.00", expenseAmount: "150.01"},
		{name: "outside tolerance", transactionAmount: "150.00", expenseAmount: "150.02", wantMismatch: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			store.addTransaction(models.BankTransaction{
				ID:              1,
				AccountNumber:   "62012345678",
				TransactionDate: baseDate,
				Amount:          amount(tt.transactionAmount),
			})
			store.addExpense(models.Expense{
				ID:          7,
				Amount:      amount(tt.expenseAmount),
				ExpenseDate: baseDate,
				Status:      models.ExpenseStatusApproved,
			})

			engine := testEngine(store)
			got, err := engine.ManualMatch(context.Background(), 1, 7)

			if tt.wantMismatch {
				var mismatch *AmountMismatchError
				require.ErrorAs(t, err, &mismatch)
				assert.True(t, mismatch.TransactionAmount.Equal(amount(tt.transactionAmount)))
				assert.True(t, mismatch.ExpenseAmount.Equal(amount(tt.expenseAmount)))
				assert.Empty(t, store.linkCalls, "no write may happen on mismatch")
				return
			}

			require.NoError(t, err)
			assert.True(t, got.Reconciled)
			require.NotNil(t, got.ExpenseId)
			assert.Equal(t, 7, *got.ExpenseId)
			require.NotNil(t, got.ReconciledAt)
		})
	}
}

func TestManualMatchNotFound(t *testing.T) {
	store := newFakeStore()
	store.addTransaction(models.BankTransaction{ID: 1, AccountNumber: "62012345678", Amount: amount("10")})

	engine := testEngine(store)

	_, err := engine.ManualMatch(context.Background(), 99, 1)
	assert.ErrorIs(t, err, ErrTransactionNotFound)

	_, err = engine.ManualMatch(context.Background(), 1, 99)
	assert.ErrorIs(t, err, ErrExpenseNotFound)

	_, err = engine.ManualMatch(context.Background(), 0, 1)
	assert.ErrorIs(t, err, ErrMissingTransactionIds)
}

func TestManualMatchReplacesExistingLink(t *testing.T) {
	// Re-matching an already reconciled transaction is allowed and replaces
	// the prior link.
	store := newFakeStore()
	previous := 3
	store.addTransaction(models.BankTransaction{
		ID:            1,
		AccountNumber: "62012345678",
		Amount:        amount("80.00"),
		Reconciled:    true,
		ExpenseId:     &previous,
	})
	store.addExpense(models.Expense{ID: 3, Amount: amount("80.00"), Status: models.ExpenseStatusApproved})
	store.addExpense(models.Expense{ID: 4, Amount: amount("80.00"), Status: models.ExpenseStatusApproved})

	engine := testEngine(store)
	got, err := engine.ManualMatch(context.Background(), 1, 4)

	require.NoError(t, err)
	assert.Equal(t, 4, *got.ExpenseId)
}

func TestAutoReconcileDateWindow(t *testing.T) {
	tests := []struct {
		name        string
		expenseDate time.Time
		wantMatch   bool
	}{
		{name: "six days apart matches", expenseDate: baseDate.AddDate(0, 0, -6), wantMatch: true},
		{name: "eight days apart does not match", expenseDate: baseDate.AddDate(0, 0, -8), wantMatch: false},
		{name: "exactly seven days does not match", expenseDate: baseDate.AddDate(0, 0, -7), wantMatch: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			store.addTransaction(models.BankTransaction{
				ID:              1,
				AccountNumber:   "62012345678",
				TransactionDate: baseDate,
				Amount:          amount("499.99"),
			})
			store.addExpense(models.Expense{
				ID:          2,
				Amount:      amount("499.99"),
				ExpenseDate: tt.expenseDate,
				Status:      models.ExpenseStatusApproved,
			})

			engine := testEngine(store)
			count, results, err := engine.AutoReconcile(context.Background(), "62012345678", nil, nil)

			require.NoError(t, err)
			if tt.wantMatch {
				assert.Equal(t, 1, count)
				require.Len(t, results, 1)
				assert.Equal(t, 1, results[0].TransactionId)
				assert.Equal(t, 2, results[0].ExpenseId)
				assert.True(t, results[0].Amount.Equal(amount("499.99")))
				assert.Equal(t, baseDate, results[0].Date)
			} else {
				assert.Equal(t, 0, count)
				assert.Empty(t, results)
			}
		})
	}
}

func TestAutoReconcileRestrictsToDateWindow(t *testing.T) {
	// The optional startDate/endDate restrict which transactions are
	// considered at all, independent of the per-pair proximity rule.
	store := newFakeStore()
	store.addTransaction(models.BankTransaction{
		ID:              1,
		AccountNumber:   "62012345678",
		TransactionDate: baseDate,
		Amount:          amount("10.00"),
	})
	store.addTransaction(models.BankTransaction{
		ID:              2,
		AccountNumber:   "62012345678",
		TransactionDate: baseDate.AddDate(0, 0, -10),
		Amount:          amount("20.00"),
	})
	store.addExpense(models.Expense{ID: 5, Amount: amount("10.00"), ExpenseDate: baseDate, Status: models.ExpenseStatusApproved})
	store.addExpense(models.Expense{ID: 6, Amount: amount("20.00"), ExpenseDate: baseDate.AddDate(0, 0, -10), Status: models.ExpenseStatusApproved})

	start := baseDate.AddDate(0, 0, -5)
	engine := testEngine(store)
	count, results, err := engine.AutoReconcile(context.Background(), "62012345678", &start, nil)

	require.NoError(t, err)
	require.NotNil(t, store.gotStart)
	assert.True(t, store.gotStart.Equal(start))
	assert.Nil(t, store.gotEnd)

	assert.Equal(t, 1, count)
	require.Len(t, results, 1)
	assert.Equal(t, 1, results[0].TransactionId)
	// The transaction before the window stays untouched even though a
	// matching expense exists.
	assert.False(t, store.transactions[2].Reconciled)
}

func TestAutoReconcileFirstMatchWins(t *testing.T) {
	// Two equally matching expenses; the one listed first (most recent)
	// must win. List order is fixed explicitly to assert determinism.
	store := newFakeStore()
	store.addTransaction(models.BankTransaction{
		ID:              1,
		AccountNumber:   "62012345678",
		TransactionDate: baseDate,
		Amount:          amount("120.00"),
	})
	store.addExpense(models.Expense{
		ID:          10,
		Amount:      amount("120.00"),
		ExpenseDate: baseDate.AddDate(0, 0, -2),
		Status:      models.ExpenseStatusApproved,
	})
	store.addExpense(models.Expense{
		ID:          11,
		Amount:      amount("120.00"),
		ExpenseDate: baseDate.AddDate(0, 0, -5),
		Status:      models.ExpenseStatusApproved,
	})

	engine := testEngine(store)
	count, results, err := engine.AutoReconcile(context.Background(), "62012345678", nil, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, count)
	require.Len(t, results, 1)
	assert.Equal(t, 10, results[0].ExpenseId)
}

func TestAutoReconcileExpenseUsedOnce(t *testing.T) {
	// One expense, two transactions that both match it: only the first
	// transaction gets the link.
	store := newFakeStore()
	store.addTransaction(models.BankTransaction{
		ID:              1,
		AccountNumber:   "62012345678",
		TransactionDate: baseDate,
		Amount:          amount("45.50"),
	})
	store.addTransaction(models.BankTransaction{
		ID:              2,
		AccountNumber:   "62012345678",
		TransactionDate: baseDate.AddDate(0, 0, -1),
		Amount:          amount("45.50"),
	})
	store.addExpense(models.Expense{
		ID:          5,
		Amount:      amount("45.50"),
		ExpenseDate: baseDate,
		Status:      models.ExpenseStatusApproved,
	})

	engine := testEngine(store)
	count, results, err := engine.AutoReconcile(context.Background(), "62012345678", nil, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, count)
	require.Len(t, results, 1)
	assert.Equal(t, 1, results[0].TransactionId)
}

func TestAutoReconcileSkipsFailedLink(t *testing.T) {
	// A per-item persistence failure must not abort the batch.
	store := newFakeStore()
	store.addTransaction(models.BankTransaction{
		ID:              1,
		AccountNumber:   "62012345678",
		TransactionDate: baseDate,
		Amount:          amount("10.00"),
	})
	store.addTransaction(models.BankTransaction{
		ID:              2,
		AccountNumber:   "62012345678",
		TransactionDate: baseDate.AddDate(0, 0, -1),
		Amount:          amount("20.00"),
	})
	store.addExpense(models.Expense{ID: 5, Amount: amount("10.00"), ExpenseDate: baseDate, Status: models.ExpenseStatusApproved})
	store.addExpense(models.Expense{ID: 6, Amount: amount("20.00"), ExpenseDate: baseDate, Status: models.ExpenseStatusApproved})
	store.linkErr[1] = errors.New("deadlock")

	engine := testEngine(store)
	count, results, err := engine.AutoReconcile(context.Background(), "62012345678", nil, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, count)
	require.Len(t, results, 1)
	assert.Equal(t, 2, results[0].TransactionId)
}

func TestAutoReconcileRequiresAccountNumber(t *testing.T) {
	engine := testEngine(newFakeStore())
	_, _, err := engine.AutoReconcile(context.Background(), "", nil, nil)
	assert.ErrorIs(t, err, ErrMissingAccountNumber)
}

func TestAutoReconcileIgnoresUnapprovedExpenses(t *testing.T) {
	store := newFakeStore()
	store.addTransaction(models.BankTransaction{
		ID:              1,
		AccountNumber:   "62012345678",
		TransactionDate: baseDate,
		Amount:          amount("33.00"),
	})
	store.addExpense(models.Expense{
		ID:          2,
		Amount:      amount("33.00"),
		ExpenseDate: baseDate,
		Status:      models.ExpenseStatusPendingApproval,
	})

	engine := testEngine(store)
	count, _, err := engine.AutoReconcile(context.Background(), "62012345678", nil, nil)

	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
