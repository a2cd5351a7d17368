package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bitbucket.org/thehouseplantstore/shop_backend/config"
	"bitbucket.org/thehouseplantstore/shop_backend/middlewares"
	"bitbucket.org/thehouseplantstore/shop_backend/models"
	"bitbucket.org/thehouseplantstore/shop_backend/purchasing"
	"bitbucket.org/thehouseplantstore/shop_backend/reconcile"
	"bitbucket.org/thehouseplantstore/shop_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReconciler struct {
	manualTx   *models.BankTransaction
	manualErr  error
	count      int
	results    []reconcile.MatchResult
	autoErr    error
	gotAccount string
}

func (f *fakeReconciler) ManualMatch(_ context.Context, transactionId int, expenseId int) (*models.BankTransaction, error) {
	if transactionId <= 0 || expenseId <= 0 {
		return nil, reconcile.ErrMissingTransactionIds
	}
	return f.manualTx, f.manualErr
}

func (f *fakeReconciler) AutoReconcile(_ context.Context, accountNumber string, _, _ *time.Time) (int, []reconcile.MatchResult, error) {
	if accountNumber == "" {
		return 0, nil, reconcile.ErrMissingAccountNumber
	}
	f.gotAccount = accountNumber
	return f.count, f.results, f.autoErr
}

type fakeDrafter struct {
	report     *purchasing.DraftReport
	draftErr   error
	approved   *models.PurchaseOrder
	approveErr error
}

func (f *fakeDrafter) AutoDraft(_ context.Context, adminId int) (*purchasing.DraftReport, error) {
	if adminId <= 0 {
		return nil, purchasing.ErrMissingAdminId
	}
	return f.report, f.draftErr
}

func (f *fakeDrafter) Approve(_ context.Context, _ int, _ int) (*models.PurchaseOrder, error) {
	return f.approved, f.approveErr
}

func newRouter(rec Reconciler, dr Drafter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(rec, dr, config.GetLogger())

	r := gin.New()
	r.POST("/api/reconcile", h.Reconcile)
	r.POST("/api/purchase-orders/auto-draft", h.AutoDraftPurchaseOrders)
	r.PATCH("/api/purchase-orders", h.ApprovePurchaseOrder)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestReconcileManualSuccess(t *testing.T) {
	rec := &fakeReconciler{
		manualTx: &models.BankTransaction{
			ID:         12,
			Reconciled: true,
			Amount:     decimal.RequireFromString("150.00"),
		},
	}
	r := newRouter(rec, &fakeDrafter{})

	w := doJSON(t, r, http.MethodPost, "/api/reconcile",
		gin.H{"action": "manual", "transactionId": 12, "expenseId": 3})

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Transaction reconciled", body["message"])
	transaction := body["transaction"].(map[string]any)
	assert.Equal(t, float64(12), transaction["id"])
	assert.Equal(t, true, transaction["reconciled"])
}

func TestReconcileManualAmountMismatch(t *testing.T) {
	rec := &fakeReconciler{
		manualErr: &reconcile.AmountMismatchError{
			TransactionAmount: decimal.RequireFromString("150.00"),
			ExpenseAmount:     decimal.RequireFromString("150.02"),
		},
	}
	r := newRouter(rec, &fakeDrafter{})

	w := doJSON(t, r, http.MethodPost, "/api/reconcile",
		gin.H{"action": "manual", "transactionId": 12, "expenseId": 3})

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Amounts do not match", body["error"])
	// decimals marshal as quoted strings
	assert.Equal(t, "150", body["transactionAmount"])
	assert.Equal(t, "150.02", body["expenseAmount"])
}

func TestReconcileManualNotFound(t *testing.T) {
	rec := &fakeReconciler{manualErr: reconcile.ErrTransactionNotFound}
	r := newRouter(rec, &fakeDrafter{})

	w := doJSON(t, r, http.MethodPost, "/api/reconcile",
		gin.H{"action": "manual", "transactionId": 99, "expenseId": 3})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReconcileMissingIds(t *testing.T) {
	r := newRouter(&fakeReconciler{}, &fakeDrafter{})

	w := doJSON(t, r, http.MethodPost, "/api/reconcile", gin.H{"action": "manual"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReconcileUnknownAction(t *testing.T) {
	r := newRouter(&fakeReconciler{}, &fakeDrafter{})

	w := doJSON(t, r, http.MethodPost, "/api/reconcile", gin.H{"action": "bulk"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReconcileAuto(t *testing.T) {
	rec := &fakeReconciler{
		count: 2,
		results: []reconcile.MatchResult{
			{TransactionId: 1, ExpenseId: 10, Amount: decimal.RequireFromString("150.00"), Date: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)},
			{TransactionId: 2, ExpenseId: 11, Amount: decimal.RequireFromString("75.50"), Date: time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)},
		},
	}
	r := newRouter(rec, &fakeDrafter{})

	w := doJSON(t, r, http.MethodPost, "/api/reconcile",
		gin.H{"action": "auto", "accountNumber": "62001234567", "startDate": "2025-03-01"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "62001234567", rec.gotAccount)
	body := decode(t, w)
	assert.Equal(t, float64(2), body["reconciledCount"])
	results := body["results"].([]any)
	require.Len(t, results, 2)
	first := results[0].(map[string]any)
	assert.Equal(t, float64(1), first["transactionId"])
	assert.Equal(t, float64(10), first["expenseId"])
}

func TestReconcileAutoMissingAccount(t *testing.T) {
	r := newRouter(&fakeReconciler{}, &fakeDrafter{})

	w := doJSON(t, r, http.MethodPost, "/api/reconcile", gin.H{"action": "auto"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReconcileAutoInvalidDate(t *testing.T) {
	r := newRouter(&fakeReconciler{}, &fakeDrafter{})

	w := doJSON(t, r, http.MethodPost, "/api/reconcile",
		gin.H{"action": "auto", "accountNumber": "62001234567", "startDate": "not-a-date"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAutoDraft(t *testing.T) {
	dr := &fakeDrafter{
		report: &purchasing.DraftReport{
			Created: 1,
			PurchaseOrders: []*models.PurchaseOrder{{
				ID:          5,
				OrderNumber: "PO-20250310-1000",
				Status:      models.PurchaseOrderStatusDraft,
				AdminId:     42,
				SupplierId:  7,
				Total:       decimal.RequireFromString("996.00"),
			}},
		},
	}
	r := newRouter(&fakeReconciler{}, dr)

	w := doJSON(t, r, http.MethodPost, "/api/purchase-orders/auto-draft", gin.H{"adminId": 42})

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(1), body["created"])
	orders := body["purchaseOrders"].([]any)
	require.Len(t, orders, 1)
	order := orders[0].(map[string]any)
	assert.Equal(t, "PO-20250310-1000", order["order_number"])
	assert.Equal(t, "Draft", order["status"])
}

func TestAutoDraftMissingAdminId(t *testing.T) {
	r := newRouter(&fakeReconciler{}, &fakeDrafter{})

	w := doJSON(t, r, http.MethodPost, "/api/purchase-orders/auto-draft", gin.H{})

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Missing adminId", body["error"])
}

func TestApprovePurchaseOrder(t *testing.T) {
	dr := &fakeDrafter{
		approved: &models.PurchaseOrder{
			ID:          5,
			OrderNumber: "PO-20250310-1000",
			Status:      models.PurchaseOrderStatusApproved,
		},
	}
	r := newRouter(&fakeReconciler{}, dr)

	w := doJSON(t, r, http.MethodPatch, "/api/purchase-orders", gin.H{"id": 5, "adminId": 42})

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Approved", body["status"])
}

func TestApprovePurchaseOrderNotFound(t *testing.T) {
	dr := &fakeDrafter{approveErr: purchasing.ErrOrderNotFound}
	r := newRouter(&fakeReconciler{}, dr)

	w := doJSON(t, r, http.MethodPatch, "/api/purchase-orders", gin.H{"id": 99, "adminId": 42})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRoleGuard(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHandler(&fakeReconciler{}, &fakeDrafter{report: &purchasing.DraftReport{}}, config.GetLogger())

	r := gin.New()
	r.Use(middlewares.AuthMiddleware())
	r.POST("/api/purchase-orders/auto-draft",
		middlewares.RequireRoles(models.PurchasingRoles...), h.AutoDraftPurchaseOrders)

	payload := []byte(`{"adminId": 42}`)

	// no token
	req := httptest.NewRequest(http.MethodPost, "/api/purchase-orders/auto-draft", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// accountant may reconcile but not draft orders
	token, err := utils.JwtGenerate(9, string(models.UserRoleAccountant))
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodPost, "/api/purchase-orders/auto-draft", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// inventory manager is on the allow-list
	token, err = utils.JwtGenerate(9, string(models.UserRoleInventoryManager))
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodPost, "/api/purchase-orders/auto-draft", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
