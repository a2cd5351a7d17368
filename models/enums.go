package models

type BankTransactionType string

const (
	BankTransactionTypeCredit BankTransactionType = "Credit"
	BankTransactionTypeDebit  BankTransactionType = "Debit"
)

type ExpenseStatus string

const (
	ExpenseStatusDraft           ExpenseStatus = "Draft"
	ExpenseStatusPendingApproval ExpenseStatus = "PendingApproval"
	ExpenseStatusApproved        ExpenseStatus = "Approved"
	ExpenseStatusRejected        ExpenseStatus = "Rejected"
	ExpenseStatusPaid            ExpenseStatus = "Paid"
)

type PurchaseOrderStatus string

const (
	PurchaseOrderStatusDraft    PurchaseOrderStatus = "Draft"
	PurchaseOrderStatusApproved PurchaseOrderStatus = "Approved"
)

type NotificationType string

const (
	NotificationTypePoDraft    NotificationType = "po-draft"
	NotificationTypePoApproved NotificationType = "po-approved"
)

type UserRole string

const (
	UserRoleSuperAdmin       UserRole = "SUPER_ADMIN"
	UserRoleAdmin            UserRole = "ADMIN"
	UserRoleInventoryManager UserRole = "INVENTORY_MANAGER"
	UserRoleFinancialManager UserRole = "FINANCIAL_MANAGER"
	UserRoleAccountant       UserRole = "ACCOUNTANT"
)

// ReconciliationRoles may run manual/auto reconciliation.
var ReconciliationRoles = []UserRole{
	UserRoleFinancialManager,
	UserRoleAccountant,
	UserRoleSuperAdmin,
}

// PurchasingRoles may draft and approve purchase orders.
var PurchasingRoles = []UserRole{
	UserRoleSuperAdmin,
	UserRoleAdmin,
	UserRoleInventoryManager,
}

func (e UserRole) IsValid() bool {
	switch e {
	case UserRoleSuperAdmin, UserRoleAdmin, UserRoleInventoryManager,
		UserRoleFinancialManager, UserRoleAccountant:
		return true
	}
	return false
}

func (e UserRole) OneOf(roles []UserRole) bool {
	for _, r := range roles {
		if e == r {
			return true
		}
	}
	return false
}
