package models

import (
	"bitbucket.org/thehouseplantstore/shop_backend/config"
)

// MigrateDatabase runs gorm auto-migration for every entity. Call once at
// startup after the DB connection is established.
func MigrateDatabase() error {
	db := config.GetDB()
	return db.AutoMigrate(
		&User{},
		&Supplier{},
		&Product{},
		&ExpenseCategory{},
		&Expense{},
		&BankTransaction{},
		&PurchaseOrder{},
		&PurchaseOrderItem{},
		&PurchaseOrderSequence{},
		&Notification{},
	)
}
