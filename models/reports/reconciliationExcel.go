// Package reports builds downloadable spreadsheets for the admin screens.
package reports

import (
	"context"
	"fmt"

	"bitbucket.org/thehouseplantstore/shop_backend/config"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

type reconciledRow struct {
	TransactionId   int             `gorm:"column:transaction_id"`
	TransactionDate string          `gorm:"column:transaction_date"`
	AccountNumber   string          `gorm:"column:account_number"`
	Amount          decimal.Decimal `gorm:"column:amount"`
	ExpenseId       int             `gorm:"column:expense_id"`
	ExpenseDesc     string          `gorm:"column:expense_desc"`
	ExpenseAmount   decimal.Decimal `gorm:"column:expense_amount"`
	VendorName      string          `gorm:"column:vendor_name"`
	ReconciledAt    string          `gorm:"column:reconciled_at"`
}

func getReconciledRows(ctx context.Context, accountNumber *string) ([]*reconciledRow, error) {

	sql := `
SELECT
    bt.id AS transaction_id,
    bt.transaction_date,
    bt.account_number,
    bt.amount,
    e.id AS expense_id,
    e.description AS expense_desc,
    e.amount AS expense_amount,
    e.vendor_name,
    bt.reconciled_at
FROM
    bank_transactions bt
    JOIN expenses e ON e.id = bt.expense_id
WHERE
    bt.reconciled = true
`
	db := config.GetDB()
	dbCtx := db.WithContext(ctx)

	var records []*reconciledRow
	if accountNumber != nil && *accountNumber != "" {
		sql += " AND bt.account_number = ? ORDER BY bt.reconciled_at DESC"
		if err := dbCtx.Raw(sql, *accountNumber).Scan(&records).Error; err != nil {
			return nil, err
		}
		return records, nil
	}

	sql += " ORDER BY bt.reconciled_at DESC"
	if err := dbCtx.Raw(sql).Scan(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// BuildReconciliationExcel renders the reconciled-links report. The caller
// owns closing the returned file.
func BuildReconciliationExcel(ctx context.Context, accountNumber *string) (*excelize.File, error) {
	data, err := getReconciledRows(ctx, accountNumber)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	if _, err := f.NewSheet("Sheet1"); err != nil {
		return nil, err
	}

	// Add headers
	f.SetCellValue("Sheet1", "A1", "TransactionId")
	f.SetCellValue("Sheet1", "B1", "TransactionDate")
	f.SetCellValue("Sheet1", "C1", "AccountNumber")
	f.SetCellValue("Sheet1", "D1", "Amount")
	f.SetCellValue("Sheet1", "E1", "ExpenseId")
	f.SetCellValue("Sheet1", "F1", "ExpenseDescription")
	f.SetCellValue("Sheet1", "G1", "ExpenseAmount")
	f.SetCellValue("Sheet1", "H1", "Vendor")
	f.SetCellValue("Sheet1", "I1", "ReconciledAt")

	// Add data
	for i, d := range data {
		f.SetCellValue("Sheet1", "A"+fmt.Sprint(i+2), d.TransactionId)
		f.SetCellValue("Sheet1", "B"+fmt.Sprint(i+2), d.TransactionDate)
		f.SetCellValue("Sheet1", "C"+fmt.Sprint(i+2), d.AccountNumber)
		f.SetCellValue("Sheet1", "D"+fmt.Sprint(i+2), d.Amount.StringFixed(2))
		f.SetCellValue("Sheet1", "E"+fmt.Sprint(i+2), d.ExpenseId)
		f.SetCellValue("Sheet1", "F"+fmt.Sprint(i+2), d.ExpenseDesc)
		f.SetCellValue("Sheet1", "G"+fmt.Sprint(i+2), d.ExpenseAmount.StringFixed(2))
		f.SetCellValue("Sheet1", "H"+fmt.Sprint(i+2), d.VendorName)
		f.SetCellValue("Sheet1", "I"+fmt.Sprint(i+2), d.ReconciledAt)
	}

	return f, nil
}
