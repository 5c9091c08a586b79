package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/diogoammendes/SideSales/internal/ledger"
	"github.com/diogoammendes/SideSales/internal/models"
	"github.com/diogoammendes/SideSales/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ExportHandler writes the ledger and the purchase pool as CSV or XLSX.
type ExportHandler struct {
	DB *gorm.DB
}

func NewExportHandler(db *gorm.DB) *ExportHandler {
	return &ExportHandler{DB: db}
}

type exportSnapshot struct {
	rows      []ledger.Row
	totals    ledger.Totals
	purchases []models.Purchase
}

func (h *ExportHandler) snapshot(c *gin.Context) (*exportSnapshot, bool) {
	var purchases []models.Purchase
	if err := h.DB.
		Preload("Contributions").
		Preload("AdditionalCosts").
		Preload("Sales.Payments").
		Order("purchased_on DESC, id DESC").
		Find(&purchases).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load purchases")
		return nil, false
	}

	var activeUsers []models.User
	if err := h.DB.Where("active = ?", true).Order("id").Find(&activeUsers).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load users")
		return nil, false
	}

	return &exportSnapshot{
		rows:      ledger.Aggregate(purchases, activeUsers),
		totals:    ledger.PoolTotals(purchases),
		purchases: purchases,
	}, true
}

var ledgerHeader = []string{
	"user", "role", "invested", "received_actual", "received_attributed",
	"real_balance", "attributed_balance",
}

var purchaseHeader = []string{
	"title", "purchased_on", "quantity", "unit_cost", "total_cost",
	"total_revenue", "total_profit",
}

func ledgerRecord(r *ledger.Row) []string {
	name := r.DisplayName
	if name == "" {
		name = r.Username
	}
	return []string{
		name,
		r.Role,
		r.Invested.StringFixed(money),
		r.ReceivedActual.StringFixed(money),
		r.ReceivedAttributed.StringFixed(money),
		r.RealBalance.StringFixed(money),
		r.AttributedBalance.StringFixed(money),
	}
}

func purchaseRecord(p *models.Purchase) []string {
	return []string{
		p.Title,
		p.PurchasedOn.Format("2006-01-02"),
		p.Quantity.StringFixed(money),
		p.UnitCost.StringFixed(money),
		p.TotalCost().StringFixed(money),
		p.TotalRevenue().StringFixed(money),
		p.TotalProfit().StringFixed(money),
	}
}

// ExportCSV streams the ledger rows followed by the purchase pool.
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"ledger_%s.csv\"",
		time.Now().Format("20060102")))

	// UTF-8 BOM so spreadsheet apps pick the right encoding
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write(ledgerHeader)
	for i := range snap.rows {
		writer.Write(ledgerRecord(&snap.rows[i]))
	}

	writer.Write([]string{})
	writer.Write([]string{"pool_invested", snap.totals.Invested.StringFixed(money)})
	writer.Write([]string{"pool_revenue", snap.totals.Revenue.StringFixed(money)})
	writer.Write([]string{"pool_profit", snap.totals.Profit.StringFixed(money)})

	writer.Write([]string{})
	writer.Write(purchaseHeader)
	for i := range snap.purchases {
		writer.Write(purchaseRecord(&snap.purchases[i]))
	}
}

// ExportXLSX writes the same snapshot as a workbook with two sheets.
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}

	f := excelize.NewFile()
	ledgerSheet := "Ledger"
	index, err := f.NewSheet(ledgerSheet)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create sheet")
		return
	}
	f.SetActiveSheet(index)

	for i, hdr := range ledgerHeader {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(ledgerSheet, cell, hdr)
	}
	for idx := range snap.rows {
		row := idx + 2
		for col, val := range ledgerRecord(&snap.rows[idx]) {
			cell := fmt.Sprintf("%c%d", 'A'+col, row)
			f.SetCellValue(ledgerSheet, cell, val)
		}
	}
	totalsRow := len(snap.rows) + 3
	f.SetCellValue(ledgerSheet, fmt.Sprintf("A%d", totalsRow), "pool_invested")
	f.SetCellValue(ledgerSheet, fmt.Sprintf("B%d", totalsRow), snap.totals.Invested.StringFixed(money))
	f.SetCellValue(ledgerSheet, fmt.Sprintf("A%d", totalsRow+1), "pool_revenue")
	f.SetCellValue(ledgerSheet, fmt.Sprintf("B%d", totalsRow+1), snap.totals.Revenue.StringFixed(money))
	f.SetCellValue(ledgerSheet, fmt.Sprintf("A%d", totalsRow+2), "pool_profit")
	f.SetCellValue(ledgerSheet, fmt.Sprintf("B%d", totalsRow+2), snap.totals.Profit.StringFixed(money))
	f.SetColWidth(ledgerSheet, "A", "A", 20)
	f.SetColWidth(ledgerSheet, "B", "G", 18)

	purchaseSheet := "Purchases"
	if _, err := f.NewSheet(purchaseSheet); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create sheet")
		return
	}
	for i, hdr := range purchaseHeader {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(purchaseSheet, cell, hdr)
	}
	for idx := range snap.purchases {
		row := idx + 2
		for col, val := range purchaseRecord(&snap.purchases[idx]) {
			cell := fmt.Sprintf("%c%d", 'A'+col, row)
			f.SetCellValue(purchaseSheet, cell, val)
		}
	}
	f.SetColWidth(purchaseSheet, "A", "A", 30)
	f.SetColWidth(purchaseSheet, "B", "G", 14)

	// drop the default empty sheet
	f.DeleteSheet("Sheet1")

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"ledger_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to write workbook")
	}
}
