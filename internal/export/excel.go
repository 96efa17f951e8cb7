// Package export renders invoice records to Excel workbooks.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/akhalil/fatoora-tracker/internal/invoice"
)

const sheetName = "Sheet1"

func headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF", Size: 12},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
}

func setRow(f *excelize.File, row int, values ...interface{}) {
	for col, v := range values {
		cell, _ := excelize.CoordinatesToCellName(col+1, row)
		f.SetCellValue(sheetName, cell, v)
	}
}

// InvoiceWorkbook builds a single-invoice workbook: header fields, an
// items table, totals, and the validation verdict when present.
func InvoiceWorkbook(inv *invoice.Invoice) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetColWidth(sheetName, "A", "A", 40)
	f.SetColWidth(sheetName, "B", "E", 15)

	row := 1
	setRow(f, row, "Invoice")
	f.MergeCell(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("E%d", row))
	titleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("creating title style: %w", err)
	}
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), titleStyle)
	row += 2

	header := [][2]interface{}{
		{"Supplier:", inv.SupplierName},
		{"Tax number:", inv.TaxNumber},
		{"Invoice number:", inv.InvoiceNumber},
		{"Date:", inv.InvoiceDate},
	}
	for _, kv := range header {
		setRow(f, row, kv[0], kv[1])
		row++
	}
	row++

	hs, err := headerStyle(f)
	if err != nil {
		return nil, fmt.Errorf("creating header style: %w", err)
	}
	setRow(f, row, "Item", "Quantity", "Unit", "Unit price", "Total")
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("E%d", row), hs)
	row++

	for _, it := range inv.Items {
		setRow(f, row, it.Name, it.Quantity, it.Unit, it.UnitPrice, it.Total)
		row++
	}

	totals := [][2]interface{}{
		{"Subtotal:", inv.Subtotal},
		{"Discount:", inv.Discount},
		{"Tax:", inv.TaxAmount},
		{"Grand total:", inv.TotalAmount},
	}
	for _, kv := range totals {
		cellD := fmt.Sprintf("D%d", row)
		cellE := fmt.Sprintf("E%d", row)
		f.SetCellValue(sheetName, cellD, kv[0])
		f.SetCellValue(sheetName, cellE, kv[1])
		row++
	}

	if inv.ValidationMessage != "" {
		row++
		setRow(f, row, fmt.Sprintf("Check: %s", inv.ValidationMessage))
		f.MergeCell(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("E%d", row))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// InvoicesReport builds a workbook listing one saved invoice per row.
func InvoicesReport(invoices []*invoice.SavedInvoice) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetColWidth(sheetName, "A", "A", 6)
	f.SetColWidth(sheetName, "B", "E", 20)
	f.SetColWidth(sheetName, "F", "I", 14)

	hs, err := headerStyle(f)
	if err != nil {
		return nil, fmt.Errorf("creating header style: %w", err)
	}
	setRow(f, 1, "#", "Date", "Invoice number", "Supplier", "Tax number",
		"Subtotal", "Discount", "Tax", "Total")
	f.SetCellStyle(sheetName, "A1", "I1", hs)

	for i, inv := range invoices {
		setRow(f, i+2, i+1, inv.InvoiceDate, inv.InvoiceNumber, inv.SupplierName,
			inv.TaxNumber, inv.Subtotal, inv.Discount, inv.TaxAmount, inv.TotalAmount)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// ItemsReport builds a workbook listing one saved line item per row.
func ItemsReport(items []*invoice.SavedItem) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetColWidth(sheetName, "A", "A", 6)
	f.SetColWidth(sheetName, "B", "B", 40)
	f.SetColWidth(sheetName, "C", "G", 14)

	hs, err := headerStyle(f)
	if err != nil {
		return nil, fmt.Errorf("creating header style: %w", err)
	}
	setRow(f, 1, "#", "Item", "Quantity", "Unit", "Unit price", "Total", "Invoice date")
	f.SetCellStyle(sheetName, "A1", "G1", hs)

	for i, it := range items {
		setRow(f, i+2, i+1, it.Name, it.Quantity, it.Unit, it.UnitPrice, it.Total, it.InvoiceDate)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}
