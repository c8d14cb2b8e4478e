package interfaces

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	billing "dormitory-cloud/internal/billing/domain"
)

// BuildInvoicePDF renders a printable PDF for one invoice.
func BuildInvoicePDF(invoice *billing.Invoice) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Dormitory Invoice")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Invoice: %s", invoice.ID))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Contract: %s", invoice.ContractID))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Room: %s", invoice.RoomID))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Period: %s", invoice.BillingPeriod.Format("2006-01")))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Status: %s", invoice.Status))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Bill Date: %s", invoice.BillDate.Format(time.RFC3339)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Due Date: %s", invoice.DueDate.Format(time.RFC3339)))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(80, 6, "Item", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Units", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Amount (THB)", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)

	writeRow := func(item string, units, amount string) {
		pdf.CellFormat(80, 6, item, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, units, "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, amount, "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	writeRow("Room rent", "-", fmt.Sprintf("%.2f", invoice.RentCost))
	writeRow("Electricity", fmt.Sprintf("%.2f", invoice.ElectricityUnit), fmt.Sprintf("%.2f", invoice.ElectricityCost))
	writeRow("Water", fmt.Sprintf("%.2f", invoice.WaterUnit), fmt.Sprintf("%.2f", invoice.WaterCost))
	writeRow("Repair", "-", fmt.Sprintf("%.2f", invoice.RepairCost))
	writeRow("Deposit", "-", fmt.Sprintf("%.2f", invoice.DepositCost))

	pdf.SetFont("Arial", "B", 10)
	writeRow("Total", "", fmt.Sprintf("%.2f", invoice.Total))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildBillingXLSX renders a monthly billing report workbook.
func BuildBillingXLSX(period time.Time, invoices []billing.Invoice) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "summary"
	invoicesSheet := "invoices"
	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(invoicesSheet)

	var total float64
	statusCounts := map[billing.InvoiceStatus]int{}
	for _, invoice := range invoices {
		total += invoice.Total
		statusCounts[invoice.Status]++
	}

	_ = f.SetCellValue(summarySheet, "A1", "Monthly Billing Report")
	_ = f.SetCellValue(summarySheet, "A3", "Period")
	_ = f.SetCellValue(summarySheet, "B3", period.Format("2006-01"))
	_ = f.SetCellValue(summarySheet, "A4", "Invoices")
	_ = f.SetCellValue(summarySheet, "B4", len(invoices))
	_ = f.SetCellValue(summarySheet, "A5", "Total (THB)")
	_ = f.SetCellValue(summarySheet, "B5", billing.Round2(total))
	_ = f.SetCellValue(summarySheet, "A6", "Unpaid")
	_ = f.SetCellValue(summarySheet, "B6", statusCounts[billing.InvoiceStatusUnpaid])
	_ = f.SetCellValue(summarySheet, "A7", "Pending")
	_ = f.SetCellValue(summarySheet, "B7", statusCounts[billing.InvoiceStatusPending])
	_ = f.SetCellValue(summarySheet, "A8", "Paid")
	_ = f.SetCellValue(summarySheet, "B8", statusCounts[billing.InvoiceStatusPaid])

	headers := []string{"Invoice", "Contract", "Room", "Rent", "Electricity", "Water", "Total", "Status", "Bill Date", "Due Date"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(invoicesSheet, cell, header)
	}
	for i, invoice := range invoices {
		row := i + 2
		_ = f.SetCellValue(invoicesSheet, fmt.Sprintf("A%d", row), invoice.ID)
		_ = f.SetCellValue(invoicesSheet, fmt.Sprintf("B%d", row), invoice.ContractID)
		_ = f.SetCellValue(invoicesSheet, fmt.Sprintf("C%d", row), invoice.RoomID)
		_ = f.SetCellValue(invoicesSheet, fmt.Sprintf("D%d", row), invoice.RentCost)
		_ = f.SetCellValue(invoicesSheet, fmt.Sprintf("E%d", row), invoice.ElectricityCost)
		_ = f.SetCellValue(invoicesSheet, fmt.Sprintf("F%d", row), invoice.WaterCost)
		_ = f.SetCellValue(invoicesSheet, fmt.Sprintf("G%d", row), invoice.Total)
		_ = f.SetCellValue(invoicesSheet, fmt.Sprintf("H%d", row), string(invoice.Status))
		_ = f.SetCellValue(invoicesSheet, fmt.Sprintf("I%d", row), invoice.BillDate.Format("2006-01-02"))
		_ = f.SetCellValue(invoicesSheet, fmt.Sprintf("J%d", row), invoice.DueDate.Format("2006-01-02"))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
