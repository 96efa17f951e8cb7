package export

import (
	"bytes"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/xuri/excelize/v2"

	"github.com/akhalil/fatoora-tracker/internal/invoice"
)

func TestExport(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Export Suite")
}

func openWorkbook(data []byte) *excelize.File {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	Expect(err).NotTo(HaveOccurred())
	return f
}

func cell(f *excelize.File, ref string) string {
	v, err := f.GetCellValue(sheetName, ref)
	Expect(err).NotTo(HaveOccurred())
	return v
}

var _ = Describe("InvoiceWorkbook", func() {
	var (
		inv  *invoice.Invoice
		data []byte
		err  error
	)

	BeforeEach(func() {
		inv = &invoice.Invoice{
			SupplierName:  "Acme Trading",
			TaxNumber:     "TAX1",
			InvoiceNumber: "INV-42",
			InvoiceDate:   "2024-03-01",
			Items: []invoice.Item{
				{Name: "Rice", Quantity: 2, Unit: "kg", UnitPrice: 10, Total: 20},
			},
			Subtotal:    20,
			TaxRate:     15,
			TaxAmount:   3,
			TotalAmount: 23,
		}
	})

	JustBeforeEach(func() {
		data, err = InvoiceWorkbook(inv)
	})

	It("should not return an error", func() {
		Expect(err).NotTo(HaveOccurred())
	})

	It("should write the header fields", func() {
		f := openWorkbook(data)
		defer f.Close()
		Expect(cell(f, "B3")).To(Equal("Acme Trading"))
		Expect(cell(f, "B5")).To(Equal("INV-42"))
		Expect(cell(f, "B6")).To(Equal("2024-03-01"))
	})

	It("should write the items table", func() {
		f := openWorkbook(data)
		defer f.Close()
		Expect(cell(f, "A8")).To(Equal("Item"))
		Expect(cell(f, "A9")).To(Equal("Rice"))
		Expect(cell(f, "B9")).To(Equal("2"))
		Expect(cell(f, "E9")).To(Equal("20"))
	})

	It("should write the totals block", func() {
		f := openWorkbook(data)
		defer f.Close()
		Expect(cell(f, "D10")).To(Equal("Subtotal:"))
		Expect(cell(f, "E10")).To(Equal("20"))
		Expect(cell(f, "D13")).To(Equal("Grand total:"))
		Expect(cell(f, "E13")).To(Equal("23"))
	})

	When("a validation message is set", func() {
		BeforeEach(func() {
			inv.ValidationMessage = "Calculations check out"
		})

		It("should append the check row", func() {
			f := openWorkbook(data)
			defer f.Close()
			Expect(cell(f, "A15")).To(ContainSubstring("Calculations check out"))
		})
	})
})

var _ = Describe("InvoicesReport", func() {
	It("should write one row per invoice under the header", func() {
		data, err := InvoicesReport([]*invoice.SavedInvoice{
			{InvoiceDate: "2024-03-01", InvoiceNumber: "INV1", SupplierName: "Acme", TotalAmount: 23},
			{InvoiceDate: "2024-02-10", InvoiceNumber: "INV2", SupplierName: "Globex", TotalAmount: 50},
		})
		Expect(err).NotTo(HaveOccurred())

		f := openWorkbook(data)
		defer f.Close()
		Expect(cell(f, "A1")).To(Equal("#"))
		Expect(cell(f, "B2")).To(Equal("2024-03-01"))
		Expect(cell(f, "I2")).To(Equal("23"))
		Expect(cell(f, "D3")).To(Equal("Globex"))
	})

	It("should handle an empty list", func() {
		data, err := InvoicesReport(nil)
		Expect(err).NotTo(HaveOccurred())

		f := openWorkbook(data)
		defer f.Close()
		Expect(cell(f, "A1")).To(Equal("#"))
		Expect(cell(f, "A2")).To(Equal(""))
	})
})

var _ = Describe("ItemsReport", func() {
	It("should write one row per item under the header", func() {
		data, err := ItemsReport([]*invoice.SavedItem{
			{Name: "Rice", Quantity: 2, Unit: "kg", UnitPrice: 10, Total: 20, InvoiceDate: "2024-03-01"},
		})
		Expect(err).NotTo(HaveOccurred())

		f := openWorkbook(data)
		defer f.Close()
		Expect(cell(f, "B1")).To(Equal("Item"))
		Expect(cell(f, "B2")).To(Equal("Rice"))
		Expect(cell(f, "F2")).To(Equal("20"))
		Expect(cell(f, "G2")).To(Equal("2024-03-01"))
	})
})
