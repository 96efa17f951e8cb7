package invoice

import (
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("BoltDB", func() {
	var (
		db  *BoltDB
		inv *Invoice
	)

	BeforeEach(func() {
		dbPath := filepath.Join(GinkgoT().TempDir(), "test.db")
		var err error
		db, err = NewBoltDB(dbPath)
		Expect(err).NotTo(HaveOccurred())

		inv = &Invoice{
			SupplierName:  "Acme Trading",
			TaxNumber:     "TAX1",
			InvoiceNumber: "INV1",
			InvoiceDate:   "2024-03-01",
			Items: []Item{
				{Name: "Rice", Quantity: 2, Unit: "kg", UnitPrice: 10, Total: 20},
				{Name: "Oil", Quantity: 1, Unit: "bottle", UnitPrice: 8, Total: 8},
			},
			Subtotal:    28,
			TaxRate:     15,
			TaxAmount:   4.2,
			TotalAmount: 32.2,
		}
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	Describe("SaveInvoice", func() {
		var (
			invoiceID int64
			err       error
		)

		JustBeforeEach(func() {
			invoiceID, err = db.SaveInvoice(100, inv)
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should return a positive invoice id", func() {
			Expect(invoiceID).To(BeNumerically(">", 0))
		})

		It("should persist the header fields", func() {
			invoices, err := db.ListInvoices(100, "", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(invoices).To(HaveLen(1))
			Expect(invoices[0].SupplierName).To(Equal("Acme Trading"))
			Expect(invoices[0].TotalAmount).To(Equal(32.2))
		})

		It("should persist every item row with the invoice date", func() {
			items, err := db.ListItems(100, "", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(HaveLen(2))
			for _, it := range items {
				Expect(it.InvoiceID).To(Equal(invoiceID))
				Expect(it.InvoiceDate).To(Equal("2024-03-01"))
			}
		})

		It("should assign increasing ids across saves", func() {
			second, err := db.SaveInvoice(100, inv)
			Expect(err).NotTo(HaveOccurred())
			Expect(second).To(BeNumerically(">", invoiceID))
		})
	})

	Describe("ListInvoices", func() {
		BeforeEach(func() {
			dates := []string{"2024-01-10", "2024-03-05", "2024-02-20"}
			for _, d := range dates {
				saved := inv.Clone()
				saved.InvoiceDate = d
				_, err := db.SaveInvoice(100, saved)
				Expect(err).NotTo(HaveOccurred())
			}
		})

		It("should order by invoice date descending", func() {
			invoices, err := db.ListInvoices(100, "", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(invoices).To(HaveLen(3))
			Expect(invoices[0].InvoiceDate).To(Equal("2024-03-05"))
			Expect(invoices[2].InvoiceDate).To(Equal("2024-01-10"))
		})

		It("should apply an inclusive date range", func() {
			invoices, err := db.ListInvoices(100, "2024-02-01", "2024-03-05")
			Expect(err).NotTo(HaveOccurred())
			Expect(invoices).To(HaveLen(2))
		})

		It("should apply an open-ended start date", func() {
			invoices, err := db.ListInvoices(100, "2024-02-01", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(invoices).To(HaveLen(2))
		})

		It("should not return another user's invoices", func() {
			invoices, err := db.ListInvoices(200, "", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(invoices).To(BeEmpty())
		})
	})

	Describe("ListItems", func() {
		BeforeEach(func() {
			_, err := db.SaveInvoice(100, inv)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should filter items by date", func() {
			items, err := db.ListItems(100, "2024-04-01", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(BeEmpty())
		})

		It("should not return another user's items", func() {
			items, err := db.ListItems(200, "", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(BeEmpty())
		})
	})

	Describe("CountInvoices", func() {
		It("should start at zero", func() {
			count, err := db.CountInvoices(100)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(0))
		})

		It("should count saved invoices per user", func() {
			_, err := db.SaveInvoice(100, inv)
			Expect(err).NotTo(HaveOccurred())
			_, err = db.SaveInvoice(100, inv)
			Expect(err).NotTo(HaveOccurred())
			_, err = db.SaveInvoice(200, inv)
			Expect(err).NotTo(HaveOccurred())

			count, err := db.CountInvoices(100)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(2))
		})
	})

	Describe("IsDuplicate", func() {
		BeforeEach(func() {
			_, err := db.SaveInvoice(100, inv)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should match the same pair for the same user", func() {
			dup, err := db.IsDuplicate(100, "INV1", "TAX1")
			Expect(err).NotTo(HaveOccurred())
			Expect(dup).To(BeTrue())
		})

		It("should not match a different invoice number", func() {
			dup, err := db.IsDuplicate(100, "INV2", "TAX1")
			Expect(err).NotTo(HaveOccurred())
			Expect(dup).To(BeFalse())
		})

		It("should not match for a different user", func() {
			dup, err := db.IsDuplicate(200, "INV1", "TAX1")
			Expect(err).NotTo(HaveOccurred())
			Expect(dup).To(BeFalse())
		})

		It("should never match a blank invoice number", func() {
			dup, err := db.IsDuplicate(100, "", "TAX1")
			Expect(err).NotTo(HaveOccurred())
			Expect(dup).To(BeFalse())
		})

		It("should never match a blank tax number", func() {
			dup, err := db.IsDuplicate(100, "INV1", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(dup).To(BeFalse())
		})
	})
})
