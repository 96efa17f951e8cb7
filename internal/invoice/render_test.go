package invoice

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("EscapeMarkdownV2", func() {
	It("should escape every reserved character", func() {
		Expect(EscapeMarkdownV2("a_b*c[d]e(f)g~h`i>j#k+l-m=n|o{p}q.r!s")).To(
			Equal(`a\_b\*c\[d\]e\(f\)g\~h\` + "\\`" + `i\>j\#k\+l\-m\=n\|o\{p\}q\.r\!s`))
	})

	It("should pass plain text through", func() {
		Expect(EscapeMarkdownV2("Acme Trading 123")).To(Equal("Acme Trading 123"))
	})
})

var _ = Describe("Render", func() {
	var (
		inv  *Invoice
		text string
	)

	BeforeEach(func() {
		inv = &Invoice{
			SupplierName:  "Acme (Trading) Co.",
			TaxNumber:     "310123456700003",
			InvoiceNumber: "INV-42",
			InvoiceDate:   "2024-03-01",
			Items: []Item{
				{Name: "Rice", Quantity: 2, Unit: "kg", UnitPrice: 10, Total: 20},
			},
			Subtotal:    20,
			TaxRate:     15,
			TaxAmount:   3,
			TotalAmount: 23,
		}
	})

	JustBeforeEach(func() {
		text = Render(inv)
	})

	It("should include the header fields", func() {
		Expect(text).To(ContainSubstring("310123456700003"))
		Expect(text).To(ContainSubstring("INV\\-42"))
		Expect(text).To(ContainSubstring("2024\\-03\\-01"))
	})

	It("should escape reserved characters in free text", func() {
		Expect(text).To(ContainSubstring(`Acme \(Trading\) Co\.`))
	})

	It("should list the items with their numbers", func() {
		Expect(text).To(ContainSubstring("1\\. Rice"))
		Expect(text).To(ContainSubstring("Quantity: 2 kg"))
	})

	It("should include the totals", func() {
		Expect(text).To(ContainSubstring("Subtotal: 20"))
		Expect(text).To(ContainSubstring("Grand total: 23"))
	})

	When("header fields are missing", func() {
		BeforeEach(func() {
			inv.SupplierName = ""
		})

		It("should render a placeholder", func() {
			Expect(text).To(ContainSubstring("Supplier: not specified"))
		})
	})

	When("a validation message is set", func() {
		BeforeEach(func() {
			inv.ValidationMessage = "Calculations check out"
		})

		It("should include the arithmetic check block", func() {
			Expect(text).To(ContainSubstring("Arithmetic check"))
			Expect(text).To(ContainSubstring("Calculations check out"))
		})
	})

	When("no validation message is set", func() {
		It("should omit the arithmetic check block", func() {
			Expect(text).NotTo(ContainSubstring("Arithmetic check"))
		})
	})

	It("should not mutate the invoice", func() {
		Expect(inv.SupplierName).To(Equal("Acme (Trading) Co."))
		Expect(inv.TotalAmount).To(Equal(23.0))
	})
})
