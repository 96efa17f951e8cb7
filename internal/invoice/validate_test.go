package invoice

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Validator", func() {
	var (
		validator *Validator
		inv       *Invoice
		isValid   bool
		message   string
	)

	BeforeEach(func() {
		validator = NewValidator(0.5)
		inv = &Invoice{
			Items: []Item{
				{Name: "Rice", Quantity: 2, UnitPrice: 10, Total: 20},
				{Name: "Oil", Quantity: 4, UnitPrice: 20, Total: 80},
			},
			Subtotal:    100,
			Discount:    0,
			TaxAmount:   0,
			TotalAmount: 100,
		}
	})

	JustBeforeEach(func() {
		isValid, message = validator.Validate(inv)
	})

	When("the declared totals match", func() {
		It("should be valid", func() {
			Expect(isValid).To(BeTrue())
		})

		It("should write the verdict onto the invoice", func() {
			Expect(inv.IsValid).To(BeTrue())
			Expect(inv.ValidationMessage).To(Equal(message))
		})
	})

	When("the declared totals are within tolerance", func() {
		BeforeEach(func() {
			inv.Subtotal = 100.4
			inv.TotalAmount = 100.4
		})

		It("should be valid", func() {
			Expect(isValid).To(BeTrue())
		})
	})

	When("the declared subtotal is off", func() {
		BeforeEach(func() {
			inv.Subtotal = 90
			inv.TotalAmount = 90
		})

		It("should be invalid", func() {
			Expect(isValid).To(BeFalse())
			Expect(inv.IsValid).To(BeFalse())
		})

		It("should report the subtotal discrepancy", func() {
			Expect(message).To(ContainSubstring("subtotal mismatch"))
			Expect(message).To(ContainSubstring("10.00"))
		})

		It("should not report the total mismatch", func() {
			Expect(message).NotTo(ContainSubstring("grand total mismatch"))
		})
	})

	When("only the declared grand total is off", func() {
		BeforeEach(func() {
			inv.TotalAmount = 95
		})

		It("should report the total discrepancy", func() {
			Expect(isValid).To(BeFalse())
			Expect(message).To(ContainSubstring("grand total mismatch"))
			Expect(message).To(ContainSubstring("5.00"))
		})
	})

	When("an item total was overridden but inputs are intact", func() {
		BeforeEach(func() {
			// stale stored total; validation recomputes from qty * price
			inv.Items[0].Total = 999
		})

		It("should still be valid", func() {
			Expect(isValid).To(BeTrue())
		})
	})

	Describe("read-only behavior", func() {
		It("should not mutate the raw fields", func() {
			Expect(inv.Items[0].Quantity).To(Equal(2.0))
			Expect(inv.Items[0].UnitPrice).To(Equal(10.0))
			Expect(inv.Discount).To(Equal(0.0))
			Expect(inv.Subtotal).To(Equal(100.0))
			Expect(inv.TotalAmount).To(Equal(100.0))
		})
	})

	Describe("internal failure", func() {
		It("should return the same invalid verdict it records", func() {
			ok, msg := validator.Validate(nil)
			Expect(ok).To(BeFalse())
			Expect(msg).To(Equal("Validation failed due to an internal error"))
		})
	})
})
