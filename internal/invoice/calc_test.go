package invoice

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Recalculate", func() {
	var inv *Invoice

	BeforeEach(func() {
		inv = &Invoice{
			Items: []Item{
				{Name: "Rice", Quantity: 2, Unit: "kg", UnitPrice: 10, Total: 20},
			},
			Discount: 0,
			TaxRate:  15,
		}
	})

	JustBeforeEach(func() {
		Recalculate(inv)
	})

	When("a quantity changed", func() {
		BeforeEach(func() {
			inv.Items[0].Quantity = 3
		})

		It("should recompute the item total", func() {
			Expect(inv.Items[0].Total).To(Equal(30.0))
		})

		It("should recompute the subtotal", func() {
			Expect(inv.Subtotal).To(Equal(30.0))
		})

		It("should recompute the tax amount", func() {
			Expect(inv.TaxAmount).To(Equal(4.5))
		})

		It("should recompute the grand total", func() {
			Expect(inv.TotalAmount).To(Equal(34.5))
		})
	})

	When("there are multiple items", func() {
		BeforeEach(func() {
			inv.Items = append(inv.Items,
				Item{Name: "Oil", Quantity: 3, Unit: "bottle", UnitPrice: 7.5},
				Item{Name: "Sugar", Quantity: 1.5, Unit: "kg", UnitPrice: 4},
			)
		})

		It("should sum all item totals into the subtotal", func() {
			Expect(inv.Subtotal).To(Equal(48.5))
		})

		It("should keep the grand total consistent", func() {
			Expect(inv.TotalAmount).To(Equal(inv.Subtotal - inv.Discount + inv.TaxAmount))
		})
	})

	When("a discount applies", func() {
		BeforeEach(func() {
			inv.Discount = 5
		})

		It("should tax only the discounted base", func() {
			Expect(inv.TaxAmount).To(Equal(2.25))
		})

		It("should subtract the discount from the grand total", func() {
			Expect(inv.TotalAmount).To(Equal(17.25))
		})
	})

	When("the discount is negative", func() {
		BeforeEach(func() {
			inv.Discount = -10
		})

		It("should pass it through unclamped", func() {
			Expect(inv.TaxAmount).To(Equal(4.5))
			Expect(inv.TotalAmount).To(Equal(34.5))
		})
	})

	When("amounts need rounding", func() {
		BeforeEach(func() {
			inv.Items[0].Quantity = 1
			inv.Items[0].UnitPrice = 10.567
			inv.TaxRate = 0
		})

		It("should round item totals to two decimals", func() {
			Expect(inv.Items[0].Total).To(Equal(10.57))
		})

		It("should round the subtotal to two decimals", func() {
			Expect(inv.Subtotal).To(Equal(10.57))
		})
	})

	When("an item total overflows float64", func() {
		BeforeEach(func() {
			inv.Items[0].Quantity = 1e200
			inv.Items[0].UnitPrice = 1e200
		})

		It("should carry infinity through the derived fields", func() {
			Expect(math.IsInf(inv.Items[0].Total, 1)).To(BeTrue())
			Expect(math.IsInf(inv.Subtotal, 1)).To(BeTrue())
			Expect(math.IsInf(inv.TotalAmount, 1)).To(BeTrue())
		})
	})

	When("a field already holds a non-finite value", func() {
		BeforeEach(func() {
			inv.Discount = math.Inf(1)
		})

		It("should propagate the non-finite value instead of panicking", func() {
			Expect(math.IsInf(inv.TaxAmount, -1)).To(BeTrue())
			Expect(math.IsInf(inv.TotalAmount, -1)).To(BeTrue())
		})
	})

	When("there are no items", func() {
		BeforeEach(func() {
			inv.Items = nil
			inv.Discount = 5
		})

		It("should zero the subtotal", func() {
			Expect(inv.Subtotal).To(Equal(0.0))
		})

		It("should leave the negative discounted total", func() {
			Expect(inv.TaxAmount).To(Equal(-0.75))
			Expect(inv.TotalAmount).To(Equal(-5.75))
		})
	})

	Describe("idempotence", func() {
		It("should not change anything on a second run", func() {
			before := inv.Clone()
			Recalculate(inv)
			Expect(inv).To(Equal(before))
		})
	})
})
