package invoice

// Item represents a single line item on an invoice.
type Item struct {
	Name      string  `json:"name"`
	Quantity  float64 `json:"quantity"`
	Unit      string  `json:"unit"`
	UnitPrice float64 `json:"unit_price"`
	Total     float64 `json:"total"`
}

// Invoice represents the extracted data of one invoice: header fields,
// line items, and totals. Subtotal, TaxAmount, and TotalAmount are derived
// fields maintained by Recalculate; IsValid and ValidationMessage are
// written only by Validator.
type Invoice struct {
	SupplierName  string `json:"supplier_name"`
	TaxNumber     string `json:"tax_number"`
	InvoiceNumber string `json:"invoice_number"`
	InvoiceDate   string `json:"invoice_date"`

	Items []Item `json:"items"`

	Subtotal    float64 `json:"subtotal"`
	Discount    float64 `json:"discount"`
	TaxRate     float64 `json:"tax_rate"` // percentage, 15 means 15%
	TaxAmount   float64 `json:"tax_amount"`
	TotalAmount float64 `json:"total_amount"`

	IsValid           bool   `json:"is_valid"`
	ValidationMessage string `json:"validation_message,omitempty"`
}

// Clone returns a deep copy of the invoice. The copy shares no state with
// the original, so two edit sessions can never alias the same items slice.
func (inv *Invoice) Clone() *Invoice {
	out := *inv
	out.Items = make([]Item, len(inv.Items))
	copy(out.Items, inv.Items)
	return &out
}
