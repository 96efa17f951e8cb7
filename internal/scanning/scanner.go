package scanning

import (
	"context"

	"github.com/akhalil/fatoora-tracker/internal/invoice"
)

// Scanner defines the interface for invoice extraction.
type Scanner interface {
	// ExtractInvoice analyzes an invoice photo and returns the structured
	// invoice data. An unparseable model response yields an invoice with
	// an empty item list, the sentinel for extraction failure; only
	// transport-level problems surface as errors.
	ExtractInvoice(ctx context.Context, imageData []byte) (*invoice.Invoice, error)

	// Close closes the scanner and releases resources.
	Close() error
}
