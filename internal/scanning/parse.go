package scanning

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/akhalil/fatoora-tracker/internal/invoice"
)

// parseInvoiceJSON parses the JSON response from the vision model.
func parseInvoiceJSON(text string) (*invoice.Invoice, error) {
	text = strings.TrimSpace(text)

	// Remove markdown code blocks if present
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSpace(text)

	// Find the JSON object boundaries - look for first { and last }
	startIdx := strings.Index(text, "{")
	if startIdx == -1 {
		return nil, fmt.Errorf("no JSON object found in response")
	}
	endIdx := strings.LastIndex(text, "}")
	if endIdx == -1 || endIdx < startIdx {
		return nil, fmt.Errorf("invalid JSON object in response")
	}
	text = text[startIdx : endIdx+1]

	var inv invoice.Invoice
	if err := json.Unmarshal([]byte(text), &inv); err != nil {
		return nil, fmt.Errorf("unmarshaling json: %w", err)
	}

	inv.SupplierName = strings.TrimSpace(inv.SupplierName)
	inv.InvoiceDate = normalizeDate(inv.InvoiceDate)
	if inv.Items == nil {
		inv.Items = []invoice.Item{}
	}

	return &inv, nil
}

// normalizeDate rewrites recognized date formats to YYYY-MM-DD. The date
// is a free-text field, so anything unrecognized passes through untouched.
func normalizeDate(date string) string {
	date = strings.TrimSpace(date)
	if date == "" {
		return ""
	}

	formats := []string{
		"2006-01-02",
		"2006/01/02",
		"01/02/2006",
		"02-01-2006",
	}
	for _, format := range formats {
		if d, err := time.Parse(format, date); err == nil {
			return d.Format("2006-01-02")
		}
	}
	return date
}
