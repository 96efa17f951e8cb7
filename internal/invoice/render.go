package invoice

import (
	"fmt"
	"strconv"
	"strings"
)

const divider = "━━━━━━━━━━━━━━━━━━━━"

// markdownV2Escaper escapes every character Telegram's MarkdownV2 parser
// reserves.
var markdownV2Escaper = strings.NewReplacer(
	"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]",
	"(", "\\(", ")", "\\)", "~", "\\~", "`", "\\`",
	">", "\\>", "#", "\\#", "+", "\\+", "-", "\\-",
	"=", "\\=", "|", "\\|", "{", "\\{", "}", "\\}",
	".", "\\.", "!", "\\!",
)

// EscapeMarkdownV2 escapes reserved MarkdownV2 characters in text.
func EscapeMarkdownV2(text string) string {
	return markdownV2Escaper.Replace(text)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func orUnknown(s string) string {
	if s == "" {
		return "not specified"
	}
	return s
}

// Render formats an invoice as MarkdownV2 display text: header fields,
// line items, totals, and the validation verdict when present. It is
// read-only and side-effect free.
func Render(inv *Invoice) string {
	esc := EscapeMarkdownV2

	lines := []string{
		"✅ *Invoice extracted\\!*",
		"",
		divider,
		"",
		"\U0001F4CB *Invoice details:*",
		"",
		fmt.Sprintf("    Supplier: %s", esc(orUnknown(inv.SupplierName))),
		fmt.Sprintf("    Tax number: %s", esc(orUnknown(inv.TaxNumber))),
		fmt.Sprintf("    Invoice number: %s", esc(orUnknown(inv.InvoiceNumber))),
		fmt.Sprintf("    Date: %s", esc(orUnknown(inv.InvoiceDate))),
		"",
		divider,
		"",
		"\U0001F6D2 *Items:*",
		"",
	}

	for i, it := range inv.Items {
		lines = append(lines,
			fmt.Sprintf("    %d\\. %s", i+1, esc(it.Name)),
			fmt.Sprintf("        Quantity: %s %s", esc(formatNumber(it.Quantity)), esc(it.Unit)),
			fmt.Sprintf("        Unit price: %s", esc(formatNumber(it.UnitPrice))),
			fmt.Sprintf("        Total: %s", esc(formatNumber(it.Total))),
			"",
		)
	}

	lines = append(lines,
		divider,
		"",
		"\U0001F4B0 *Totals:*",
		"",
		fmt.Sprintf("    Subtotal: %s", esc(formatNumber(inv.Subtotal))),
		fmt.Sprintf("    Discount: %s", esc(formatNumber(inv.Discount))),
		fmt.Sprintf("    Tax \\(%s%%\\): %s", esc(formatNumber(inv.TaxRate)), esc(formatNumber(inv.TaxAmount))),
		fmt.Sprintf("    *Grand total: %s*", esc(formatNumber(inv.TotalAmount))),
	)

	if inv.ValidationMessage != "" {
		lines = append(lines,
			"",
			divider,
			"",
			"\U0001F4CA *Arithmetic check:*",
			"",
			fmt.Sprintf("    %s", esc(inv.ValidationMessage)),
		)
	}

	return strings.Join(lines, "\n")
}
