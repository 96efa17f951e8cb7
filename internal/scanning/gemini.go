package scanning

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/akhalil/fatoora-tracker/internal/invoice"
)

const invoiceScanPrompt = `You are an expert at reading handwritten and printed invoices.

Read every number with extreme care and double-check each one before writing it down.

Analyze the invoice photo and return ONLY a JSON object, no extra text, with this structure:

{
    "supplier_name": "supplier/company name",
    "tax_number": "tax registration number",
    "invoice_number": "invoice number",
    "invoice_date": "invoice date (YYYY-MM-DD)",
    "items": [
        {
            "name": "item name",
            "quantity": 0.0,
            "unit": "unit of measure",
            "unit_price": 0.0,
            "total": 0.0
        }
    ],
    "subtotal": 0.0,
    "discount": 0.0,
    "tax_rate": 0.0,
    "tax_amount": 0.0,
    "total_amount": 0.0
}

Rules:
- tax_rate is a percentage (15 means 15%)
- if a number is unclear, infer it from the invoice context
- if a value is missing, leave it empty or 0
- numbers must be numbers, not strings
- check that item totals add up to the subtotal
- if a unit of measure is embedded in the item name (e.g. "juice box 100 ml" with quantity 4), move it to the unit field and scale the quantity (name "juice box", quantity 400, unit "ml")
- if there is no unit of measure, use the packaging type (bag, box, bottle, piece, pack)
- return the JSON only, with no explanation`

// Gemini implements the Scanner interface using Google Gemini vision.
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGemini creates a new Gemini Scanner instance.
func NewGemini(apiKey string, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &Gemini{
		client: client,
		model:  client.GenerativeModel(modelName),
	}, nil
}

// ExtractInvoice sends the photo to Gemini and parses its JSON response.
// Telegram delivers photos as JPEG, so the image goes up as-is. A response
// that cannot be parsed as an invoice comes back as an empty invoice, not
// an error.
func (g *Gemini) ExtractInvoice(ctx context.Context, imageData []byte) (*invoice.Invoice, error) {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	parts := []genai.Part{
		genai.ImageData("jpeg", imageData),
		genai.Text(invoiceScanPrompt),
	}

	resp, err := g.model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("generating content: %w", err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no response from gemini")
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			responseText.WriteString(string(text))
		}
	}

	inv, err := parseInvoiceJSON(responseText.String())
	if err != nil {
		slog.Error("Failed to parse invoice response", "error", err)
		return &invoice.Invoice{}, nil
	}

	return inv, nil
}

// Close closes the Gemini client.
func (g *Gemini) Close() error {
	return g.client.Close()
}
