// Package nlparse extracts transaction intents from free-form text using the
// Gemini API. It implements books.QueryParser.
package nlparse

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/genai"

	"khata/pkg/books"
)

const DefaultModel = "gemini-2.0-flash"

// Timeout bounds the model call; a slow parse must fail before the caller
// opens its unit of work.
const Timeout = 20 * time.Second

type Parser struct {
	model string
}

func New(model string) *Parser {
	if model == "" {
		model = DefaultModel
	}
	return &Parser{model: model}
}

const systemPrompt = `You are an intelligent financial transaction parser for India. Analyze the user's text and extract details into a structured JSON object.

The JSON output MUST contain:
- "type": "income", "expense", "loan_payable", or "loan_receivable".
- "amount": the full numeric value of the transaction.
- "description": a clear description of the item or service.
- "category": a relevant category (e.g. "Vehicle", "Electronics", "Salary", "Loan").
- "inventory" (optional): an object with "item", "quantity", "unit_price" and "total_value" when the query is about purchasing goods.
- "gst_details" (optional): an object with "base_amount" and "gst_amount" when the text states them.

Loan rules:
1. If the user lent money or gave a loan, money is going OUT: type MUST be "loan_receivable".
2. If the user borrowed money or took a loan, money is coming IN as a liability: type MUST be "loan_payable".
3. For any loan-related transaction the category is "Loan".

Examples:
- "i purchased a swift car for 1000000 rupees" -> {"type":"expense","amount":1000000,"description":"Purchase swift car","category":"Vehicle"}
- "bought 10 chairs for 1000 total" -> {"type":"expense","amount":1000,"description":"Purchase of 10 chairs","category":"Furniture","inventory":{"item":"chair","quantity":10,"unit_price":100,"total_value":1000}}
- "got my 50000 salary" -> {"type":"income","amount":50000,"description":"Salary","category":"Salary"}
- "lent 5000 rs to Rohan" -> {"type":"loan_receivable","amount":5000,"description":"Lent money to Rohan","category":"Loan"}
- "took a loan of 20000 from my friend" -> {"type":"loan_payable","amount":20000,"description":"Took a loan from friend","category":"Loan"}

IMPORTANT: respond with ONLY the raw, single-line, compact JSON object. No markdown, no code fences.

User input: `

// wire matches the model's JSON. Amounts come back as numbers or numeric
// strings depending on the model's mood; json.Number absorbs both.
type wire struct {
	Type        string      `json:"type"`
	Amount      json.Number `json:"amount"`
	TotalAmount json.Number `json:"total_amount"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	Inventory   *struct {
		Item       string      `json:"item"`
		Quantity   json.Number `json:"quantity"`
		UnitPrice  json.Number `json:"unit_price"`
		TotalValue json.Number `json:"total_value"`
	} `json:"inventory"`
	GSTDetails *struct {
		BaseAmount json.Number `json:"base_amount"`
		GSTAmount  json.Number `json:"gst_amount"`
	} `json:"gst_details"`
	Error string `json:"error"`
}

// ParseQuery sends the text to the model and maps the strict-JSON reply onto
// a books.ParsedQuery.
func (p *Parser) ParseQuery(ctx context.Context, text string) (*books.ParsedQuery, error) {
	ctx, cancel := context.WithTimeout(ctx, Timeout)
	defer cancel()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("nlparse: create genai client: %w", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: systemPrompt + quoteText(text)},
			},
		},
	}
	resp, err := client.Models.GenerateContent(ctx, p.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("nlparse: generate content: %w", err)
	}
	raw := resp.Text()
	if raw == "" {
		return nil, fmt.Errorf("nlparse: empty response from model")
	}

	var w wire
	if err := json.Unmarshal([]byte(cleanModelJSON(raw)), &w); err != nil {
		return nil, fmt.Errorf("nlparse: unmarshal model reply: %w", err)
	}
	if w.Error != "" {
		return nil, fmt.Errorf("nlparse: model error: %s", w.Error)
	}

	amount := w.Amount
	if amount == "" {
		amount = w.TotalAmount
	}
	parsed := &books.ParsedQuery{
		Type:        books.TxType(w.Type),
		Amount:      toDecimal(amount),
		Description: w.Description,
		Category:    w.Category,
	}
	if w.Inventory != nil {
		parsed.Inventory = &books.ParsedInventory{
			Item:       w.Inventory.Item,
			Quantity:   toDecimal(w.Inventory.Quantity),
			UnitPrice:  toDecimal(w.Inventory.UnitPrice),
			TotalValue: toDecimal(w.Inventory.TotalValue),
		}
	}
	if w.GSTDetails != nil {
		parsed.GST = &books.ParsedGST{
			BaseAmount: toDecimal(w.GSTDetails.BaseAmount),
			GSTAmount:  toDecimal(w.GSTDetails.GSTAmount),
		}
	}
	return parsed, nil
}

func toDecimal(n json.Number) decimal.Decimal {
	if n == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}

// quoteText quotes the user text so a stray quote cannot break the prompt
// out of its place.
func quoteText(text string) string {
	b, _ := json.Marshal(text)
	return string(b)
}

// cleanModelJSON strips markdown fences when the model ignores the
// plain-JSON instruction.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
