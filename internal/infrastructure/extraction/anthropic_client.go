package extraction

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/freightdesk/backend/internal/domain/apinvoice"
	"github.com/freightdesk/backend/internal/domain/shared"
	"github.com/freightdesk/backend/internal/domain/shared/valueobject"
	"github.com/freightdesk/backend/internal/domain/shipment"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const defaultModel = "claude-sonnet-4-5-20250929"

const classifySystemPrompt = `You classify the pages of carrier shipping documents.
For each page, choose exactly one type from: invoice, bol, confirmation, other.
Set multiDocument to true when the file contains more than one logical document.

Respond with JSON only (no markdown):
{"pages": [{"index": 1, "type": "invoice"}], "multiDocument": false}`

const extractSystemPrompt = `You extract structured records from carrier freight invoices.
Emit one record per shipment referenced by the invoice, and one record per standalone charge that belongs to no shipment.
For shipment records, set shipment_hint to the shipment/pro/reference number printed on the invoice, or "" when none is printed.
Amounts are decimal strings with two fraction digits. Dates are RFC 3339.

Respond with JSON only (no markdown):
{"records": [{"type": "shipment", "shipment_hint": "SHP-1042", "invoice_number": "INV-881", "invoice_date": "2026-01-15T00:00:00Z", "total": "162.50", "currency": "USD", "charges": [{"code": "FRT", "name": "Freight", "amount": "150.00", "currency": "USD"}]}]}`

// Client calls the Anthropic API to classify and extract carrier invoice
// documents. Classification degrades to a safe default on unparseable
// responses; extraction surfaces them as errors.
type Client struct {
	client anthropic.Client
	model  string
	logger *zap.Logger
}

// Config holds the extraction client settings
type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// NewClient creates an extraction client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	return &Client{
		client: anthropic.NewClient(opts...),
		model:  model,
		logger: logger,
	}
}

// ClassifyPages classifies the pages of a document. Any service or parse
// failure degrades to the safe default classification; this call never blocks
// downstream extraction.
func (c *Client) ClassifyPages(ctx context.Context, document []byte, contentType string) (*apinvoice.PageClassification, error) {
	text, err := c.complete(ctx, classifySystemPrompt, documentPayload(document, contentType))
	if err != nil {
		c.logger.Warn("classification call failed, using default", zap.Error(err))
		return apinvoice.DefaultClassification(), nil
	}

	classification, err := parseClassification(text)
	if err != nil {
		c.logger.Warn("classification response unparseable, using default",
			zap.Error(err),
			zap.Int("response_length", len(text)))
		return apinvoice.DefaultClassification(), nil
	}
	return classification, nil
}

// parseClassification decodes the model's classification response. An error
// means the response is unusable and the caller must fall back to the default
// classification.
func parseClassification(text string) (*apinvoice.PageClassification, error) {
	var parsed struct {
		Pages []struct {
			Index int    `json:"index"`
			Type  string `json:"type"`
		} `json:"pages"`
		MultiDocument bool `json:"multiDocument"`
	}
	if err := json.Unmarshal([]byte(stripFences(text)), &parsed); err != nil {
		return nil, fmt.Errorf("classification response is not valid JSON: %w", err)
	}
	if len(parsed.Pages) == 0 {
		return nil, fmt.Errorf("classification response has no pages")
	}

	pages := make([]apinvoice.Page, 0, len(parsed.Pages))
	for _, p := range parsed.Pages {
		pages = append(pages, apinvoice.Page{Index: p.Index, Type: normalizePageType(p.Type)})
	}
	return &apinvoice.PageClassification{Pages: pages, MultiDocument: parsed.MultiDocument}, nil
}

// Extract pulls structured invoice records from the document. Malformed
// responses are a hard error: reconciliation must not run against guessed
// data.
func (c *Client) Extract(ctx context.Context, document []byte, contentType string) ([]apinvoice.ExtractedRecord, error) {
	text, err := c.complete(ctx, extractSystemPrompt, documentPayload(document, contentType))
	if err != nil {
		return nil, shared.NewDomainError("EXTRACTION_FAILED", "Extraction service call failed: "+err.Error())
	}

	var parsed struct {
		Records []struct {
			Type          string `json:"type"`
			ShipmentHint  string `json:"shipment_hint"`
			InvoiceNumber string `json:"invoice_number"`
			InvoiceDate   string `json:"invoice_date"`
			Total         string `json:"total"`
			Currency      string `json:"currency"`
			Charges       []struct {
				Code     string `json:"code"`
				Name     string `json:"name"`
				Amount   string `json:"amount"`
				Currency string `json:"currency"`
			} `json:"charges"`
		} `json:"records"`
	}
	if err := json.Unmarshal([]byte(stripFences(text)), &parsed); err != nil {
		return nil, shared.NewDomainError("EXTRACTION_FAILED",
			fmt.Sprintf("Extraction response is not valid JSON: %v", err))
	}
	if parsed.Records == nil {
		return nil, shared.NewDomainError("EXTRACTION_FAILED", "Extraction response is missing the records array")
	}

	records := make([]apinvoice.ExtractedRecord, 0, len(parsed.Records))
	for i, r := range parsed.Records {
		total, err := decimal.NewFromString(r.Total)
		if err != nil {
			return nil, shared.NewDomainError("EXTRACTION_FAILED",
				fmt.Sprintf("Record %d has a non-decimal total %q", i, r.Total))
		}

		record := apinvoice.ExtractedRecord{
			Type:          apinvoice.RecordType(r.Type),
			ShipmentHint:  strings.TrimSpace(r.ShipmentHint),
			InvoiceNumber: strings.TrimSpace(r.InvoiceNumber),
			Total:         total,
			Currency:      r.Currency,
		}
		if r.InvoiceDate != "" {
			if date, err := time.Parse(time.RFC3339, r.InvoiceDate); err == nil {
				record.InvoiceDate = date
			}
		}
		for _, ch := range r.Charges {
			amount, err := decimal.NewFromString(ch.Amount)
			if err != nil {
				return nil, shared.NewDomainError("EXTRACTION_FAILED",
					fmt.Sprintf("Record %d charge %q has a non-decimal amount %q", i, ch.Name, ch.Amount))
			}
			record.Charges = append(record.Charges, shipment.ActualCharge{
				Code:     ch.Code,
				Name:     ch.Name,
				Amount:   amount,
				Currency: valueobjectCurrency(ch.Currency),
			})
		}
		records = append(records, record)
	}
	return records, nil
}

func (c *Client) complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: 8192,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt, CacheControl: anthropic.NewCacheControlEphemeralParam()},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		return "", err
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			c.logger.Debug("extraction model response",
				zap.Int("response_length", len(block.Text)),
				zap.Int64("tokens_in", message.Usage.InputTokens),
				zap.Int64("tokens_out", message.Usage.OutputTokens))
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("no text content in model response")
}

// documentPayload renders the document for the prompt. Text formats go in
// verbatim; binary formats are base64-encoded.
func documentPayload(document []byte, contentType string) string {
	if strings.HasPrefix(contentType, "text/") || contentType == "application/json" {
		return "Document (" + contentType + "):\n\n" + string(document)
	}
	return "Document (" + contentType + ", base64):\n\n" + base64.StdEncoding.EncodeToString(document)
}

func stripFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

func valueobjectCurrency(code string) valueobject.Currency {
	return valueobject.Currency(strings.ToUpper(strings.TrimSpace(code)))
}

func normalizePageType(raw string) apinvoice.PageType {
	switch apinvoice.PageType(strings.ToLower(strings.TrimSpace(raw))) {
	case apinvoice.PageTypeInvoice:
		return apinvoice.PageTypeInvoice
	case apinvoice.PageTypeBOL:
		return apinvoice.PageTypeBOL
	case apinvoice.PageTypeConfirmation:
		return apinvoice.PageTypeConfirmation
	case apinvoice.PageTypeOther:
		return apinvoice.PageTypeOther
	}
	return apinvoice.PageTypeUnknown
}
