package apinvoice

import (
	"context"
	"time"

	"github.com/freightdesk/backend/internal/domain/shared"
	"github.com/freightdesk/backend/internal/domain/shipment"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PageType classifies a single page of an uploaded document
type PageType string

const (
	PageTypeInvoice      PageType = "invoice"
	PageTypeBOL          PageType = "bol"
	PageTypeConfirmation PageType = "confirmation"
	PageTypeOther        PageType = "other"
	PageTypeUnknown      PageType = "unknown"
)

// Page is one classified page of a document
type Page struct {
	Index int      `json:"index"`
	Type  PageType `json:"type"`
}

// PageClassification is the best-effort page-level classification of an
// uploaded document. It never blocks downstream work.
type PageClassification struct {
	Pages         []Page `json:"pages"`
	MultiDocument bool   `json:"multiDocument"`
}

// DefaultClassification is the safe fallback returned when the classification
// response cannot be parsed.
func DefaultClassification() *PageClassification {
	return &PageClassification{
		Pages:         []Page{{Index: 1, Type: PageTypeUnknown}},
		MultiDocument: false,
	}
}

// RecordType tags an extracted record per the extraction contract
type RecordType string

const (
	RecordTypeShipment RecordType = "shipment"
	RecordTypeCharge   RecordType = "charge"
)

// ExtractedRecord is one structured record pulled out of a carrier invoice.
// ShipmentHint is the extraction pipeline's proposed best-match reference;
// it may be an internal ID, an external shipment code, or empty.
type ExtractedRecord struct {
	Type          RecordType              `json:"type"`
	ShipmentHint  string                  `json:"shipment_hint,omitempty"`
	InvoiceNumber string                  `json:"invoice_number"`
	InvoiceDate   time.Time               `json:"invoice_date"`
	Total         decimal.Decimal         `json:"total"`
	Currency      string                  `json:"currency"`
	Charges       []shipment.ActualCharge `json:"charges,omitempty"`
}

// InvoiceRef builds the invoice reference carried by downstream mutations
func (r ExtractedRecord) InvoiceRef() shipment.InvoiceRef {
	return shipment.InvoiceRef{Number: r.InvoiceNumber, Date: r.InvoiceDate}
}

// ExtractionResult is the structured output of running extraction over an
// upload. Records keep the order the extraction service emitted them in.
type ExtractionResult struct {
	shared.BaseAggregateRoot
	UploadID uuid.UUID        `json:"upload_id"`
	Records  ExtractedRecords `json:"records"`
	Matches  MatchedPairs     `json:"matches,omitempty"`
}

// NewExtractionResult creates an extraction result for an upload
func NewExtractionResult(uploadID uuid.UUID, records []ExtractedRecord) *ExtractionResult {
	return &ExtractionResult{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UploadID:          uploadID,
		Records:           records,
	}
}

// ExtractionService is the boundary to the external AI extraction service.
// ClassifyPages degrades to DefaultClassification on unparseable responses;
// Extract surfaces them as errors because reconciliation must not run against
// guessed data.
type ExtractionService interface {
	ClassifyPages(ctx context.Context, document []byte, contentType string) (*PageClassification, error)
	Extract(ctx context.Context, document []byte, contentType string) ([]ExtractedRecord, error)
}

// ExtractionResultRepository persists extraction results. Re-running
// extraction replaces the prior result for the upload.
type ExtractionResultRepository interface {
	FindByUploadID(ctx context.Context, uploadID uuid.UUID) (*ExtractionResult, error)
	Save(ctx context.Context, r *ExtractionResult) error
	DeleteByUploadID(ctx context.Context, uploadID uuid.UUID) error
}
