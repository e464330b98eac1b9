package models

import (
	"time"

	"github.com/freightdesk/backend/internal/domain/apinvoice"
	"github.com/freightdesk/backend/internal/domain/shared"
	"github.com/freightdesk/backend/internal/domain/shared/valueobject"
	"github.com/freightdesk/backend/internal/domain/shipment"
	"github.com/google/uuid"
)

// ShipmentModel is the persistence model for the Shipment aggregate root.
type ShipmentModel struct {
	AggregateModel
	ShipmentCode string               `gorm:"type:varchar(50);not null;index:idx_shipments_code"`
	CarrierName  string               `gorm:"type:varchar(200)"`
	Currency     valueobject.Currency `gorm:"type:varchar(3);not null;default:'USD'"`
	Status       shipment.Status      `gorm:"type:varchar(30);not null;default:'pending';index"`

	ChargeStatus   string `gorm:"type:varchar(30)"`
	ApprovalStatus string `gorm:"type:varchar(30)"`
	BillingStatus  string `gorm:"type:varchar(30)"`

	InvoiceStatus        shipment.InvoiceStatus        `gorm:"type:varchar(30);not null;default:'uninvoiced';index"`
	InvoiceStatusHistory shipment.InvoiceStatusHistory `gorm:"type:jsonb;default:'[]'"`

	ProcessingAt     *time.Time
	ReadyToInvoiceAt *time.Time
	ExceptionAt      *time.Time
	ProcessedAt      *time.Time
	PendingReviewAt  *time.Time

	ManualRates  shipment.RateBreakdown `gorm:"type:jsonb;default:'[]'"`
	MarkupRates  shipment.RateBreakdown `gorm:"type:jsonb;default:'[]'"`
	CarrierRates shipment.RateBreakdown `gorm:"type:jsonb;default:'[]'"`
	ActualRates  shipment.RateBreakdown `gorm:"type:jsonb;default:'[]'"`

	CostComparison *shipment.CostComparison `gorm:"type:jsonb"`

	Approver         string                   `gorm:"type:varchar(100)"`
	ApprovedAt       *time.Time
	FinalizedCharges shipment.RateBreakdown   `gorm:"type:jsonb;default:'[]'"`
	ChargeOverride   *shipment.ChargeOverride `gorm:"type:jsonb"`

	StatusHistory shipment.StatusHistoryEntries `gorm:"type:jsonb;default:'[]'"`

	OriginCountry string `gorm:"type:varchar(2)"`
	DestCountry   string `gorm:"type:varchar(2)"`
	DestProvince  string `gorm:"type:varchar(3)"`
}

// TableName returns the table name for GORM
func (ShipmentModel) TableName() string {
	return "shipments"
}

// ToDomain converts the persistence model to a domain Shipment entity.
func (m *ShipmentModel) ToDomain() *shipment.Shipment {
	return &shipment.Shipment{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		ShipmentCode:         m.ShipmentCode,
		CarrierName:          m.CarrierName,
		Currency:             m.Currency,
		Status:               m.Status,
		ChargeStatus:         m.ChargeStatus,
		ApprovalStatus:       m.ApprovalStatus,
		BillingStatus:        m.BillingStatus,
		InvoiceStatus:        m.InvoiceStatus,
		InvoiceStatusHistory: m.InvoiceStatusHistory,
		ProcessingAt:         m.ProcessingAt,
		ReadyToInvoiceAt:     m.ReadyToInvoiceAt,
		ExceptionAt:          m.ExceptionAt,
		ProcessedAt:          m.ProcessedAt,
		PendingReviewAt:      m.PendingReviewAt,
		ManualRates:          m.ManualRates,
		MarkupRates:          m.MarkupRates,
		CarrierRates:         m.CarrierRates,
		ActualRates:          m.ActualRates,
		CostComparison:       m.CostComparison,
		Approver:             m.Approver,
		ApprovedAt:           m.ApprovedAt,
		FinalizedCharges:     m.FinalizedCharges,
		ChargeOverride:       m.ChargeOverride,
		StatusHistory:        m.StatusHistory,
		OriginCountry:        m.OriginCountry,
		DestCountry:          m.DestCountry,
		DestProvince:         m.DestProvince,
	}
}

// FromDomain populates the persistence model from a domain Shipment entity.
func (m *ShipmentModel) FromDomain(s *shipment.Shipment) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.ShipmentCode = s.ShipmentCode
	m.CarrierName = s.CarrierName
	m.Currency = s.Currency
	m.Status = s.Status
	m.ChargeStatus = s.ChargeStatus
	m.ApprovalStatus = s.ApprovalStatus
	m.BillingStatus = s.BillingStatus
	m.InvoiceStatus = s.InvoiceStatus
	m.InvoiceStatusHistory = s.InvoiceStatusHistory
	m.ProcessingAt = s.ProcessingAt
	m.ReadyToInvoiceAt = s.ReadyToInvoiceAt
	m.ExceptionAt = s.ExceptionAt
	m.ProcessedAt = s.ProcessedAt
	m.PendingReviewAt = s.PendingReviewAt
	m.ManualRates = s.ManualRates
	m.MarkupRates = s.MarkupRates
	m.CarrierRates = s.CarrierRates
	m.ActualRates = s.ActualRates
	m.CostComparison = s.CostComparison
	m.Approver = s.Approver
	m.ApprovedAt = s.ApprovedAt
	m.FinalizedCharges = s.FinalizedCharges
	m.ChargeOverride = s.ChargeOverride
	m.StatusHistory = s.StatusHistory
	m.OriginCountry = s.OriginCountry
	m.DestCountry = s.DestCountry
	m.DestProvince = s.DestProvince
}

// ShipmentModelFromDomain creates a new persistence model from a domain Shipment.
func ShipmentModelFromDomain(s *shipment.Shipment) *ShipmentModel {
	m := &ShipmentModel{}
	m.FromDomain(s)
	return m
}

// UploadRecordModel is the persistence model for the UploadRecord aggregate.
type UploadRecordModel struct {
	AggregateModel
	FileName       string                        `gorm:"type:varchar(255);not null"`
	ContentType    string                        `gorm:"type:varchar(100)"`
	StorageKey     string                        `gorm:"type:varchar(500);not null"`
	Status         apinvoice.UploadStatus        `gorm:"type:varchar(20);not null;default:'uploaded';index"`
	Classification *apinvoice.PageClassification `gorm:"type:jsonb"`
	FailureReason  string                        `gorm:"type:text"`
	ProcessedAt    *time.Time
}

// TableName returns the table name for GORM
func (UploadRecordModel) TableName() string {
	return "ap_invoice_uploads"
}

// ToDomain converts the persistence model to a domain UploadRecord.
func (m *UploadRecordModel) ToDomain() *apinvoice.UploadRecord {
	return &apinvoice.UploadRecord{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		FileName:       m.FileName,
		ContentType:    m.ContentType,
		StorageKey:     m.StorageKey,
		Status:         m.Status,
		Classification: m.Classification,
		FailureReason:  m.FailureReason,
		ProcessedAt:    m.ProcessedAt,
	}
}

// FromDomain populates the persistence model from a domain UploadRecord.
func (m *UploadRecordModel) FromDomain(u *apinvoice.UploadRecord) {
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	m.FileName = u.FileName
	m.ContentType = u.ContentType
	m.StorageKey = u.StorageKey
	m.Status = u.Status
	m.Classification = u.Classification
	m.FailureReason = u.FailureReason
	m.ProcessedAt = u.ProcessedAt
}

// UploadRecordModelFromDomain creates a new persistence model from a domain UploadRecord.
func UploadRecordModelFromDomain(u *apinvoice.UploadRecord) *UploadRecordModel {
	m := &UploadRecordModel{}
	m.FromDomain(u)
	return m
}

// ExtractionResultModel is the persistence model for extraction results.
// One result per upload; re-running extraction replaces the prior row.
type ExtractionResultModel struct {
	AggregateModel
	UploadID uuid.UUID                  `gorm:"type:uuid;not null;uniqueIndex:idx_extraction_results_upload"`
	Records  apinvoice.ExtractedRecords `gorm:"type:jsonb;default:'[]'"`
	Matches  apinvoice.MatchedPairs     `gorm:"type:jsonb;default:'[]'"`
}

// TableName returns the table name for GORM
func (ExtractionResultModel) TableName() string {
	return "ap_extraction_results"
}

// ToDomain converts the persistence model to a domain ExtractionResult.
func (m *ExtractionResultModel) ToDomain() *apinvoice.ExtractionResult {
	return &apinvoice.ExtractionResult{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		UploadID: m.UploadID,
		Records:  m.Records,
		Matches:  m.Matches,
	}
}

// FromDomain populates the persistence model from a domain ExtractionResult.
func (m *ExtractionResultModel) FromDomain(r *apinvoice.ExtractionResult) {
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	m.UploadID = r.UploadID
	m.Records = r.Records
	m.Matches = r.Matches
}

// ExtractionResultModelFromDomain creates a new persistence model from a domain ExtractionResult.
func ExtractionResultModelFromDomain(r *apinvoice.ExtractionResult) *ExtractionResultModel {
	m := &ExtractionResultModel{}
	m.FromDomain(r)
	return m
}
