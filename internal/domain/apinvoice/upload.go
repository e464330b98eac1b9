package apinvoice

import (
	"context"
	"time"

	"github.com/freightdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// UploadStatus tracks where an uploaded carrier document is in the pipeline
type UploadStatus string

const (
	UploadStatusUploaded   UploadStatus = "uploaded"
	UploadStatusProcessing UploadStatus = "processing"
	UploadStatusExtracted  UploadStatus = "extracted"
	UploadStatusReconciled UploadStatus = "reconciled"
	UploadStatusFailed     UploadStatus = "failed"
)

// IsValid checks if the status is a valid UploadStatus
func (s UploadStatus) IsValid() bool {
	switch s {
	case UploadStatusUploaded, UploadStatusProcessing, UploadStatusExtracted,
		UploadStatusReconciled, UploadStatusFailed:
		return true
	}
	return false
}

// String returns the string representation of UploadStatus
func (s UploadStatus) String() string {
	return string(s)
}

// UploadRecord is one uploaded carrier invoice document. The record is owned
// by the AP subsystem until it is reconciled or deleted by the cleanup path.
type UploadRecord struct {
	shared.BaseAggregateRoot
	FileName       string
	ContentType    string
	StorageKey     string
	Status         UploadStatus
	Classification *PageClassification
	FailureReason  string
	ProcessedAt    *time.Time
}

// NewUploadRecord creates an upload record for a stored document
func NewUploadRecord(fileName, contentType, storageKey string) (*UploadRecord, error) {
	if fileName == "" || storageKey == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "File name and storage key are required")
	}
	return &UploadRecord{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		FileName:          fileName,
		ContentType:       contentType,
		StorageKey:        storageKey,
		Status:            UploadStatusUploaded,
	}, nil
}

// MarkProcessing moves the upload into the processing state
func (u *UploadRecord) MarkProcessing() {
	u.Status = UploadStatusProcessing
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
}

// MarkExtracted records successful extraction
func (u *UploadRecord) MarkExtracted() {
	now := time.Now()
	u.Status = UploadStatusExtracted
	u.ProcessedAt = &now
	u.UpdatedAt = now
	u.IncrementVersion()
}

// MarkReconciled records that a committing reconciliation ran over the upload
func (u *UploadRecord) MarkReconciled() {
	u.Status = UploadStatusReconciled
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
}

// MarkFailed records a pipeline failure with its reason
func (u *UploadRecord) MarkFailed(reason string) {
	u.Status = UploadStatusFailed
	u.FailureReason = reason
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
}

// UploadRepository defines the persistence interface for upload records.
// SaveClassification merges only the classification fields into the stored
// record so concurrent writers can add other metadata without being clobbered.
type UploadRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*UploadRecord, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]*UploadRecord, error)
	Save(ctx context.Context, u *UploadRecord) error
	SaveClassification(ctx context.Context, id uuid.UUID, classification *PageClassification) error
	Delete(ctx context.Context, id uuid.UUID) error
}
