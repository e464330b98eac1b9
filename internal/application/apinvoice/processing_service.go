package apinvoice

import (
	"context"

	"github.com/freightdesk/backend/internal/domain/apinvoice"
	"github.com/freightdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProcessResult summarizes one extraction run over an upload
type ProcessResult struct {
	UploadID       uuid.UUID                     `json:"upload_id"`
	Classification *apinvoice.PageClassification `json:"classification"`
	Records        []apinvoice.ExtractedRecord   `json:"records"`
	Matches        []apinvoice.MatchedPair       `json:"matches"`
	Status         apinvoice.UploadStatus        `json:"status"`
}

// ProcessingService drives the extraction pipeline for one upload:
// classification (best-effort), structured extraction (hard failure), then
// matching of extracted records against stored shipments.
type ProcessingService struct {
	uploads    apinvoice.UploadRepository
	results    apinvoice.ExtractionResultRepository
	extraction apinvoice.ExtractionService
	documents  DocumentStore
	matcher    *apinvoice.Matcher
	logger     *zap.Logger
}

// NewProcessingService creates a new ProcessingService
func NewProcessingService(
	uploads apinvoice.UploadRepository,
	results apinvoice.ExtractionResultRepository,
	extraction apinvoice.ExtractionService,
	documents DocumentStore,
	matcher *apinvoice.Matcher,
	logger *zap.Logger,
) *ProcessingService {
	return &ProcessingService{
		uploads:    uploads,
		results:    results,
		extraction: extraction,
		documents:  documents,
		matcher:    matcher,
		logger:     logger,
	}
}

// ProcessUpload runs classification, extraction and matching for the upload.
// Classification failures degrade to the safe default and never block the
// rest of the pipeline; extraction failures mark the upload failed and abort.
func (s *ProcessingService) ProcessUpload(ctx context.Context, uploadID uuid.UUID) (*ProcessResult, error) {
	upload, err := s.uploads.FindByID(ctx, uploadID)
	if err != nil {
		return nil, err
	}

	upload.MarkProcessing()
	if err := s.uploads.Save(ctx, upload); err != nil {
		return nil, err
	}

	document, err := s.documents.Get(ctx, upload.StorageKey)
	if err != nil {
		s.failUpload(ctx, upload, "document read failed: "+err.Error())
		return nil, shared.NewDomainError("EXTERNAL_SERVICE", "Failed to read uploaded document")
	}

	classification, err := s.extraction.ClassifyPages(ctx, document, upload.ContentType)
	if err != nil {
		// classification is best-effort and must never block extraction
		s.logger.Warn("page classification degraded to default",
			zap.String("upload_id", uploadID.String()),
			zap.Error(err))
		classification = apinvoice.DefaultClassification()
	}

	// merge-only write so concurrent writers can add other upload metadata
	if err := s.uploads.SaveClassification(ctx, uploadID, classification); err != nil {
		s.logger.Warn("failed to persist page classification",
			zap.String("upload_id", uploadID.String()),
			zap.Error(err))
	}
	upload.Classification = classification

	records, err := s.extraction.Extract(ctx, document, upload.ContentType)
	if err != nil {
		s.failUpload(ctx, upload, "extraction failed: "+err.Error())
		return nil, err
	}

	matches, err := s.matcher.Match(ctx, records)
	if err != nil {
		s.failUpload(ctx, upload, "matching failed: "+err.Error())
		return nil, err
	}

	result := apinvoice.NewExtractionResult(uploadID, records)
	result.Matches = matches
	if err := s.results.Save(ctx, result); err != nil {
		return nil, err
	}

	upload.MarkExtracted()
	if err := s.uploads.Save(ctx, upload); err != nil {
		return nil, err
	}

	s.logger.Info("upload processed",
		zap.String("upload_id", uploadID.String()),
		zap.Int("records", len(records)),
		zap.Int("matches", len(matches)))

	return &ProcessResult{
		UploadID:       uploadID,
		Classification: classification,
		Records:        records,
		Matches:        matches,
		Status:         upload.Status,
	}, nil
}

func (s *ProcessingService) failUpload(ctx context.Context, upload *apinvoice.UploadRecord, reason string) {
	upload.MarkFailed(reason)
	if err := s.uploads.Save(ctx, upload); err != nil {
		s.logger.Error("failed to mark upload as failed",
			zap.String("upload_id", upload.ID.String()),
			zap.Error(err))
	}
}
