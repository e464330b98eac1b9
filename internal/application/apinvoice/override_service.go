package apinvoice

import (
	"context"
	"errors"

	"github.com/freightdesk/backend/internal/domain/apinvoice"
	"github.com/freightdesk/backend/internal/domain/shared"
	"github.com/freightdesk/backend/internal/domain/shipment"
	"go.uber.org/zap"
)

// OverrideShipmentResult is the per-shipment outcome of a batch override
type OverrideShipmentResult struct {
	Reference string `json:"reference"`
	Success   bool   `json:"success"`
	Reason    string `json:"reason,omitempty"`
}

// OverrideResult aggregates a batch override run
type OverrideResult struct {
	SuccessCount int                      `json:"success_count"`
	FailedCount  int                      `json:"failed_count"`
	Results      []OverrideShipmentResult `json:"results"`
}

// OverrideService reverses approved charge sets back to pending review.
// One shipment's failure never aborts the rest of the batch; partial success
// is expected and reported.
type OverrideService struct {
	locator   *apinvoice.Locator
	shipments shipment.Repository
	locker    ShipmentLocker
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewOverrideService creates a new OverrideService
func NewOverrideService(
	locator *apinvoice.Locator,
	shipments shipment.Repository,
	locker ShipmentLocker,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *OverrideService {
	return &OverrideService{
		locator:   locator,
		shipments: shipments,
		locker:    locker,
		publisher: publisher,
		logger:    logger,
	}
}

// Override reverses the approval of each referenced shipment. Shipments that
// are not currently approved are skipped with a typed reason and never
// mutated.
func (s *OverrideService) Override(ctx context.Context, references []string, reason string, overrideType shipment.OverrideType, actor string) (*OverrideResult, error) {
	if len(references) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "At least one shipment reference is required")
	}

	result := &OverrideResult{Results: make([]OverrideShipmentResult, 0, len(references))}
	for _, reference := range references {
		entry := s.overrideOne(ctx, reference, reason, overrideType, actor)
		if entry.Success {
			result.SuccessCount++
		} else {
			result.FailedCount++
		}
		result.Results = append(result.Results, entry)
	}

	s.logger.Info("charge override batch completed",
		zap.Int("success_count", result.SuccessCount),
		zap.Int("failed_count", result.FailedCount),
		zap.String("actor", actor))
	return result, nil
}

func (s *OverrideService) overrideOne(ctx context.Context, reference, reason string, overrideType shipment.OverrideType, actor string) OverrideShipmentResult {
	sh, err := s.locator.Locate(ctx, reference)
	if err != nil {
		return OverrideShipmentResult{Reference: reference, Reason: failureReason(err)}
	}

	lock, err := s.locker.Acquire(ctx, sh.ShipmentCode)
	if err != nil {
		return OverrideShipmentResult{Reference: reference, Reason: failureReason(err)}
	}
	defer func() {
		if err := lock.Release(ctx); err != nil {
			s.logger.Warn("failed to release shipment lock",
				zap.String("shipment_code", sh.ShipmentCode),
				zap.Error(err))
		}
	}()

	expectedVersion := sh.GetVersion()
	if err := sh.OverrideApproval(reason, overrideType, actor); err != nil {
		return OverrideShipmentResult{Reference: reference, Reason: failureReason(err)}
	}

	if err := s.shipments.SaveWithLock(ctx, sh, expectedVersion); err != nil {
		return OverrideShipmentResult{Reference: reference, Reason: failureReason(err)}
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, sh.GetDomainEvents()...); err != nil {
			s.logger.Warn("failed to publish override events",
				zap.String("shipment_code", sh.ShipmentCode),
				zap.Error(err))
		}
		sh.ClearDomainEvents()
	}

	return OverrideShipmentResult{Reference: reference, Success: true}
}

func failureReason(err error) string {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code + ": " + domainErr.Message
	}
	return err.Error()
}
