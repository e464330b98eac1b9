package apinvoice

import (
	"context"

	"github.com/freightdesk/backend/internal/domain/apinvoice"
	"github.com/freightdesk/backend/internal/domain/shared"
	"github.com/freightdesk/backend/internal/domain/shipment"
	"go.uber.org/zap"
)

// ApplyCostsResult is the primary result of a cost application. Exception
// detection runs as a separate best-effort side effect and never appears
// here.
type ApplyCostsResult struct {
	ShipmentCode   string                   `json:"shipment_code"`
	CostComparison *shipment.CostComparison `json:"cost_comparison"`
	ActualRates    shipment.RateBreakdown   `json:"actual_rates"`
}

// UnapplyCostsResult reports which charge codes actually had values stripped
type UnapplyCostsResult struct {
	ShipmentCode     string   `json:"shipment_code"`
	ChargesUnapplied []string `json:"charges_unapplied"`
}

// CostService applies and unapplies carrier-invoiced costs on shipments.
// Mutations are serialized per shipment through the locker and persisted with
// an optimistic version check.
type CostService struct {
	locator   *apinvoice.Locator
	shipments shipment.Repository
	locker    ShipmentLocker
	detector  ExceptionDetector
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewCostService creates a new CostService
func NewCostService(
	locator *apinvoice.Locator,
	shipments shipment.Repository,
	locker ShipmentLocker,
	detector ExceptionDetector,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *CostService {
	return &CostService{
		locator:   locator,
		shipments: shipments,
		locker:    locker,
		detector:  detector,
		publisher: publisher,
		logger:    logger,
	}
}

// ApplyCosts applies invoiced charges to the shipment the reference resolves
// to. Cancelled shipments reject with a CANCELLED_SHIPMENT outcome. After a
// successful write, exception detection is triggered best-effort: its failure
// is logged and swallowed because the cost application already succeeded.
func (s *CostService) ApplyCosts(ctx context.Context, reference string, charges []shipment.ActualCharge, invoice shipment.InvoiceRef, actor string) (*ApplyCostsResult, error) {
	sh, err := s.locator.Locate(ctx, reference)
	if err != nil {
		return nil, err
	}

	lock, err := s.locker.Acquire(ctx, sh.ShipmentCode)
	if err != nil {
		return nil, err
	}
	defer s.releaseLock(ctx, lock, sh.ShipmentCode)

	expectedVersion := sh.GetVersion()
	comparison, err := sh.ApplyActualCosts(charges, invoice, actor)
	if err != nil {
		return nil, err
	}

	if err := s.shipments.SaveWithLock(ctx, sh, expectedVersion); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, sh)

	if s.detector != nil {
		if err := s.detector.Detect(ctx, sh); err != nil {
			s.logger.Warn("exception detection failed after cost application",
				zap.String("shipment_code", sh.ShipmentCode),
				zap.String("invoice_number", invoice.Number),
				zap.Error(err))
		}
	}

	return &ApplyCostsResult{
		ShipmentCode:   sh.ShipmentCode,
		CostComparison: comparison,
		ActualRates:    sh.ActualRates,
	}, nil
}

// UnapplyCosts strips actual-cost data for the named charges from the
// shipment. The call is idempotent: charges with no actual values present
// are skipped.
func (s *CostService) UnapplyCosts(ctx context.Context, reference string, charges []string, invoice shipment.InvoiceRef, actor string) (*UnapplyCostsResult, error) {
	sh, err := s.locator.Locate(ctx, reference)
	if err != nil {
		return nil, err
	}

	lock, err := s.locker.Acquire(ctx, sh.ShipmentCode)
	if err != nil {
		return nil, err
	}
	defer s.releaseLock(ctx, lock, sh.ShipmentCode)

	expectedVersion := sh.GetVersion()
	affected, err := sh.UnapplyActualCosts(charges, invoice, actor)
	if err != nil {
		return nil, err
	}

	if len(affected) > 0 {
		if err := s.shipments.SaveWithLock(ctx, sh, expectedVersion); err != nil {
			return nil, err
		}
		s.publishEvents(ctx, sh)
	}

	return &UnapplyCostsResult{
		ShipmentCode:     sh.ShipmentCode,
		ChargesUnapplied: affected,
	}, nil
}

func (s *CostService) publishEvents(ctx context.Context, sh *shipment.Shipment) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, sh.GetDomainEvents()...); err != nil {
		s.logger.Warn("failed to publish shipment events",
			zap.String("shipment_code", sh.ShipmentCode),
			zap.Error(err))
	}
	sh.ClearDomainEvents()
}

func (s *CostService) releaseLock(ctx context.Context, lock Lock, shipmentCode string) {
	if err := lock.Release(ctx); err != nil {
		s.logger.Warn("failed to release shipment lock",
			zap.String("shipment_code", shipmentCode),
			zap.Error(err))
	}
}
