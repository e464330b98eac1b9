package apinvoice

import (
	"context"

	"github.com/freightdesk/backend/internal/domain/shipment"
)

// DocumentStore reads uploaded documents back by storage key. Upload and
// deletion are owned by the ingestion path.
type DocumentStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
}

// ExceptionDetector runs downstream exception detection over a shipment after
// costs are applied. Calls are best-effort: failures are logged and swallowed
// by the caller, never rolled back.
type ExceptionDetector interface {
	Detect(ctx context.Context, s *shipment.Shipment) error
}

// Lock is a held per-shipment mutation lock
type Lock interface {
	Release(ctx context.Context) error
}

// ShipmentLocker serializes mutations per shipment. Reads and the
// matcher/reconciler loop do not take locks; only the mutating paths
// (apply, unapply, override, status transitions) do.
type ShipmentLocker interface {
	Acquire(ctx context.Context, shipmentCode string) (Lock, error)
}
