package shipment

import (
	"time"
)

// InvoiceStatus represents the AP invoice reconciliation status of a shipment.
// It is a separate lifecycle from the transport Status.
type InvoiceStatus string

const (
	InvoiceStatusUninvoiced             InvoiceStatus = "uninvoiced"
	InvoiceStatusProcessing             InvoiceStatus = "processing"
	InvoiceStatusReadyToInvoice         InvoiceStatus = "ready_to_invoice"
	InvoiceStatusException              InvoiceStatus = "exception"
	InvoiceStatusProcessed              InvoiceStatus = "processed"
	InvoiceStatusProcessedWithException InvoiceStatus = "processed_with_exception"
	InvoiceStatusPartiallyProcessed     InvoiceStatus = "partially_processed"
	// InvoiceStatusPending is the re-enterable state a shipment returns to
	// after an administrative override of its approval.
	InvoiceStatusPending InvoiceStatus = "pending"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusUninvoiced, InvoiceStatusProcessing, InvoiceStatusReadyToInvoice,
		InvoiceStatusException, InvoiceStatusProcessed, InvoiceStatusProcessedWithException,
		InvoiceStatusPartiallyProcessed, InvoiceStatusPending:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// IsTerminal returns true if no further invoice transitions are expected
func (s InvoiceStatus) IsTerminal() bool {
	return s == InvoiceStatusProcessed || s == InvoiceStatusProcessedWithException
}

// Label returns the human-readable label persisted with each transition
func (s InvoiceStatus) Label() string {
	switch s {
	case InvoiceStatusUninvoiced:
		return "Uninvoiced"
	case InvoiceStatusProcessing:
		return "Processing"
	case InvoiceStatusReadyToInvoice:
		return "Ready To Invoice"
	case InvoiceStatusException:
		return "Exception"
	case InvoiceStatusProcessed:
		return "Processed"
	case InvoiceStatusProcessedWithException:
		return "Processed With Exception"
	case InvoiceStatusPartiallyProcessed:
		return "Partially Processed"
	case InvoiceStatusPending:
		return "Pending Review"
	}
	return string(s)
}

// InvoiceRef identifies the carrier invoice a transition or cost application
// is associated with.
type InvoiceRef struct {
	Number string    `json:"number"`
	Date   time.Time `json:"date"`
}

// InvoiceStatusTransition is one entry of the invoice-status history.
// The history is append-only and distinct from the general status history.
type InvoiceStatusTransition struct {
	FromStatus InvoiceStatus `json:"from_status"`
	ToStatus   InvoiceStatus `json:"to_status"`
	Label      string        `json:"label"`
	Timestamp  time.Time     `json:"timestamp"`
	Actor      string        `json:"actor"`
	Automatic  bool          `json:"automatic"`
	Invoice    *InvoiceRef   `json:"invoice,omitempty"`
}
