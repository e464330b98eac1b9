package shipment

// Status represents the transport lifecycle status of a shipment.
// It is independent of the invoice status and the two must not be conflated.
type Status string

const (
	StatusPending          Status = "pending"
	StatusBooked           Status = "booked"
	StatusScheduled        Status = "scheduled"
	StatusAwaitingShipment Status = "awaiting_shipment"
	StatusInTransit        Status = "in_transit"
	StatusDelivered        Status = "delivered"
	StatusOnHold           Status = "on_hold"
	StatusCanceled         Status = "canceled"
	StatusVoid             Status = "void"
)

// IsValid checks if the status is a valid shipment Status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusBooked, StatusScheduled, StatusAwaitingShipment,
		StatusInTransit, StatusDelivered, StatusOnHold, StatusCanceled, StatusVoid:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsCancelled returns true for canceled or voided shipments.
// Cancelled shipments reject cost application as a business outcome.
func (s Status) IsCancelled() bool {
	return s == StatusCanceled || s == StatusVoid
}
