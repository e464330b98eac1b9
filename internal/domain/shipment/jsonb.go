package shipment

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

func scanJSON(value interface{}, target interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, target)
	case string:
		return json.Unmarshal([]byte(v), target)
	}
	return fmt.Errorf("cannot scan %T into %T", value, target)
}

// Value implements driver.Valuer for JSONB storage
func (b RateBreakdown) Value() (driver.Value, error) {
	if b == nil {
		return "[]", nil
	}
	return json.Marshal(b)
}

// Scan implements sql.Scanner for JSONB storage
func (b *RateBreakdown) Scan(value interface{}) error {
	if value == nil {
		*b = nil
		return nil
	}
	return scanJSON(value, b)
}

// InvoiceStatusHistory is the append-only list of invoice-status transitions,
// stored as JSONB.
type InvoiceStatusHistory []InvoiceStatusTransition

// Value implements driver.Valuer for JSONB storage
func (h InvoiceStatusHistory) Value() (driver.Value, error) {
	if h == nil {
		return "[]", nil
	}
	return json.Marshal(h)
}

// Scan implements sql.Scanner for JSONB storage
func (h *InvoiceStatusHistory) Scan(value interface{}) error {
	if value == nil {
		*h = InvoiceStatusHistory{}
		return nil
	}
	return scanJSON(value, h)
}

// StatusHistoryEntries is the general shipment audit trail, stored as JSONB
type StatusHistoryEntries []StatusHistoryEntry

// Value implements driver.Valuer for JSONB storage
func (e StatusHistoryEntries) Value() (driver.Value, error) {
	if e == nil {
		return "[]", nil
	}
	return json.Marshal(e)
}

// Scan implements sql.Scanner for JSONB storage
func (e *StatusHistoryEntries) Scan(value interface{}) error {
	if value == nil {
		*e = StatusHistoryEntries{}
		return nil
	}
	return scanJSON(value, e)
}

// Value implements driver.Valuer for JSONB storage
func (c *CostComparison) Value() (driver.Value, error) {
	if c == nil {
		return nil, nil
	}
	return json.Marshal(c)
}

// Scan implements sql.Scanner for JSONB storage
func (c *CostComparison) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	return scanJSON(value, c)
}

// Value implements driver.Valuer for JSONB storage
func (o *ChargeOverride) Value() (driver.Value, error) {
	if o == nil {
		return nil, nil
	}
	return json.Marshal(o)
}

// Scan implements sql.Scanner for JSONB storage
func (o *ChargeOverride) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	return scanJSON(value, o)
}
