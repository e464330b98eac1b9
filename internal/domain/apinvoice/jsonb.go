package apinvoice

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
func (c *PageClassification) Value() (driver.Value, error) {
	if c == nil {
		return nil, nil
	}
	return json.Marshal(c)
}

// Scan implements sql.Scanner for JSONB storage
func (c *PageClassification) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	return scanJSON(value, c)
}

// ExtractedRecords is an ordered list of extracted records, stored as JSONB
type ExtractedRecords []ExtractedRecord

// Value implements driver.Valuer for JSONB storage
func (r ExtractedRecords) Value() (driver.Value, error) {
	if r == nil {
		return "[]", nil
	}
	return json.Marshal(r)
}

// Scan implements sql.Scanner for JSONB storage
func (r *ExtractedRecords) Scan(value interface{}) error {
	if value == nil {
		*r = ExtractedRecords{}
		return nil
	}
	return scanJSON(value, r)
}

// MatchedPairs is the matching-results block of an extraction result,
// stored as JSONB. Resolved shipments are not serialized; only the reference
// and error reason survive a round trip.
type MatchedPairs []MatchedPair

// Value implements driver.Valuer for JSONB storage
func (p MatchedPairs) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner for JSONB storage
func (p *MatchedPairs) Scan(value interface{}) error {
	if value == nil {
		*p = MatchedPairs{}
		return nil
	}
	return scanJSON(value, p)
}
