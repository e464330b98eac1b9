package shipment

import (
	"strings"
	"time"
	"unicode"

	"github.com/freightdesk/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// RateLine is a single charge line of a rate breakdown.
// Quoted fields and actual fields are strictly separate: a line never carries
// an actual amount in its quoted Charge field or vice versa.
type RateLine struct {
	Code     string               `json:"code"`
	Name     string               `json:"name"`
	Charge   decimal.Decimal      `json:"charge"` // quoted amount
	Currency valueobject.Currency `json:"currency"`

	// Actual-cost fields, populated only after cost application
	ActualCost           *decimal.Decimal     `json:"actual_cost,omitempty"`
	ActualCostCurrency   valueobject.Currency `json:"actual_cost_currency,omitempty"`
	ActualCharge         *decimal.Decimal     `json:"actual_charge,omitempty"`
	ActualChargeCurrency valueobject.Currency `json:"actual_charge_currency,omitempty"`
	InvoiceNumber        string               `json:"invoice_number,omitempty"`
	Applied              bool                 `json:"applied,omitempty"`
	AppliedAt            *time.Time           `json:"applied_at,omitempty"`
}

// HasActuals returns true if any actual-value field is populated
func (l RateLine) HasActuals() bool {
	return l.ActualCost != nil || l.ActualCharge != nil || l.Applied || l.InvoiceNumber != ""
}

// RateBreakdown is an ordered list of rate lines.
// All transforms over breakdowns are pure: they return new slices and never
// mutate the receiver, so callers can hold references safely.
type RateBreakdown []RateLine

// IsEmpty returns true if the breakdown has no lines
func (b RateBreakdown) IsEmpty() bool {
	return len(b) == 0
}

// Clone returns a deep copy of the breakdown
func (b RateBreakdown) Clone() RateBreakdown {
	if b == nil {
		return nil
	}
	out := make(RateBreakdown, len(b))
	copy(out, b)
	for i := range out {
		if b[i].ActualCost != nil {
			v := *b[i].ActualCost
			out[i].ActualCost = &v
		}
		if b[i].ActualCharge != nil {
			v := *b[i].ActualCharge
			out[i].ActualCharge = &v
		}
		if b[i].AppliedAt != nil {
			t := *b[i].AppliedAt
			out[i].AppliedAt = &t
		}
	}
	return out
}

// QuotedTotal sums the quoted charge fields
func (b RateBreakdown) QuotedTotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range b {
		total = total.Add(l.Charge)
	}
	return total
}

// ActualTotal sums the actual charge fields of lines that carry them
func (b RateBreakdown) ActualTotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range b {
		if l.ActualCharge != nil {
			total = total.Add(*l.ActualCharge)
		}
	}
	return total
}

// ActualCharge is one carrier-invoiced charge to apply against a shipment
type ActualCharge struct {
	Code     string               `json:"code"`
	Name     string               `json:"name"`
	Amount   decimal.Decimal      `json:"amount"`
	Currency valueobject.Currency `json:"currency"`
}

// normalize fills defaulted fields: currency falls back to the given default
// and a missing code is derived from the charge name.
func (c ActualCharge) normalize(defaultCurrency valueobject.Currency) ActualCharge {
	if c.Currency == "" {
		c.Currency = defaultCurrency
	}
	if c.Code == "" {
		c.Code = ChargeCodeFromName(c.Name)
	}
	return c
}

// ChargeCodeFromName derives a charge code from a free-form charge name.
// Well-known charge kinds map to fixed codes; anything else falls back to the
// uppercase initials of the name's words (first three letters for one word).
func ChargeCodeFromName(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "freight"):
		return "FRT"
	case strings.Contains(lower, "fuel"):
		return "FSC"
	case strings.Contains(lower, "residential"):
		return "RES"
	case strings.Contains(lower, "tax"):
		return "TAX"
	}

	fields := strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	if len(fields) == 0 {
		return "MISC"
	}
	if len(fields) == 1 {
		word := strings.ToUpper(fields[0])
		if len(word) > 3 {
			word = word[:3]
		}
		return word
	}
	var sb strings.Builder
	for _, f := range fields {
		sb.WriteByte(strings.ToUpper(f)[0])
	}
	return sb.String()
}

// matchesCharge reports whether a line corresponds to the given charge,
// by code equality first, then by substring match against the names.
func matchesCharge(line RateLine, code, name string) bool {
	if code != "" && strings.EqualFold(line.Code, code) {
		return true
	}
	if name == "" {
		return false
	}
	lineName := strings.ToLower(line.Name)
	chargeName := strings.ToLower(name)
	return lineName != "" && (strings.Contains(lineName, chargeName) || strings.Contains(chargeName, lineName))
}

// BuildActualRates builds a pure actual-rate breakdown from invoiced charges.
// Quoted charge fields remain zero; the amounts live in the actual fields.
func BuildActualRates(charges []ActualCharge, defaultCurrency valueobject.Currency, invoice InvoiceRef, at time.Time) RateBreakdown {
	out := make(RateBreakdown, 0, len(charges))
	for _, c := range charges {
		c = c.normalize(defaultCurrency)
		amount := c.Amount
		appliedAt := at
		out = append(out, RateLine{
			Code:                 c.Code,
			Name:                 c.Name,
			Currency:             c.Currency,
			ActualCost:           &amount,
			ActualCostCurrency:   c.Currency,
			ActualCharge:         &amount,
			ActualChargeCurrency: c.Currency,
			InvoiceNumber:        invoice.Number,
			Applied:              true,
			AppliedAt:            &appliedAt,
		})
	}
	return out
}

// MergeActualCharges returns a new breakdown where each invoiced charge has
// been written into the matching quoted line's actual fields. Charges with no
// matching quoted line are appended as actual-only lines.
func MergeActualCharges(quoted RateBreakdown, charges []ActualCharge, defaultCurrency valueobject.Currency, invoice InvoiceRef, at time.Time) RateBreakdown {
	out := quoted.Clone()
	for _, c := range charges {
		c = c.normalize(defaultCurrency)
		matched := false
		for i := range out {
			if matchesCharge(out[i], c.Code, c.Name) {
				amount := c.Amount
				appliedAt := at
				out[i].ActualCost = &amount
				out[i].ActualCostCurrency = c.Currency
				out[i].ActualCharge = &amount
				out[i].ActualChargeCurrency = c.Currency
				out[i].InvoiceNumber = invoice.Number
				out[i].Applied = true
				out[i].AppliedAt = &appliedAt
				matched = true
				break
			}
		}
		if !matched {
			amount := c.Amount
			appliedAt := at
			out = append(out, RateLine{
				Code:                 c.Code,
				Name:                 c.Name,
				Currency:             c.Currency,
				ActualCost:           &amount,
				ActualCostCurrency:   c.Currency,
				ActualCharge:         &amount,
				ActualChargeCurrency: c.Currency,
				InvoiceNumber:        invoice.Number,
				Applied:              true,
				AppliedAt:            &appliedAt,
			})
		}
	}
	return out
}

// StripActualValues returns a new breakdown with the actual-value fields
// removed from every line matching one of the named charges. Quoted fields
// are untouched. Lines with no actual values present are left as-is, which
// makes repeated stripping a no-op per charge.
func StripActualValues(b RateBreakdown, charges []string) (RateBreakdown, []string) {
	out := b.Clone()
	affected := make([]string, 0)
	for _, name := range charges {
		for i := range out {
			if !matchesCharge(out[i], name, name) {
				continue
			}
			if !out[i].HasActuals() {
				continue
			}
			out[i].ActualCost = nil
			out[i].ActualCostCurrency = ""
			out[i].ActualCharge = nil
			out[i].ActualChargeCurrency = ""
			out[i].InvoiceNumber = ""
			out[i].Applied = false
			out[i].AppliedAt = nil
			affected = append(affected, out[i].Code)
		}
	}
	return out, affected
}

// RemoveLines returns a new breakdown without the lines whose code matches
// one of the given charge identifiers.
func RemoveLines(b RateBreakdown, charges []string) RateBreakdown {
	out := make(RateBreakdown, 0, len(b))
	for _, line := range b {
		remove := false
		for _, name := range charges {
			if matchesCharge(line, name, name) {
				remove = true
				break
			}
		}
		if !remove {
			out = append(out, line)
		}
	}
	return out
}
