package valueobject

import "github.com/shopspring/decimal"

// Currency represents a currency code (ISO 4217)
type Currency string

const (
	USD Currency = "USD" // US Dollar (default)
	CAD Currency = "CAD" // Canadian Dollar
	EUR Currency = "EUR" // Euro
	GBP Currency = "GBP" // British Pound
	MXN Currency = "MXN" // Mexican Peso
)

// DefaultCurrency is the default currency for the system
const DefaultCurrency = USD

// CentTolerance is the reconciliation tolerance: variances strictly smaller
// than one cent are considered balanced.
var CentTolerance = decimal.NewFromFloat(0.01)
