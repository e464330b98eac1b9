package shipment

import (
	"strings"

	"github.com/shopspring/decimal"
)

// provinceTaxRates maps province/state codes to their jurisdictional tax rate
// for domestic shipments. Rates cover the Canadian GST/HST/QST regimes; a
// default GST rate applies to unrecognized codes.
var provinceTaxRates = map[string]decimal.Decimal{
	"AB": decimal.NewFromFloat(0.05),
	"BC": decimal.NewFromFloat(0.05),
	"MB": decimal.NewFromFloat(0.05),
	"NB": decimal.NewFromFloat(0.15),
	"NL": decimal.NewFromFloat(0.15),
	"NS": decimal.NewFromFloat(0.15),
	"NT": decimal.NewFromFloat(0.05),
	"NU": decimal.NewFromFloat(0.05),
	"ON": decimal.NewFromFloat(0.13),
	"PE": decimal.NewFromFloat(0.15),
	"QC": decimal.NewFromFloat(0.05),
	"SK": decimal.NewFromFloat(0.05),
	"YT": decimal.NewFromFloat(0.05),
}

// defaultTaxRate applies when the province code is not in the table
var defaultTaxRate = decimal.NewFromFloat(0.05)

// TaxRateForProvince returns the tax rate for a province/state code,
// falling back to the default rate for unrecognized codes.
func TaxRateForProvince(code string) decimal.Decimal {
	if rate, ok := provinceTaxRates[strings.ToUpper(strings.TrimSpace(code))]; ok {
		return rate
	}
	return defaultTaxRate
}

// IsTaxLine reports whether a rate line is the jurisdictional tax line
func IsTaxLine(line RateLine) bool {
	return strings.EqualFold(line.Code, "TAX") || strings.Contains(strings.ToLower(line.Name), "tax")
}

// QuotedTaxBase sums the quoted charges of all non-tax lines
func QuotedTaxBase(b RateBreakdown) decimal.Decimal {
	base := decimal.Zero
	for _, l := range b {
		if IsTaxLine(l) {
			continue
		}
		base = base.Add(l.Charge)
	}
	return base
}

// RecomputeQuotedTax returns a new breakdown whose tax line carries the
// quoted-only tax recomputed from the remaining quoted non-tax charges at the
// given rate, with any actual-value tax fields cleared. Breakdowns without a
// tax line are returned unchanged.
func RecomputeQuotedTax(b RateBreakdown, rate decimal.Decimal) RateBreakdown {
	out := b.Clone()
	base := QuotedTaxBase(out)
	for i := range out {
		if !IsTaxLine(out[i]) {
			continue
		}
		out[i].Charge = base.Mul(rate).Round(2)
		out[i].ActualCost = nil
		out[i].ActualCostCurrency = ""
		out[i].ActualCharge = nil
		out[i].ActualChargeCurrency = ""
		out[i].InvoiceNumber = ""
		out[i].Applied = false
		out[i].AppliedAt = nil
	}
	return out
}
