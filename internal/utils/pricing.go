package utils

import "math"

const (
	// CommissionRate is the platform's cut on the transport price.
	CommissionRate = 0.12

	// InsuranceRate and InsuranceBaseFee price the optional package
	// protection against the declared package value.
	InsuranceRate    = 0.015
	InsuranceBaseFee = 3.0

	// MaxInsuranceCoverage caps the covered value in euros.
	MaxInsuranceCoverage = 10000.0
)

// PriceQuote is the full price breakdown for a booking. Amounts are exact
// euros; rounding to two decimals is the presentation layer's job.
type PriceQuote struct {
	TransportPrice    float64  `json:"transport_price"`
	Commission        float64  `json:"commission"`
	Subtotal          float64  `json:"subtotal"`
	InsurancePremium  *float64 `json:"insurance_premium,omitempty"`
	InsuranceCoverage *float64 `json:"insurance_coverage,omitempty"`
	Total             float64  `json:"total"`
}

// CalculatePrice computes the transport price, commission, optional
// insurance premium and total for a booking. Pure: no I/O, deterministic
// given inputs. Negative or NaN inputs are clamped to zero before use.
func CalculatePrice(weightKg, pricePerKg, packageValue float64, insuranceOpted bool) PriceQuote {
	weightKg = clampNonNegative(weightKg)
	pricePerKg = clampNonNegative(pricePerKg)
	packageValue = clampNonNegative(packageValue)

	transport := weightKg * pricePerKg
	commission := transport * CommissionRate

	q := PriceQuote{
		TransportPrice: transport,
		Commission:     commission,
		Subtotal:       transport + commission,
	}

	q.Total = q.Subtotal
	if insuranceOpted {
		premium := packageValue*InsuranceRate + InsuranceBaseFee
		coverage := math.Min(packageValue, MaxInsuranceCoverage)
		q.InsurancePremium = &premium
		q.InsuranceCoverage = &coverage
		q.Total += premium
	}

	return q
}

func clampNonNegative(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}
