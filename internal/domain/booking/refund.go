package booking

import (
	"math"
	"time"
)

// RefundQuote is the result of a refund calculation: the tier percentage, the
// amount it yields, and the days remaining before the trip at calculation time.
type RefundQuote struct {
	Percentage    int   `json:"refund_percentage"`
	AmountCents   int64 `json:"refund_amount_cents"`
	DaysUntilTrip int   `json:"days_until_trip"`
}

// RefundPolicy defines the interface for calculating cancellation refunds.
type RefundPolicy interface {
	// Quote returns the refund for cancelling a booking of the given total
	// price whose trip starts at tripDate, evaluated at now.
	Quote(totalPriceCents int64, tripDate, now time.Time) RefundQuote
}

// TieredRefundPolicy implements the platform's standard cancellation tiers.
type TieredRefundPolicy struct{}

// NewTieredRefundPolicy creates a new TieredRefundPolicy.
func NewTieredRefundPolicy() *TieredRefundPolicy {
	return &TieredRefundPolicy{}
}

// Quote computes the refund tier from the days remaining until the trip:
//
//   - 30 or more days: 100%
//   - 15 to 29 days:    75%
//   - 7 to 14 days:     50%
//   - under 7 days:      0%
//
// The amount is rounded half-up to the nearest whole currency unit. The
// function is pure; calling it as a preview mutates nothing.
func (p *TieredRefundPolicy) Quote(totalPriceCents int64, tripDate, now time.Time) RefundQuote {
	days := DaysUntilTrip(tripDate, now)

	var pct int
	switch {
	case days >= 30:
		pct = 100
	case days >= 15:
		pct = 75
	case days >= 7:
		pct = 50
	default:
		pct = 0
	}

	return RefundQuote{
		Percentage:    pct,
		AmountCents:   int64(math.Round(float64(totalPriceCents) * float64(pct) / 100)),
		DaysUntilTrip: days,
	}
}

// DaysUntilTrip returns the number of whole days remaining before the trip,
// rounding partial days up. Negative when the trip date has passed.
func DaysUntilTrip(tripDate, now time.Time) int {
	return int(math.Ceil(tripDate.Sub(now).Hours() / 24))
}

// DerivePercentage back-derives a refund percentage from an explicit amount,
// as used for admin overrides. Returns 0 when the total price is zero.
func DerivePercentage(amountCents, totalPriceCents int64) int {
	if totalPriceCents == 0 {
		return 0
	}
	return int(math.Round(float64(amountCents) / float64(totalPriceCents) * 100))
}
