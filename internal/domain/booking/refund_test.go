package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var refundNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func tripIn(days int) time.Time {
	return refundNow.AddDate(0, 0, days)
}

func TestTieredRefundPolicy_Tiers(t *testing.T) {
	policy := NewTieredRefundPolicy()

	tests := []struct {
		name       string
		totalCents int64
		daysAhead  int
		wantPct    int
		wantAmount int64
	}{
		{"35 days ahead gets full refund", 18500, 35, 100, 18500},
		{"10 days ahead gets half refund", 5500, 10, 50, 2750},
		{"2 days ahead gets nothing", 45000, 2, 0, 0},
		{"30 day boundary is full refund", 10000, 30, 100, 10000},
		{"29 days falls to 75 percent", 10000, 29, 75, 7500},
		{"15 day boundary is 75 percent", 10000, 15, 75, 7500},
		{"14 days falls to half", 10000, 14, 50, 5000},
		{"7 day boundary is half", 10000, 7, 50, 5000},
		{"6 days gets nothing", 10000, 6, 0, 0},
		{"trip already passed gets nothing", 10000, -3, 0, 0},
		{"zero total yields zero", 0, 35, 100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote := policy.Quote(tt.totalCents, tripIn(tt.daysAhead), refundNow)
			assert.Equal(t, tt.wantPct, quote.Percentage)
			assert.Equal(t, tt.wantAmount, quote.AmountCents)
			assert.Equal(t, tt.daysAhead, quote.DaysUntilTrip)
		})
	}
}

func TestTieredRefundPolicy_RoundsHalfUp(t *testing.T) {
	policy := NewTieredRefundPolicy()

	// 333 * 50% = 166.5, rounded half-up to 167.
	quote := policy.Quote(333, tripIn(10), refundNow)
	assert.Equal(t, int64(167), quote.AmountCents)

	// 1001 * 75% = 750.75, rounded to 751.
	quote = policy.Quote(1001, tripIn(20), refundNow)
	assert.Equal(t, int64(751), quote.AmountCents)
}

func TestTieredRefundPolicy_IsPure(t *testing.T) {
	policy := NewTieredRefundPolicy()
	trip := tripIn(20)

	first := policy.Quote(8000, trip, refundNow)
	second := policy.Quote(8000, trip, refundNow)
	assert.Equal(t, first, second)
}

func TestDaysUntilTrip_RoundsPartialDaysUp(t *testing.T) {
	// 29 days and one hour counts as 30 full days.
	trip := refundNow.AddDate(0, 0, 29).Add(time.Hour)
	assert.Equal(t, 30, DaysUntilTrip(trip, refundNow))

	// Exactly 29 days stays 29.
	assert.Equal(t, 29, DaysUntilTrip(refundNow.AddDate(0, 0, 29), refundNow))

	// A trip earlier today is 0, yesterday is negative.
	assert.Equal(t, 0, DaysUntilTrip(refundNow.Add(-time.Hour), refundNow))
	assert.Equal(t, -1, DaysUntilTrip(refundNow.AddDate(0, 0, -1), refundNow))
}

func TestDerivePercentage(t *testing.T) {
	assert.Equal(t, 50, DerivePercentage(5000, 10000))
	assert.Equal(t, 100, DerivePercentage(10000, 10000))
	assert.Equal(t, 0, DerivePercentage(0, 10000))
	// 3333/10000 = 33.33%, rounded to 33.
	assert.Equal(t, 33, DerivePercentage(3333, 10000))
	// Zero total price can never yield a percentage.
	assert.Equal(t, 0, DerivePercentage(5000, 0))
}
