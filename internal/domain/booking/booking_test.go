package booking

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripora-travel/service-booking/pkg/domain"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestBooking(t *testing.T, totalCents int64, daysAhead int) *Booking {
	t.Helper()
	bk, err := NewBooking(uuid.New(), uuid.New(), 2, totalCents, "USD", testNow.AddDate(0, 0, daysAhead))
	require.NoError(t, err)
	return bk
}

func paidTestBooking(t *testing.T, totalCents int64, daysAhead int) *Booking {
	t.Helper()
	bk := newTestBooking(t, totalCents, daysAhead)
	require.NoError(t, bk.ConfirmPayment("pay_123"))
	return bk
}

func TestNewBooking(t *testing.T) {
	bk := newTestBooking(t, 18500, 35)

	assert.Equal(t, StatusPending, bk.Status())
	assert.Equal(t, PaymentPending, bk.PaymentStatus())
	assert.Equal(t, RefundNone, bk.RefundStatus())
	assert.Equal(t, int64(1), bk.Version())
	assert.Regexp(t, `^TR-[A-HJ-NP-Z2-9]{6}$`, bk.BookingNumber())
}

func TestNewBooking_Validation(t *testing.T) {
	trip := testNow.AddDate(0, 0, 30)

	_, err := NewBooking(uuid.Nil, uuid.New(), 1, 1000, "USD", trip)
	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))

	_, err = NewBooking(uuid.New(), uuid.Nil, 1, 1000, "USD", trip)
	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))

	_, err = NewBooking(uuid.New(), uuid.New(), 0, 1000, "USD", trip)
	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))

	_, err = NewBooking(uuid.New(), uuid.New(), 1, -1, "USD", trip)
	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))

	_, err = NewBooking(uuid.New(), uuid.New(), 1, 1000, "USD", time.Time{})
	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))
}

func TestConfirmPayment(t *testing.T) {
	bk := newTestBooking(t, 18500, 35)

	require.NoError(t, bk.ConfirmPayment("pay_abc"))
	assert.Equal(t, StatusConfirmed, bk.Status())
	assert.Equal(t, PaymentPaid, bk.PaymentStatus())
	assert.Equal(t, "pay_abc", bk.PaymentID())
}

func TestConfirmPayment_TerminalBookingRejected(t *testing.T) {
	bk := paidTestBooking(t, 18500, 35)
	require.NoError(t, bk.OverrideStatus(StatusCompleted))

	err := bk.ConfirmPayment("pay_late")
	assert.Equal(t, domain.CodeInvalidState, domain.CodeOf(err))
}

func TestRequestCancellation_Paid(t *testing.T) {
	bk := paidTestBooking(t, 18500, 35)
	quote := RefundQuote{Percentage: 100, AmountCents: 18500, DaysUntilTrip: 35}

	require.NoError(t, bk.RequestCancellation("change of plans", quote, testNow))

	assert.Equal(t, StatusCancellationRequested, bk.Status())
	assert.Equal(t, "change of plans", bk.CancellationReason())
	assert.Equal(t, ActorUser, bk.CancelledBy())
	require.NotNil(t, bk.CancellationRequestedAt())
	assert.Equal(t, testNow, *bk.CancellationRequestedAt())
	assert.Equal(t, int64(18500), bk.RefundAmountCents())
	assert.Equal(t, 100, bk.RefundPercentage())
	assert.Equal(t, RefundPending, bk.RefundStatus())
	// Payment status is untouched until approval.
	assert.Equal(t, PaymentPaid, bk.PaymentStatus())
}

func TestRequestCancellation_UnpaidGetsNoRefund(t *testing.T) {
	bk := newTestBooking(t, 18500, 35)
	quote := RefundQuote{Percentage: 100, AmountCents: 18500, DaysUntilTrip: 35}

	require.NoError(t, bk.RequestCancellation("found a better deal", quote, testNow))

	assert.Equal(t, StatusCancellationRequested, bk.Status())
	assert.Equal(t, RefundNone, bk.RefundStatus())
}

func TestRequestCancellation_ZeroQuoteKeepsRefundNone(t *testing.T) {
	bk := paidTestBooking(t, 45000, 2)
	quote := RefundQuote{Percentage: 0, AmountCents: 0, DaysUntilTrip: 2}

	require.NoError(t, bk.RequestCancellation("emergency", quote, testNow))

	assert.Equal(t, RefundNone, bk.RefundStatus())
	assert.Equal(t, int64(0), bk.RefundAmountCents())
}

func TestRequestCancellation_AlreadyRequestedRejected(t *testing.T) {
	bk := paidTestBooking(t, 18500, 35)
	quote := RefundQuote{Percentage: 100, AmountCents: 18500, DaysUntilTrip: 35}
	require.NoError(t, bk.RequestCancellation("first", quote, testNow))

	err := bk.RequestCancellation("second", quote, testNow)
	assert.Equal(t, domain.CodeInvalidTransition, domain.CodeOf(err))
}

func TestRequestCancellation_TerminalRejected(t *testing.T) {
	bk := paidTestBooking(t, 18500, 35)
	require.NoError(t, bk.OverrideStatus(StatusCompleted))
	quote := RefundQuote{Percentage: 100, AmountCents: 18500, DaysUntilTrip: 35}

	err := bk.RequestCancellation("too late", quote, testNow)
	assert.Equal(t, domain.CodeInvalidTransition, domain.CodeOf(err))
	assert.Equal(t, StatusCompleted, bk.Status())
}

func TestApproveCancellation_AfterRequest(t *testing.T) {
	bk := paidTestBooking(t, 18500, 35)
	quote := RefundQuote{Percentage: 100, AmountCents: 18500, DaysUntilTrip: 35}
	require.NoError(t, bk.RequestCancellation("change of plans", quote, testNow))

	approveAt := testNow.Add(2 * time.Hour)
	require.NoError(t, bk.ApproveCancellation(quote, "approved per policy", approveAt))

	assert.Equal(t, StatusCancelled, bk.Status())
	assert.Equal(t, PaymentRefunded, bk.PaymentStatus())
	assert.Equal(t, RefundPending, bk.RefundStatus())
	require.NotNil(t, bk.CancelledAt())
	assert.Equal(t, approveAt, *bk.CancelledAt())
	// The user's reason and actor survive the approval.
	assert.Equal(t, "change of plans", bk.CancellationReason())
	assert.Equal(t, ActorUser, bk.CancelledBy())
	assert.Equal(t, "approved per policy", bk.AdminNotes())
}

func TestApproveCancellation_PartialRefundMarksPartiallyRefunded(t *testing.T) {
	bk := paidTestBooking(t, 5500, 10)
	quote := RefundQuote{Percentage: 50, AmountCents: 2750, DaysUntilTrip: 10}
	require.NoError(t, bk.RequestCancellation("schedule conflict", quote, testNow))

	require.NoError(t, bk.ApproveCancellation(quote, "", testNow))

	assert.Equal(t, PaymentPartiallyRefunded, bk.PaymentStatus())
	assert.Equal(t, int64(2750), bk.RefundAmountCents())
}

func TestApproveCancellation_ForceCancelWithoutRequest(t *testing.T) {
	bk := paidTestBooking(t, 18500, 35)
	quote := RefundQuote{Percentage: 100, AmountCents: 18500, DaysUntilTrip: 35}

	require.NoError(t, bk.ApproveCancellation(quote, "fraud review", testNow))

	assert.Equal(t, StatusCancelled, bk.Status())
	assert.Equal(t, ActorAdmin, bk.CancelledBy())
	assert.Equal(t, defaultAdminCancelReason, bk.CancellationReason())
}

func TestApproveCancellation_ZeroRefund(t *testing.T) {
	bk := paidTestBooking(t, 45000, 2)
	quote := RefundQuote{Percentage: 0, AmountCents: 0, DaysUntilTrip: 2}

	require.NoError(t, bk.ApproveCancellation(quote, "", testNow))

	assert.Equal(t, StatusCancelled, bk.Status())
	assert.Equal(t, RefundNone, bk.RefundStatus())
	assert.Equal(t, PaymentPaid, bk.PaymentStatus())
}

func TestApproveCancellation_AlreadyCancelledRejected(t *testing.T) {
	bk := paidTestBooking(t, 18500, 35)
	quote := RefundQuote{Percentage: 100, AmountCents: 18500, DaysUntilTrip: 35}
	require.NoError(t, bk.ApproveCancellation(quote, "", testNow))

	err := bk.ApproveCancellation(quote, "", testNow)
	assert.Equal(t, domain.CodeInvalidTransition, domain.CodeOf(err))
}

func TestApproveCancellation_CompletedRejected(t *testing.T) {
	bk := paidTestBooking(t, 18500, 35)
	require.NoError(t, bk.OverrideStatus(StatusCompleted))
	quote := RefundQuote{Percentage: 100, AmountCents: 18500, DaysUntilTrip: 35}

	err := bk.ApproveCancellation(quote, "", testNow)
	assert.Equal(t, domain.CodeInvalidTransition, domain.CodeOf(err))
	assert.Equal(t, StatusCompleted, bk.Status())
	assert.Equal(t, PaymentPaid, bk.PaymentStatus())
}

func TestApproveCancellation_RefundAboveTotalRejected(t *testing.T) {
	bk := paidTestBooking(t, 10000, 35)
	quote := RefundQuote{Percentage: 120, AmountCents: 12000, DaysUntilTrip: 35}

	err := bk.ApproveCancellation(quote, "", testNow)
	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))
	assert.Equal(t, StatusConfirmed, bk.Status())
}

func TestRejectCancellation_RestoresPaidBookingToConfirmed(t *testing.T) {
	bk := paidTestBooking(t, 18500, 35)
	quote := RefundQuote{Percentage: 100, AmountCents: 18500, DaysUntilTrip: 35}
	require.NoError(t, bk.RequestCancellation("change of plans", quote, testNow))

	require.NoError(t, bk.RejectCancellation("trip is non-refundable per contract", testNow))

	assert.Equal(t, StatusConfirmed, bk.Status())
	assert.Equal(t, PaymentPaid, bk.PaymentStatus())
	assert.Empty(t, bk.CancellationReason())
	assert.Empty(t, string(bk.CancelledBy()))
	assert.Nil(t, bk.CancellationRequestedAt())
	assert.Equal(t, int64(0), bk.RefundAmountCents())
	assert.Equal(t, 0, bk.RefundPercentage())
	assert.Equal(t, RefundNone, bk.RefundStatus())
	assert.Equal(t, "trip is non-refundable per contract", bk.AdminNotes())
}

func TestRejectCancellation_RestoresUnpaidBookingToPending(t *testing.T) {
	bk := newTestBooking(t, 18500, 35)
	quote := RefundQuote{Percentage: 100, AmountCents: 18500, DaysUntilTrip: 35}
	require.NoError(t, bk.RequestCancellation("on second thought", quote, testNow))

	require.NoError(t, bk.RejectCancellation("", testNow))

	assert.Equal(t, StatusPending, bk.Status())
}

func TestRejectCancellation_OnlyFromCancellationRequested(t *testing.T) {
	bk := paidTestBooking(t, 18500, 35)

	err := bk.RejectCancellation("", testNow)
	assert.Equal(t, domain.CodeInvalidState, domain.CodeOf(err))
}

func cancelledPaidBooking(t *testing.T, totalCents, refundCents int64) *Booking {
	t.Helper()
	bk := paidTestBooking(t, totalCents, 35)
	pct := DerivePercentage(refundCents, totalCents)
	quote := RefundQuote{Percentage: pct, AmountCents: refundCents, DaysUntilTrip: 35}
	require.NoError(t, bk.ApproveCancellation(quote, "", testNow))
	return bk
}

func TestCompleteRefund(t *testing.T) {
	bk := cancelledPaidBooking(t, 18500, 18500)
	require.NoError(t, bk.BeginRefundProcessing())
	assert.Equal(t, RefundProcessing, bk.RefundStatus())

	processedAt := testNow.Add(time.Minute)
	require.NoError(t, bk.CompleteRefund("rf_789", processedAt))

	assert.Equal(t, RefundCompleted, bk.RefundStatus())
	assert.Equal(t, "rf_789", bk.GatewayRefundID())
	assert.Equal(t, PaymentRefunded, bk.PaymentStatus())
	require.NotNil(t, bk.RefundProcessedAt())
	assert.Equal(t, processedAt, *bk.RefundProcessedAt())
}

func TestCompleteRefund_PartialAmount(t *testing.T) {
	bk := cancelledPaidBooking(t, 10000, 5000)

	require.NoError(t, bk.CompleteRefund("rf_partial", testNow))

	assert.Equal(t, PaymentPartiallyRefunded, bk.PaymentStatus())
}

func TestCompleteRefund_AlreadyProcessedRejected(t *testing.T) {
	bk := cancelledPaidBooking(t, 18500, 18500)
	require.NoError(t, bk.CompleteRefund("rf_1", testNow))

	err := bk.CompleteRefund("rf_2", testNow)
	assert.Equal(t, domain.CodeAlreadyProcessed, domain.CodeOf(err))
	assert.Equal(t, "rf_1", bk.GatewayRefundID())
}

func TestRefundProcessing_RequiresCancelledBooking(t *testing.T) {
	bk := paidTestBooking(t, 18500, 35)

	err := bk.BeginRefundProcessing()
	assert.Equal(t, domain.CodeInvalidState, domain.CodeOf(err))
}

func TestRefundProcessing_RequiresRefundAmount(t *testing.T) {
	bk := paidTestBooking(t, 45000, 2)
	quote := RefundQuote{Percentage: 0, AmountCents: 0, DaysUntilTrip: 2}
	require.NoError(t, bk.ApproveCancellation(quote, "", testNow))

	err := bk.BeginRefundProcessing()
	assert.Equal(t, domain.CodeInvalidState, domain.CodeOf(err))
}

func TestFailRefund_KeepsBookingCancelled(t *testing.T) {
	bk := cancelledPaidBooking(t, 18500, 18500)
	require.NoError(t, bk.BeginRefundProcessing())

	bk.FailRefund("insufficient gateway balance")

	assert.Equal(t, StatusCancelled, bk.Status())
	assert.Equal(t, RefundFailed, bk.RefundStatus())
	assert.Equal(t, "insufficient gateway balance", bk.RefundFailureReason())
}

func TestFailRefund_CanBeRetriedToCompletion(t *testing.T) {
	bk := cancelledPaidBooking(t, 18500, 18500)
	bk.FailRefund("gateway timeout")

	require.NoError(t, bk.BeginRefundProcessing())
	require.NoError(t, bk.CompleteRefund("rf_retry", testNow))

	assert.Equal(t, RefundCompleted, bk.RefundStatus())
	assert.Empty(t, bk.RefundFailureReason())
}

func TestQueueRefund(t *testing.T) {
	bk := cancelledPaidBooking(t, 18500, 18500)

	require.NoError(t, bk.QueueRefund())
	assert.Equal(t, RefundPending, bk.RefundStatus())
}

func TestOverrideStatus_ConsultsTransitionTable(t *testing.T) {
	bk := paidTestBooking(t, 18500, 35)

	require.NoError(t, bk.OverrideStatus(StatusCompleted))
	assert.Equal(t, StatusCompleted, bk.Status())

	err := bk.OverrideStatus(StatusConfirmed)
	assert.Equal(t, domain.CodeInvalidTransition, domain.CodeOf(err))
}

func TestOverridePaymentStatus_BypassesValidation(t *testing.T) {
	bk := newTestBooking(t, 18500, 35)

	bk.OverridePaymentStatus(PaymentFailed)
	assert.Equal(t, PaymentFailed, bk.PaymentStatus())
}

func TestIncrementVersion(t *testing.T) {
	bk := newTestBooking(t, 18500, 35)
	bk.IncrementVersion()
	assert.Equal(t, int64(2), bk.Version())
}
