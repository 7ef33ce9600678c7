package booking

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/tripora-travel/service-booking/pkg/domain"
)

const bookingNumberChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// defaultAdminCancelReason is recorded when an admin force-cancels a booking
// that has no prior user-supplied cancellation request.
const defaultAdminCancelReason = "cancelled by administrator"

// Booking is the aggregate root for the booking domain. All status-changing
// writes go through its behavior methods, which validate transitions before
// mutating anything.
type Booking struct {
	id            uuid.UUID
	bookingNumber string
	userID        uuid.UUID
	packageID     uuid.UUID
	travelers     int

	totalPriceCents int64
	currency        string
	tripDate        time.Time

	status        BookingStatus
	paymentStatus PaymentStatus
	paymentID     string

	cancellationReason      string
	cancelledBy             CancelActor
	cancellationRequestedAt *time.Time
	cancelledAt             *time.Time

	refundAmountCents   int64
	refundPercentage    int
	refundStatus        RefundStatus
	gatewayRefundID     string
	refundFailureReason string
	refundProcessedAt   *time.Time

	adminNotes string

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// generateBookingNumber creates a booking number in the format "TR-XXXXXX".
func generateBookingNumber() (string, error) {
	result := make([]byte, 6)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(bookingNumberChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate booking number: %w", err)
		}
		result[i] = bookingNumberChars[n.Int64()]
	}
	return "TR-" + string(result), nil
}

// NewBooking creates a new Booking aggregate with status=pending.
func NewBooking(
	userID uuid.UUID,
	packageID uuid.UUID,
	travelers int,
	totalPriceCents int64,
	currency string,
	tripDate time.Time,
) (*Booking, error) {
	if userID == uuid.Nil {
		return nil, domain.NewValidationError("user ID is required")
	}
	if packageID == uuid.Nil {
		return nil, domain.NewValidationError("package ID is required")
	}
	if travelers < 1 {
		return nil, domain.NewValidationError("at least one traveler is required")
	}
	if totalPriceCents < 0 {
		return nil, domain.NewValidationError("total price cannot be negative")
	}
	if tripDate.IsZero() {
		return nil, domain.NewValidationError("trip date is required")
	}

	bookingNumber, err := generateBookingNumber()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Booking{
		id:              uuid.New(),
		bookingNumber:   bookingNumber,
		userID:          userID,
		packageID:       packageID,
		travelers:       travelers,
		totalPriceCents: totalPriceCents,
		currency:        currency,
		tripDate:        tripDate,
		status:          StatusPending,
		paymentStatus:   PaymentPending,
		refundStatus:    RefundNone,
		version:         1,
		createdAt:       now,
		updatedAt:       now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id uuid.UUID,
	bookingNumber string,
	userID uuid.UUID,
	packageID uuid.UUID,
	travelers int,
	totalPriceCents int64,
	currency string,
	tripDate time.Time,
	status BookingStatus,
	paymentStatus PaymentStatus,
	paymentID string,
	cancellationReason string,
	cancelledBy CancelActor,
	cancellationRequestedAt *time.Time,
	cancelledAt *time.Time,
	refundAmountCents int64,
	refundPercentage int,
	refundStatus RefundStatus,
	gatewayRefundID string,
	refundFailureReason string,
	refundProcessedAt *time.Time,
	adminNotes string,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Booking {
	return &Booking{
		id:                      id,
		bookingNumber:           bookingNumber,
		userID:                  userID,
		packageID:               packageID,
		travelers:               travelers,
		totalPriceCents:         totalPriceCents,
		currency:                currency,
		tripDate:                tripDate,
		status:                  status,
		paymentStatus:           paymentStatus,
		paymentID:               paymentID,
		cancellationReason:      cancellationReason,
		cancelledBy:             cancelledBy,
		cancellationRequestedAt: cancellationRequestedAt,
		cancelledAt:             cancelledAt,
		refundAmountCents:       refundAmountCents,
		refundPercentage:        refundPercentage,
		refundStatus:            refundStatus,
		gatewayRefundID:         gatewayRefundID,
		refundFailureReason:     refundFailureReason,
		refundProcessedAt:       refundProcessedAt,
		adminNotes:              adminNotes,
		version:                 version,
		createdAt:               createdAt,
		updatedAt:               updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// BookingNumber returns the human-readable booking number.
func (b *Booking) BookingNumber() string { return b.bookingNumber }

// UserID returns the owning customer's user ID.
func (b *Booking) UserID() uuid.UUID { return b.userID }

// PackageID returns the booked travel package's ID.
func (b *Booking) PackageID() uuid.UUID { return b.packageID }

// Travelers returns the traveler count.
func (b *Booking) Travelers() int { return b.travelers }

// TotalPriceCents returns the total price in minor currency units.
func (b *Booking) TotalPriceCents() int64 { return b.totalPriceCents }

// Currency returns the currency code.
func (b *Booking) Currency() string { return b.currency }

// TripDate returns the date the trip begins.
func (b *Booking) TripDate() time.Time { return b.tripDate }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// PaymentStatus returns the current payment status.
func (b *Booking) PaymentStatus() PaymentStatus { return b.paymentStatus }

// PaymentID returns the gateway identifier of the captured payment, or empty
// if no payment was taken through the gateway.
func (b *Booking) PaymentID() string { return b.paymentID }

// CancellationReason returns the stored cancellation reason.
func (b *Booking) CancellationReason() string { return b.cancellationReason }

// CancelledBy returns who initiated the cancellation, or empty.
func (b *Booking) CancelledBy() CancelActor { return b.cancelledBy }

// CancellationRequestedAt returns when the user requested cancellation.
func (b *Booking) CancellationRequestedAt() *time.Time { return b.cancellationRequestedAt }

// CancelledAt returns when the cancellation was approved.
func (b *Booking) CancelledAt() *time.Time { return b.cancelledAt }

// RefundAmountCents returns the computed refund amount in minor units.
func (b *Booking) RefundAmountCents() int64 { return b.refundAmountCents }

// RefundPercentage returns the refund percentage applied.
func (b *Booking) RefundPercentage() int { return b.refundPercentage }

// RefundStatus returns the refund lifecycle state.
func (b *Booking) RefundStatus() RefundStatus { return b.refundStatus }

// GatewayRefundID returns the gateway's refund identifier, or empty.
func (b *Booking) GatewayRefundID() string { return b.gatewayRefundID }

// RefundFailureReason returns the gateway failure message, or empty.
func (b *Booking) RefundFailureReason() string { return b.refundFailureReason }

// RefundProcessedAt returns when the refund finished processing.
func (b *Booking) RefundProcessedAt() *time.Time { return b.refundProcessedAt }

// AdminNotes returns free-form admin-supplied notes.
func (b *Booking) AdminNotes() string { return b.adminNotes }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Behavior ---

// ConfirmPayment records a captured payment and moves a pending booking to
// confirmed. PaymentStatus has its own lifecycle and is set directly.
func (b *Booking) ConfirmPayment(paymentID string) error {
	if b.status.IsTerminal() {
		return domain.NewInvalidStateError(fmt.Sprintf("cannot record payment on a %s booking", b.status))
	}
	b.paymentStatus = PaymentPaid
	b.paymentID = paymentID
	if b.status == StatusPending {
		b.status = StatusConfirmed
	}
	b.updatedAt = time.Now().UTC()
	return nil
}

// RequestCancellation moves the booking to cancellation_requested on behalf of
// its owner, storing the refund quote computed at request time.
func (b *Booking) RequestCancellation(reason string, quote RefundQuote, now time.Time) error {
	if !b.status.CanTransitionTo(StatusCancellationRequested) || b.status == StatusCancellationRequested {
		return domain.NewInvalidTransitionError(string(b.status), string(StatusCancellationRequested))
	}
	if err := b.validateRefundAmount(quote.AmountCents); err != nil {
		return err
	}

	requestedAt := now
	b.status = StatusCancellationRequested
	b.cancellationReason = reason
	b.cancelledBy = ActorUser
	b.cancellationRequestedAt = &requestedAt
	b.refundAmountCents = quote.AmountCents
	b.refundPercentage = quote.Percentage
	if b.paymentStatus == PaymentPaid && quote.AmountCents > 0 {
		b.refundStatus = RefundPending
	} else {
		b.refundStatus = RefundNone
	}
	b.updatedAt = now
	return nil
}

// ApproveCancellation moves the booking to cancelled with the final refund
// quote. A prior user-supplied reason and actor are never overwritten; an
// admin force-cancel without a prior request records the default reason.
func (b *Booking) ApproveCancellation(quote RefundQuote, adminNotes string, now time.Time) error {
	if !b.status.CanTransitionTo(StatusCancelled) || b.status == StatusCancelled {
		return domain.NewInvalidTransitionError(string(b.status), string(StatusCancelled))
	}
	if err := b.validateRefundAmount(quote.AmountCents); err != nil {
		return err
	}

	cancelledAt := now
	b.status = StatusCancelled
	b.cancelledAt = &cancelledAt
	if b.cancelledBy == "" {
		b.cancelledBy = ActorAdmin
		b.cancellationReason = defaultAdminCancelReason
	}
	if adminNotes != "" {
		b.adminNotes = adminNotes
	}

	b.refundAmountCents = quote.AmountCents
	b.refundPercentage = quote.Percentage
	switch {
	case b.paymentStatus == PaymentPaid && quote.AmountCents > 0:
		b.refundStatus = RefundPending
		if quote.AmountCents < b.totalPriceCents {
			b.paymentStatus = PaymentPartiallyRefunded
		} else {
			b.paymentStatus = PaymentRefunded
		}
	case quote.AmountCents == 0:
		b.refundStatus = RefundNone
	}
	b.updatedAt = now
	return nil
}

// RejectCancellation reverses a pending cancellation request completely,
// restoring the booking to the state it would be in had no request been made.
// Only a booking in cancellation_requested may be rejected.
func (b *Booking) RejectCancellation(adminNotes string, now time.Time) error {
	if b.status != StatusCancellationRequested {
		return domain.NewInvalidStateError(
			fmt.Sprintf("only a cancellation-requested booking can be rejected, current status is %q", b.status))
	}

	if b.paymentStatus == PaymentPaid {
		b.status = StatusConfirmed
	} else {
		b.status = StatusPending
	}
	b.cancellationReason = ""
	b.cancelledBy = ""
	b.cancellationRequestedAt = nil
	b.refundAmountCents = 0
	b.refundPercentage = 0
	b.refundStatus = RefundNone
	if adminNotes != "" {
		b.adminNotes = adminNotes
	}
	b.updatedAt = now
	return nil
}

// ensureRefundProcessable checks the preconditions shared by every refund
// processing step.
func (b *Booking) ensureRefundProcessable() error {
	if b.status != StatusCancelled {
		return domain.NewInvalidStateError(
			fmt.Sprintf("refund can only be processed for a cancelled booking, current status is %q", b.status))
	}
	if b.refundStatus == RefundCompleted {
		return domain.NewAlreadyProcessedError("refund has already been processed for this booking")
	}
	if b.refundAmountCents <= 0 {
		return domain.NewInvalidStateError("booking has no refund amount to process")
	}
	return nil
}

// BeginRefundProcessing marks the refund as in flight before the gateway call,
// so a slow call is visible as an intermediate state.
func (b *Booking) BeginRefundProcessing() error {
	if err := b.ensureRefundProcessable(); err != nil {
		return err
	}
	b.refundStatus = RefundProcessing
	b.updatedAt = time.Now().UTC()
	return nil
}

// QueueRefund leaves the refund pending for manual or retried processing when
// no gateway is configured.
func (b *Booking) QueueRefund() error {
	if err := b.ensureRefundProcessable(); err != nil {
		return err
	}
	b.refundStatus = RefundPending
	b.updatedAt = time.Now().UTC()
	return nil
}

// CompleteRefund marks the refund as done. The gateway refund ID may be empty
// when no payment was ever captured. PaymentStatus is re-derived from the
// refunded amount for bookings whose payment went through the money lifecycle.
func (b *Booking) CompleteRefund(gatewayRefundID string, now time.Time) error {
	if err := b.ensureRefundProcessable(); err != nil {
		return err
	}

	processedAt := now
	b.refundStatus = RefundCompleted
	b.refundProcessedAt = &processedAt
	b.gatewayRefundID = gatewayRefundID
	b.refundFailureReason = ""

	switch b.paymentStatus {
	case PaymentPaid, PaymentPartiallyRefunded, PaymentRefunded:
		if b.refundAmountCents < b.totalPriceCents {
			b.paymentStatus = PaymentPartiallyRefunded
		} else {
			b.paymentStatus = PaymentRefunded
		}
	}
	b.updatedAt = now
	return nil
}

// FailRefund records a gateway failure. The cancelled status is left intact:
// cancellation and refund issuance are independent outcomes.
func (b *Booking) FailRefund(reason string) {
	b.refundStatus = RefundFailed
	b.refundFailureReason = reason
	b.updatedAt = time.Now().UTC()
}

// OverrideStatus applies an admin status change. It still consults the
// transition table; there is no unvalidated path for BookingStatus.
func (b *Booking) OverrideStatus(target BookingStatus) error {
	if !b.status.CanTransitionTo(target) {
		return domain.NewInvalidTransitionError(string(b.status), string(target))
	}
	b.status = target
	b.updatedAt = time.Now().UTC()
	return nil
}

// OverridePaymentStatus is the deliberately narrow escape hatch for admin
// corrections. PaymentStatus has an independent lifecycle, so no transition
// table applies.
func (b *Booking) OverridePaymentStatus(target PaymentStatus) {
	b.paymentStatus = target
	b.updatedAt = time.Now().UTC()
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}

func (b *Booking) validateRefundAmount(amountCents int64) error {
	if amountCents < 0 || amountCents > b.totalPriceCents {
		return domain.NewValidationError(
			fmt.Sprintf("refund amount %d must be between 0 and the total price %d", amountCents, b.totalPriceCents))
	}
	return nil
}
