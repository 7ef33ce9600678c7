package events

import (
	"time"

	"github.com/google/uuid"
)

// Topics exchanged with the rest of the platform.
const (
	TopicBookingEvents = "booking.events"
	TopicPaymentEvents = "payment.events"
)

// Event types published by this service.
const (
	BookingCancellationRequested = "booking.cancellation_requested"
	BookingCancellationApproved  = "booking.cancellation_approved"
	BookingCancellationRejected  = "booking.cancellation_rejected"
	BookingRefundCompleted       = "booking.refund_completed"
	BookingRefundFailed          = "booking.refund_failed"
)

// Event types consumed from the payment service.
const (
	PaymentCaptured = "payment.captured"
)

// CancellationRequestedEvent is published when a customer requests cancellation.
type CancellationRequestedEvent struct {
	BookingID         uuid.UUID `json:"booking_id"`
	BookingNumber     string    `json:"booking_number"`
	UserID            uuid.UUID `json:"user_id"`
	Reason            string    `json:"reason"`
	RefundAmountCents int64     `json:"refund_amount_cents"`
	RefundPercentage  int       `json:"refund_percentage"`
	OccurredAt        time.Time `json:"occurred_at"`
}

// CancellationApprovedEvent is published when an admin approves a cancellation.
type CancellationApprovedEvent struct {
	BookingID         uuid.UUID `json:"booking_id"`
	BookingNumber     string    `json:"booking_number"`
	UserID            uuid.UUID `json:"user_id"`
	RefundAmountCents int64     `json:"refund_amount_cents"`
	RefundPercentage  int       `json:"refund_percentage"`
	OccurredAt        time.Time `json:"occurred_at"`
}

// CancellationRejectedEvent is published when an admin rejects a cancellation
// request and the booking is restored.
type CancellationRejectedEvent struct {
	BookingID      uuid.UUID `json:"booking_id"`
	BookingNumber  string    `json:"booking_number"`
	UserID         uuid.UUID `json:"user_id"`
	RestoredStatus string    `json:"restored_status"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// RefundCompletedEvent is published when a refund finishes processing.
type RefundCompletedEvent struct {
	BookingID         uuid.UUID `json:"booking_id"`
	BookingNumber     string    `json:"booking_number"`
	UserID            uuid.UUID `json:"user_id"`
	RefundAmountCents int64     `json:"refund_amount_cents"`
	GatewayRefundID   string    `json:"gateway_refund_id,omitempty"`
	Currency          string    `json:"currency"`
	OccurredAt        time.Time `json:"occurred_at"`
}

// RefundFailedEvent is published when the payment gateway rejects a refund.
type RefundFailedEvent struct {
	BookingID     uuid.UUID `json:"booking_id"`
	BookingNumber string    `json:"booking_number"`
	UserID        uuid.UUID `json:"user_id"`
	Reason        string    `json:"reason"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// PaymentCapturedEvent is consumed when the payment service captures a
// customer's payment for a booking.
type PaymentCapturedEvent struct {
	PaymentID   string    `json:"payment_id"`
	BookingID   uuid.UUID `json:"booking_id"`
	AmountCents int64     `json:"amount_cents"`
	Currency    string    `json:"currency"`
	OccurredAt  time.Time `json:"occurred_at"`
}
