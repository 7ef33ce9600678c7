package booking

import "fmt"

// BookingStatus represents the current state of a booking in its lifecycle.
type BookingStatus string

const (
	StatusPending               BookingStatus = "pending"
	StatusConfirmed             BookingStatus = "confirmed"
	StatusCancellationRequested BookingStatus = "cancellation_requested"
	StatusCancelled             BookingStatus = "cancelled"
	StatusCompleted             BookingStatus = "completed"
)

// validTransitions defines the state machine for booking status transitions.
var validTransitions = map[BookingStatus][]BookingStatus{
	StatusPending:               {StatusConfirmed, StatusCancellationRequested, StatusCancelled},
	StatusConfirmed:             {StatusCompleted, StatusCancellationRequested, StatusCancelled},
	StatusCancellationRequested: {StatusCancelled, StatusConfirmed},
	StatusCancelled:             {},
	StatusCompleted:             {},
}

// IsValid returns true if the status is a recognized booking status.
func (s BookingStatus) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this status to the target
// is allowed. A transition to the same status is always a valid no-op; an
// unknown current status fails closed.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	if s == target {
		return true
	}
	allowed, exists := validTransitions[s]
	if !exists {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible from this status.
func (s BookingStatus) IsTerminal() bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return true
	}
	return len(allowed) == 0
}

// String returns the string representation of the status.
func (s BookingStatus) String() string {
	return string(s)
}

// ParseBookingStatus converts a string to a BookingStatus, returning an error if invalid.
func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid booking status: %s", s)
	}
	return status, nil
}

// PaymentStatus represents the lifecycle of the money side of a booking. It is
// tracked independently of BookingStatus and is not subject to the booking
// transition table.
type PaymentStatus string

const (
	PaymentPending           PaymentStatus = "pending"
	PaymentPaid              PaymentStatus = "paid"
	PaymentRefunded          PaymentStatus = "refunded"
	PaymentPartiallyRefunded PaymentStatus = "partially_refunded"
	PaymentFailed            PaymentStatus = "failed"
)

// IsValid returns true if the payment status is recognized.
func (p PaymentStatus) IsValid() bool {
	switch p {
	case PaymentPending, PaymentPaid, PaymentRefunded, PaymentPartiallyRefunded, PaymentFailed:
		return true
	}
	return false
}

// String returns the string representation of the payment status.
func (p PaymentStatus) String() string {
	return string(p)
}

// ParsePaymentStatus converts a string to a PaymentStatus, returning an error if invalid.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	status := PaymentStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid payment status: %s", s)
	}
	return status, nil
}

// RefundStatus represents the lifecycle of the act of returning money, as
// opposed to the booking's own status.
type RefundStatus string

const (
	RefundNone       RefundStatus = "none"
	RefundPending    RefundStatus = "pending"
	RefundProcessing RefundStatus = "processing"
	RefundCompleted  RefundStatus = "completed"
	RefundFailed     RefundStatus = "failed"
)

// IsValid returns true if the refund status is recognized.
func (r RefundStatus) IsValid() bool {
	switch r {
	case RefundNone, RefundPending, RefundProcessing, RefundCompleted, RefundFailed:
		return true
	}
	return false
}

// String returns the string representation of the refund status.
func (r RefundStatus) String() string {
	return string(r)
}

// ParseRefundStatus converts a string to a RefundStatus, returning an error if invalid.
func ParseRefundStatus(s string) (RefundStatus, error) {
	status := RefundStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid refund status: %s", s)
	}
	return status, nil
}

// CancelActor identifies who initiated a cancellation.
type CancelActor string

const (
	ActorUser  CancelActor = "user"
	ActorAdmin CancelActor = "admin"
)
