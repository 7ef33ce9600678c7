package payment

import "context"

// RefundRequest describes a refund to issue against a captured payment.
type RefundRequest struct {
	// PaymentID is the gateway's identifier for the captured payment.
	PaymentID string
	// AmountCents is the refund amount in minor currency units.
	AmountCents int64
	// RefundKey is a caller-chosen idempotency key for the refund.
	RefundKey string
	// Reason is free-form text forwarded to the gateway.
	Reason string
}

// RefundResult is the gateway's acknowledgement of an issued refund.
type RefundResult struct {
	// RefundID is the gateway's identifier for the refund.
	RefundID string
	// Status is the gateway-reported transaction status, treated as opaque.
	Status string
}

// Gateway is the external payment service boundary. Only its refund-issuing
// capability is consumed here; order creation and capture live elsewhere.
// Implementations are injected so tests can substitute a fake.
type Gateway interface {
	IssueRefund(ctx context.Context, req RefundRequest) (*RefundResult, error)
}
