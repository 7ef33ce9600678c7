package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingDomain "github.com/tripora-travel/service-booking/internal/domain/booking"
	"github.com/tripora-travel/service-booking/internal/events"
	"github.com/tripora-travel/service-booking/internal/payment"
)

// RefundOutcomeDTO reports the result of refund processing. Queued means the
// gateway is not configured and the refund was left pending for manual
// processing; that is a success-with-caveat, not a failure.
type RefundOutcomeDTO struct {
	Booking         BookingDTO `json:"booking"`
	GatewayRefundID string     `json:"gateway_refund_id,omitempty"`
	Queued          bool       `json:"queued"`
}

// RefundService executes approved refunds against the payment gateway and
// reconciles the result into the booking. Refund issuance is decoupled from
// cancellation approval so a gateway outage never blocks the decision itself.
type RefundService struct {
	repo     bookingDomain.BookingRepository
	gateway  payment.Gateway // nil when no gateway is configured
	producer EventPublisher
	logger   *zap.Logger

	now func() time.Time
}

// NewRefundService creates a new RefundService. A nil gateway is legal and
// causes refunds to be queued instead of issued.
func NewRefundService(
	repo bookingDomain.BookingRepository,
	gateway payment.Gateway,
	producer EventPublisher,
	logger *zap.Logger,
) *RefundService {
	return &RefundService{
		repo:     repo,
		gateway:  gateway,
		producer: producer,
		logger:   logger,
		now:      time.Now,
	}
}

// ProcessRefund issues the refund for an approved cancellation. This is the
// only operation with an irreversible external side effect.
func (s *RefundService) ProcessRefund(ctx context.Context, bookingID uuid.UUID) (*RefundOutcomeDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	// No captured payment on file: nothing to push through the gateway.
	if bk.PaymentID() == "" {
		now := s.now().UTC()
		if err := bk.CompleteRefund("", now); err != nil {
			return nil, err
		}
		if err := s.persist(ctx, bk); err != nil {
			return nil, err
		}
		s.logger.Info("refund completed without gateway, no payment on file",
			zap.String("booking_id", bk.ID().String()),
		)
		s.publishRefundCompleted(ctx, bk, now)
		return &RefundOutcomeDTO{Booking: toBookingDTO(bk)}, nil
	}

	// Gateway not configured: queue for manual or retried processing.
	if s.gateway == nil {
		if err := bk.QueueRefund(); err != nil {
			return nil, err
		}
		if err := s.persist(ctx, bk); err != nil {
			return nil, err
		}
		s.logger.Warn("payment gateway not configured, refund queued",
			zap.String("booking_id", bk.ID().String()),
			zap.Int64("refund_amount_cents", bk.RefundAmountCents()),
		)
		return &RefundOutcomeDTO{Booking: toBookingDTO(bk), Queued: true}, nil
	}

	// Mark processing before the call so a slow gateway is visible.
	if err := bk.BeginRefundProcessing(); err != nil {
		return nil, err
	}
	if err := s.persist(ctx, bk); err != nil {
		return nil, err
	}

	result, gatewayErr := s.gateway.IssueRefund(ctx, payment.RefundRequest{
		PaymentID:   bk.PaymentID(),
		AmountCents: bk.RefundAmountCents(),
		RefundKey:   bk.ID().String(),
		Reason:      bk.CancellationReason(),
	})
	if gatewayErr != nil {
		bk.FailRefund(gatewayErr.Error())
		if persistErr := s.persist(ctx, bk); persistErr != nil {
			s.logger.Error("failed to persist refund failure",
				zap.String("booking_id", bk.ID().String()),
				zap.Error(persistErr),
			)
		}
		s.publishRefundFailed(ctx, bk, gatewayErr.Error(), s.now().UTC())
		return nil, gatewayErr
	}

	// Re-read the clock: refund_processed_at must reflect when the gateway
	// actually finished, not when we started.
	completedAt := s.now().UTC()
	if err := bk.CompleteRefund(result.RefundID, completedAt); err != nil {
		return nil, err
	}
	if err := s.persist(ctx, bk); err != nil {
		return nil, err
	}

	s.logger.Info("refund processed",
		zap.String("booking_id", bk.ID().String()),
		zap.String("gateway_refund_id", result.RefundID),
		zap.Int64("refund_amount_cents", bk.RefundAmountCents()),
	)
	s.publishRefundCompleted(ctx, bk, completedAt)

	return &RefundOutcomeDTO{
		Booking:         toBookingDTO(bk),
		GatewayRefundID: result.RefundID,
	}, nil
}

func (s *RefundService) persist(ctx context.Context, bk *bookingDomain.Booking) error {
	bk.IncrementVersion()
	return s.repo.Update(ctx, bk)
}

func (s *RefundService) publishRefundCompleted(ctx context.Context, bk *bookingDomain.Booking, now time.Time) {
	evt := events.RefundCompletedEvent{
		BookingID:         bk.ID(),
		BookingNumber:     bk.BookingNumber(),
		UserID:            bk.UserID(),
		RefundAmountCents: bk.RefundAmountCents(),
		GatewayRefundID:   bk.GatewayRefundID(),
		Currency:          bk.Currency(),
		OccurredAt:        now,
	}
	publishEvent(ctx, s.producer, s.logger, events.TopicBookingEvents, events.BookingRefundCompleted, bk.ID().String(), evt)
}

func (s *RefundService) publishRefundFailed(ctx context.Context, bk *bookingDomain.Booking, reason string, now time.Time) {
	evt := events.RefundFailedEvent{
		BookingID:     bk.ID(),
		BookingNumber: bk.BookingNumber(),
		UserID:        bk.UserID(),
		Reason:        reason,
		OccurredAt:    now,
	}
	publishEvent(ctx, s.producer, s.logger, events.TopicBookingEvents, events.BookingRefundFailed, bk.ID().String(), evt)
}
