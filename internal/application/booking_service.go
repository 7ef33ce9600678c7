package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingDomain "github.com/tripora-travel/service-booking/internal/domain/booking"
	"github.com/tripora-travel/service-booking/internal/events"
	"github.com/tripora-travel/service-booking/pkg/domain"
	"github.com/tripora-travel/service-booking/pkg/kafka"
)

const eventSource = "service-booking"

// EventPublisher is the subset of the Kafka producer used by the services.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event *kafka.CloudEvent) error
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID                      uuid.UUID  `json:"id"`
	BookingNumber           string     `json:"booking_number"`
	UserID                  uuid.UUID  `json:"user_id"`
	PackageID               uuid.UUID  `json:"package_id"`
	Travelers               int        `json:"travelers"`
	TotalPriceCents         int64      `json:"total_price_cents"`
	Currency                string     `json:"currency"`
	TripDate                time.Time  `json:"trip_date"`
	Status                  string     `json:"status"`
	PaymentStatus           string     `json:"payment_status"`
	PaymentID               string     `json:"payment_id,omitempty"`
	CancellationReason      string     `json:"cancellation_reason,omitempty"`
	CancelledBy             string     `json:"cancelled_by,omitempty"`
	CancellationRequestedAt *time.Time `json:"cancellation_requested_at,omitempty"`
	CancelledAt             *time.Time `json:"cancelled_at,omitempty"`
	RefundAmountCents       int64      `json:"refund_amount_cents"`
	RefundPercentage        int        `json:"refund_percentage"`
	RefundStatus            string     `json:"refund_status"`
	GatewayRefundID         string     `json:"gateway_refund_id,omitempty"`
	RefundFailureReason     string     `json:"refund_failure_reason,omitempty"`
	RefundProcessedAt       *time.Time `json:"refund_processed_at,omitempty"`
	AdminNotes              string     `json:"admin_notes,omitempty"`
	Version                 int64      `json:"version"`
	CreatedAt               time.Time  `json:"created_at"`
	UpdatedAt               time.Time  `json:"updated_at"`
}

// RefundPreviewDTO is the read-only refund estimate shown before cancelling.
type RefundPreviewDTO struct {
	RefundPercentage  int       `json:"refund_percentage"`
	RefundAmountCents int64     `json:"refund_amount_cents"`
	DaysUntilTrip     int       `json:"days_until_trip"`
	TotalPriceCents   int64     `json:"total_price_cents"`
	PaymentStatus     string    `json:"payment_status"`
	TripDate          time.Time `json:"trip_date"`
}

// CancellationResultDTO pairs the updated booking with the refund preview the
// customer was quoted at request time.
type CancellationResultDTO struct {
	Booking       BookingDTO       `json:"booking"`
	RefundPreview RefundPreviewDTO `json:"refund_preview"`
}

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// BookingService orchestrates the booking cancellation workflow: the
// customer's cancellation request, the admin's approve/reject decision, and
// the status overrides.
type BookingService struct {
	repo         bookingDomain.BookingRepository
	refundPolicy bookingDomain.RefundPolicy
	producer     EventPublisher
	logger       *zap.Logger

	// now is the clock used for refund math, overridable in tests.
	now func() time.Time
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	repo bookingDomain.BookingRepository,
	refundPolicy bookingDomain.RefundPolicy,
	producer EventPublisher,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		repo:         repo,
		refundPolicy: refundPolicy,
		producer:     producer,
		logger:       logger,
		now:          time.Now,
	}
}

// GetRefundPreview computes the refund the caller would receive if the booking
// were cancelled now. Allowed only while no cancellation request exists and
// the booking is not terminal.
func (s *BookingService) GetRefundPreview(ctx context.Context, bookingID, requesterID uuid.UUID, isAdmin bool) (*RefundPreviewDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && bk.UserID() != requesterID {
		return nil, domain.NewForbiddenError("booking does not belong to this user")
	}
	if bk.Status() != bookingDomain.StatusPending && bk.Status() != bookingDomain.StatusConfirmed {
		return nil, domain.NewInvalidStateError(
			fmt.Sprintf("refund preview is only available for pending or confirmed bookings, current status is %q", bk.Status()))
	}

	quote := s.refundPolicy.Quote(bk.TotalPriceCents(), bk.TripDate(), s.now().UTC())
	preview := toRefundPreviewDTO(bk, quote)
	return &preview, nil
}

// RequestCancellation handles a customer's cancellation request. The refund is
// quoted at request time and stored on the booking; the final amount is
// recomputed at approval.
func (s *BookingService) RequestCancellation(ctx context.Context, bookingID, requesterID uuid.UUID, reason string) (*CancellationResultDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if bk.UserID() != requesterID {
		return nil, domain.NewForbiddenError("booking does not belong to this user")
	}

	now := s.now().UTC()
	quote := s.refundPolicy.Quote(bk.TotalPriceCents(), bk.TripDate(), now)

	if err := bk.RequestCancellation(reason, quote, now); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.logger.Info("cancellation requested",
		zap.String("booking_id", bk.ID().String()),
		zap.Int64("quoted_refund_cents", quote.AmountCents),
		zap.Int("refund_percentage", quote.Percentage),
		zap.Int("days_until_trip", quote.DaysUntilTrip),
	)

	evt := events.CancellationRequestedEvent{
		BookingID:         bk.ID(),
		BookingNumber:     bk.BookingNumber(),
		UserID:            bk.UserID(),
		Reason:            reason,
		RefundAmountCents: quote.AmountCents,
		RefundPercentage:  quote.Percentage,
		OccurredAt:        now,
	}
	publishEvent(ctx, s.producer, s.logger, events.TopicBookingEvents, events.BookingCancellationRequested, bk.ID().String(), evt)

	return &CancellationResultDTO{
		Booking:       toBookingDTO(bk),
		RefundPreview: toRefundPreviewDTO(bk, quote),
	}, nil
}

// ApproveCancellation handles the admin's approval decision. The refund is
// recomputed at approval time unless an explicit override amount is supplied.
// A request-time quote that no longer matches is logged, since the customer
// saw a different number.
func (s *BookingService) ApproveCancellation(ctx context.Context, bookingID uuid.UUID, adminNotes string, overrideAmountCents *int64) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	var quote bookingDomain.RefundQuote
	if overrideAmountCents != nil {
		if *overrideAmountCents < 0 || *overrideAmountCents > bk.TotalPriceCents() {
			return nil, domain.NewValidationError(
				fmt.Sprintf("override refund amount %d must be between 0 and the total price %d",
					*overrideAmountCents, bk.TotalPriceCents()))
		}
		quote = bookingDomain.RefundQuote{
			Percentage:    bookingDomain.DerivePercentage(*overrideAmountCents, bk.TotalPriceCents()),
			AmountCents:   *overrideAmountCents,
			DaysUntilTrip: bookingDomain.DaysUntilTrip(bk.TripDate(), now),
		}
	} else {
		quote = s.refundPolicy.Quote(bk.TotalPriceCents(), bk.TripDate(), now)
	}

	requestTimeAmount := bk.RefundAmountCents()

	if err := bk.ApproveCancellation(quote, adminNotes, now); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	logFields := []zap.Field{
		zap.String("booking_id", bk.ID().String()),
		zap.Int64("approved_refund_cents", quote.AmountCents),
		zap.Int64("request_time_refund_cents", requestTimeAmount),
		zap.Bool("override", overrideAmountCents != nil),
	}
	if requestTimeAmount != quote.AmountCents {
		s.logger.Warn("approved refund differs from the amount quoted at request time", logFields...)
	} else {
		s.logger.Info("cancellation approved", logFields...)
	}

	evt := events.CancellationApprovedEvent{
		BookingID:         bk.ID(),
		BookingNumber:     bk.BookingNumber(),
		UserID:            bk.UserID(),
		RefundAmountCents: bk.RefundAmountCents(),
		RefundPercentage:  bk.RefundPercentage(),
		OccurredAt:        now,
	}
	publishEvent(ctx, s.producer, s.logger, events.TopicBookingEvents, events.BookingCancellationApproved, bk.ID().String(), evt)

	result := toBookingDTO(bk)
	return &result, nil
}

// RejectCancellation handles the admin's rejection decision, fully restoring
// the booking to its pre-request state.
func (s *BookingService) RejectCancellation(ctx context.Context, bookingID uuid.UUID, adminNotes string) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if err := bk.RejectCancellation(adminNotes, now); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.logger.Info("cancellation rejected",
		zap.String("booking_id", bk.ID().String()),
		zap.String("restored_status", bk.Status().String()),
	)

	evt := events.CancellationRejectedEvent{
		BookingID:      bk.ID(),
		BookingNumber:  bk.BookingNumber(),
		UserID:         bk.UserID(),
		RestoredStatus: bk.Status().String(),
		OccurredAt:     now,
	}
	publishEvent(ctx, s.producer, s.logger, events.TopicBookingEvents, events.BookingCancellationRejected, bk.ID().String(), evt)

	result := toBookingDTO(bk)
	return &result, nil
}

// ConfirmBookingPayment records a captured payment for a booking, confirming
// it if still pending. Invoked by the payment event consumer.
func (s *BookingService) ConfirmBookingPayment(ctx context.Context, bookingID uuid.UUID, paymentID string) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := bk.ConfirmPayment(paymentID); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	result := toBookingDTO(bk)
	return &result, nil
}

// AdminUpdateStatus applies the generic admin override. Status changes still
// pass through the transition table; payment status changes deliberately do
// not, since that lifecycle is owned by the payment service.
func (s *BookingService) AdminUpdateStatus(ctx context.Context, bookingID uuid.UUID, status, paymentStatus *string) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if status == nil && paymentStatus == nil {
		return nil, domain.NewValidationError("at least one of status or payment_status is required")
	}

	if status != nil {
		target, err := bookingDomain.ParseBookingStatus(*status)
		if err != nil {
			return nil, domain.NewValidationError(err.Error())
		}
		if err := bk.OverrideStatus(target); err != nil {
			return nil, err
		}
	}
	if paymentStatus != nil {
		target, err := bookingDomain.ParsePaymentStatus(*paymentStatus)
		if err != nil {
			return nil, domain.NewValidationError(err.Error())
		}
		bk.OverridePaymentStatus(target)
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.logger.Info("admin status override applied",
		zap.String("booking_id", bk.ID().String()),
		zap.String("status", bk.Status().String()),
		zap.String("payment_status", bk.PaymentStatus().String()),
	)

	result := toBookingDTO(bk)
	return &result, nil
}

// GetBooking retrieves a single booking, enforcing ownership for non-admins.
func (s *BookingService) GetBooking(ctx context.Context, bookingID, requesterID uuid.UUID, isAdmin bool) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && bk.UserID() != requesterID {
		return nil, domain.NewForbiddenError("booking does not belong to this user")
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// GetBookingByNumber retrieves a booking by its human-readable number (admin),
// the identifier customers quote in support conversations.
func (s *BookingService) GetBookingByNumber(ctx context.Context, number string) (*BookingDTO, error) {
	bk, err := s.repo.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// GetUserBookings retrieves paginated bookings for a specific customer.
func (s *BookingService) GetUserBookings(ctx context.Context, userID uuid.UUID, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.repo.FindByUserID(ctx, userID, page, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}

	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// ListAllBookings returns a paginated list of all bookings (admin).
func (s *BookingService) ListAllBookings(ctx context.Context, page, limit int) ([]BookingDTO, int64, error) {
	bookings, total, err := s.repo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}
	return dtos, total, nil
}

// GetBookingStats returns aggregate booking statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}

	return &BookingStatsDTO{
		TotalBookings: total,
		ByStatus:      counts,
	}, nil
}

// --- Helpers ---

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:                      bk.ID(),
		BookingNumber:           bk.BookingNumber(),
		UserID:                  bk.UserID(),
		PackageID:               bk.PackageID(),
		Travelers:               bk.Travelers(),
		TotalPriceCents:         bk.TotalPriceCents(),
		Currency:                bk.Currency(),
		TripDate:                bk.TripDate(),
		Status:                  bk.Status().String(),
		PaymentStatus:           bk.PaymentStatus().String(),
		PaymentID:               bk.PaymentID(),
		CancellationReason:      bk.CancellationReason(),
		CancelledBy:             string(bk.CancelledBy()),
		CancellationRequestedAt: bk.CancellationRequestedAt(),
		CancelledAt:             bk.CancelledAt(),
		RefundAmountCents:       bk.RefundAmountCents(),
		RefundPercentage:        bk.RefundPercentage(),
		RefundStatus:            bk.RefundStatus().String(),
		GatewayRefundID:         bk.GatewayRefundID(),
		RefundFailureReason:     bk.RefundFailureReason(),
		RefundProcessedAt:       bk.RefundProcessedAt(),
		AdminNotes:              bk.AdminNotes(),
		Version:                 bk.Version(),
		CreatedAt:               bk.CreatedAt(),
		UpdatedAt:               bk.UpdatedAt(),
	}
}

func toRefundPreviewDTO(bk *bookingDomain.Booking, quote bookingDomain.RefundQuote) RefundPreviewDTO {
	return RefundPreviewDTO{
		RefundPercentage:  quote.Percentage,
		RefundAmountCents: quote.AmountCents,
		DaysUntilTrip:     quote.DaysUntilTrip,
		TotalPriceCents:   bk.TotalPriceCents(),
		PaymentStatus:     bk.PaymentStatus().String(),
		TripDate:          bk.TripDate(),
	}
}

// publishEvent wraps data in a CloudEvent and fires it at the producer.
// Publishing is best-effort: failures are logged, never surfaced, because the
// state change has already been committed.
func publishEvent(ctx context.Context, producer EventPublisher, logger *zap.Logger, topic, eventType, key string, data interface{}) {
	cloudEvent, err := kafka.NewCloudEvent(eventSource, eventType, data)
	if err != nil {
		logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := producer.PublishEvent(ctx, topic, key, cloudEvent); err != nil {
		logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
