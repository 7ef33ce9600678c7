package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	bookingDomain "github.com/tripora-travel/service-booking/internal/domain/booking"
	"github.com/tripora-travel/service-booking/pkg/domain"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID                      uuid.UUID  `gorm:"type:uuid;primaryKey"`
	BookingNumber           string     `gorm:"uniqueIndex;not null;size:20"`
	UserID                  uuid.UUID  `gorm:"type:uuid;index;not null"`
	PackageID               uuid.UUID  `gorm:"type:uuid;index;not null"`
	Travelers               int        `gorm:"not null;default:1"`
	TotalPriceCents         int64      `gorm:"not null"`
	Currency                string     `gorm:"not null;size:3"`
	TripDate                time.Time  `gorm:"not null;index"`
	Status                  string     `gorm:"not null;size:30;index"`
	PaymentStatus           string     `gorm:"not null;size:30;index"`
	PaymentID               string     `gorm:"size:100"`
	CancellationReason      string     `gorm:"size:500"`
	CancelledBy             string     `gorm:"size:10"`
	CancellationRequestedAt *time.Time `gorm:""`
	CancelledAt             *time.Time `gorm:""`
	RefundAmountCents       int64      `gorm:"not null;default:0"`
	RefundPercentage        int        `gorm:"not null;default:0"`
	RefundStatus            string     `gorm:"not null;size:20;default:'none'"`
	GatewayRefundID         string     `gorm:"size:100"`
	RefundFailureReason     string     `gorm:"size:500"`
	RefundProcessedAt       *time.Time `gorm:""`
	AdminNotes              string     `gorm:"size:1000"`
	Version                 int64      `gorm:"not null;default:1"`
	CreatedAt               time.Time  `gorm:"not null"`
	UpdatedAt               time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByNumber retrieves a booking by its booking number.
func (r *GormBookingRepository) FindByNumber(ctx context.Context, number string) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("booking_number = ?", number).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("booking", number)
		}
		return nil, fmt.Errorf("failed to find booking by number: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByUserID retrieves bookings for a specific customer with pagination.
func (r *GormBookingRepository) FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count user bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find user bookings: %w", err)
	}

	return toDomainBookings(models, total)
}

// ListAll retrieves all bookings with pagination (admin).
func (r *GormBookingRepository) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	return toDomainBookings(models, total)
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// Save persists a new booking.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// Update persists changes to an existing booking with optimistic locking. The
// conditional write on the version column serializes concurrent read-modify-
// write cycles against the same booking: a stale writer affects zero rows and
// gets a conflict instead of clobbering the other write.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)

	// IncrementVersion was called before Update, so the stored row must still
	// be at version-1 for this write to win.
	expectedVersion := bk.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":                    model.Status,
			"payment_status":            model.PaymentStatus,
			"payment_id":                model.PaymentID,
			"cancellation_reason":       model.CancellationReason,
			"cancelled_by":              model.CancelledBy,
			"cancellation_requested_at": model.CancellationRequestedAt,
			"cancelled_at":              model.CancelledAt,
			"refund_amount_cents":       model.RefundAmountCents,
			"refund_percentage":         model.RefundPercentage,
			"refund_status":             model.RefundStatus,
			"gateway_refund_id":         model.GatewayRefundID,
			"refund_failure_reason":     model.RefundFailureReason,
			"refund_processed_at":       model.RefundProcessedAt,
			"admin_notes":               model.AdminNotes,
			"version":                   model.Version,
			"updated_at":                model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	return nil
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
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

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseBookingStatus(m.Status)
	if err != nil {
		return nil, err
	}
	paymentStatus, err := bookingDomain.ParsePaymentStatus(m.PaymentStatus)
	if err != nil {
		return nil, err
	}
	refundStatus, err := bookingDomain.ParseRefundStatus(m.RefundStatus)
	if err != nil {
		return nil, err
	}

	return bookingDomain.ReconstructBooking(
		m.ID,
		m.BookingNumber,
		m.UserID,
		m.PackageID,
		m.Travelers,
		m.TotalPriceCents,
		m.Currency,
		m.TripDate,
		status,
		paymentStatus,
		m.PaymentID,
		m.CancellationReason,
		bookingDomain.CancelActor(m.CancelledBy),
		m.CancellationRequestedAt,
		m.CancelledAt,
		m.RefundAmountCents,
		m.RefundPercentage,
		refundStatus,
		m.GatewayRefundID,
		m.RefundFailureReason,
		m.RefundProcessedAt,
		m.AdminNotes,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toDomainBookings(models []BookingModel, total int64) ([]*bookingDomain.Booking, int64, error) {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		bk, err := toDomainBooking(&m)
		if err != nil {
			return nil, 0, err
		}
		bookings[i] = bk
	}
	return bookings, total, nil
}
