package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tripora-travel/service-booking/internal/application"
	"github.com/tripora-travel/service-booking/pkg/auth"
	"github.com/tripora-travel/service-booking/pkg/middleware"
	"github.com/tripora-travel/service-booking/pkg/response"
)

// AdminBookingHandler handles admin HTTP requests for the cancellation and
// refund workflow.
type AdminBookingHandler struct {
	service       *application.BookingService
	refundService *application.RefundService
}

// NewAdminBookingHandler creates a new AdminBookingHandler.
func NewAdminBookingHandler(service *application.BookingService, refundService *application.RefundService) *AdminBookingHandler {
	return &AdminBookingHandler{service: service, refundService: refundService}
}

// RegisterRoutes registers admin booking routes.
func (h *AdminBookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	admin := r.Group("/api/v1/admin")
	admin.Use(middleware.AuthMiddleware(jwtManager), middleware.RequireRole(auth.RoleAdmin))
	{
		admin.GET("/bookings", h.ListBookings)
		admin.GET("/bookings/number/:number", h.GetBookingByNumber)
		admin.GET("/stats/bookings", h.BookingStats)
		admin.PUT("/bookings/:id/approve-cancel", h.ApproveCancellation)
		admin.PUT("/bookings/:id/reject-cancel", h.RejectCancellation)
		admin.POST("/bookings/:id/process-refund", h.ProcessRefund)
		admin.PUT("/bookings/:id/status", h.UpdateStatus)
	}
}

// ListBookings handles GET /api/v1/admin/bookings.
func (h *AdminBookingHandler) ListBookings(c *gin.Context) {
	page, limit := parsePagination(c)

	bookings, total, err := h.service.ListAllBookings(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, bookings, total, page, limit)
}

// GetBookingByNumber handles GET /api/v1/admin/bookings/number/:number.
func (h *AdminBookingHandler) GetBookingByNumber(c *gin.Context) {
	result, err := h.service.GetBookingByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// BookingStats handles GET /api/v1/admin/stats/bookings.
func (h *AdminBookingHandler) BookingStats(c *gin.Context) {
	stats, err := h.service.GetBookingStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}

// ApproveCancellation handles PUT /api/v1/admin/bookings/:id/approve-cancel.
func (h *AdminBookingHandler) ApproveCancellation(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	var body struct {
		AdminNotes          string `json:"admin_notes"`
		OverrideRefundCents *int64 `json:"override_refund_amount_cents"`
	}
	// An empty body is fine; anything else that fails to bind must not fall
	// through to a recomputed refund.
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, "invalid request body")
		return
	}

	result, err := h.service.ApproveCancellation(c.Request.Context(), bookingID, body.AdminNotes, body.OverrideRefundCents)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// RejectCancellation handles PUT /api/v1/admin/bookings/:id/reject-cancel.
func (h *AdminBookingHandler) RejectCancellation(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	var body struct {
		AdminNotes string `json:"admin_notes"`
	}
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, "invalid request body")
		return
	}

	result, err := h.service.RejectCancellation(c.Request.Context(), bookingID, body.AdminNotes)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ProcessRefund handles POST /api/v1/admin/bookings/:id/process-refund.
func (h *AdminBookingHandler) ProcessRefund(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	result, err := h.refundService.ProcessRefund(c.Request.Context(), bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdateStatus handles PUT /api/v1/admin/bookings/:id/status, the generic
// admin override.
func (h *AdminBookingHandler) UpdateStatus(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	var body struct {
		Status        *string `json:"status"`
		PaymentStatus *string `json:"payment_status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.AdminUpdateStatus(c.Request.Context(), bookingID, body.Status, body.PaymentStatus)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
