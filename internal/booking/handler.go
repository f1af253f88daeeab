package booking

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/mrJTY/bookit/internal/auth"
	"github.com/mrJTY/bookit/internal/availability"
	"github.com/mrJTY/bookit/internal/logger"
	"github.com/mrJTY/bookit/internal/metrics"
)

// Notifier sends booking lifecycle emails. Delivery is queued; a send failure
// never fails the booking itself.
type Notifier interface {
	SendBookingConfirmation(ctx context.Context, email, name, listingName string, start, end time.Time) error
	SendBookingRescheduled(ctx context.Context, email, name, listingName string, start, end time.Time) error
	SendBookingCancellation(ctx context.Context, email, name, listingName string, start time.Time) error
}

type Handler struct {
	service  *Service
	notifier Notifier
}

func NewHandler(db *sqlx.DB, notifier Notifier, capHours float64, noticeDays int) *Handler {
	return &Handler{
		service:  NewService(NewRepository(db), availability.NewRepository(db), capHours, noticeDays),
		notifier: notifier,
	}
}

func respondBookingError(c *gin.Context, operation string, err error) {
	switch {
	case errors.Is(err, ErrAvailabilityNotFound):
		metrics.RecordBooking(operation, "not_found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Availability not found"})
	case errors.Is(err, ErrBookingNotFound):
		metrics.RecordBooking(operation, "not_found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
	case errors.Is(err, ErrSlotUnavailable):
		metrics.RecordBooking(operation, "conflict")
		metrics.RecordBookingConflict()
		c.JSON(http.StatusConflict, gin.H{"error": "Slot is no longer available"})
	case errors.Is(err, ErrBookingChanged):
		metrics.RecordBooking(operation, "conflict")
		c.JSON(http.StatusConflict, gin.H{"error": "Booking was changed by another request"})
	case errors.Is(err, ErrTooCloseToStart):
		metrics.RecordBooking(operation, "conflict")
		c.JSON(http.StatusConflict, gin.H{"error": "Booking starts too soon to change"})
	case errors.Is(err, ErrMonthlyCapExceeded):
		metrics.RecordBooking(operation, "conflict")
		c.JSON(http.StatusConflict, gin.H{"error": "Monthly booking cap exceeded"})
	case errors.Is(err, ErrForbidden):
		metrics.RecordBooking(operation, "forbidden")
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only manage your own bookings"})
	default:
		metrics.RecordBooking(operation, "error")
		logger.WithError(err).Error("booking operation failed", "operation", operation)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
	}
}

func (h *Handler) notifyAsync(send func(ctx context.Context) error) {
	if h.notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := send(ctx); err != nil {
			logger.WithError(err).Warn("failed to queue booking notification")
		}
	}()
}

// CreateBooking godoc
// @Summary      Book a slot
// @Description  Claims an open slot for the caller. Two concurrent requests for the same slot resolve to exactly one booking.
// @Tags         bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateBookingRequest  true  "Booking data"
// @Success      201      {object}  BookingWithSlot
// @Failure      400      {object}  api.ErrorResponse
// @Failure      403      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Failure      500      {object}  api.ErrorResponse
// @Router       /bookings [post]
func (h *Handler) CreateBooking(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		respondBookingError(c, "create", err)
		return
	}

	booking, err := h.service.Get(c.Request.Context(), userID, created.ID)
	if err != nil {
		respondBookingError(c, "create", err)
		return
	}

	metrics.RecordBooking("create", "success")

	if email, ok := auth.GetUserEmail(c); ok {
		name, _ := auth.GetUsername(c)
		h.notifyAsync(func(ctx context.Context) error {
			return h.notifier.SendBookingConfirmation(ctx, email, name, booking.ListingName, booking.StartTime, booking.EndTime)
		})
	}

	c.JSON(http.StatusCreated, booking)
}

// RescheduleBooking godoc
// @Summary      Reschedule a booking
// @Description  Moves the caller's booking onto a new slot. Rejected inside the notice window or past the monthly cap.
// @Tags         bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        bookingID  path      int                       true  "Booking ID"
// @Param        request    body      RescheduleBookingRequest  true  "New slot"
// @Success      200        {object}  BookingWithSlot
// @Failure      400        {object}  api.ErrorResponse
// @Failure      403        {object}  api.ErrorResponse
// @Failure      404        {object}  api.ErrorResponse
// @Failure      409        {object}  api.ErrorResponse
// @Failure      500        {object}  api.ErrorResponse
// @Router       /bookings/{bookingID} [put]
func (h *Handler) RescheduleBooking(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	bookingID, err := strconv.Atoi(c.Param("bookingID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	var req RescheduleBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.service.Reschedule(c.Request.Context(), userID, bookingID, req); err != nil {
		respondBookingError(c, "reschedule", err)
		return
	}

	booking, err := h.service.Get(c.Request.Context(), userID, bookingID)
	if err != nil {
		respondBookingError(c, "reschedule", err)
		return
	}

	metrics.RecordBooking("reschedule", "success")

	if email, ok := auth.GetUserEmail(c); ok {
		name, _ := auth.GetUsername(c)
		h.notifyAsync(func(ctx context.Context) error {
			return h.notifier.SendBookingRescheduled(ctx, email, name, booking.ListingName, booking.StartTime, booking.EndTime)
		})
	}

	c.JSON(http.StatusOK, booking)
}

// CancelBooking godoc
// @Summary      Cancel a booking
// @Description  Deletes the caller's booking and reopens its slot.
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        bookingID  path      int  true  "Booking ID"
// @Success      200        {object}  api.MessageResponse
// @Failure      400        {object}  api.ErrorResponse
// @Failure      403        {object}  api.ErrorResponse
// @Failure      404        {object}  api.ErrorResponse
// @Failure      500        {object}  api.ErrorResponse
// @Router       /bookings/{bookingID} [delete]
func (h *Handler) CancelBooking(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	bookingID, err := strconv.Atoi(c.Param("bookingID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	cancelled, err := h.service.Cancel(c.Request.Context(), userID, bookingID)
	if err != nil {
		respondBookingError(c, "cancel", err)
		return
	}

	metrics.RecordBooking("cancel", "success")

	if email, ok := auth.GetUserEmail(c); ok {
		name, _ := auth.GetUsername(c)
		h.notifyAsync(func(ctx context.Context) error {
			return h.notifier.SendBookingCancellation(ctx, email, name, cancelled.ListingName, cancelled.StartTime)
		})
	}

	c.JSON(http.StatusOK, gin.H{"message": "Booking cancelled"})
}

// GetBooking godoc
// @Summary      Get one of my bookings
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        bookingID  path      int  true  "Booking ID"
// @Success      200        {object}  BookingWithSlot
// @Failure      400        {object}  api.ErrorResponse
// @Failure      403        {object}  api.ErrorResponse
// @Failure      404        {object}  api.ErrorResponse
// @Router       /bookings/{bookingID} [get]
func (h *Handler) GetBooking(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	bookingID, err := strconv.Atoi(c.Param("bookingID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	booking, err := h.service.Get(c.Request.Context(), userID, bookingID)
	if err != nil {
		respondBookingError(c, "get", err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// MyBookings godoc
// @Summary      List my bookings
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  map[string][]BookingWithSlot
// @Failure      401  {object}  api.ErrorResponse
// @Failure      500  {object}  api.ErrorResponse
// @Router       /bookings/mybookings [get]
func (h *Handler) MyBookings(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	bookings, err := h.service.ListMine(c.Request.Context(), userID)
	if err != nil {
		respondBookingError(c, "list", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"mybookings": bookings})
}
