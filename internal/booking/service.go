package booking

import (
	"context"
	"errors"
	"time"

	"github.com/mrJTY/bookit/internal/availability"
)

// SlotReader is the slice of the availability repository the service needs.
type SlotReader interface {
	GetByID(ctx context.Context, id int) (*availability.Availability, error)
}

type Service struct {
	repo       Repository
	slots      SlotReader
	capHours   float64
	noticeDays int
	now        func() time.Time
}

func NewService(repo Repository, slots SlotReader, capHours float64, noticeDays int) *Service {
	return &Service{
		repo:       repo,
		slots:      slots,
		capHours:   capHours,
		noticeDays: noticeDays,
		now:        time.Now,
	}
}

// Create books an open slot for the caller. The pre-reads here give fast,
// specific errors; the claim inside repo.Create is what actually decides a
// race, so a slot that looked open can still come back ErrSlotUnavailable.
func (s *Service) Create(ctx context.Context, callerID int, req CreateBookingRequest) (*Booking, error) {
	slot, err := s.slots.GetByID(ctx, req.AvailabilityID)
	if err != nil {
		if errors.Is(err, availability.ErrAvailabilityNotFound) {
			return nil, ErrAvailabilityNotFound
		}
		return nil, err
	}

	if slot.ListingID != req.ListingID {
		return nil, ErrAvailabilityNotFound
	}

	if !slot.IsAvailable {
		return nil, ErrSlotUnavailable
	}

	if callerID != req.UserID {
		return nil, ErrForbidden
	}

	return s.repo.Create(ctx, callerID, req.ListingID, req.AvailabilityID)
}

// Reschedule moves the caller's booking onto a new slot. The notice window is
// measured against the CURRENT slot's start: once a booking is inside the
// notice period it is locked in. The monthly cap buckets by the new slot's
// calendar month, counting each of the caller's bookings by its own slot start
// and excluding the booking being moved.
func (s *Service) Reschedule(ctx context.Context, callerID, bookingID int, req RescheduleBookingRequest) (*Booking, error) {
	current, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if current.UserID != callerID {
		return nil, ErrForbidden
	}

	notice := time.Duration(s.noticeDays) * 24 * time.Hour
	if current.StartTime.Sub(s.now()) < notice {
		return nil, ErrTooCloseToStart
	}

	newSlot, err := s.slots.GetByID(ctx, req.AvailabilityID)
	if err != nil {
		if errors.Is(err, availability.ErrAvailabilityNotFound) {
			return nil, ErrAvailabilityNotFound
		}
		return nil, err
	}

	if !newSlot.IsAvailable {
		return nil, ErrSlotUnavailable
	}

	monthStart := time.Date(newSlot.StartTime.Year(), newSlot.StartTime.Month(), 1, 0, 0, 0, 0, newSlot.StartTime.Location())
	monthEnd := monthStart.AddDate(0, 1, 0)

	hours, err := s.repo.HoursBookedInMonth(ctx, callerID, monthStart, monthEnd, bookingID)
	if err != nil {
		return nil, err
	}

	if hours+newSlot.Hours() > s.capHours {
		return nil, ErrMonthlyCapExceeded
	}

	return s.repo.Reschedule(ctx, bookingID, newSlot.ListingID, current.AvailabilityID, req.AvailabilityID)
}

// Cancel deletes the caller's booking and reopens its slot. The removed
// booking is returned so callers can still reference the slot it held.
func (s *Service) Cancel(ctx context.Context, callerID, bookingID int) (*BookingWithSlot, error) {
	current, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if current.UserID != callerID {
		return nil, ErrForbidden
	}

	if err := s.repo.Delete(ctx, bookingID); err != nil {
		return nil, err
	}

	return current, nil
}

func (s *Service) Get(ctx context.Context, callerID, bookingID int) (*BookingWithSlot, error) {
	booking, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.UserID != callerID {
		return nil, ErrForbidden
	}

	return booking, nil
}

func (s *Service) ListMine(ctx context.Context, callerID int) ([]BookingWithSlot, error) {
	return s.repo.ListByUser(ctx, callerID)
}
