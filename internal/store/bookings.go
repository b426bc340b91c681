package store

import (
	"context"

	"gorm.io/gorm/clause"

	"gowheels/internal/models"
)

// BookingFilter narrows the booking list.
type BookingFilter struct {
	UserID    *uint
	VehicleID *uint
	Status    string
}

// CreateBooking assigns a fresh BK reference and inserts b, retrying when the
// reference is already taken.
func (s *Store) CreateBooking(ctx context.Context, b *models.Booking) error {
	return s.Refs.withReference(BookingPrefix, func(ref string) error {
		b.ID = 0
		b.BookingReference = ref
		return translate(s.conn(ctx).Create(b).Error)
	})
}

func (s *Store) BookingByID(ctx context.Context, id uint) (*models.Booking, error) {
	var b models.Booking
	err := s.conn(ctx).Preload("User").Preload("Vehicle").First(&b, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (s *Store) BookingExists(ctx context.Context, id uint) (bool, error) {
	var n int64
	err := s.conn(ctx).Model(&models.Booking{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

func (s *Store) ListBookings(ctx context.Context, f BookingFilter, p Page) ([]models.Booking, error) {
	q := s.conn(ctx).Model(&models.Booking{}).Preload("User").Preload("Vehicle")
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.VehicleID != nil {
		q = q.Where("vehicle_id = ?", *f.VehicleID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	bookings := []models.Booking{}
	err := paginate(q.Order("created_at DESC").Order("id DESC"), p).Find(&bookings).Error
	return bookings, err
}

// UpdateBooking applies fields in one UPDATE … RETURNING. When fromStatuses
// is non-empty the row must currently hold one of them; otherwise the call
// fails with ErrConflict (row exists) or ErrNotFound.
func (s *Store) UpdateBooking(ctx context.Context, id uint, fields map[string]interface{}, fromStatuses []string) (*models.Booking, error) {
	var b models.Booking
	q := s.conn(ctx).Model(&b).Clauses(clause.Returning{}).Where("id = ?", id)
	if len(fromStatuses) > 0 {
		q = q.Where("status IN ?", fromStatuses)
	}
	res := q.Updates(fields)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		if len(fromStatuses) == 0 {
			return nil, ErrNotFound
		}
		exists, err := s.BookingExists(ctx, id)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrConflict
		}
		return nil, ErrNotFound
	}
	return &b, nil
}

// TransitionBooking moves a booking to status if its current status allows it.
func (s *Store) TransitionBooking(ctx context.Context, id uint, status string) (*models.Booking, error) {
	from := models.BookingPredecessors(status)
	if from == nil {
		// only a no-op move to the same status is allowed
		from = []string{status}
	}
	return s.UpdateBooking(ctx, id, map[string]interface{}{"status": status}, from)
}

// CancelBooking marks a pending or confirmed booking cancelled. Cancelling
// twice is a no-op that still returns the row.
func (s *Store) CancelBooking(ctx context.Context, id uint) (*models.Booking, error) {
	return s.TransitionBooking(ctx, id, models.BookingCancelled)
}
