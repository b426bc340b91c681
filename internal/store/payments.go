package store

import (
	"context"

	"gorm.io/gorm/clause"

	"gowheels/internal/models"
)

// PaymentFilter narrows the payment list. UserID matches through the
// payment's booking.
type PaymentFilter struct {
	BookingID *uint
	UserID    *uint
	Status    string
}

func (s *Store) CreatePayment(ctx context.Context, p *models.Payment) error {
	return translate(s.conn(ctx).Create(p).Error)
}

func (s *Store) PaymentByID(ctx context.Context, id uint) (*models.Payment, error) {
	var p models.Payment
	if err := s.conn(ctx).First(&p, id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *Store) ListPayments(ctx context.Context, f PaymentFilter, page Page) ([]models.Payment, error) {
	q := s.conn(ctx).Model(&models.Payment{})
	if f.UserID != nil {
		q = q.Joins("JOIN bookings ON bookings.id = payments.booking_id").
			Where("bookings.user_id = ?", *f.UserID)
	}
	if f.BookingID != nil {
		q = q.Where("payments.booking_id = ?", *f.BookingID)
	}
	if f.Status != "" {
		q = q.Where("payments.status = ?", f.Status)
	}

	payments := []models.Payment{}
	err := paginate(q.Select("payments.*").Order("payments.created_at DESC").Order("payments.id DESC"), page).
		Find(&payments).Error
	return payments, err
}

// CapturedPayments returns the captured payments of a booking, oldest first.
func (s *Store) CapturedPayments(ctx context.Context, bookingID uint) ([]models.Payment, error) {
	payments := []models.Payment{}
	err := s.conn(ctx).
		Where("booking_id = ? AND status = ?", bookingID, models.PaymentCaptured).
		Order("id").
		Find(&payments).Error
	return payments, err
}

// UpdatePayment applies fields in one UPDATE … RETURNING. fromStatuses works
// as in UpdateBooking.
func (s *Store) UpdatePayment(ctx context.Context, id uint, fields map[string]interface{}, fromStatuses []string) (*models.Payment, error) {
	var p models.Payment
	q := s.conn(ctx).Model(&p).Clauses(clause.Returning{}).Where("id = ?", id)
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
		var n int64
		if err := s.conn(ctx).Model(&models.Payment{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return nil, err
		}
		if n > 0 {
			return nil, ErrConflict
		}
		return nil, ErrNotFound
	}
	return &p, nil
}

// DeletePayment hard-deletes a payment in one DELETE … RETURNING.
func (s *Store) DeletePayment(ctx context.Context, id uint) (*models.Payment, error) {
	var p models.Payment
	res := s.conn(ctx).Clauses(clause.Returning{}).Where("id = ?", id).Delete(&p)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return &p, nil
}
