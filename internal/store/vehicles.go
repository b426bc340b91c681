package store

import (
	"context"
	"strings"

	"gorm.io/gorm/clause"

	"gowheels/internal/models"
)

const (
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortRating    = "rating"
	SortNewest    = "newest"
)

// VehicleFilter narrows the fleet list. A nil IsActive lists every vehicle.
type VehicleFilter struct {
	Search             string
	Type               string
	Transmission       string
	FuelType           string
	MinSeats           int
	MinPrice           *float64
	MaxPrice           *float64
	AvailabilityStatus *bool
	IsActive           *bool
	Sort               string
}

// CreateVehicle inserts v, keeping false availability and activity flags.
func (s *Store) CreateVehicle(ctx context.Context, v *models.Vehicle) error {
	available, active := v.AvailabilityStatus, v.IsActive
	db := s.conn(ctx)
	if err := db.Create(v).Error; err != nil {
		return translate(err)
	}
	if available && active {
		return nil
	}
	// gorm writes the column default for zero-valued defaulted fields
	err := db.Model(v).Updates(map[string]interface{}{
		"availability_status": available,
		"is_active":           active,
	}).Error
	v.AvailabilityStatus, v.IsActive = available, active
	return translate(err)
}

func (s *Store) VehicleByID(ctx context.Context, id uint) (*models.Vehicle, error) {
	var v models.Vehicle
	if err := s.conn(ctx).First(&v, id).Error; err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

func (s *Store) ListVehicles(ctx context.Context, f VehicleFilter, p Page) ([]models.Vehicle, error) {
	q := s.conn(ctx).Model(&models.Vehicle{})
	if f.Search != "" {
		like := "%" + strings.ToLower(f.Search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(type) LIKE ? OR LOWER(location_address) LIKE ?", like, like, like)
	}
	if f.Type != "" {
		q = q.Where("LOWER(type) = ?", strings.ToLower(f.Type))
	}
	if f.Transmission != "" {
		q = q.Where("LOWER(transmission) = ?", strings.ToLower(f.Transmission))
	}
	if f.FuelType != "" {
		q = q.Where("LOWER(fuel_type) = ?", strings.ToLower(f.FuelType))
	}
	if f.MinSeats > 0 {
		q = q.Where("seats >= ?", f.MinSeats)
	}
	if f.MinPrice != nil {
		q = q.Where("price_per_day >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price_per_day <= ?", *f.MaxPrice)
	}
	if f.AvailabilityStatus != nil {
		q = q.Where("availability_status = ?", *f.AvailabilityStatus)
	}
	if f.IsActive != nil {
		q = q.Where("is_active = ?", *f.IsActive)
	}

	switch f.Sort {
	case SortPriceAsc:
		q = q.Order("price_per_day ASC")
	case SortPriceDesc:
		q = q.Order("price_per_day DESC")
	case SortRating:
		q = q.Order("rating DESC")
	default:
		q = q.Order("created_at DESC")
	}

	vehicles := []models.Vehicle{}
	err := paginate(q.Order("id DESC"), p).Find(&vehicles).Error
	return vehicles, err
}

// UpdateVehicle applies fields in one UPDATE … RETURNING.
func (s *Store) UpdateVehicle(ctx context.Context, id uint, fields map[string]interface{}) (*models.Vehicle, error) {
	var v models.Vehicle
	res := s.conn(ctx).Model(&v).Clauses(clause.Returning{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return &v, nil
}

// DeactivateVehicle soft-deletes a vehicle; the row stays readable by id.
func (s *Store) DeactivateVehicle(ctx context.Context, id uint) (*models.Vehicle, error) {
	return s.UpdateVehicle(ctx, id, map[string]interface{}{"is_active": false})
}

// MappableVehicles returns active vehicles that carry coordinates.
func (s *Store) MappableVehicles(ctx context.Context) ([]models.Vehicle, error) {
	vehicles := []models.Vehicle{}
	err := s.conn(ctx).
		Where("is_active = ? AND location_lat IS NOT NULL AND location_lng IS NOT NULL", true).
		Order("id ASC").
		Find(&vehicles).Error
	return vehicles, err
}
