package models

import "time"

// Vehicle is a rentable car in the fleet. DELETE only flips IsActive.
type Vehicle struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	Name               string     `gorm:"not null" json:"name"`
	Type               string     `gorm:"not null;index" json:"type"`
	ImageURL           string     `gorm:"not null" json:"imageUrl"`
	GalleryImages      StringList `gorm:"type:text" json:"galleryImages"`
	Seats              int        `gorm:"not null" json:"seats"`
	Doors              *int       `json:"doors"`
	Transmission       string     `gorm:"not null" json:"transmission"`
	FuelType           string     `gorm:"not null" json:"fuelType"`
	PricePerHour       *float64   `gorm:"type:numeric(10,2)" json:"pricePerHour"`
	PricePerDay        float64    `gorm:"type:numeric(10,2);not null" json:"pricePerDay"`
	Amenities          StringList `gorm:"type:text" json:"amenities"`
	Rating             float64    `gorm:"type:numeric(3,2);default:0" json:"rating"`
	ReviewCount        int        `gorm:"default:0" json:"reviewCount"`
	LocationAddress    string     `gorm:"not null" json:"locationAddress"`
	LocationLat        *float64   `json:"locationLat"`
	LocationLng        *float64   `json:"locationLng"`
	AvailabilityStatus bool       `gorm:"not null;default:true" json:"availabilityStatus"`
	CancellationPolicy *string    `json:"cancellationPolicy"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
	IsActive           bool       `gorm:"not null;default:true;index" json:"isActive"`
}

// Bookable reports whether new bookings may be placed on the vehicle.
func (v *Vehicle) Bookable() bool {
	return v.IsActive && v.AvailabilityStatus
}
