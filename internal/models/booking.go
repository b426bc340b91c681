package models

import "time"

const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingActive    = "active"
	BookingCompleted = "completed"
	BookingCancelled = "cancelled"
)

// bookingTransitions lists, for every target status, the statuses a booking
// may move from.
var bookingTransitions = map[string][]string{
	BookingConfirmed: {BookingPending},
	BookingActive:    {BookingConfirmed},
	BookingCompleted: {BookingActive},
	BookingCancelled: {BookingPending, BookingConfirmed, BookingCancelled},
}

// Booking is a reservation of a vehicle by a user. Prices are decimal strings
// with two places, computed on the server.
type Booking struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	BookingReference string    `gorm:"uniqueIndex;not null" json:"bookingReference"`
	UserID           uint      `gorm:"index;not null" json:"userId"`
	User             *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	VehicleID        uint      `gorm:"index;not null" json:"vehicleId"`
	Vehicle          *Vehicle  `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
	PickupDate       string    `gorm:"not null" json:"pickupDate"`
	ReturnDate       string    `gorm:"not null" json:"returnDate"`
	PickupTime       *string   `json:"pickupTime"`
	ReturnTime       *string   `json:"returnTime"`
	PickupAddress    string    `gorm:"not null" json:"pickupAddress"`
	DropoffAddress   string    `gorm:"not null" json:"dropoffAddress"`
	DriverName       string    `gorm:"not null" json:"driverName"`
	DriverPhone      string    `gorm:"not null" json:"driverPhone"`
	DriverEmail      string    `gorm:"not null" json:"driverEmail"`
	ExtrasInsurance  bool      `gorm:"default:false" json:"extrasInsurance"`
	ExtrasDriver     bool      `gorm:"default:false" json:"extrasDriver"`
	ExtrasChildSeat  bool      `gorm:"default:false" json:"extrasChildSeat"`
	PromoCode        *string   `json:"promoCode"`
	BasePrice        string    `gorm:"not null" json:"basePrice"`
	ExtrasPrice      string    `gorm:"default:'0'" json:"extrasPrice"`
	Taxes            string    `gorm:"not null" json:"taxes"`
	TotalAmount      string    `gorm:"not null" json:"totalAmount"`
	DepositAmount    string    `gorm:"default:'0'" json:"depositAmount"`
	PaymentMethod    string    `gorm:"not null" json:"paymentMethod"`
	Status           string    `gorm:"not null;default:pending;index" json:"status"`
	CreatedAt        time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// IsValidBookingStatus reports whether status is a known booking status.
func IsValidBookingStatus(status string) bool {
	switch status {
	case BookingPending, BookingConfirmed, BookingActive, BookingCompleted, BookingCancelled:
		return true
	default:
		return false
	}
}

// BookingPredecessors returns the statuses from which a booking may move to
// target. A nil result means no status can reach target.
func BookingPredecessors(target string) []string {
	return bookingTransitions[target]
}
