package models

import "time"

const (
	PaymentPending  = "pending"
	PaymentCaptured = "captured"
	PaymentFailed   = "failed"
	PaymentRefunded = "refunded"
)

// Payment records a gateway order for a booking and, once captured, the
// gateway payment id and signature.
type Payment struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	BookingID         uint      `gorm:"index;not null" json:"bookingId"`
	RazorpayOrderID   string    `gorm:"not null" json:"razorpayOrderId"`
	RazorpayPaymentID *string   `json:"razorpayPaymentId"`
	RazorpaySignature *string   `json:"razorpaySignature"`
	Amount            string    `gorm:"not null" json:"amount"`
	Currency          string    `gorm:"default:INR" json:"currency"`
	Status            string    `gorm:"not null;default:pending;index" json:"status"`
	PaymentType       string    `gorm:"not null" json:"paymentType"`
	CreatedAt         time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func IsValidPaymentStatus(status string) bool {
	switch status {
	case PaymentPending, PaymentCaptured, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}
