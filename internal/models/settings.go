package models

import "time"

// VehicleInsuranceOption is an insurance package offered on a vehicle.
type VehicleInsuranceOption struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	VehicleID   uint      `gorm:"index;not null" json:"vehicleId"`
	Type        string    `gorm:"not null" json:"type"`
	PricePerDay float64   `gorm:"type:numeric(10,2);not null" json:"pricePerDay"`
	Description string    `gorm:"not null" json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// AdminSetting is a key/value platform setting such as tax_rate.
type AdminSetting struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SettingKey   string    `gorm:"uniqueIndex;not null" json:"settingKey"`
	SettingValue string    `gorm:"not null" json:"settingValue"`
	Description  *string   `json:"description"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

const (
	SettingTaxRate           = "tax_rate"
	SettingDepositPercentage = "deposit_percentage"
	SettingMaxBookingDays    = "max_booking_days"

	SettingPlatformCommission = "platform_commission"
	SettingCancellationPolicy = "cancellation_policy"
)

// All returns every model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Vehicle{},
		&Booking{},
		&Payment{},
		&SupportConversation{},
		&SupportMessage{},
		&VehicleInsuranceOption{},
		&AdminSetting{},
	}
}
