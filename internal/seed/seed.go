// Package seed loads the demo data set: an admin, sample customers, the
// fleet with insurance options and the platform settings.
package seed

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"gowheels/internal/models"
)

// Cost is the bcrypt cost used for seeded passwords.
var Cost = 12

type seedUser struct {
	Email    string
	Name     string
	Phone    string
	Password string
	Role     string
}

var users = []seedUser{
	{"admin@gowheels.com", "Admin User", "+919876543210", "admin123", models.RoleAdmin},
	{"john.doe@email.com", "John Doe", "+919876543211", "password123", models.RoleUser},
	{"jane.smith@email.com", "Jane Smith", "+919876543212", "password123", models.RoleUser},
	{"mike.johnson@email.com", "Mike Johnson", "+919876543213", "password123", models.RoleUser},
}

func ptr[T any](v T) *T { return &v }

func fleet() []models.Vehicle {
	return []models.Vehicle{
		{
			Name: "Maruti Swift", Type: "Hatchback", ImageURL: "/api/placeholder/400/300",
			Seats: 5, Doors: ptr(4), Transmission: "Manual", FuelType: "Petrol",
			PricePerHour: ptr(120.0), PricePerDay: 1800, Rating: 4.5, ReviewCount: 128,
			Amenities:       models.StringList{"AC", "Bluetooth", "USB Charging"},
			LocationAddress: "Connaught Place, New Delhi", LocationLat: ptr(28.6315), LocationLng: ptr(77.2167),
		},
		{
			Name: "Hyundai Creta", Type: "SUV", ImageURL: "/api/placeholder/400/300",
			Seats: 5, Doors: ptr(4), Transmission: "Automatic", FuelType: "Diesel",
			PricePerHour: ptr(200.0), PricePerDay: 3200, Rating: 4.7, ReviewCount: 96,
			Amenities:       models.StringList{"AC", "GPS", "Sunroof", "Reverse Camera"},
			LocationAddress: "Bandra West, Mumbai", LocationLat: ptr(19.0596), LocationLng: ptr(72.8295),
		},
		{
			Name: "Toyota Innova Crysta", Type: "MPV", ImageURL: "/api/placeholder/400/300",
			Seats: 7, Doors: ptr(4), Transmission: "Manual", FuelType: "Diesel",
			PricePerHour: ptr(250.0), PricePerDay: 4000, Rating: 4.6, ReviewCount: 74,
			Amenities:       models.StringList{"AC", "Captain Seats", "USB Charging"},
			LocationAddress: "Koramangala, Bengaluru", LocationLat: ptr(12.9352), LocationLng: ptr(77.6245),
		},
		{
			Name: "Honda City", Type: "Sedan", ImageURL: "/api/placeholder/400/300",
			Seats: 5, Doors: ptr(4), Transmission: "Automatic", FuelType: "Petrol",
			PricePerHour: ptr(160.0), PricePerDay: 2500, Rating: 4.4, ReviewCount: 81,
			Amenities:       models.StringList{"AC", "Bluetooth", "Cruise Control"},
			LocationAddress: "T Nagar, Chennai", LocationLat: ptr(13.0418), LocationLng: ptr(80.2341),
		},
		{
			Name: "Tata Nexon EV", Type: "SUV", ImageURL: "/api/placeholder/400/300",
			Seats: 5, Doors: ptr(4), Transmission: "Automatic", FuelType: "Electric",
			PricePerHour: ptr(180.0), PricePerDay: 2800, Rating: 4.8, ReviewCount: 52,
			Amenities:       models.StringList{"AC", "Fast Charging", "Connected Car"},
			LocationAddress: "Hitech City, Hyderabad", LocationLat: ptr(17.4435), LocationLng: ptr(78.3772),
		},
	}
}

func insurance(vehicleID uint) []models.VehicleInsuranceOption {
	return []models.VehicleInsuranceOption{
		{VehicleID: vehicleID, Type: "Basic", PricePerDay: 300, Description: "Third-party liability cover"},
		{VehicleID: vehicleID, Type: "Comprehensive", PricePerDay: 500, Description: "Own damage and third-party cover with zero depreciation"},
	}
}

var settings = []models.AdminSetting{
	{SettingKey: models.SettingTaxRate, SettingValue: "18.0", Description: ptr("GST rate percentage for all bookings")},
	{SettingKey: models.SettingCancellationPolicy, SettingValue: "Free cancellation up to 24 hours before pickup. 50% refund for cancellations within 24 hours.", Description: ptr("Default cancellation policy for all vehicles")},
	{SettingKey: models.SettingDepositPercentage, SettingValue: "30.0", Description: ptr("Default deposit percentage for partial payments")},
	{SettingKey: models.SettingMaxBookingDays, SettingValue: "30", Description: ptr("Maximum number of days allowed for a single booking")},
	{SettingKey: models.SettingPlatformCommission, SettingValue: "15.0", Description: ptr("Platform commission percentage from vehicle owners")},
}

// Run seeds every table that is still empty. Tables that already hold rows
// are left alone, so Run can be repeated safely.
func Run(ctx context.Context, db *gorm.DB) error {
	db = db.WithContext(ctx)
	steps := []struct {
		name  string
		model interface{}
		fn    func(*gorm.DB) error
	}{
		{"users", &models.User{}, seedUsers},
		{"vehicles", &models.Vehicle{}, seedFleet},
		{"settings", &models.AdminSetting{}, seedSettings},
	}
	for _, step := range steps {
		var count int64
		if err := db.Model(step.model).Count(&count).Error; err != nil {
			return fmt.Errorf("count %s: %w", step.name, err)
		}
		if count > 0 {
			logrus.Infof("%s already seeded, skipping", step.name)
			continue
		}
		if err := db.Transaction(step.fn); err != nil {
			return fmt.Errorf("seed %s: %w", step.name, err)
		}
		logrus.Infof("seeded %s", step.name)
	}
	return nil
}

func seedUsers(tx *gorm.DB) error {
	for _, u := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), Cost)
		if err != nil {
			return err
		}
		rec := models.User{
			Email:        u.Email,
			Name:         u.Name,
			Phone:        u.Phone,
			PasswordHash: string(hash),
			Role:         u.Role,
			IsActive:     true,
		}
		if err := tx.Create(&rec).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedFleet(tx *gorm.DB) error {
	vehicles := fleet()
	for i := range vehicles {
		vehicles[i].AvailabilityStatus = true
		vehicles[i].IsActive = true
	}
	if err := tx.Create(&vehicles).Error; err != nil {
		return err
	}
	for _, v := range vehicles {
		options := insurance(v.ID)
		if err := tx.Create(&options).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedSettings(tx *gorm.DB) error {
	rows := make([]models.AdminSetting, len(settings))
	copy(rows, settings)
	return tx.Create(&rows).Error
}
