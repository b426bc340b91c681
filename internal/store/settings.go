package store

import (
	"context"
	"time"

	"gorm.io/gorm/clause"

	"gowheels/internal/models"
)

func (s *Store) InsuranceOptions(ctx context.Context, vehicleID uint) ([]models.VehicleInsuranceOption, error) {
	options := []models.VehicleInsuranceOption{}
	err := s.conn(ctx).Where("vehicle_id = ?", vehicleID).Order("price_per_day ASC").Find(&options).Error
	return options, err
}

func (s *Store) CreateInsuranceOption(ctx context.Context, o *models.VehicleInsuranceOption) error {
	return translate(s.conn(ctx).Create(o).Error)
}

func (s *Store) Settings(ctx context.Context) ([]models.AdminSetting, error) {
	settings := []models.AdminSetting{}
	err := s.conn(ctx).Order("setting_key ASC").Find(&settings).Error
	return settings, err
}

// SettingValues returns every setting as key → value.
func (s *Store) SettingValues(ctx context.Context) (map[string]string, error) {
	settings, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}
	values := make(map[string]string, len(settings))
	for _, st := range settings {
		values[st.SettingKey] = st.SettingValue
	}
	return values, nil
}

func (s *Store) Setting(ctx context.Context, key string) (*models.AdminSetting, error) {
	var st models.AdminSetting
	if err := s.conn(ctx).Where("setting_key = ?", key).First(&st).Error; err != nil {
		return nil, translate(err)
	}
	return &st, nil
}

// UpsertSetting creates or overwrites a setting in a single statement.
// A nil description leaves an existing description untouched.
func (s *Store) UpsertSetting(ctx context.Context, key, value string, description *string) (*models.AdminSetting, error) {
	st := models.AdminSetting{SettingKey: key, SettingValue: value, Description: description}
	updates := clause.Assignments(map[string]interface{}{
		"setting_value": value,
		"updated_at":    time.Now(),
	})
	if description != nil {
		updates = append(updates, clause.Assignment{Column: clause.Column{Name: "description"}, Value: *description})
	}
	err := s.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "setting_key"}},
		DoUpdates: updates,
	}).Create(&st).Error
	if err != nil {
		return nil, translate(err)
	}
	return s.Setting(ctx, key)
}
