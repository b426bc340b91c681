package store

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm/clause"

	"gowheels/internal/models"
)

// UserFilter narrows the admin user list.
type UserFilter struct {
	Search   string
	Role     string
	IsActive *bool
}

// CreateUser inserts u. A taken email surfaces as ErrDuplicate.
func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	return translate(s.conn(ctx).Create(u).Error)
}

func (s *Store) UserByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.conn(ctx).First(&u, id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// ActiveUserByID treats inactive users as missing.
func (s *Store) ActiveUserByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	err := s.conn(ctx).Where("id = ? AND is_active = ?", id, true).First(&u).Error
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.conn(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&u).Error
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *Store) UserExists(ctx context.Context, id uint) (bool, error) {
	var n int64
	err := s.conn(ctx).Model(&models.User{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

// UpdateUser applies fields (column → value) in one UPDATE … RETURNING.
func (s *Store) UpdateUser(ctx context.Context, id uint, fields map[string]interface{}) (*models.User, error) {
	var u models.User
	res := s.conn(ctx).Model(&u).Clauses(clause.Returning{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return &u, nil
}

// TouchLastLogin stamps the login time and returns the fresh row.
func (s *Store) TouchLastLogin(ctx context.Context, id uint, at time.Time) (*models.User, error) {
	return s.UpdateUser(ctx, id, map[string]interface{}{"last_login_at": at})
}

func (s *Store) SetUserActive(ctx context.Context, id uint, active bool) (*models.User, error) {
	return s.UpdateUser(ctx, id, map[string]interface{}{"is_active": active})
}

func (s *Store) ListUsers(ctx context.Context, f UserFilter, p Page) ([]models.User, error) {
	q := s.conn(ctx).Model(&models.User{})
	if f.Search != "" {
		like := "%" + strings.ToLower(f.Search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	if f.IsActive != nil {
		q = q.Where("is_active = ?", *f.IsActive)
	}

	users := []models.User{}
	err := paginate(q.Order("created_at DESC").Order("id DESC"), p).Find(&users).Error
	return users, err
}
