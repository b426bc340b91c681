package store

import (
	"context"

	"gorm.io/gorm"
)

// Store is the gorm-backed persistence layer for every resource.
type Store struct {
	db   *gorm.DB
	Refs *ReferenceGenerator
}

func New(db *gorm.DB) *Store {
	return &Store{db: db, Refs: NewReferenceGenerator()}
}

// DB exposes the underlying connection, mainly for health checks.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// WithTx runs fn against a Store bound to a single transaction.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, Refs: s.Refs})
	})
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func paginate(q *gorm.DB, p Page) *gorm.DB {
	return q.Limit(p.Limit).Offset(p.Offset)
}
