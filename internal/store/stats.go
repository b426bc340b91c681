package store

import (
	"context"

	"github.com/jmoiron/sqlx"

	"gowheels/internal/models"
)

// Reports runs the hand-written aggregate queries of the admin dashboard.
type Reports struct {
	db *sqlx.DB
}

func NewReports(db *sqlx.DB) *Reports {
	return &Reports{db: db}
}

// DashboardStats is the admin overview.
type DashboardStats struct {
	TotalUsers        int64            `db:"total_users" json:"totalUsers"`
	ActiveUsers       int64            `db:"active_users" json:"activeUsers"`
	ActiveVehicles    int64            `db:"active_vehicles" json:"activeVehicles"`
	TotalBookings     int64            `db:"total_bookings" json:"totalBookings"`
	OpenConversations int64            `db:"open_conversations" json:"openConversations"`
	Revenue           float64          `db:"revenue" json:"revenue"`
	BookingsByStatus  map[string]int64 `db:"-" json:"bookingsByStatus"`
}

type statusCount struct {
	Status string `db:"status"`
	Count  int64  `db:"count"`
}

const totalsQuery = `
SELECT
	(SELECT COUNT(*) FROM users) AS total_users,
	(SELECT COUNT(*) FROM users WHERE is_active = ?) AS active_users,
	(SELECT COUNT(*) FROM vehicles WHERE is_active = ?) AS active_vehicles,
	(SELECT COUNT(*) FROM bookings) AS total_bookings,
	(SELECT COUNT(*) FROM support_conversations WHERE status <> ?) AS open_conversations,
	(SELECT COALESCE(SUM(CAST(amount AS NUMERIC)), 0) FROM payments WHERE status = ?) AS revenue`

const bookingsByStatusQuery = `SELECT status, COUNT(*) AS count FROM bookings GROUP BY status`

func (r *Reports) Dashboard(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	err := r.db.GetContext(ctx, &stats, r.db.Rebind(totalsQuery),
		true, true, models.ConversationClosed, models.PaymentCaptured)
	if err != nil {
		return nil, err
	}

	var rows []statusCount
	if err := r.db.SelectContext(ctx, &rows, bookingsByStatusQuery); err != nil {
		return nil, err
	}
	stats.BookingsByStatus = map[string]int64{
		models.BookingPending:   0,
		models.BookingConfirmed: 0,
		models.BookingActive:    0,
		models.BookingCompleted: 0,
		models.BookingCancelled: 0,
	}
	for _, row := range rows {
		stats.BookingsByStatus[row.Status] = row.Count
	}
	return &stats, nil
}
