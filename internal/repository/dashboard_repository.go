package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"
)

// DashboardCounts is one scan's worth of platform-wide aggregates.
type DashboardCounts struct {
	TotalUsers              int64
	TotalReferrals          int64
	TotalWallets            int64
	TotalTwitterConnections int64
	TotalPoints             int64
	RecentUsers             int64
}

type ActivityEntry struct {
	Type   string    `json:"type"`
	User   string    `json:"user"`
	Action string    `json:"action"`
	Time   time.Time `json:"time"`
	Email  string    `json:"email"`
}

type DashboardRepository interface {
	Counts(ctx context.Context, recentSince time.Time) (*DashboardCounts, error)
	RecentRegistrations(ctx context.Context, limit int) ([]ActivityEntry, error)
	RecentReferrals(ctx context.Context, limit int) ([]ActivityEntry, error)
}

type dashboardRepository struct {
	db *sql.DB
}

func NewDashboardRepository(db *sql.DB) DashboardRepository {
	return &dashboardRepository{db: db}
}

func (r *dashboardRepository) Counts(ctx context.Context, recentSince time.Time) (*DashboardCounts, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM users WHERE is_active = TRUE),
			(SELECT COUNT(*) FROM referrals WHERE status = 'completed'),
			(SELECT COUNT(*) FROM wallet_connections WHERE is_active = TRUE),
			(SELECT COUNT(*) FROM twitter_connections WHERE is_active = TRUE),
			(SELECT COALESCE(SUM(total_points), 0) FROM user_points),
			(SELECT COUNT(*) FROM users WHERE is_active = TRUE AND created_at >= $1)`

	var c DashboardCounts
	err := r.db.QueryRowContext(ctx, query, recentSince).Scan(
		&c.TotalUsers, &c.TotalReferrals, &c.TotalWallets,
		&c.TotalTwitterConnections, &c.TotalPoints, &c.RecentUsers)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return &c, nil
}

func (r *dashboardRepository) RecentRegistrations(ctx context.Context, limit int) ([]ActivityEntry, error) {
	query := `
		SELECT full_name, email, created_at
		FROM users
		WHERE is_active = TRUE
		ORDER BY created_at DESC
		LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var entries []ActivityEntry
	for rows.Next() {
		e := ActivityEntry{Type: "user_registration", Action: "Joined the platform"}
		if err := rows.Scan(&e.User, &e.Email, &e.Time); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *dashboardRepository) RecentReferrals(ctx context.Context, limit int) ([]ActivityEntry, error) {
	query := `
		SELECT u.full_name, u.email, r.created_at
		FROM referrals r
		JOIN users u ON u.id = r.referred_id
		WHERE r.status = 'completed'
		ORDER BY r.created_at DESC
		LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var entries []ActivityEntry
	for rows.Next() {
		e := ActivityEntry{Type: "referral", Action: "Completed referral"}
		if err := rows.Scan(&e.User, &e.Email, &e.Time); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
