package models

import "time"

// UserPoints keeps total_points == referral_points + activity_points.
// The schema enforces the same invariant with a CHECK constraint.
type UserPoints struct {
	ID             int64     `db:"id" json:"id"`
	UserID         int64     `db:"user_id" json:"user_id"`
	TotalPoints    int       `db:"total_points" json:"total_points"`
	ReferralPoints int       `db:"referral_points" json:"referral_points"`
	ActivityPoints int       `db:"activity_points" json:"activity_points"`
	LastUpdated    time.Time `db:"last_updated" json:"last_updated"`
}
