package models

import (
	"database/sql"
	"time"
)

const (
	ReferralStatusPending   = "pending"
	ReferralStatusCompleted = "completed"
	ReferralStatusCancelled = "cancelled"
)

// ReferralPoints is the fixed award credited to the referrer when a
// referred user completes registration.
const ReferralPoints = 100

type Referral struct {
	ID           int64        `db:"id" json:"id"`
	ReferrerID   int64        `db:"referrer_id" json:"referrer_id"`
	ReferredID   int64        `db:"referred_id" json:"referred_id"`
	ReferralCode string       `db:"referral_code" json:"referral_code"`
	PointsEarned int          `db:"points_earned" json:"points_earned"`
	Status       string       `db:"status" json:"status"`
	CompletedAt  sql.NullTime `db:"completed_at" json:"completed_at"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
}

// ReferralWithUser carries the referred user's identity for stats listings.
type ReferralWithUser struct {
	Referral
	ReferredName     string    `db:"referred_name" json:"referred_name"`
	ReferredEmail    string    `db:"referred_email" json:"referred_email"`
	ReferredJoinedAt time.Time `db:"referred_joined_at" json:"referred_joined_at"`
}
