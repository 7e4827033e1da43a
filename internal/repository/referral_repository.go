package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/referly/referral-api/internal/models"
)

type ReferralRepository interface {
	ExistsByReferredID(ctx context.Context, referredID int64) (bool, error)
	CreditReferral(ctx context.Context, referral *models.Referral) (int64, error)
	ListByReferrerID(ctx context.Context, referrerID int64) ([]*models.ReferralWithUser, error)
}

type referralRepository struct {
	db *sql.DB
}

func NewReferralRepository(db *sql.DB) ReferralRepository {
	return &referralRepository{db: db}
}

func (r *referralRepository) ExistsByReferredID(ctx context.Context, referredID int64) (bool, error) {
	query := `SELECT 1 FROM referrals WHERE referred_id = $1`

	var result int
	err := r.db.QueryRowContext(ctx, query, referredID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}
	return true, nil
}

// CreditReferral inserts the completed referral row and increments the
// referrer's point balance in one transaction. The unique index on
// referred_id rejects a second credit for the same user, and the points
// upsert takes a row lock on user_points so two simultaneous credits for the
// same referrer cannot lose an increment. Either both writes commit or
// neither does.
func (r *referralRepository) CreditReferral(ctx context.Context, referral *models.Referral) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	defer tx.Rollback()

	insertQuery := `
		INSERT INTO referrals (referrer_id, referred_id, referral_code, points_earned, status, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	var id int64
	err = tx.QueryRowContext(ctx, insertQuery,
		referral.ReferrerID,
		referral.ReferredID,
		referral.ReferralCode,
		referral.PointsEarned,
		models.ReferralStatusCompleted,
		time.Now(),
	).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	pointsQuery := `
		INSERT INTO user_points (user_id, total_points, referral_points, activity_points)
		VALUES ($1, $2, $2, 0)
		ON CONFLICT (user_id) DO UPDATE
		SET total_points = user_points.total_points + EXCLUDED.total_points,
			referral_points = user_points.referral_points + EXCLUDED.referral_points,
			last_updated = CURRENT_TIMESTAMP`
	_, err = tx.ExecContext(ctx, pointsQuery, referral.ReferrerID, referral.PointsEarned)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return id, nil
}

func (r *referralRepository) ListByReferrerID(ctx context.Context, referrerID int64) ([]*models.ReferralWithUser, error) {
	query := `
		SELECT r.id, r.referrer_id, r.referred_id, r.referral_code, r.points_earned,
			r.status, r.completed_at, r.created_at,
			u.full_name, u.email, u.created_at
		FROM referrals r
		JOIN users u ON u.id = r.referred_id
		WHERE r.referrer_id = $1
		ORDER BY r.created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, referrerID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var referrals []*models.ReferralWithUser
	for rows.Next() {
		var rw models.ReferralWithUser
		err := rows.Scan(&rw.ID, &rw.ReferrerID, &rw.ReferredID, &rw.ReferralCode, &rw.PointsEarned,
			&rw.Status, &rw.CompletedAt, &rw.CreatedAt,
			&rw.ReferredName, &rw.ReferredEmail, &rw.ReferredJoinedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		referrals = append(referrals, &rw)
	}
	return referrals, rows.Err()
}
