package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/referly/referral-api/internal/models"
)

type UserPointsRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*models.UserPoints, bool, error)
	CreateIfMissing(ctx context.Context, userID int64) error
}

type userPointsRepository struct {
	db *sql.DB
}

func NewUserPointsRepository(db *sql.DB) UserPointsRepository {
	return &userPointsRepository{db: db}
}

func (r *userPointsRepository) GetByUserID(ctx context.Context, userID int64) (*models.UserPoints, bool, error) {
	query := `
		SELECT id, user_id, total_points, referral_points, activity_points, last_updated
		FROM user_points WHERE user_id = $1`

	var up models.UserPoints
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&up.ID, &up.UserID, &up.TotalPoints, &up.ReferralPoints, &up.ActivityPoints, &up.LastUpdated)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}
	return &up, true, nil
}

func (r *userPointsRepository) CreateIfMissing(ctx context.Context, userID int64) error {
	query := `
		INSERT INTO user_points (user_id, total_points, referral_points, activity_points)
		VALUES ($1, 0, 0, 0)
		ON CONFLICT (user_id) DO NOTHING`
	_, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
