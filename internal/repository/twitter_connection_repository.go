package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/referly/referral-api/internal/models"
)

type TwitterConnectionRepository interface {
	GetByID(ctx context.Context, id int64) (*models.TwitterConnection, bool, error)
	GetByTwitterID(ctx context.Context, twitterID string) (*models.TwitterConnection, bool, error)
	GetActiveByUserID(ctx context.Context, userID int64) (*models.TwitterConnection, bool, error)
	Create(ctx context.Context, tx *sql.Tx, tc *models.TwitterConnection) (int64, error)
	Update(ctx context.Context, tc *models.TwitterConnection) error
	UpdateMetrics(ctx context.Context, id int64, followers, following, tweets int) error
	Deactivate(ctx context.Context, userID int64) (bool, error)
	ListActive(ctx context.Context) ([]*models.TwitterConnectionInfo, error)
	ListStale(ctx context.Context, olderThan time.Time) ([]*models.TwitterConnection, error)
}

type twitterConnectionRepository struct {
	db *sql.DB
}

func NewTwitterConnectionRepository(db *sql.DB) TwitterConnectionRepository {
	return &twitterConnectionRepository{db: db}
}

const twitterConnectionColumns = `
	id, user_id, twitter_id, username, display_name, profile_image_url,
	access_token, access_token_secret, is_active,
	followers_count, following_count, tweets_count,
	COALESCE(last_sync, created_at), created_at, updated_at`

func scanTwitterConnection(row *sql.Row) (*models.TwitterConnection, bool, error) {
	var tc models.TwitterConnection
	err := row.Scan(&tc.ID, &tc.UserID, &tc.TwitterID, &tc.Username, &tc.DisplayName,
		&tc.ProfileImageURL, &tc.AccessToken, &tc.AccessTokenSecret, &tc.IsActive,
		&tc.FollowersCount, &tc.FollowingCount, &tc.TweetsCount,
		&tc.LastSync, &tc.CreatedAt, &tc.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}
	return &tc, true, nil
}

func (r *twitterConnectionRepository) GetByID(ctx context.Context, id int64) (*models.TwitterConnection, bool, error) {
	query := `SELECT ` + twitterConnectionColumns + ` FROM twitter_connections WHERE id = $1`
	return scanTwitterConnection(r.db.QueryRowContext(ctx, query, id))
}

func (r *twitterConnectionRepository) GetByTwitterID(ctx context.Context, twitterID string) (*models.TwitterConnection, bool, error) {
	query := `SELECT ` + twitterConnectionColumns + ` FROM twitter_connections WHERE twitter_id = $1`
	return scanTwitterConnection(r.db.QueryRowContext(ctx, query, twitterID))
}

func (r *twitterConnectionRepository) GetActiveByUserID(ctx context.Context, userID int64) (*models.TwitterConnection, bool, error) {
	query := `SELECT ` + twitterConnectionColumns + ` FROM twitter_connections WHERE user_id = $1 AND is_active = TRUE`
	return scanTwitterConnection(r.db.QueryRowContext(ctx, query, userID))
}

func (r *twitterConnectionRepository) Create(ctx context.Context, tx *sql.Tx, tc *models.TwitterConnection) (int64, error) {
	var err error
	var id int64

	var insertQuery = `
		INSERT INTO twitter_connections(
			user_id,
			twitter_id,
			username,
			display_name,
			profile_image_url,
			access_token,
			access_token_secret,
			is_active,
			followers_count,
			following_count,
			tweets_count,
			last_sync
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE, $8, $9, $10, $11)
		RETURNING id
	`

	if tx != nil {
		err = tx.QueryRowContext(ctx, insertQuery,
			tc.UserID, tc.TwitterID, tc.Username, tc.DisplayName, tc.ProfileImageURL,
			tc.AccessToken, tc.AccessTokenSecret,
			tc.FollowersCount, tc.FollowingCount, tc.TweetsCount, tc.LastSync,
		).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, insertQuery,
			tc.UserID, tc.TwitterID, tc.Username, tc.DisplayName, tc.ProfileImageURL,
			tc.AccessToken, tc.AccessTokenSecret,
			tc.FollowersCount, tc.FollowingCount, tc.TweetsCount, tc.LastSync,
		).Scan(&id)
	}

	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

// Update overwrites the profile mirror, credentials and metrics of the row
// identified by twitter_id. The owner is written as well: reconnects after a
// disconnect may move the account to a new owner.
func (r *twitterConnectionRepository) Update(ctx context.Context, tc *models.TwitterConnection) error {
	query := `
		UPDATE twitter_connections
		SET user_id = $2,
			username = $3,
			display_name = $4,
			profile_image_url = $5,
			access_token = $6,
			access_token_secret = $7,
			is_active = TRUE,
			followers_count = $8,
			following_count = $9,
			tweets_count = $10,
			last_sync = $11,
			updated_at = CURRENT_TIMESTAMP
		WHERE twitter_id = $1`
	_, err := r.db.ExecContext(ctx, query,
		tc.TwitterID, tc.UserID, tc.Username, tc.DisplayName, tc.ProfileImageURL,
		tc.AccessToken, tc.AccessTokenSecret,
		tc.FollowersCount, tc.FollowingCount, tc.TweetsCount, tc.LastSync)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *twitterConnectionRepository) UpdateMetrics(ctx context.Context, id int64, followers, following, tweets int) error {
	query := `
		UPDATE twitter_connections
		SET followers_count = $2,
			following_count = $3,
			tweets_count = $4,
			last_sync = CURRENT_TIMESTAMP,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, followers, following, tweets)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *twitterConnectionRepository) Deactivate(ctx context.Context, userID int64) (bool, error) {
	query := `
		UPDATE twitter_connections
		SET is_active = FALSE,
			updated_at = CURRENT_TIMESTAMP
		WHERE user_id = $1 AND is_active = TRUE`
	result, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return affected > 0, nil
}

func (r *twitterConnectionRepository) ListActive(ctx context.Context) ([]*models.TwitterConnectionInfo, error) {
	query := `
		SELECT tc.id, tc.twitter_id, tc.username, tc.display_name, tc.profile_image_url,
			tc.followers_count, tc.following_count, tc.tweets_count,
			COALESCE(tc.last_sync, tc.created_at),
			u.id, u.full_name, u.email
		FROM twitter_connections tc
		JOIN users u ON u.id = tc.user_id
		WHERE tc.is_active = TRUE
		ORDER BY tc.created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var connections []*models.TwitterConnectionInfo
	for rows.Next() {
		var ci models.TwitterConnectionInfo
		err := rows.Scan(&ci.ID, &ci.TwitterID, &ci.Username, &ci.DisplayName, &ci.ProfileImageURL,
			&ci.FollowersCount, &ci.FollowingCount, &ci.TweetsCount, &ci.LastSync,
			&ci.User.ID, &ci.User.FullName, &ci.User.Email)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		connections = append(connections, &ci)
	}
	return connections, rows.Err()
}

func (r *twitterConnectionRepository) ListStale(ctx context.Context, olderThan time.Time) ([]*models.TwitterConnection, error) {
	query := `
		SELECT ` + twitterConnectionColumns + `
		FROM twitter_connections
		WHERE is_active = TRUE AND (last_sync IS NULL OR last_sync < $1)`
	rows, err := r.db.QueryContext(ctx, query, olderThan)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var connections []*models.TwitterConnection
	for rows.Next() {
		var tc models.TwitterConnection
		err := rows.Scan(&tc.ID, &tc.UserID, &tc.TwitterID, &tc.Username, &tc.DisplayName,
			&tc.ProfileImageURL, &tc.AccessToken, &tc.AccessTokenSecret, &tc.IsActive,
			&tc.FollowersCount, &tc.FollowingCount, &tc.TweetsCount,
			&tc.LastSync, &tc.CreatedAt, &tc.UpdatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		connections = append(connections, &tc)
	}
	return connections, rows.Err()
}
