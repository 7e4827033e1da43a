package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/referly/referral-api/internal/models"
)

type WalletConnectionRepository interface {
	GetActiveByUserID(ctx context.Context, userID int64) (*models.WalletConnection, bool, error)
	GetActiveByAddress(ctx context.Context, address string) (*models.WalletConnection, bool, error)
	Create(ctx context.Context, wc *models.WalletConnection) (int64, error)
	Update(ctx context.Context, wc *models.WalletConnection) error
	UpdateBalance(ctx context.Context, id int64, balance sql.NullString, balanceUSD sql.NullFloat64) error
	Deactivate(ctx context.Context, id int64) error
}

type walletConnectionRepository struct {
	db *sql.DB
}

func NewWalletConnectionRepository(db *sql.DB) WalletConnectionRepository {
	return &walletConnectionRepository{db: db}
}

const walletColumns = `id, user_id, wallet_type, wallet_address, balance, balance_usd, network, is_active, connected_at, last_updated`

func scanWallet(row *sql.Row) (*models.WalletConnection, bool, error) {
	var wc models.WalletConnection
	err := row.Scan(&wc.ID, &wc.UserID, &wc.WalletType, &wc.WalletAddress,
		&wc.Balance, &wc.BalanceUSD, &wc.Network, &wc.IsActive, &wc.ConnectedAt, &wc.LastUpdated)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}
	return &wc, true, nil
}

func (r *walletConnectionRepository) GetActiveByUserID(ctx context.Context, userID int64) (*models.WalletConnection, bool, error) {
	query := `SELECT ` + walletColumns + ` FROM wallet_connections WHERE user_id = $1 AND is_active = TRUE`
	return scanWallet(r.db.QueryRowContext(ctx, query, userID))
}

func (r *walletConnectionRepository) GetActiveByAddress(ctx context.Context, address string) (*models.WalletConnection, bool, error) {
	query := `SELECT ` + walletColumns + ` FROM wallet_connections WHERE wallet_address = $1 AND is_active = TRUE`
	return scanWallet(r.db.QueryRowContext(ctx, query, address))
}

func (r *walletConnectionRepository) Create(ctx context.Context, wc *models.WalletConnection) (int64, error) {
	query := `
		INSERT INTO wallet_connections (user_id, wallet_type, wallet_address, balance, balance_usd, network, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE)
		RETURNING id`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		wc.UserID, wc.WalletType, wc.WalletAddress, wc.Balance, wc.BalanceUSD, wc.Network).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return id, nil
}

func (r *walletConnectionRepository) Update(ctx context.Context, wc *models.WalletConnection) error {
	query := `
		UPDATE wallet_connections
		SET wallet_address = $2,
			balance = COALESCE($3, balance),
			balance_usd = COALESCE($4, balance_usd),
			network = $5,
			last_updated = $6
		WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, wc.ID, wc.WalletAddress, wc.Balance, wc.BalanceUSD, wc.Network, time.Now())
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *walletConnectionRepository) UpdateBalance(ctx context.Context, id int64, balance sql.NullString, balanceUSD sql.NullFloat64) error {
	query := `
		UPDATE wallet_connections
		SET balance = COALESCE($2, balance),
			balance_usd = COALESCE($3, balance_usd),
			last_updated = $4
		WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, balance, balanceUSD, time.Now())
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *walletConnectionRepository) Deactivate(ctx context.Context, id int64) error {
	query := `
		UPDATE wallet_connections
		SET is_active = FALSE,
			last_updated = $2
		WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
