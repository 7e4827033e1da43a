package models

import (
	"database/sql"
	"time"
)

type WalletConnection struct {
	ID            int64           `db:"id" json:"id"`
	UserID        int64           `db:"user_id" json:"user_id"`
	WalletType    string          `db:"wallet_type" json:"wallet_type"`
	WalletAddress string          `db:"wallet_address" json:"wallet_address"`
	Balance       sql.NullString  `db:"balance" json:"balance"`
	BalanceUSD    sql.NullFloat64 `db:"balance_usd" json:"balance_usd"`
	Network       string          `db:"network" json:"network"`
	IsActive      bool            `db:"is_active" json:"is_active"`
	ConnectedAt   time.Time       `db:"connected_at" json:"connected_at"`
	LastUpdated   time.Time       `db:"last_updated" json:"last_updated"`
}
