package service

import (
	"context"
	"database/sql"

	"github.com/referly/referral-api/internal/models"
	"github.com/referly/referral-api/internal/repository"
	"github.com/referly/referral-api/internal/transfer"
)

type WalletService interface {
	Status(ctx context.Context, userID int64) (*models.WalletConnection, bool, error)
	Connect(ctx context.Context, userID int64, req *transfer.ConnectWalletRequest) (*models.WalletConnection, error)
	Disconnect(ctx context.Context, userID int64) error
	UpdateBalance(ctx context.Context, userID int64, req *transfer.UpdateBalanceRequest) (*models.WalletConnection, error)
}

type walletService struct {
	w repository.WalletConnectionRepository
}

func NewWalletService(w repository.WalletConnectionRepository) WalletService {
	return &walletService{w: w}
}

func (s *walletService) Status(ctx context.Context, userID int64) (*models.WalletConnection, bool, error) {
	return s.w.GetActiveByUserID(ctx, userID)
}

func (s *walletService) Connect(ctx context.Context, userID int64, req *transfer.ConnectWalletRequest) (*models.WalletConnection, error) {
	existing, found, err := s.w.GetActiveByAddress(ctx, req.WalletAddress)
	if err != nil {
		return nil, err
	}
	if found && existing.UserID != userID {
		return nil, ErrWalletTaken
	}

	network := req.Network
	if network == "" {
		network = "Ethereum"
	}

	balance := nullString(req.Balance)
	balanceUSD := nullFloat(req.BalanceUSD)

	current, hasWallet, err := s.w.GetActiveByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if hasWallet {
		current.WalletAddress = req.WalletAddress
		current.Balance = balance
		current.BalanceUSD = balanceUSD
		current.Network = network
		if err := s.w.Update(ctx, current); err != nil {
			if repository.IsUniqueViolation(err) {
				return nil, ErrWalletTaken
			}
			return nil, err
		}
		return current, nil
	}

	wallet := &models.WalletConnection{
		UserID:        userID,
		WalletType:    "MetaMask",
		WalletAddress: req.WalletAddress,
		Balance:       balance,
		BalanceUSD:    balanceUSD,
		Network:       network,
		IsActive:      true,
	}
	id, err := s.w.Create(ctx, wallet)
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrWalletTaken
		}
		return nil, err
	}
	wallet.ID = id
	return wallet, nil
}

func (s *walletService) Disconnect(ctx context.Context, userID int64) error {
	wallet, found, err := s.w.GetActiveByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if !found {
		return ErrWalletNotFound
	}
	return s.w.Deactivate(ctx, wallet.ID)
}

func (s *walletService) UpdateBalance(ctx context.Context, userID int64, req *transfer.UpdateBalanceRequest) (*models.WalletConnection, error) {
	wallet, found, err := s.w.GetActiveByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrWalletNotFound
	}

	if err := s.w.UpdateBalance(ctx, wallet.ID, nullString(req.Balance), nullFloat(req.BalanceUSD)); err != nil {
		return nil, err
	}

	wallet, _, err = s.w.GetActiveByUserID(ctx, userID)
	return wallet, err
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

func nullFloat(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: v != 0}
}
