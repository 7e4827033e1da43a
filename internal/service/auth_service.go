package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	config "github.com/referly/referral-api/configs"
	"github.com/referly/referral-api/internal/models"
	"github.com/referly/referral-api/internal/repository"
	"github.com/referly/referral-api/internal/transfer"
	"github.com/referly/referral-api/pkg/utils"
	"golang.org/x/crypto/bcrypt"
)

const tokenDuration = 24 * time.Hour

type AuthService interface {
	Register(ctx context.Context, req *transfer.RegisterRequest) (*models.User, string, error)
	Login(ctx context.Context, req *transfer.LoginRequest) (*models.User, string, error)
}

type authService struct {
	cfg config.Config
	u   repository.UserRepository
	r   ReferralService
}

func NewAuthService(cfg config.Config, u repository.UserRepository, r ReferralService) AuthService {
	return &authService{
		cfg: cfg,
		u:   u,
		r:   r,
	}
}

func (s *authService) Register(ctx context.Context, req *transfer.RegisterRequest) (*models.User, string, error) {
	_, exists, err := s.u.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, "", err
	}
	if exists {
		return nil, "", ErrEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		slog.Info(err.Error())
		return nil, "", err
	}

	user := &models.User{
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: string(hashed),
		IsActive:     true,
	}

	id, err := s.u.Create(ctx, nil, user)
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", err
	}
	user.ID = id

	// The account exists from here on. A failed referral credit is logged
	// and never surfaced to the new user.
	if req.ReferralCode != "" {
		if _, err := s.r.CreditReferral(ctx, req.ReferralCode, id); err != nil {
			slog.Info("referral processing failed: " + err.Error())
		}
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *authService) Login(ctx context.Context, req *transfer.LoginRequest) (*models.User, string, error) {
	user, exists, err := s.u.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, "", err
	}
	if !exists {
		return nil, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *authService) issueToken(user *models.User) (string, error) {
	return utils.GenerateToken(s.cfg.SecretKey, fmt.Sprintf("%d", user.ID), user.Email, tokenDuration)
}
