package service

import (
	"context"
	"fmt"
	"log/slog"

	config "github.com/referly/referral-api/configs"
	"github.com/referly/referral-api/internal/models"
	"github.com/referly/referral-api/internal/repository"
	"github.com/referly/referral-api/internal/transfer"
	"github.com/referly/referral-api/pkg/utils"
)

type ReferralService interface {
	GetCode(ctx context.Context, userID int64) (*transfer.ReferralCodeResponse, error)
	GetStats(ctx context.Context, userID int64) (*transfer.ReferralStats, error)
	Validate(ctx context.Context, code string) (*transfer.ReferrerInfo, error)
	CreditReferral(ctx context.Context, code string, referredUserID int64) (*models.Referral, error)
}

type referralService struct {
	cfg config.Config
	u   repository.UserRepository
	r   repository.ReferralRepository
	p   repository.UserPointsRepository
}

func NewReferralService(cfg config.Config, u repository.UserRepository, r repository.ReferralRepository, p repository.UserPointsRepository) ReferralService {
	return &referralService{
		cfg: cfg,
		u:   u,
		r:   r,
		p:   p,
	}
}

// GetCode lazily assigns the user a referral code on first request. The
// unique index on referral_code resolves generation collisions; the losing
// writer reads back whichever code won.
func (s *referralService) GetCode(ctx context.Context, userID int64) (*transfer.ReferralCodeResponse, error) {
	user, exists, err := s.u.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrUserNotFound
	}

	if user.ReferralCode == "" {
		for attempt := 0; attempt < 5; attempt++ {
			code, err := utils.GenerateReferralCode()
			if err != nil {
				return nil, err
			}
			err = s.u.SetReferralCode(ctx, userID, code)
			if err == nil {
				break
			}
			if !repository.IsUniqueViolation(err) {
				return nil, err
			}
		}
		user, _, err = s.u.GetByID(ctx, userID)
		if err != nil {
			return nil, err
		}
	}

	return &transfer.ReferralCodeResponse{
		ReferralCode: user.ReferralCode,
		ReferralLink: fmt.Sprintf("%s/register?ref=%s", s.cfg.FrontendURL, user.ReferralCode),
	}, nil
}

func (s *referralService) GetStats(ctx context.Context, userID int64) (*transfer.ReferralStats, error) {
	referrals, err := s.r.ListByReferrerID(ctx, userID)
	if err != nil {
		return nil, err
	}

	points, exists, err := s.p.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := s.p.CreateIfMissing(ctx, userID); err != nil {
			return nil, err
		}
		points = &models.UserPoints{UserID: userID}
	}

	stats := &transfer.ReferralStats{
		TotalReferrals: len(referrals),
		CurrentPoints:  points.TotalPoints,
		ReferralPoints: points.ReferralPoints,
		ActivityPoints: points.ActivityPoints,
		Referrals:      make([]transfer.ReferralDetail, 0, len(referrals)),
	}

	for _, r := range referrals {
		switch r.Status {
		case models.ReferralStatusCompleted:
			stats.CompletedReferrals++
			stats.TotalPointsEarned += r.PointsEarned
		case models.ReferralStatusPending:
			stats.PendingReferrals++
		}

		detail := transfer.ReferralDetail{
			ID: r.ID,
			ReferredUser: transfer.ReferredUser{
				ID:       r.ReferredID,
				Name:     r.ReferredName,
				Email:    r.ReferredEmail,
				JoinedAt: r.ReferredJoinedAt,
			},
			PointsEarned: r.PointsEarned,
			Status:       r.Status,
			CreatedAt:    r.CreatedAt,
		}
		if r.CompletedAt.Valid {
			completedAt := r.CompletedAt.Time
			detail.CompletedAt = &completedAt
		}
		stats.Referrals = append(stats.Referrals, detail)
	}

	return stats, nil
}

func (s *referralService) Validate(ctx context.Context, code string) (*transfer.ReferrerInfo, error) {
	referrer, err := s.resolveReferrer(ctx, code)
	if err != nil {
		return nil, err
	}
	return &transfer.ReferrerInfo{
		ID:    referrer.ID,
		Name:  referrer.FullName,
		Email: referrer.Email,
	}, nil
}

// CreditReferral records the completed referral and awards the referrer's
// points as one unit. Retries for an already-credited user fail with
// ErrAlreadyReferred and change nothing.
func (s *referralService) CreditReferral(ctx context.Context, code string, referredUserID int64) (*models.Referral, error) {
	referrer, err := s.resolveReferrer(ctx, code)
	if err != nil {
		return nil, err
	}

	if referrer.ID == referredUserID {
		return nil, ErrSelfReferral
	}

	credited, err := s.r.ExistsByReferredID(ctx, referredUserID)
	if err != nil {
		return nil, err
	}
	if credited {
		return nil, ErrAlreadyReferred
	}

	referral := &models.Referral{
		ReferrerID:   referrer.ID,
		ReferredID:   referredUserID,
		ReferralCode: code,
		PointsEarned: models.ReferralPoints,
		Status:       models.ReferralStatusCompleted,
	}

	id, err := s.r.CreditReferral(ctx, referral)
	if err != nil {
		// Two racing registrations can both pass the exists check; the
		// unique index on referred_id settles it.
		if repository.IsUniqueViolation(err) {
			return nil, ErrAlreadyReferred
		}
		return nil, err
	}
	referral.ID = id

	slog.Info(fmt.Sprintf("referral credited: referrer %d referred %d", referrer.ID, referredUserID))
	return referral, nil
}

func (s *referralService) resolveReferrer(ctx context.Context, code string) (*models.User, error) {
	if code == "" {
		return nil, ErrInvalidReferralCode
	}
	referrer, exists, err := s.u.GetByReferralCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if !exists || !referrer.IsActive {
		return nil, ErrInvalidReferralCode
	}
	return referrer, nil
}
