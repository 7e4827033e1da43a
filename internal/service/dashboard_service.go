package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/referly/referral-api/internal/repository"
)

type DashboardStats struct {
	TotalUsers              int64  `json:"totalUsers"`
	TotalReferrals          int64  `json:"totalReferrals"`
	TotalWallets            int64  `json:"totalWallets"`
	TotalTwitterConnections int64  `json:"totalTwitterConnections"`
	TotalPoints             int64  `json:"totalPoints"`
	RecentUsers             int64  `json:"recentUsers"`
	GrowthRate              string `json:"growthRate"`
}

type DashboardService interface {
	Stats(ctx context.Context) (*DashboardStats, error)
	RecentActivity(ctx context.Context) ([]repository.ActivityEntry, error)
}

type dashboardService struct {
	d repository.DashboardRepository
}

func NewDashboardService(d repository.DashboardRepository) DashboardService {
	return &dashboardService{d: d}
}

func (s *dashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	thirtyDaysAgo := time.Now().AddDate(0, 0, -30)
	counts, err := s.d.Counts(ctx, thirtyDaysAgo)
	if err != nil {
		return nil, err
	}

	growthRate := "0%"
	if counts.TotalUsers > 0 {
		growthRate = fmt.Sprintf("%.1f%%", float64(counts.RecentUsers)/float64(counts.TotalUsers)*100)
	}

	return &DashboardStats{
		TotalUsers:              counts.TotalUsers,
		TotalReferrals:          counts.TotalReferrals,
		TotalWallets:            counts.TotalWallets,
		TotalTwitterConnections: counts.TotalTwitterConnections,
		TotalPoints:             counts.TotalPoints,
		RecentUsers:             counts.RecentUsers,
		GrowthRate:              growthRate,
	}, nil
}

func (s *dashboardService) RecentActivity(ctx context.Context) ([]repository.ActivityEntry, error) {
	registrations, err := s.d.RecentRegistrations(ctx, 5)
	if err != nil {
		return nil, err
	}
	referrals, err := s.d.RecentReferrals(ctx, 5)
	if err != nil {
		return nil, err
	}

	activities := append(registrations, referrals...)
	sort.Slice(activities, func(i, j int) bool {
		return activities[i].Time.After(activities[j].Time)
	})
	if len(activities) > 10 {
		activities = activities[:10]
	}
	return activities, nil
}
