package transfer

import "time"

type ReferralCodeResponse struct {
	ReferralCode string `json:"referralCode"`
	ReferralLink string `json:"referralLink"`
}

type ReferralStats struct {
	TotalReferrals     int              `json:"totalReferrals"`
	CompletedReferrals int              `json:"completedReferrals"`
	PendingReferrals   int              `json:"pendingReferrals"`
	TotalPointsEarned  int              `json:"totalPointsEarned"`
	CurrentPoints      int              `json:"currentPoints"`
	ReferralPoints     int              `json:"referralPoints"`
	ActivityPoints     int              `json:"activityPoints"`
	Referrals          []ReferralDetail `json:"referrals"`
}

type ReferralDetail struct {
	ID           int64        `json:"id"`
	ReferredUser ReferredUser `json:"referredUser"`
	PointsEarned int          `json:"pointsEarned"`
	Status       string       `json:"status"`
	CreatedAt    time.Time    `json:"createdAt"`
	CompletedAt  *time.Time   `json:"completedAt"`
}

type ReferredUser struct {
	ID       int64     `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	JoinedAt time.Time `json:"joinedAt"`
}

type ReferrerInfo struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
