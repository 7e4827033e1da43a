package service

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/lib/pq"
	"github.com/referly/referral-api/internal/models"
)

// uniqueViolation mimics the error postgres raises on a duplicate key.
func uniqueViolation() error {
	return &pq.Error{Code: "23505"}
}

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*models.User)}
}

func (f *fakeUserRepo) addUser(u models.User) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	u.ID = f.nextID
	u.CreatedAt = time.Now()
	f.users[u.ID] = &u
	return &u
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int64) (*models.User, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, false, nil
	}
	cp := *u
	return &cp, true, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, true, nil
		}
	}
	return nil, false, nil
}

func (f *fakeUserRepo) GetByReferralCode(ctx context.Context, code string) (*models.User, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ReferralCode == code {
			cp := *u
			return &cp, true, nil
		}
	}
	return nil, false, nil
}

func (f *fakeUserRepo) Create(ctx context.Context, tx *sql.Tx, user *models.User) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return 0, uniqueViolation()
		}
	}
	f.nextID++
	cp := *user
	cp.ID = f.nextID
	cp.CreatedAt = time.Now()
	f.users[cp.ID] = &cp
	return cp.ID, nil
}

func (f *fakeUserRepo) SetReferralCode(ctx context.Context, userID int64, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ReferralCode == code {
			return uniqueViolation()
		}
	}
	if u, ok := f.users[userID]; ok && u.ReferralCode == "" {
		u.ReferralCode = code
	}
	return nil
}

func (f *fakeUserRepo) List(ctx context.Context) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.User, 0, len(f.users))
	for _, u := range f.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

type fakePointsRepo struct {
	mu     sync.Mutex
	points map[int64]*models.UserPoints
}

func newFakePointsRepo() *fakePointsRepo {
	return &fakePointsRepo{points: make(map[int64]*models.UserPoints)}
}

func (f *fakePointsRepo) GetByUserID(ctx context.Context, userID int64) (*models.UserPoints, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.points[userID]
	if !ok {
		return nil, false, nil
	}
	cp := *p
	return &cp, true, nil
}

func (f *fakePointsRepo) CreateIfMissing(ctx context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.points[userID]; !ok {
		f.points[userID] = &models.UserPoints{UserID: userID}
	}
	return nil
}

func (f *fakePointsRepo) credit(userID int64, amount int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.points[userID]
	if !ok {
		p = &models.UserPoints{UserID: userID}
		f.points[userID] = p
	}
	p.TotalPoints += amount
	p.ReferralPoints += amount
}

// fakeReferralRepo replays the real repository's transactional behavior:
// crediting inserts the referral and bumps the referrer's points as one
// step, and a second credit for the same referred user fails the way the
// unique index would.
type fakeReferralRepo struct {
	mu        sync.Mutex
	nextID    int64
	referrals []*models.ReferralWithUser
	points    *fakePointsRepo
	users     *fakeUserRepo
}

func newFakeReferralRepo(points *fakePointsRepo, users *fakeUserRepo) *fakeReferralRepo {
	return &fakeReferralRepo{points: points, users: users}
}

func (f *fakeReferralRepo) ExistsByReferredID(ctx context.Context, referredID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.referrals {
		if r.ReferredID == referredID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeReferralRepo) CreditReferral(ctx context.Context, referral *models.Referral) (int64, error) {
	f.mu.Lock()
	for _, r := range f.referrals {
		if r.ReferredID == referral.ReferredID {
			f.mu.Unlock()
			return 0, uniqueViolation()
		}
	}
	f.nextID++
	stored := &models.ReferralWithUser{Referral: *referral}
	stored.ID = f.nextID
	stored.Status = models.ReferralStatusCompleted
	stored.CompletedAt = sql.NullTime{Time: time.Now(), Valid: true}
	stored.CreatedAt = time.Now()
	if referred, ok := f.users.users[referral.ReferredID]; ok {
		stored.ReferredName = referred.FullName
		stored.ReferredEmail = referred.Email
		stored.ReferredJoinedAt = referred.CreatedAt
	}
	f.referrals = append(f.referrals, stored)
	f.mu.Unlock()

	f.points.credit(referral.ReferrerID, referral.PointsEarned)
	return stored.ID, nil
}

func (f *fakeReferralRepo) ListByReferrerID(ctx context.Context, referrerID int64) ([]*models.ReferralWithUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.ReferralWithUser
	for _, r := range f.referrals {
		if r.ReferrerID == referrerID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeTwitterRepo struct {
	mu          sync.Mutex
	nextID      int64
	connections map[int64]*models.TwitterConnection
}

func newFakeTwitterRepo() *fakeTwitterRepo {
	return &fakeTwitterRepo{connections: make(map[int64]*models.TwitterConnection)}
}

func (f *fakeTwitterRepo) addConnection(tc models.TwitterConnection) *models.TwitterConnection {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	tc.ID = f.nextID
	f.connections[tc.ID] = &tc
	return &tc
}

func (f *fakeTwitterRepo) GetByID(ctx context.Context, id int64) (*models.TwitterConnection, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tc, ok := f.connections[id]
	if !ok {
		return nil, false, nil
	}
	cp := *tc
	return &cp, true, nil
}

func (f *fakeTwitterRepo) GetByTwitterID(ctx context.Context, twitterID string) (*models.TwitterConnection, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, tc := range f.connections {
		if tc.TwitterID == twitterID {
			cp := *tc
			return &cp, true, nil
		}
	}
	return nil, false, nil
}

func (f *fakeTwitterRepo) GetActiveByUserID(ctx context.Context, userID int64) (*models.TwitterConnection, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, tc := range f.connections {
		if tc.UserID == userID && tc.IsActive {
			cp := *tc
			return &cp, true, nil
		}
	}
	return nil, false, nil
}

func (f *fakeTwitterRepo) Create(ctx context.Context, tx *sql.Tx, tc *models.TwitterConnection) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.connections {
		if existing.TwitterID == tc.TwitterID {
			return 0, uniqueViolation()
		}
	}
	f.nextID++
	cp := *tc
	cp.ID = f.nextID
	f.connections[cp.ID] = &cp
	return cp.ID, nil
}

func (f *fakeTwitterRepo) Update(ctx context.Context, tc *models.TwitterConnection) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, existing := range f.connections {
		if existing.TwitterID == tc.TwitterID {
			cp := *tc
			cp.ID = id
			cp.IsActive = true
			f.connections[id] = &cp
			return nil
		}
	}
	return nil
}

func (f *fakeTwitterRepo) UpdateMetrics(ctx context.Context, id int64, followers, following, tweets int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if tc, ok := f.connections[id]; ok {
		tc.FollowersCount = followers
		tc.FollowingCount = following
		tc.TweetsCount = tweets
		tc.LastSync = time.Now()
	}
	return nil
}

func (f *fakeTwitterRepo) Deactivate(ctx context.Context, userID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	affected := false
	for _, tc := range f.connections {
		if tc.UserID == userID && tc.IsActive {
			tc.IsActive = false
			affected = true
		}
	}
	return affected, nil
}

func (f *fakeTwitterRepo) ListActive(ctx context.Context) ([]*models.TwitterConnectionInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.TwitterConnectionInfo
	for _, tc := range f.connections {
		if !tc.IsActive {
			continue
		}
		info := &models.TwitterConnectionInfo{
			ID:              tc.ID,
			TwitterID:       tc.TwitterID,
			Username:        tc.Username,
			DisplayName:     tc.DisplayName,
			ProfileImageURL: tc.ProfileImageURL,
			FollowersCount:  tc.FollowersCount,
			FollowingCount:  tc.FollowingCount,
			TweetsCount:     tc.TweetsCount,
			LastSync:        tc.LastSync,
		}
		info.User.ID = tc.UserID
		out = append(out, info)
	}
	return out, nil
}

func (f *fakeTwitterRepo) ListStale(ctx context.Context, olderThan time.Time) ([]*models.TwitterConnection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.TwitterConnection
	for _, tc := range f.connections {
		if tc.IsActive && tc.LastSync.Before(olderThan) {
			cp := *tc
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeWalletRepo struct {
	mu      sync.Mutex
	nextID  int64
	wallets map[int64]*models.WalletConnection
}

func newFakeWalletRepo() *fakeWalletRepo {
	return &fakeWalletRepo{wallets: make(map[int64]*models.WalletConnection)}
}

func (f *fakeWalletRepo) GetActiveByUserID(ctx context.Context, userID int64) (*models.WalletConnection, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, wc := range f.wallets {
		if wc.UserID == userID && wc.IsActive {
			cp := *wc
			return &cp, true, nil
		}
	}
	return nil, false, nil
}

func (f *fakeWalletRepo) GetActiveByAddress(ctx context.Context, address string) (*models.WalletConnection, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, wc := range f.wallets {
		if wc.WalletAddress == address && wc.IsActive {
			cp := *wc
			return &cp, true, nil
		}
	}
	return nil, false, nil
}

func (f *fakeWalletRepo) Create(ctx context.Context, wc *models.WalletConnection) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.wallets {
		if existing.WalletAddress == wc.WalletAddress {
			return 0, uniqueViolation()
		}
	}
	f.nextID++
	cp := *wc
	cp.ID = f.nextID
	cp.ConnectedAt = time.Now()
	f.wallets[cp.ID] = &cp
	return cp.ID, nil
}

func (f *fakeWalletRepo) Update(ctx context.Context, wc *models.WalletConnection) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, existing := range f.wallets {
		if id != wc.ID && existing.WalletAddress == wc.WalletAddress && existing.IsActive {
			return uniqueViolation()
		}
	}
	if existing, ok := f.wallets[wc.ID]; ok {
		existing.WalletAddress = wc.WalletAddress
		existing.Balance = wc.Balance
		existing.BalanceUSD = wc.BalanceUSD
		existing.Network = wc.Network
		existing.LastUpdated = time.Now()
	}
	return nil
}

func (f *fakeWalletRepo) UpdateBalance(ctx context.Context, id int64, balance sql.NullString, balanceUSD sql.NullFloat64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if wc, ok := f.wallets[id]; ok {
		if balance.Valid {
			wc.Balance = balance
		}
		if balanceUSD.Valid {
			wc.BalanceUSD = balanceUSD
		}
		wc.LastUpdated = time.Now()
	}
	return nil
}

func (f *fakeWalletRepo) Deactivate(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if wc, ok := f.wallets[id]; ok {
		wc.IsActive = false
	}
	return nil
}
