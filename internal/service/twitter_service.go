package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dghubble/oauth1"
	config "github.com/referly/referral-api/configs"
	"github.com/referly/referral-api/internal/models"
	"github.com/referly/referral-api/internal/oauthstore"
	"github.com/referly/referral-api/internal/repository"
	"github.com/referly/referral-api/internal/transfer"
	"github.com/referly/referral-api/pkg/utils"
)

// providerTimeout bounds every round trip to Twitter. A provider that hangs
// surfaces ErrProviderUnavailable instead of stalling the request.
const providerTimeout = 20 * time.Second

// TwitterEndpoints lets tests point the handshake at a local server.
type TwitterEndpoints struct {
	RequestTokenURL string
	AuthorizeURL    string
	AccessTokenURL  string
	APIBaseURL      string
}

func DefaultTwitterEndpoints() TwitterEndpoints {
	return TwitterEndpoints{
		RequestTokenURL: "https://api.twitter.com/oauth/request_token",
		AuthorizeURL:    "https://api.twitter.com/oauth/authorize",
		AccessTokenURL:  "https://api.twitter.com/oauth/access_token",
		APIBaseURL:      "https://api.twitter.com",
	}
}

type TwitterService interface {
	BeginAuthorization(ctx context.Context, userID int64) (string, error)
	CompleteAuthorization(ctx context.Context, requestToken, verifier string) (*models.TwitterConnection, error)
	Status(ctx context.Context, userID int64) (*transfer.TwitterStatus, error)
	Disconnect(ctx context.Context, userID int64) error
	ListActive(ctx context.Context) ([]*models.TwitterConnectionInfo, error)
	RecentPosts(ctx context.Context, userID int64) ([]transfer.Tweet, error)
	SyncProfile(ctx context.Context, connectionID int64) error
}

type twitterService struct {
	cfg        config.Config
	tc         repository.TwitterConnectionRepository
	pending    oauthstore.Store
	ep         TwitterEndpoints
	httpClient *http.Client
}

func NewTwitterService(cfg config.Config, tc repository.TwitterConnectionRepository, pending oauthstore.Store, ep TwitterEndpoints) TwitterService {
	return &twitterService{
		cfg:        cfg,
		tc:         tc,
		pending:    pending,
		ep:         ep,
		httpClient: &http.Client{Timeout: providerTimeout},
	}
}

func (s *twitterService) oauthConfig() *oauth1.Config {
	return &oauth1.Config{
		ConsumerKey:    s.cfg.TwitterConsumerKey,
		ConsumerSecret: s.cfg.TwitterConsumerSecret,
		CallbackURL:    s.cfg.TwitterCallbackURL,
		Endpoint: oauth1.Endpoint{
			RequestTokenURL: s.ep.RequestTokenURL,
			AuthorizeURL:    s.ep.AuthorizeURL,
			AccessTokenURL:  s.ep.AccessTokenURL,
		},
	}
}

// withTimeout runs a provider call that takes no context under a deadline.
func withTimeout(ctx context.Context, fn func() error) error {
	ctx, cancel := context.WithTimeout(ctx, providerTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- fn() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ErrProviderUnavailable
	}
}

func (s *twitterService) BeginAuthorization(ctx context.Context, userID int64) (string, error) {
	if s.cfg.TwitterConsumerKey == "" || s.cfg.TwitterConsumerSecret == "" || s.cfg.TwitterCallbackURL == "" {
		slog.Info("twitter consumer credentials are not set")
		return "", ErrTwitterNotConfigured
	}

	cfg := s.oauthConfig()

	var requestToken, requestSecret string
	err := withTimeout(ctx, func() error {
		var err error
		requestToken, requestSecret, err = cfg.RequestToken()
		return err
	})
	if err != nil {
		slog.Info(err.Error())
		if errors.Is(err, ErrProviderUnavailable) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	err = s.pending.Put(ctx, requestToken, oauthstore.Pending{
		RequestSecret: requestSecret,
		UserID:        userID,
		CreatedAt:     time.Now(),
	})
	if err != nil {
		return "", err
	}

	authorizationURL, err := cfg.AuthorizationURL(requestToken)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}
	return authorizationURL.String(), nil
}

func (s *twitterService) CompleteAuthorization(ctx context.Context, requestToken, verifier string) (*models.TwitterConnection, error) {
	if requestToken == "" || verifier == "" {
		slog.Info("callback missing oauth_token or oauth_verifier")
		return nil, ErrUnknownOrExpiredToken
	}

	// Take consumes the entry, so a duplicate or replayed callback for the
	// same token lands here with no match.
	p, ok, err := s.pending.Take(ctx, requestToken)
	if err != nil {
		return nil, err
	}
	if !ok {
		slog.Info("no pending authorization for oauth token")
		return nil, ErrUnknownOrExpiredToken
	}

	cfg := s.oauthConfig()

	var accessToken, accessSecret string
	err = withTimeout(ctx, func() error {
		var err error
		accessToken, accessSecret, err = cfg.AccessToken(requestToken, p.RequestSecret, verifier)
		return err
	})
	if err != nil {
		slog.Info(err.Error())
		if errors.Is(err, ErrProviderUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrProviderRejected, err)
	}

	profile, err := s.fetchProfile(ctx, accessToken, accessSecret)
	if err != nil {
		return nil, err
	}

	return s.upsertConnection(ctx, p.UserID, profile, accessToken, accessSecret)
}

func (s *twitterService) fetchProfile(ctx context.Context, accessToken, accessSecret string) (*transfer.TwitterProfile, error) {
	client := s.signedClient(ctx, accessToken, accessSecret)

	resp, err := client.Get(s.ep.APIBaseURL + "/1.1/account/verify_credentials.json")
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Info(fmt.Sprintf("verify_credentials returned status %d", resp.StatusCode))
		return nil, ErrProviderRejected
	}

	var profile transfer.TwitterProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("%w: %v", ErrProviderRejected, err)
	}
	return &profile, nil
}

func (s *twitterService) signedClient(ctx context.Context, accessToken, accessSecret string) *http.Client {
	ctx = context.WithValue(ctx, oauth1.HTTPClient, s.httpClient)
	client := s.oauthConfig().Client(ctx, oauth1.NewToken(accessToken, accessSecret))
	client.Timeout = providerTimeout
	return client
}

// upsertConnection keys on the provider-assigned twitter id, never on the
// owner: connecting the same account twice updates the one row. An account
// held actively by another user is rejected rather than silently moved; a
// row left inactive by a disconnect may be claimed by whoever reconnects it.
func (s *twitterService) upsertConnection(ctx context.Context, userID int64, profile *transfer.TwitterProfile, accessToken, accessSecret string) (*models.TwitterConnection, error) {
	encryptedToken, err := utils.Encrypt([]byte(accessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return nil, err
	}
	encryptedSecret, err := utils.Encrypt([]byte(accessSecret), []byte(s.cfg.SecretKey))
	if err != nil {
		return nil, err
	}

	connection := &models.TwitterConnection{
		UserID:            userID,
		TwitterID:         profile.IDStr,
		Username:          profile.ScreenName,
		DisplayName:       profile.Name,
		ProfileImageURL:   profile.ProfileImageURL,
		AccessToken:       encryptedToken,
		AccessTokenSecret: encryptedSecret,
		IsActive:          true,
		FollowersCount:    profile.FollowersCount,
		FollowingCount:    profile.FriendsCount,
		TweetsCount:       profile.StatusesCount,
		LastSync:          time.Now(),
	}

	existing, found, err := s.tc.GetByTwitterID(ctx, profile.IDStr)
	if err != nil {
		return nil, err
	}

	if found {
		if existing.IsActive && existing.UserID != userID {
			slog.Info(fmt.Sprintf("twitter account %s already linked to user %d", profile.IDStr, existing.UserID))
			return nil, ErrAccountAlreadyLinked
		}
		if existing.IsActive {
			connection.UserID = existing.UserID
		}
		connection.ID = existing.ID
		if err := s.tc.Update(ctx, connection); err != nil {
			return nil, err
		}
		return connection, nil
	}

	id, err := s.tc.Create(ctx, nil, connection)
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrAccountAlreadyLinked
		}
		return nil, err
	}
	connection.ID = id
	return connection, nil
}

func (s *twitterService) Status(ctx context.Context, userID int64) (*transfer.TwitterStatus, error) {
	connection, found, err := s.tc.GetActiveByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !found {
		return &transfer.TwitterStatus{Connected: false}, nil
	}

	lastSync := connection.LastSync
	return &transfer.TwitterStatus{
		Connected:       true,
		Username:        connection.Username,
		DisplayName:     connection.DisplayName,
		ProfileImageURL: connection.ProfileImageURL,
		FollowersCount:  connection.FollowersCount,
		FollowingCount:  connection.FollowingCount,
		TweetsCount:     connection.TweetsCount,
		LastSync:        &lastSync,
	}, nil
}

func (s *twitterService) Disconnect(ctx context.Context, userID int64) error {
	affected, err := s.tc.Deactivate(ctx, userID)
	if err != nil {
		return err
	}
	if !affected {
		return ErrConnectionNotFound
	}
	return nil
}

func (s *twitterService) ListActive(ctx context.Context) ([]*models.TwitterConnectionInfo, error) {
	return s.tc.ListActive(ctx)
}

func (s *twitterService) SyncProfile(ctx context.Context, connectionID int64) error {
	connection, found, err := s.tc.GetByID(ctx, connectionID)
	if err != nil {
		return err
	}
	if !found || !connection.IsActive {
		return ErrConnectionNotFound
	}

	accessToken, accessSecret, err := s.decryptCredentials(connection)
	if err != nil {
		return err
	}

	profile, err := s.fetchProfile(ctx, accessToken, accessSecret)
	if err != nil {
		return err
	}

	return s.tc.UpdateMetrics(ctx, connection.ID, profile.FollowersCount, profile.FriendsCount, profile.StatusesCount)
}

func (s *twitterService) decryptCredentials(connection *models.TwitterConnection) (string, string, error) {
	accessToken, err := utils.Decrypt(connection.AccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return "", "", err
	}
	accessSecret, err := utils.Decrypt(connection.AccessTokenSecret, []byte(s.cfg.SecretKey))
	if err != nil {
		return "", "", err
	}
	return accessToken, accessSecret, nil
}
