package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	config "github.com/referly/referral-api/configs"
	"github.com/referly/referral-api/internal/models"
	"github.com/referly/referral-api/internal/oauthstore"
	"github.com/referly/referral-api/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecretKey = "0123456789abcdef0123456789abcdef"

func testConfig() config.Config {
	return config.Config{
		TwitterConsumerKey:    "consumer-key",
		TwitterConsumerSecret: "consumer-secret",
		TwitterCallbackURL:    "http://localhost:8000/auth/twitter/callback",
		FrontendURL:           "http://localhost:3000",
		SecretKey:             testSecretKey,
	}
}

// fakeProvider stands in for api.twitter.com. Handlers can be swapped per
// test to drive error paths.
type fakeProvider struct {
	mux    *http.ServeMux
	server *httptest.Server
}

func newFakeProvider(t *testing.T) *fakeProvider {
	t.Helper()
	p := &fakeProvider{mux: http.NewServeMux()}
	p.server = httptest.NewServer(p.mux)
	t.Cleanup(p.server.Close)

	p.mux.HandleFunc("/oauth/request_token", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "oauth_token=reqtok&oauth_token_secret=reqsec&oauth_callback_confirmed=true")
	})
	p.mux.HandleFunc("/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "oauth_token=acctok&oauth_token_secret=accsec")
	})
	p.mux.HandleFunc("/1.1/account/verify_credentials.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"id_str": "12345",
			"screen_name": "referly",
			"name": "Referly",
			"profile_image_url_https": "https://img.example/referly.png",
			"followers_count": 42,
			"friends_count": 7,
			"statuses_count": 9
		}`)
	})
	return p
}

func (p *fakeProvider) endpoints() TwitterEndpoints {
	return TwitterEndpoints{
		RequestTokenURL: p.server.URL + "/oauth/request_token",
		AuthorizeURL:    p.server.URL + "/oauth/authorize",
		AccessTokenURL:  p.server.URL + "/oauth/access_token",
		APIBaseURL:      p.server.URL,
	}
}

func newTestTwitterService(t *testing.T, repo *fakeTwitterRepo) (TwitterService, *fakeProvider, oauthstore.Store) {
	t.Helper()
	provider := newFakeProvider(t)
	pending := oauthstore.NewMemoryStore(time.Minute)
	t.Cleanup(pending.Close)
	svc := NewTwitterService(testConfig(), repo, pending, provider.endpoints())
	return svc, provider, pending
}

func TestBeginAuthorization(t *testing.T) {
	ctx := context.Background()

	t.Run("returns authorize url and parks the handshake", func(t *testing.T) {
		repo := newFakeTwitterRepo()
		svc, _, pending := newTestTwitterService(t, repo)

		url, err := svc.BeginAuthorization(ctx, 7)
		require.NoError(t, err)
		assert.Contains(t, url, "/oauth/authorize")
		assert.Contains(t, url, "oauth_token=reqtok")

		p, ok, err := pending.Take(ctx, "reqtok")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, int64(7), p.UserID)
		assert.Equal(t, "reqsec", p.RequestSecret)
	})

	t.Run("missing consumer credentials", func(t *testing.T) {
		repo := newFakeTwitterRepo()
		provider := newFakeProvider(t)
		pending := oauthstore.NewMemoryStore(time.Minute)
		t.Cleanup(pending.Close)

		cfg := testConfig()
		cfg.TwitterConsumerKey = ""
		svc := NewTwitterService(cfg, repo, pending, provider.endpoints())

		_, err := svc.BeginAuthorization(ctx, 7)
		assert.ErrorIs(t, err, ErrTwitterNotConfigured)
	})

	t.Run("provider down", func(t *testing.T) {
		repo := newFakeTwitterRepo()
		provider := newFakeProvider(t)
		pending := oauthstore.NewMemoryStore(time.Minute)
		t.Cleanup(pending.Close)

		ep := provider.endpoints()
		provider.server.Close()
		svc := NewTwitterService(testConfig(), repo, pending, ep)

		_, err := svc.BeginAuthorization(ctx, 7)
		assert.ErrorIs(t, err, ErrProviderUnavailable)
	})
}

func TestCompleteAuthorization(t *testing.T) {
	ctx := context.Background()

	seedPending := func(t *testing.T, pending oauthstore.Store, userID int64) {
		t.Helper()
		err := pending.Put(ctx, "reqtok", oauthstore.Pending{
			RequestSecret: "reqsec",
			UserID:        userID,
			CreatedAt:     time.Now(),
		})
		require.NoError(t, err)
	}

	t.Run("creates the connection and consumes the handshake", func(t *testing.T) {
		repo := newFakeTwitterRepo()
		svc, _, pending := newTestTwitterService(t, repo)
		seedPending(t, pending, 7)

		connection, err := svc.CompleteAuthorization(ctx, "reqtok", "verifier")
		require.NoError(t, err)
		assert.Equal(t, int64(7), connection.UserID)
		assert.Equal(t, "12345", connection.TwitterID)
		assert.Equal(t, "referly", connection.Username)
		assert.Equal(t, 42, connection.FollowersCount)
		assert.True(t, connection.IsActive)

		// Credentials land encrypted, never the raw provider tokens.
		assert.NotEqual(t, "acctok", connection.AccessToken)
		token, err := utils.Decrypt(connection.AccessToken, []byte(testSecretKey))
		require.NoError(t, err)
		assert.Equal(t, "acctok", token)

		stored, found, err := repo.GetByTwitterID(ctx, "12345")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, int64(7), stored.UserID)

		// The same callback replayed finds no pending entry.
		_, err = svc.CompleteAuthorization(ctx, "reqtok", "verifier")
		assert.ErrorIs(t, err, ErrUnknownOrExpiredToken)
	})

	t.Run("missing callback parameters", func(t *testing.T) {
		repo := newFakeTwitterRepo()
		svc, _, _ := newTestTwitterService(t, repo)

		_, err := svc.CompleteAuthorization(ctx, "", "verifier")
		assert.ErrorIs(t, err, ErrUnknownOrExpiredToken)

		_, err = svc.CompleteAuthorization(ctx, "reqtok", "")
		assert.ErrorIs(t, err, ErrUnknownOrExpiredToken)
	})

	t.Run("unknown request token", func(t *testing.T) {
		repo := newFakeTwitterRepo()
		svc, _, _ := newTestTwitterService(t, repo)

		_, err := svc.CompleteAuthorization(ctx, "never-issued", "verifier")
		assert.ErrorIs(t, err, ErrUnknownOrExpiredToken)
	})

	t.Run("provider rejects the token exchange", func(t *testing.T) {
		repo := newFakeTwitterRepo()
		provider := newFakeProvider(t)
		pending := oauthstore.NewMemoryStore(time.Minute)
		t.Cleanup(pending.Close)

		ep := provider.endpoints()
		ep.AccessTokenURL = provider.server.URL + "/oauth/denied"
		provider.mux.HandleFunc("/oauth/denied", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
		svc := NewTwitterService(testConfig(), repo, pending, ep)
		seedPending(t, pending, 7)

		_, err := svc.CompleteAuthorization(ctx, "reqtok", "verifier")
		assert.ErrorIs(t, err, ErrProviderRejected)
	})

	t.Run("account actively linked to another user", func(t *testing.T) {
		repo := newFakeTwitterRepo()
		repo.addConnection(models.TwitterConnection{
			UserID:    99,
			TwitterID: "12345",
			Username:  "referly",
			IsActive:  true,
		})
		svc, _, pending := newTestTwitterService(t, repo)
		seedPending(t, pending, 7)

		_, err := svc.CompleteAuthorization(ctx, "reqtok", "verifier")
		assert.ErrorIs(t, err, ErrAccountAlreadyLinked)

		stored, _, _ := repo.GetByTwitterID(ctx, "12345")
		assert.Equal(t, int64(99), stored.UserID)
	})

	t.Run("inactive row is claimed by the reconnecting user", func(t *testing.T) {
		repo := newFakeTwitterRepo()
		repo.addConnection(models.TwitterConnection{
			UserID:    99,
			TwitterID: "12345",
			Username:  "referly",
			IsActive:  false,
		})
		svc, _, pending := newTestTwitterService(t, repo)
		seedPending(t, pending, 7)

		connection, err := svc.CompleteAuthorization(ctx, "reqtok", "verifier")
		require.NoError(t, err)
		assert.Equal(t, int64(7), connection.UserID)
		assert.True(t, connection.IsActive)
	})

	t.Run("reconnect by the owner updates the one row", func(t *testing.T) {
		repo := newFakeTwitterRepo()
		existing := repo.addConnection(models.TwitterConnection{
			UserID:    7,
			TwitterID: "12345",
			Username:  "old-handle",
			IsActive:  true,
		})
		svc, _, pending := newTestTwitterService(t, repo)
		seedPending(t, pending, 7)

		connection, err := svc.CompleteAuthorization(ctx, "reqtok", "verifier")
		require.NoError(t, err)
		assert.Equal(t, existing.ID, connection.ID)
		assert.Equal(t, "referly", connection.Username)

		_, found, _ := repo.GetByID(ctx, existing.ID)
		assert.True(t, found)
	})
}

func TestTwitterStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("not connected", func(t *testing.T) {
		repo := newFakeTwitterRepo()
		svc, _, _ := newTestTwitterService(t, repo)

		status, err := svc.Status(ctx, 7)
		require.NoError(t, err)
		assert.False(t, status.Connected)
		assert.Empty(t, status.Username)
	})

	t.Run("connected", func(t *testing.T) {
		repo := newFakeTwitterRepo()
		repo.addConnection(models.TwitterConnection{
			UserID:         7,
			TwitterID:      "12345",
			Username:       "referly",
			DisplayName:    "Referly",
			FollowersCount: 42,
			IsActive:       true,
			LastSync:       time.Now(),
		})
		svc, _, _ := newTestTwitterService(t, repo)

		status, err := svc.Status(ctx, 7)
		require.NoError(t, err)
		assert.True(t, status.Connected)
		assert.Equal(t, "referly", status.Username)
		assert.Equal(t, 42, status.FollowersCount)
		require.NotNil(t, status.LastSync)
	})
}

func TestTwitterDisconnect(t *testing.T) {
	ctx := context.Background()

	t.Run("deactivates the connection", func(t *testing.T) {
		repo := newFakeTwitterRepo()
		repo.addConnection(models.TwitterConnection{UserID: 7, TwitterID: "12345", IsActive: true})
		svc, _, _ := newTestTwitterService(t, repo)

		require.NoError(t, svc.Disconnect(ctx, 7))

		_, found, _ := repo.GetActiveByUserID(ctx, 7)
		assert.False(t, found)
	})

	t.Run("nothing to disconnect", func(t *testing.T) {
		repo := newFakeTwitterRepo()
		svc, _, _ := newTestTwitterService(t, repo)

		err := svc.Disconnect(ctx, 7)
		assert.ErrorIs(t, err, ErrConnectionNotFound)
	})
}

func TestSyncProfile(t *testing.T) {
	ctx := context.Background()

	encrypt := func(t *testing.T, v string) string {
		t.Helper()
		out, err := utils.Encrypt([]byte(v), []byte(testSecretKey))
		require.NoError(t, err)
		return out
	}

	t.Run("refreshes the stored metrics", func(t *testing.T) {
		repo := newFakeTwitterRepo()
		connection := repo.addConnection(models.TwitterConnection{
			UserID:            7,
			TwitterID:         "12345",
			Username:          "referly",
			AccessToken:       encrypt(t, "acctok"),
			AccessTokenSecret: encrypt(t, "accsec"),
			IsActive:          true,
			FollowersCount:    1,
		})
		svc, _, _ := newTestTwitterService(t, repo)

		require.NoError(t, svc.SyncProfile(ctx, connection.ID))

		updated, _, _ := repo.GetByID(ctx, connection.ID)
		assert.Equal(t, 42, updated.FollowersCount)
		assert.Equal(t, 7, updated.FollowingCount)
		assert.Equal(t, 9, updated.TweetsCount)
	})

	t.Run("unknown or inactive connection", func(t *testing.T) {
		repo := newFakeTwitterRepo()
		inactive := repo.addConnection(models.TwitterConnection{UserID: 7, TwitterID: "12345"})
		svc, _, _ := newTestTwitterService(t, repo)

		assert.ErrorIs(t, svc.SyncProfile(ctx, 404), ErrConnectionNotFound)
		assert.ErrorIs(t, svc.SyncProfile(ctx, inactive.ID), ErrConnectionNotFound)
	})
}
