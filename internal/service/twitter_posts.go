package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/referly/referral-api/internal/models"
	"github.com/referly/referral-api/internal/transfer"
)

// tweetFetcher is one attempt shape against the provider. Fetchers are tried
// in order until one yields tweets; each normalizes its API version's
// response into the common Tweet form before returning.
type tweetFetcher struct {
	name  string
	fetch func(client *http.Client, connection *models.TwitterConnection) ([]transfer.Tweet, error)
}

func (s *twitterService) RecentPosts(ctx context.Context, userID int64) ([]transfer.Tweet, error) {
	connection, found, err := s.tc.GetActiveByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrConnectionNotFound
	}

	accessToken, accessSecret, err := s.decryptCredentials(connection)
	if err != nil {
		return nil, err
	}
	client := s.signedClient(ctx, accessToken, accessSecret)

	fetchers := []tweetFetcher{
		{name: "v1.1 user timeline", fetch: s.fetchUserTimeline},
		{name: "v1.1 home timeline", fetch: s.fetchHomeTimeline},
		{name: "v1.1 mentions timeline", fetch: s.fetchMentionsTimeline},
		{name: "v2 user tweets", fetch: s.fetchV2Tweets},
	}

	for _, f := range fetchers {
		tweets, err := f.fetch(client, connection)
		if err != nil {
			slog.Info(fmt.Sprintf("%s failed: %v", f.name, err))
			continue
		}
		if len(tweets) > 0 {
			return tweets, nil
		}
	}

	return nil, ErrProviderUnavailable
}

func (s *twitterService) fetchUserTimeline(client *http.Client, connection *models.TwitterConnection) ([]transfer.Tweet, error) {
	url := fmt.Sprintf("%s/1.1/statuses/user_timeline.json?user_id=%s&count=10&tweet_mode=extended",
		s.ep.APIBaseURL, connection.TwitterID)
	return s.fetchV1(client, connection, url)
}

func (s *twitterService) fetchHomeTimeline(client *http.Client, connection *models.TwitterConnection) ([]transfer.Tweet, error) {
	url := fmt.Sprintf("%s/1.1/statuses/home_timeline.json?count=10&tweet_mode=extended", s.ep.APIBaseURL)
	return s.fetchV1(client, connection, url)
}

func (s *twitterService) fetchMentionsTimeline(client *http.Client, connection *models.TwitterConnection) ([]transfer.Tweet, error) {
	url := fmt.Sprintf("%s/1.1/statuses/mentions_timeline.json?count=10&tweet_mode=extended", s.ep.APIBaseURL)
	return s.fetchV1(client, connection, url)
}

func (s *twitterService) fetchV1(client *http.Client, connection *models.TwitterConnection, url string) ([]transfer.Tweet, error) {
	resp, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	var raw []transfer.V1Tweet
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}

	var tweets []transfer.Tweet
	for _, t := range raw {
		// Shared timelines mix in other accounts; only the owner's
		// tweets are surfaced.
		if t.User.IDStr != connection.TwitterID {
			continue
		}
		content := t.FullText
		if content == "" {
			content = t.Text
		}
		createdAt, _ := time.Parse(time.RubyDate, t.CreatedAt)
		tweets = append(tweets, transfer.Tweet{
			ID:        t.IDStr,
			Content:   content,
			CreatedAt: createdAt,
			Likes:     t.FavoriteCount,
			Retweets:  t.RetweetCount,
			Replies:   t.ReplyCount,
			User: transfer.TweetUser{
				Username:        t.User.ScreenName,
				DisplayName:     t.User.Name,
				ProfileImageURL: t.User.ProfileImageURL,
			},
		})
	}
	return tweets, nil
}

func (s *twitterService) fetchV2Tweets(client *http.Client, connection *models.TwitterConnection) ([]transfer.Tweet, error) {
	url := fmt.Sprintf("%s/2/users/%s/tweets?max_results=10&tweet.fields=created_at,public_metrics",
		s.ep.APIBaseURL, connection.TwitterID)
	resp, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	var raw transfer.V2TweetsResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}

	var tweets []transfer.Tweet
	for _, t := range raw.Data {
		// v2 carries no author block; the stored mirror fills it in.
		tweets = append(tweets, transfer.Tweet{
			ID:        t.ID,
			Content:   t.Text,
			CreatedAt: t.CreatedAt,
			Likes:     t.PublicMetrics.LikeCount,
			Retweets:  t.PublicMetrics.RetweetCount,
			Replies:   t.PublicMetrics.ReplyCount,
			User: transfer.TweetUser{
				Username:        connection.Username,
				DisplayName:     connection.DisplayName,
				ProfileImageURL: connection.ProfileImageURL,
			},
		})
	}
	return tweets, nil
}
