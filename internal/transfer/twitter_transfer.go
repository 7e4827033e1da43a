package transfer

import "time"

// TwitterProfile is the verify_credentials response, trimmed to the fields
// mirrored onto the stored connection.
type TwitterProfile struct {
	IDStr           string `json:"id_str"`
	ScreenName      string `json:"screen_name"`
	Name            string `json:"name"`
	ProfileImageURL string `json:"profile_image_url_https"`
	FollowersCount  int    `json:"followers_count"`
	FriendsCount    int    `json:"friends_count"`
	StatusesCount   int    `json:"statuses_count"`
}

// Tweet is the normalized post shape callers see, whatever API version the
// fetch strategy that produced it spoke.
type Tweet struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	Likes     int       `json:"likes"`
	Retweets  int       `json:"retweets"`
	Replies   int       `json:"replies"`
	User      TweetUser `json:"user"`
}

type TweetUser struct {
	Username        string `json:"username"`
	DisplayName     string `json:"display_name"`
	ProfileImageURL string `json:"profile_image_url"`
}

// V1Tweet is an api.twitter.com/1.1 statuses entry.
type V1Tweet struct {
	IDStr         string `json:"id_str"`
	Text          string `json:"text"`
	FullText      string `json:"full_text"`
	CreatedAt     string `json:"created_at"`
	FavoriteCount int    `json:"favorite_count"`
	RetweetCount  int    `json:"retweet_count"`
	ReplyCount    int    `json:"reply_count"`
	User          struct {
		IDStr           string `json:"id_str"`
		ScreenName      string `json:"screen_name"`
		Name            string `json:"name"`
		ProfileImageURL string `json:"profile_image_url_https"`
	} `json:"user"`
}

// V2TweetsResponse is an api.twitter.com/2 users/:id/tweets page.
type V2TweetsResponse struct {
	Data []struct {
		ID            string    `json:"id"`
		Text          string    `json:"text"`
		CreatedAt     time.Time `json:"created_at"`
		PublicMetrics struct {
			LikeCount    int `json:"like_count"`
			RetweetCount int `json:"retweet_count"`
			ReplyCount   int `json:"reply_count"`
		} `json:"public_metrics"`
	} `json:"data"`
}

// TwitterStatus is the /twitter/status payload.
type TwitterStatus struct {
	Connected       bool       `json:"connected"`
	Username        string     `json:"username,omitempty"`
	DisplayName     string     `json:"display_name,omitempty"`
	ProfileImageURL string     `json:"profile_image_url,omitempty"`
	FollowersCount  int        `json:"followers_count,omitempty"`
	FollowingCount  int        `json:"following_count,omitempty"`
	TweetsCount     int        `json:"tweets_count,omitempty"`
	LastSync        *time.Time `json:"last_sync,omitempty"`
}
