package models

import "time"

// TwitterConnection mirrors the provider profile at the time of the last
// successful sync. Access tokens are stored AES-GCM encrypted.
type TwitterConnection struct {
	ID                int64     `db:"id" json:"id"`
	UserID            int64     `db:"user_id" json:"user_id"`
	TwitterID         string    `db:"twitter_id" json:"twitter_id"`
	Username          string    `db:"username" json:"username"`
	DisplayName       string    `db:"display_name" json:"display_name"`
	ProfileImageURL   string    `db:"profile_image_url" json:"profile_image_url"`
	AccessToken       string    `db:"access_token" json:"-"`
	AccessTokenSecret string    `db:"access_token_secret" json:"-"`
	IsActive          bool      `db:"is_active" json:"is_active"`
	FollowersCount    int       `db:"followers_count" json:"followers_count"`
	FollowingCount    int       `db:"following_count" json:"following_count"`
	TweetsCount       int       `db:"tweets_count" json:"tweets_count"`
	LastSync          time.Time `db:"last_sync" json:"last_sync"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// TwitterConnectionInfo is the admin listing row: the public mirror joined
// with the owning user, never the stored credentials.
type TwitterConnectionInfo struct {
	ID              int64     `json:"id"`
	TwitterID       string    `json:"twitter_id"`
	Username        string    `json:"username"`
	DisplayName     string    `json:"display_name"`
	ProfileImageURL string    `json:"profile_image_url"`
	FollowersCount  int       `json:"followers_count"`
	FollowingCount  int       `json:"following_count"`
	TweetsCount     int       `json:"tweets_count"`
	LastSync        time.Time `json:"last_sync"`
	User            struct {
		ID       int64  `json:"id"`
		FullName string `json:"full_name"`
		Email    string `json:"email"`
	} `json:"user"`
}
