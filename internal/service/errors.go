package service

import "errors"

var (
	// Twitter handshake.
	ErrTwitterNotConfigured  = errors.New("twitter oauth configuration missing")
	ErrProviderUnavailable   = errors.New("twitter is unreachable")
	ErrProviderRejected      = errors.New("twitter rejected the authorization")
	ErrUnknownOrExpiredToken = errors.New("unknown or expired oauth token")
	ErrAccountAlreadyLinked  = errors.New("twitter account is already linked to another user")
	ErrConnectionNotFound    = errors.New("no active twitter connection found")

	// Referrals.
	ErrInvalidReferralCode = errors.New("invalid referral code")
	ErrSelfReferral        = errors.New("users cannot refer themselves")
	ErrAlreadyReferred     = errors.New("user has already been referred")

	// Users.
	ErrEmailTaken         = errors.New("user already exists with this email")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")

	// Wallets.
	ErrWalletTaken    = errors.New("this wallet is already connected to another account")
	ErrWalletNotFound = errors.New("no wallet connection found")
)
