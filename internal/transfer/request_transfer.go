package transfer

type RegisterRequest struct {
	FullName     string `json:"full_name" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=6"`
	ReferralCode string `json:"referralCode" validate:"omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ValidateReferralRequest struct {
	ReferralCode string `json:"referralCode" validate:"required"`
}

type ConnectWalletRequest struct {
	WalletAddress string  `json:"walletAddress" validate:"required"`
	Balance       string  `json:"balance"`
	BalanceUSD    float64 `json:"balanceUSD"`
	Network       string  `json:"network"`
}

type UpdateBalanceRequest struct {
	Balance    string  `json:"balance"`
	BalanceUSD float64 `json:"balanceUSD"`
}
