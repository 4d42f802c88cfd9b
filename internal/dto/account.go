package dto

import "time"

type CreateAccountRequest struct {
	Nickname       string `json:"nickname" validate:"required"`
	APIKey         string `json:"api_key" validate:"required"`
	APISecret      string `json:"api_secret" validate:"required"`
	BrokerUserID   string `json:"broker_user_id"`
	BrokerPassword string `json:"broker_password"`
}

// AccountResponse is the only account shape that crosses the API
// boundary. Encrypted columns are deliberately absent.
type AccountResponse struct {
	ID        uint       `json:"id"`
	Nickname  string     `json:"nickname"`
	APIKey    string     `json:"api_key"`
	IsActive  bool       `json:"is_active"`
	LastLogin *time.Time `json:"last_login"`
	TotalPnL  float64    `json:"total_pnl"`
}

type LoginURLResponse struct {
	LoginURL string `json:"login_url"`
}

type SetTokenRequest struct {
	AccountID    uint   `json:"account_id" validate:"required"`
	RequestToken string `json:"request_token" validate:"required"`
}
