package model

import "time"

// BrokerAccount is a linked brokerage credential set. The *Enc columns
// hold vault ciphertext and never leave the service layer in any
// response payload.
type BrokerAccount struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	UserID            uint       `gorm:"not null;index" json:"user_id"`
	Nickname          string     `gorm:"not null" json:"nickname"`
	APIKey            string     `gorm:"not null" json:"api_key"`
	APISecretEnc      string     `gorm:"not null" json:"-"`
	BrokerUserIDEnc   *string    `json:"-"`
	BrokerPasswordEnc *string    `json:"-"`
	RequestToken      *string    `json:"-"`
	AccessTokenEnc    *string    `json:"-"`
	PublicToken       *string    `json:"-"`
	LastLogin         *time.Time `json:"last_login"`
	IsActive          bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt         time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Orders []Order `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE" json:"-"`
}

func (BrokerAccount) TableName() string {
	return "broker_accounts"
}

// IsAuthenticated reports whether the account holds an access token.
// A stale token is not detected here; it surfaces as a broker call
// failure on next use.
func (a *BrokerAccount) IsAuthenticated() bool {
	return a.AccessTokenEnc != nil && *a.AccessTokenEnc != ""
}
