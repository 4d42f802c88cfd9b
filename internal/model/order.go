package model

import "time"

const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
	OrderStatusRejected  = "rejected"
	OrderStatusCancelled = "cancelled"
)

const (
	VarietyRegular = "regular"
	VarietyAMO     = "amo"
)

// Order is the local record of one successful dispatch to the broker.
// Core fields are immutable after creation; status transitions are
// driven by the broker, outside this service.
type Order struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	AccountID       uint      `gorm:"not null;index" json:"account_id"`
	BrokerOrderID   string    `json:"broker_order_id"`
	Tradingsymbol   string    `gorm:"not null" json:"tradingsymbol"`
	Exchange        string    `gorm:"not null" json:"exchange"`
	TransactionType string    `gorm:"not null" json:"transaction_type"`
	Quantity        int       `gorm:"not null" json:"quantity"`
	Product         string    `gorm:"not null" json:"product"`
	OrderType       string    `gorm:"not null" json:"order_type"`
	Price           *float64  `json:"price"`
	Status          string    `gorm:"not null" json:"status"`
	Variety         string    `json:"variety"`
	ErrorMessage    string    `gorm:"type:text" json:"error_message"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}
