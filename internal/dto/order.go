package dto

import "time"

const (
	IndexNifty     = "NIFTY"
	IndexBankNifty = "BANKNIFTY"
	IndexSensex    = "SENSEX"

	OptionTypeCall = "CE"
	OptionTypePut  = "PE"

	TransactionBuy  = "BUY"
	TransactionSell = "SELL"

	OrderTypeMarket = "MARKET"
	OrderTypeLimit  = "LIMIT"

	ValidityDay = "DAY"
)

type PlaceOrderRequest struct {
	AccountIDs      []uint   `json:"account_ids" validate:"required,min=1"`
	Index           string   `json:"index" validate:"required,oneof=NIFTY BANKNIFTY SENSEX"`
	Expiry          string   `json:"expiry" validate:"required"`
	Strike          string   `json:"strike" validate:"required"`
	OptionType      string   `json:"option_type" validate:"required,oneof=CE PE"`
	Lots            int      `json:"lots" validate:"required,min=1,max=100"`
	TransactionType string   `json:"transaction_type" validate:"required,oneof=BUY SELL"`
	Product         string   `json:"product" validate:"required,oneof=MIS NRML CNC"`
	OrderType       string   `json:"order_type" validate:"required,oneof=MARKET LIMIT"`
	Price           *float64 `json:"price" validate:"omitempty,gt=0"`
	AMO             bool     `json:"amo"`
}

// AccountOrderResult is one account's outcome within a batch.
type AccountOrderResult struct {
	Account string `json:"account"`
	Success bool   `json:"success"`
	OrderID string `json:"order_id,omitempty"`
	Message string `json:"message"`
}

type PlaceOrderResponse struct {
	Success bool                 `json:"success"`
	Message string               `json:"message"`
	Orders  []AccountOrderResult `json:"orders"`
}

type OrderResponse struct {
	ID              uint      `json:"id"`
	AccountID       uint      `json:"account_id"`
	BrokerOrderID   string    `json:"broker_order_id"`
	Tradingsymbol   string    `json:"tradingsymbol"`
	Exchange        string    `json:"exchange"`
	TransactionType string    `json:"transaction_type"`
	Quantity        int       `json:"quantity"`
	Product         string    `json:"product"`
	OrderType       string    `json:"order_type"`
	Price           *float64  `json:"price"`
	Status          string    `json:"status"`
	Variety         string    `json:"variety"`
	ErrorMessage    string    `json:"error_message,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
