package dto

// PositionView is a flattened projection of one broker-reported live
// position, recomputed on every query and never persisted.
type PositionView struct {
	AccountID     uint    `json:"account_id"`
	Tradingsymbol string  `json:"tradingsymbol"`
	Exchange      string  `json:"exchange"`
	Quantity      int     `json:"quantity"`
	Product       string  `json:"product"`
	PnL           float64 `json:"pnl"`
	AvgPrice      float64 `json:"avg_price"`
	LastPrice     float64 `json:"last_price"`
}

// OrderNotification is pushed to a user's live websocket listeners after
// a batch dispatch completes.
type OrderNotification struct {
	Type    string               `json:"type"`
	Message string               `json:"message"`
	Orders  []AccountOrderResult `json:"orders"`
}
