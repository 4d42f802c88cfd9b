package common

const (
	KEY_ACCOUNT_PNL = "account_pnl:%d"
)

const (
	EXCHANGE_NFO = "NFO"
	EXCHANGE_BFO = "BFO"
)
