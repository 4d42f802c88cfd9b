package service

import (
	"strings"

	"github.com/autobotela-sys/zap-trading/internal/dto"
	"github.com/autobotela-sys/zap-trading/pkg/common"
)

// indexLotSizes maps an index to the exchange-defined contract
// multiplier converting lots to tradable quantity.
var indexLotSizes = map[string]int{
	dto.IndexNifty:     65,
	dto.IndexBankNifty: 35,
	dto.IndexSensex:    20,
}

// ResolvedOrder is the per-batch sizing and symbol resolution, computed
// once and shared by every target account.
type ResolvedOrder struct {
	Quantity      int
	Tradingsymbol string
	Exchange      string
}

// ResolveOrder derives contract quantity and the exchange trading
// symbol from the option legs. Pure function, no I/O.
//
// An index without a configured lot size is rejected unless
// allowUnknownIndex is set, which restores the historical fallback of
// lot size 1.
func ResolveOrder(index, expiry, strike, optionType string, lots int, allowUnknownIndex bool) (*ResolvedOrder, error) {
	if lots < 1 || lots > 100 {
		return nil, ErrInvalidLots
	}
	if optionType != dto.OptionTypeCall && optionType != dto.OptionTypePut {
		return nil, ErrInvalidOptionType
	}

	lotSize, ok := indexLotSizes[index]
	if !ok {
		if !allowUnknownIndex {
			return nil, ErrUnknownIndex
		}
		lotSize = 1
	}

	exchange := common.EXCHANGE_NFO
	if index == dto.IndexSensex {
		exchange = common.EXCHANGE_BFO
	}

	return &ResolvedOrder{
		Quantity:      lots * lotSize,
		Tradingsymbol: index + compactDate(expiry) + strike + optionType,
		Exchange:      exchange,
	}, nil
}

// compactDate strips the separators from an ISO-style expiry date so it
// can be embedded in the trading symbol.
func compactDate(expiry string) string {
	return strings.ReplaceAll(expiry, "-", "")
}
