package service

import (
	"context"
	"testing"

	"github.com/autobotela-sys/zap-trading/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPositionsConcatenatesAccounts(t *testing.T) {
	vault := testVault(t)
	accountRepo := newFakeAccountRepo(
		authenticatedAccount(t, vault, 1, 10, "alpha", "key-a", "tok-a"),
		authenticatedAccount(t, vault, 2, 10, "bravo", "key-b", "tok-b"),
	)
	kiteRepo := newFakeKiteRepo()
	kiteRepo.positions["key-a"] = []repository.KitePosition{
		{Tradingsymbol: "NIFTY2024012521500CE", Exchange: "NFO", Quantity: 65, Product: "MIS", PnL: 1250.5, AveragePrice: 100, LastPrice: 119.2},
	}
	kiteRepo.positions["key-b"] = []repository.KitePosition{
		{Tradingsymbol: "SENSEX2024011972000CE", Exchange: "BFO", Quantity: -20, Product: "NRML", PnL: -80, AveragePrice: 210, LastPrice: 214},
	}

	svc := NewPositionService(testConfig(), testLogger(t), accountRepo, kiteRepo, vault)

	views, err := svc.GetPositions(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, views, 2)

	// rows keep their owning account id; identical symbols across
	// accounts are never netted together
	assert.Equal(t, uint(1), views[0].AccountID)
	assert.Equal(t, "NIFTY2024012521500CE", views[0].Tradingsymbol)
	assert.Equal(t, uint(2), views[1].AccountID)
	assert.Equal(t, -20, views[1].Quantity)
}

func TestGetPositionsFiltersClosedPositions(t *testing.T) {
	vault := testVault(t)
	accountRepo := newFakeAccountRepo(
		authenticatedAccount(t, vault, 1, 10, "alpha", "key-a", "tok-a"),
	)
	kiteRepo := newFakeKiteRepo()
	kiteRepo.positions["key-a"] = []repository.KitePosition{
		{Tradingsymbol: "NIFTY2024012521500CE", Quantity: 0, PnL: 420},
		{Tradingsymbol: "NIFTY2024012521600CE", Quantity: 65, PnL: 100},
	}

	svc := NewPositionService(testConfig(), testLogger(t), accountRepo, kiteRepo, vault)

	views, err := svc.GetPositions(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "NIFTY2024012521600CE", views[0].Tradingsymbol)
}

func TestGetPositionsDegradesFailingAccount(t *testing.T) {
	vault := testVault(t)
	accountRepo := newFakeAccountRepo(
		authenticatedAccount(t, vault, 1, 10, "alpha", "key-a", "tok-a"),
		authenticatedAccount(t, vault, 2, 10, "bravo", "key-b", "tok-b"),
	)
	kiteRepo := newFakeKiteRepo()
	kiteRepo.positions["key-a"] = []repository.KitePosition{
		{Tradingsymbol: "NIFTY2024012521500CE", Quantity: 65, PnL: 100},
	}
	kiteRepo.positionErrs["key-b"] = &repository.BrokerError{Type: "TokenException", Message: "Invalid token"}

	svc := NewPositionService(testConfig(), testLogger(t), accountRepo, kiteRepo, vault)

	views, err := svc.GetPositions(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, uint(1), views[0].AccountID)
}

func TestGetPositionsSkipsUnauthenticatedAccounts(t *testing.T) {
	vault := testVault(t)
	accountRepo := newFakeAccountRepo(
		authenticatedAccount(t, vault, 1, 10, "alpha", "key-a", "tok-a"),
	)
	accountRepo.accounts[0].AccessTokenEnc = nil
	kiteRepo := newFakeKiteRepo()

	svc := NewPositionService(testConfig(), testLogger(t), accountRepo, kiteRepo, vault)

	views, err := svc.GetPositions(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, views)
	assert.Zero(t, kiteRepo.positionCalls)
}
