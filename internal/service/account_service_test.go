package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/autobotela-sys/zap-trading/internal/dto"
	"github.com/autobotela-sys/zap-trading/internal/repository"
	"github.com/autobotela-sys/zap-trading/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountListAggregatesPnLBestEffort(t *testing.T) {
	vault := testVault(t)
	accountRepo := newFakeAccountRepo(
		authenticatedAccount(t, vault, 1, 10, "alpha", "key-a", "tok-a"),
		authenticatedAccount(t, vault, 2, 10, "bravo", "key-b", "tok-b"),
	)
	kiteRepo := newFakeKiteRepo()
	kiteRepo.positions["key-a"] = []repository.KitePosition{
		{Tradingsymbol: "NIFTY2024012521500CE", Quantity: 65, PnL: 1250.5},
		{Tradingsymbol: "NIFTY2024012521600CE", Quantity: -65, PnL: -300.25},
	}
	kiteRepo.positionErrs["key-b"] = &repository.BrokerError{Type: "TokenException", Message: "Invalid token"}

	svc := NewAccountService(testConfig(), testLogger(t), accountRepo, kiteRepo, vault, newFakeCache())

	responses, err := svc.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, responses, 2)

	assert.Equal(t, "alpha", responses[0].Nickname)
	assert.InDelta(t, 950.25, responses[0].TotalPnL, 0.001)

	// the failing account stays in the listing with a zero total
	assert.Equal(t, "bravo", responses[1].Nickname)
	assert.Zero(t, responses[1].TotalPnL)
}

func TestAccountListSkipsBrokerForLoggedOutAccount(t *testing.T) {
	vault := testVault(t)
	accountRepo := newFakeAccountRepo(
		authenticatedAccount(t, vault, 1, 10, "alpha", "key-a", "tok-a"),
	)
	// drop the token in place to simulate a never-authenticated account
	accountRepo.accounts[0].AccessTokenEnc = nil
	kiteRepo := newFakeKiteRepo()

	svc := NewAccountService(testConfig(), testLogger(t), accountRepo, kiteRepo, vault, newFakeCache())

	responses, err := svc.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, responses, 1)
	assert.Zero(t, responses[0].TotalPnL)
	assert.Zero(t, kiteRepo.positionCalls)
}

func TestAccountListUsesPnLCache(t *testing.T) {
	vault := testVault(t)
	accountRepo := newFakeAccountRepo(
		authenticatedAccount(t, vault, 1, 10, "alpha", "key-a", "tok-a"),
	)
	kiteRepo := newFakeKiteRepo()
	kiteRepo.positions["key-a"] = []repository.KitePosition{{Quantity: 65, PnL: 500}}
	inmemoryCache := newFakeCache()

	svc := NewAccountService(testConfig(), testLogger(t), accountRepo, kiteRepo, vault, inmemoryCache)

	_, err := svc.List(context.Background(), 10)
	require.NoError(t, err)
	_, err = svc.List(context.Background(), 10)
	require.NoError(t, err)

	// second listing is served from the cache
	assert.Equal(t, 1, kiteRepo.positionCalls)
	cached, found := inmemoryCache.Get(fmt.Sprintf(common.KEY_ACCOUNT_PNL, uint(1)))
	require.True(t, found)
	assert.InDelta(t, 500.0, cached.(float64), 0.001)
}

func TestAccountCreateEncryptsSecrets(t *testing.T) {
	vault := testVault(t)
	accountRepo := newFakeAccountRepo()

	svc := NewAccountService(testConfig(), testLogger(t), accountRepo, newFakeKiteRepo(), vault, newFakeCache())

	resp, err := svc.Create(context.Background(), 10, dto.CreateAccountRequest{
		Nickname:       "alpha",
		APIKey:         "key-a",
		APISecret:      "super-secret",
		BrokerUserID:   "AB1234",
		BrokerPassword: "hunter2",
	})
	require.NoError(t, err)
	assert.Equal(t, "alpha", resp.Nickname)
	assert.Equal(t, "key-a", resp.APIKey)

	require.Len(t, accountRepo.accounts, 1)
	stored := accountRepo.accounts[0]

	// stored columns are ciphertext, round-trippable through the vault
	assert.NotEqual(t, "super-secret", stored.APISecretEnc)
	plaintext, err := vault.Decrypt(stored.APISecretEnc)
	require.NoError(t, err)
	assert.Equal(t, "super-secret", plaintext)

	require.NotNil(t, stored.BrokerUserIDEnc)
	userID, err := vault.Decrypt(*stored.BrokerUserIDEnc)
	require.NoError(t, err)
	assert.Equal(t, "AB1234", userID)

	require.NotNil(t, stored.BrokerPasswordEnc)
	password, err := vault.Decrypt(*stored.BrokerPasswordEnc)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", password)
}

func TestAccountCreateOptionalCredentialsOmitted(t *testing.T) {
	vault := testVault(t)
	accountRepo := newFakeAccountRepo()

	svc := NewAccountService(testConfig(), testLogger(t), accountRepo, newFakeKiteRepo(), vault, newFakeCache())

	_, err := svc.Create(context.Background(), 10, dto.CreateAccountRequest{
		Nickname:  "alpha",
		APIKey:    "key-a",
		APISecret: "super-secret",
	})
	require.NoError(t, err)

	stored := accountRepo.accounts[0]
	assert.Nil(t, stored.BrokerUserIDEnc)
	assert.Nil(t, stored.BrokerPasswordEnc)
}

func TestAccountDelete(t *testing.T) {
	vault := testVault(t)
	accountRepo := newFakeAccountRepo(
		authenticatedAccount(t, vault, 1, 10, "alpha", "key-a", "tok-a"),
	)
	inmemoryCache := newFakeCache()
	inmemoryCache.Set(fmt.Sprintf(common.KEY_ACCOUNT_PNL, uint(1)), 500.0, 0)

	svc := NewAccountService(testConfig(), testLogger(t), accountRepo, newFakeKiteRepo(), vault, inmemoryCache)

	require.NoError(t, svc.Delete(context.Background(), 10, 1))
	assert.Empty(t, accountRepo.accounts)

	_, found := inmemoryCache.Get(fmt.Sprintf(common.KEY_ACCOUNT_PNL, uint(1)))
	assert.False(t, found)

	// a second delete, or another user's id, reports not found
	assert.ErrorIs(t, svc.Delete(context.Background(), 10, 1), ErrNotFound)
	assert.ErrorIs(t, svc.Delete(context.Background(), 99, 2), ErrNotFound)
}
