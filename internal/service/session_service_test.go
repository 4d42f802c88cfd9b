package service

import (
	"context"
	"testing"

	"github.com/autobotela-sys/zap-trading/internal/dto"
	"github.com/autobotela-sys/zap-trading/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBeginLogin(t *testing.T) {
	vault := testVault(t)
	accountRepo := newFakeAccountRepo(
		authenticatedAccount(t, vault, 1, 10, "alpha", "key-a", "tok-a"),
	)

	svc := NewSessionService(testConfig(), testLogger(t), accountRepo, newFakeKiteRepo(), vault)

	resp, err := svc.BeginLogin(context.Background(), 10, 1)
	require.NoError(t, err)
	assert.Contains(t, resp.LoginURL, "api_key=key-a")

	// another user's account id is invisible
	_, err = svc.BeginLogin(context.Background(), 99, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCompleteLoginPersistsSession(t *testing.T) {
	vault := testVault(t)
	accountRepo := newFakeAccountRepo(
		authenticatedAccount(t, vault, 1, 10, "alpha", "key-a", "old-token"),
	)
	kiteRepo := newFakeKiteRepo()
	kiteRepo.session = &repository.KiteSession{
		AccessToken: "fresh-access-token",
		PublicToken: "public-token",
	}

	svc := NewSessionService(testConfig(), testLogger(t), accountRepo, kiteRepo, vault)

	accessToken, err := svc.CompleteLogin(context.Background(), 10, dto.SetTokenRequest{
		AccountID:    1,
		RequestToken: "one-time-token",
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh-access-token", accessToken)

	update, ok := accountRepo.updates[1]
	require.True(t, ok)
	assert.Equal(t, "public-token", update.PublicToken)
	assert.Equal(t, "one-time-token", update.RequestToken)
	assert.False(t, update.LastLogin.IsZero())

	// the persisted token is ciphertext, not the broker value
	assert.NotEqual(t, "fresh-access-token", update.AccessTokenEnc)
	plaintext, err := vault.Decrypt(update.AccessTokenEnc)
	require.NoError(t, err)
	assert.Equal(t, "fresh-access-token", plaintext)
}

func TestCompleteLoginBrokerRejectionLeavesAccountUntouched(t *testing.T) {
	vault := testVault(t)
	accountRepo := newFakeAccountRepo(
		authenticatedAccount(t, vault, 1, 10, "alpha", "key-a", "old-token"),
	)
	kiteRepo := newFakeKiteRepo()
	kiteRepo.sessionErr = &repository.BrokerError{Type: "TokenException", Message: "Token is invalid or has expired"}

	svc := NewSessionService(testConfig(), testLogger(t), accountRepo, kiteRepo, vault)

	_, err := svc.CompleteLogin(context.Background(), 10, dto.SetTokenRequest{
		AccountID:    1,
		RequestToken: "stale-token",
	})
	assert.ErrorIs(t, err, ErrExchangeFailed)
	assert.Contains(t, err.Error(), "Token is invalid or has expired")

	// no partial write: the prior session survives the failed exchange
	assert.Empty(t, accountRepo.updates)
	prior, decErr := vault.Decrypt(*accountRepo.accounts[0].AccessTokenEnc)
	require.NoError(t, decErr)
	assert.Equal(t, "old-token", prior)
}

func TestCompleteLoginUnknownAccount(t *testing.T) {
	vault := testVault(t)
	svc := NewSessionService(testConfig(), testLogger(t), newFakeAccountRepo(), newFakeKiteRepo(), vault)

	_, err := svc.CompleteLogin(context.Background(), 10, dto.SetTokenRequest{
		AccountID:    42,
		RequestToken: "anything",
	})
	assert.ErrorIs(t, err, ErrNotFound)
}
