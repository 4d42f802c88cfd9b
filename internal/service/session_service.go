package service

import (
	"context"
	"fmt"
	"time"

	"github.com/autobotela-sys/zap-trading/config"
	"github.com/autobotela-sys/zap-trading/internal/dto"
	"github.com/autobotela-sys/zap-trading/internal/repository"
	"github.com/autobotela-sys/zap-trading/pkg/crypto"
	"github.com/autobotela-sys/zap-trading/pkg/logger"
)

// SessionService drives the broker OAuth credential lifecycle: it hands
// out the login URL and exchanges the resulting request token for a
// long-lived access token.
type SessionService interface {
	BeginLogin(ctx context.Context, userID, accountID uint) (*dto.LoginURLResponse, error)
	CompleteLogin(ctx context.Context, userID uint, req dto.SetTokenRequest) (string, error)
}

type sessionService struct {
	cfg         *config.Config
	log         *logger.Logger
	accountRepo repository.AccountRepository
	kiteRepo    repository.KiteRepository
	vault       *crypto.Vault
}

func NewSessionService(
	cfg *config.Config,
	log *logger.Logger,
	accountRepo repository.AccountRepository,
	kiteRepo repository.KiteRepository,
	vault *crypto.Vault,
) SessionService {
	return &sessionService{
		cfg:         cfg,
		log:         log,
		accountRepo: accountRepo,
		kiteRepo:    kiteRepo,
		vault:       vault,
	}
}

func (s *sessionService) BeginLogin(ctx context.Context, userID, accountID uint) (*dto.LoginURLResponse, error) {
	account, err := s.accountRepo.GetOwned(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrNotFound
	}

	return &dto.LoginURLResponse{
		LoginURL: s.kiteRepo.LoginURL(account.APIKey),
	}, nil
}

// CompleteLogin exchanges the one-time request token for an access
// token and persists the new session in a single write. A broker
// rejection leaves the account's prior authentication state untouched.
func (s *sessionService) CompleteLogin(ctx context.Context, userID uint, req dto.SetTokenRequest) (string, error) {
	account, err := s.accountRepo.GetOwned(ctx, userID, req.AccountID)
	if err != nil {
		return "", err
	}
	if account == nil {
		return "", ErrNotFound
	}

	apiSecret, err := s.vault.Decrypt(account.APISecretEnc)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}

	session, err := s.kiteRepo.GenerateSession(ctx, account.APIKey, apiSecret, req.RequestToken)
	if err != nil {
		s.log.WarnContext(ctx, "broker declined token exchange",
			logger.UintField("account_id", account.ID), logger.ErrorField(err))
		return "", fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}

	accessTokenEnc, err := s.vault.Encrypt(session.AccessToken)
	if err != nil {
		return "", err
	}

	update := repository.SessionUpdate{
		AccessTokenEnc: accessTokenEnc,
		PublicToken:    session.PublicToken,
		RequestToken:   req.RequestToken,
		LastLogin:      time.Now(),
	}
	if err := s.accountRepo.UpdateSession(ctx, account.ID, update); err != nil {
		return "", err
	}

	s.log.InfoContext(ctx, "account session established",
		logger.UintField("user_id", userID), logger.UintField("account_id", account.ID))

	return session.AccessToken, nil
}
