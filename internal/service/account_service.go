package service

import (
	"context"
	"fmt"

	"github.com/autobotela-sys/zap-trading/config"
	"github.com/autobotela-sys/zap-trading/internal/dto"
	"github.com/autobotela-sys/zap-trading/internal/model"
	"github.com/autobotela-sys/zap-trading/internal/repository"
	"github.com/autobotela-sys/zap-trading/pkg/cache"
	"github.com/autobotela-sys/zap-trading/pkg/common"
	"github.com/autobotela-sys/zap-trading/pkg/crypto"
	"github.com/autobotela-sys/zap-trading/pkg/logger"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// AccountService is the registry of linked broker accounts.
type AccountService interface {
	List(ctx context.Context, userID uint) ([]dto.AccountResponse, error)
	Create(ctx context.Context, userID uint, req dto.CreateAccountRequest) (*dto.AccountResponse, error)
	Delete(ctx context.Context, userID, accountID uint) error
}

type accountService struct {
	cfg         *config.Config
	log         *logger.Logger
	accountRepo repository.AccountRepository
	kiteRepo    repository.KiteRepository
	vault       *crypto.Vault
	cache       cache.Cache
}

func NewAccountService(
	cfg *config.Config,
	log *logger.Logger,
	accountRepo repository.AccountRepository,
	kiteRepo repository.KiteRepository,
	vault *crypto.Vault,
	inmemoryCache cache.Cache,
) AccountService {
	return &accountService{
		cfg:         cfg,
		log:         log,
		accountRepo: accountRepo,
		kiteRepo:    kiteRepo,
		vault:       vault,
		cache:       inmemoryCache,
	}
}

// List returns the user's accounts with a live total P&L per account.
// P&L aggregation is best-effort: a failing broker query degrades that
// one account to 0.0 without removing it from the listing.
func (s *accountService) List(ctx context.Context, userID uint) ([]dto.AccountResponse, error) {
	accounts, err := s.accountRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.AccountResponse, len(accounts))
	g, gctx := errgroup.WithContext(ctx)

	for i := range accounts {
		account := accounts[i]
		responses[i] = dto.AccountResponse{
			ID:        account.ID,
			Nickname:  account.Nickname,
			APIKey:    account.APIKey,
			IsActive:  account.IsActive,
			LastLogin: account.LastLogin,
		}

		if !account.IsAuthenticated() {
			continue
		}

		idx := i
		g.Go(func() error {
			responses[idx].TotalPnL = s.totalPnL(gctx, &account)
			return nil
		})
	}

	// workers never return an error; degradation is per-account
	_ = g.Wait()

	return responses, nil
}

// totalPnL sums the live P&L of one account's net positions. Failures
// degrade to 0.0; a short-lived cache smooths repeated listings.
func (s *accountService) totalPnL(ctx context.Context, account *model.BrokerAccount) float64 {
	cacheKey := fmt.Sprintf(common.KEY_ACCOUNT_PNL, account.ID)
	if cached, found := s.cache.Get(cacheKey); found {
		if pnl, ok := cached.(float64); ok {
			return pnl
		}
	}

	accessToken, err := s.vault.Decrypt(*account.AccessTokenEnc)
	if err != nil {
		s.log.WarnContext(ctx, "failed to decrypt access token for pnl",
			logger.UintField("account_id", account.ID), logger.ErrorField(err))
		return 0
	}

	positions, err := s.kiteRepo.GetNetPositions(ctx, account.APIKey, accessToken)
	if err != nil {
		s.log.WarnContext(ctx, "broker positions query failed",
			logger.UintField("account_id", account.ID), logger.ErrorField(err))
		return 0
	}

	var total float64
	for _, pos := range positions {
		total += pos.PnL
	}

	s.cache.Set(cacheKey, total, s.cfg.Cache.PnLExpiration)
	return total
}

// Create encrypts all sensitive fields before persisting. The response
// never carries them back.
func (s *accountService) Create(ctx context.Context, userID uint, req dto.CreateAccountRequest) (*dto.AccountResponse, error) {
	secretEnc, err := s.vault.Encrypt(req.APISecret)
	if err != nil {
		return nil, err
	}

	account := &model.BrokerAccount{
		UserID:       userID,
		Nickname:     req.Nickname,
		APIKey:       req.APIKey,
		APISecretEnc: secretEnc,
		IsActive:     true,
	}

	if req.BrokerUserID != "" {
		enc, err := s.vault.Encrypt(req.BrokerUserID)
		if err != nil {
			return nil, err
		}
		account.BrokerUserIDEnc = &enc
	}
	if req.BrokerPassword != "" {
		enc, err := s.vault.Encrypt(req.BrokerPassword)
		if err != nil {
			return nil, err
		}
		account.BrokerPasswordEnc = &enc
	}

	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "broker account linked",
		logger.UintField("user_id", userID), logger.UintField("account_id", account.ID))

	return &dto.AccountResponse{
		ID:       account.ID,
		Nickname: account.Nickname,
		APIKey:   account.APIKey,
		IsActive: account.IsActive,
		TotalPnL: 0,
	}, nil
}

func (s *accountService) Delete(ctx context.Context, userID, accountID uint) error {
	err := s.accountRepo.Delete(ctx, userID, accountID)
	if err == gorm.ErrRecordNotFound {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	s.cache.Delete(fmt.Sprintf(common.KEY_ACCOUNT_PNL, accountID))
	return nil
}
