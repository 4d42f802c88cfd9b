package service

import (
	"context"

	"github.com/autobotela-sys/zap-trading/config"
	"github.com/autobotela-sys/zap-trading/internal/dto"
	"github.com/autobotela-sys/zap-trading/internal/model"
	"github.com/autobotela-sys/zap-trading/internal/repository"
	"github.com/autobotela-sys/zap-trading/pkg/crypto"
	"github.com/autobotela-sys/zap-trading/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// PositionService merges live broker-reported positions across all of a
// user's authenticated accounts into one flat view.
type PositionService interface {
	GetPositions(ctx context.Context, userID uint) ([]dto.PositionView, error)
}

type positionService struct {
	cfg         *config.Config
	log         *logger.Logger
	accountRepo repository.AccountRepository
	kiteRepo    repository.KiteRepository
	vault       *crypto.Vault
}

func NewPositionService(
	cfg *config.Config,
	log *logger.Logger,
	accountRepo repository.AccountRepository,
	kiteRepo repository.KiteRepository,
	vault *crypto.Vault,
) PositionService {
	return &positionService{
		cfg:         cfg,
		log:         log,
		accountRepo: accountRepo,
		kiteRepo:    kiteRepo,
		vault:       vault,
	}
}

// GetPositions queries every authenticated account concurrently and
// concatenates the nonzero positions. A failing account contributes
// zero rows; no cross-account netting or sorting is applied.
func (s *positionService) GetPositions(ctx context.Context, userID uint) ([]dto.PositionView, error) {
	accounts, err := s.accountRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	perAccount := make([][]dto.PositionView, len(accounts))
	g, gctx := errgroup.WithContext(ctx)

	for i := range accounts {
		account := accounts[i]
		if !account.IsAuthenticated() {
			continue
		}

		idx := i
		g.Go(func() error {
			perAccount[idx] = s.accountPositions(gctx, &account)
			return nil
		})
	}
	_ = g.Wait()

	views := make([]dto.PositionView, 0)
	for _, rows := range perAccount {
		views = append(views, rows...)
	}
	return views, nil
}

// accountPositions fetches one account's net positions, degrading any
// failure to an empty slice.
func (s *positionService) accountPositions(ctx context.Context, account *model.BrokerAccount) []dto.PositionView {
	accessToken, err := s.vault.Decrypt(*account.AccessTokenEnc)
	if err != nil {
		s.log.WarnContext(ctx, "failed to decrypt access token for positions",
			logger.UintField("account_id", account.ID), logger.ErrorField(err))
		return nil
	}

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.Kite.BaseTimeout)
	defer cancel()

	positions, err := s.kiteRepo.GetNetPositions(callCtx, account.APIKey, accessToken)
	if err != nil {
		s.log.WarnContext(ctx, "broker positions query failed",
			logger.UintField("account_id", account.ID), logger.ErrorField(err))
		return nil
	}

	views := make([]dto.PositionView, 0, len(positions))
	for _, pos := range positions {
		if pos.Quantity == 0 {
			continue
		}
		views = append(views, dto.PositionView{
			AccountID:     account.ID,
			Tradingsymbol: pos.Tradingsymbol,
			Exchange:      pos.Exchange,
			Quantity:      pos.Quantity,
			Product:       pos.Product,
			PnL:           pos.PnL,
			AvgPrice:      pos.AveragePrice,
			LastPrice:     pos.LastPrice,
		})
	}
	return views
}
