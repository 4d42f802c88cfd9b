package service

import (
	"github.com/autobotela-sys/zap-trading/config"
	"github.com/autobotela-sys/zap-trading/internal/repository"
	"github.com/autobotela-sys/zap-trading/pkg/cache"
	"github.com/autobotela-sys/zap-trading/pkg/crypto"
	"github.com/autobotela-sys/zap-trading/pkg/logger"
)

type Service struct {
	AuthService     AuthService
	AccountService  AccountService
	SessionService  SessionService
	OrderService    OrderService
	PositionService PositionService
}

func NewService(
	cfg *config.Config,
	log *logger.Logger,
	repo *repository.Repository,
	vault *crypto.Vault,
	inmemoryCache cache.Cache,
	notifier Notifier,
) *Service {
	return &Service{
		AuthService:     NewAuthService(cfg, log, repo.UserRepo),
		AccountService:  NewAccountService(cfg, log, repo.AccountRepo, repo.KiteRepo, vault, inmemoryCache),
		SessionService:  NewSessionService(cfg, log, repo.AccountRepo, repo.KiteRepo, vault),
		OrderService:    NewOrderService(cfg, log, repo.AccountRepo, repo.OrderRepo, repo.KiteRepo, vault, notifier),
		PositionService: NewPositionService(cfg, log, repo.AccountRepo, repo.KiteRepo, vault),
	}
}
