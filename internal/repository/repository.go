package repository

import (
	"github.com/autobotela-sys/zap-trading/config"
	"github.com/autobotela-sys/zap-trading/pkg/logger"

	"gorm.io/gorm"
)

type Repository struct {
	UserRepo    UserRepository
	AccountRepo AccountRepository
	OrderRepo   OrderRepository
	KiteRepo    KiteRepository
}

func NewRepository(cfg *config.Config, db *gorm.DB, log *logger.Logger) *Repository {
	return &Repository{
		UserRepo:    NewUserRepository(db),
		AccountRepo: NewAccountRepository(db),
		OrderRepo:   NewOrderRepository(db),
		KiteRepo:    NewKiteRepository(cfg, log),
	}
}
