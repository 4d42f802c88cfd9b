package cmd

import (
	"context"

	"github.com/autobotela-sys/zap-trading/config"
	"github.com/autobotela-sys/zap-trading/pkg/cache"
	"github.com/autobotela-sys/zap-trading/pkg/crypto"
	"github.com/autobotela-sys/zap-trading/pkg/logger"
	"github.com/autobotela-sys/zap-trading/pkg/postgres"
	"github.com/autobotela-sys/zap-trading/pkg/ws"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type AppDependency struct {
	db        *postgres.DB
	cfg       *config.Config
	log       *logger.Logger
	validator *goValidator.Validate
	echo      *echo.Echo
	cache     cache.Cache
	vault     *crypto.Vault
	hub       *ws.Hub
}

func NewAppDependency(ctx context.Context) (*AppDependency, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		return nil, err
	}

	db, err := postgres.NewDB(cfg.DB, log)
	if err != nil {
		log.Error("Failed to connect to database", zap.Error(err))
		return nil, err
	}

	vault, err := crypto.NewVault(cfg.Vault.EncryptionKey)
	if err != nil {
		log.Error("Failed to initialize credential vault", zap.Error(err))
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true

	return &AppDependency{
		cfg:       cfg,
		log:       log,
		validator: goValidator.New(),
		db:        db,
		echo:      e,
		cache:     cache.NewCache(cfg.Cache.DefaultExpiration, cfg.Cache.CleanupInterval),
		vault:     vault,
		hub:       ws.NewHub(log),
	}, nil
}

func (d *AppDependency) Close() error {
	d.log.Info("Closing app dependency")
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}
