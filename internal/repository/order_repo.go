package repository

import (
	"context"

	"github.com/autobotela-sys/zap-trading/internal/model"
	"github.com/autobotela-sys/zap-trading/pkg/utils"

	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order, opts ...utils.DBOption) error
	ListByUser(ctx context.Context, userID uint, opts ...utils.DBOption) ([]model.Order, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Create(order).Error
}

func (r *orderRepository) ListByUser(ctx context.Context, userID uint, opts ...utils.DBOption) ([]model.Order, error) {
	var orders []model.Order
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)

	err := tx.
		Joins("JOIN broker_accounts ON broker_accounts.id = orders.account_id").
		Where("broker_accounts.user_id = ?", userID).
		Order("orders.created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}
