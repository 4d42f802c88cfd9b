package repository

import (
	"context"
	"time"

	"github.com/autobotela-sys/zap-trading/internal/model"
	"github.com/autobotela-sys/zap-trading/pkg/utils"

	"gorm.io/gorm"
)

// SessionUpdate carries the columns written by a successful broker
// token exchange. They are persisted in a single update so a failed
// exchange never leaves a partial mutation behind.
type SessionUpdate struct {
	AccessTokenEnc string
	PublicToken    string
	RequestToken   string
	LastLogin      time.Time
}

// AccountRepository reads and writes linked broker accounts. Every
// query is scoped by the owning user id.
type AccountRepository interface {
	ListByUser(ctx context.Context, userID uint, opts ...utils.DBOption) ([]model.BrokerAccount, error)
	GetOwned(ctx context.Context, userID, accountID uint, opts ...utils.DBOption) (*model.BrokerAccount, error)
	ListOwned(ctx context.Context, userID uint, accountIDs []uint, opts ...utils.DBOption) ([]model.BrokerAccount, error)
	Create(ctx context.Context, account *model.BrokerAccount, opts ...utils.DBOption) error
	Delete(ctx context.Context, userID, accountID uint, opts ...utils.DBOption) error
	UpdateSession(ctx context.Context, accountID uint, session SessionUpdate, opts ...utils.DBOption) error
}

type accountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) ListByUser(ctx context.Context, userID uint, opts ...utils.DBOption) ([]model.BrokerAccount, error) {
	var accounts []model.BrokerAccount
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)

	if err := tx.Where("user_id = ?", userID).Order("id").Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *accountRepository) GetOwned(ctx context.Context, userID, accountID uint, opts ...utils.DBOption) (*model.BrokerAccount, error) {
	var account model.BrokerAccount
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)

	result := tx.Where("id = ? AND user_id = ?", accountID, userID).First(&account)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}

	return &account, nil
}

func (r *accountRepository) ListOwned(ctx context.Context, userID uint, accountIDs []uint, opts ...utils.DBOption) ([]model.BrokerAccount, error) {
	var accounts []model.BrokerAccount
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)

	if err := tx.Where("id IN ? AND user_id = ?", accountIDs, userID).Order("id").Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *accountRepository) Create(ctx context.Context, account *model.BrokerAccount, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Create(account).Error
}

func (r *accountRepository) Delete(ctx context.Context, userID, accountID uint, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)

	result := tx.Where("id = ? AND user_id = ?", accountID, userID).Delete(&model.BrokerAccount{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *accountRepository) UpdateSession(ctx context.Context, accountID uint, session SessionUpdate, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)

	return tx.Model(&model.BrokerAccount{}).
		Where("id = ?", accountID).
		Updates(map[string]interface{}{
			"access_token_enc": session.AccessTokenEnc,
			"public_token":     session.PublicToken,
			"request_token":    session.RequestToken,
			"last_login":       session.LastLogin,
		}).Error
}
