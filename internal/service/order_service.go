package service

import (
	"context"
	"fmt"

	"github.com/autobotela-sys/zap-trading/config"
	"github.com/autobotela-sys/zap-trading/internal/dto"
	"github.com/autobotela-sys/zap-trading/internal/model"
	"github.com/autobotela-sys/zap-trading/internal/repository"
	"github.com/autobotela-sys/zap-trading/pkg/crypto"
	"github.com/autobotela-sys/zap-trading/pkg/logger"
	"github.com/autobotela-sys/zap-trading/pkg/utils"

	"golang.org/x/sync/errgroup"
)

// Notifier pushes a payload to a user's live listeners. Delivery is
// fire-and-forget and never fails the originating request.
type Notifier interface {
	BroadcastToUser(userID uint, message interface{})
}

// OrderService fans one logical order out to a batch of target
// accounts, isolating per-account failures.
type OrderService interface {
	PlaceBatch(ctx context.Context, userID uint, req dto.PlaceOrderRequest) (*dto.PlaceOrderResponse, error)
	ListOrders(ctx context.Context, userID uint, status string) ([]dto.OrderResponse, error)
}

type orderService struct {
	cfg         *config.Config
	log         *logger.Logger
	accountRepo repository.AccountRepository
	orderRepo   repository.OrderRepository
	kiteRepo    repository.KiteRepository
	vault       *crypto.Vault
	notifier    Notifier
}

func NewOrderService(
	cfg *config.Config,
	log *logger.Logger,
	accountRepo repository.AccountRepository,
	orderRepo repository.OrderRepository,
	kiteRepo repository.KiteRepository,
	vault *crypto.Vault,
	notifier Notifier,
) OrderService {
	return &orderService{
		cfg:         cfg,
		log:         log,
		accountRepo: accountRepo,
		orderRepo:   orderRepo,
		kiteRepo:    kiteRepo,
		vault:       vault,
		notifier:    notifier,
	}
}

// PlaceBatch resolves sizing and symbol once, then submits the order to
// every owned target account independently. One account gets exactly
// one submission attempt; a sibling's failure never aborts the loop.
// Partial success is a normal outcome, reported per account.
func (s *orderService) PlaceBatch(ctx context.Context, userID uint, req dto.PlaceOrderRequest) (*dto.PlaceOrderResponse, error) {
	resolved, err := ResolveOrder(req.Index, req.Expiry, req.Strike, req.OptionType, req.Lots, s.cfg.Kite.AllowUnknownIndex)
	if err != nil {
		return nil, err
	}

	owned, err := s.accountRepo.ListOwned(ctx, userID, req.AccountIDs)
	if err != nil {
		return nil, err
	}
	if len(owned) == 0 {
		return nil, ErrNoValidAccounts
	}

	// results follow the order of the requested account ids
	byID := make(map[uint]model.BrokerAccount, len(owned))
	for _, account := range owned {
		byID[account.ID] = account
	}
	accounts := make([]model.BrokerAccount, 0, len(owned))
	for _, id := range req.AccountIDs {
		if account, ok := byID[id]; ok {
			accounts = append(accounts, account)
			// a repeated id still gets a single submission
			delete(byID, id)
		}
	}

	results := make([]dto.AccountOrderResult, len(accounts))
	g := new(errgroup.Group)

	for i := range accounts {
		idx := i
		account := accounts[i]
		g.Go(func() error {
			results[idx] = s.placeForAccount(ctx, &account, resolved, req)
			return nil
		})
	}
	// per-account failures are folded into results, never into err
	_ = g.Wait()

	successCount := 0
	for _, res := range results {
		if res.Success {
			successCount++
		}
	}

	response := &dto.PlaceOrderResponse{
		Success: successCount > 0,
		Message: fmt.Sprintf("Orders placed: %d/%d", successCount, len(results)),
		Orders:  results,
	}

	s.log.InfoContext(ctx, "order batch dispatched",
		logger.UintField("user_id", userID),
		logger.StringField("tradingsymbol", resolved.Tradingsymbol),
		logger.IntField("success", successCount),
		logger.IntField("total", len(results)),
	)

	utils.GoSafe(func() {
		s.notifier.BroadcastToUser(userID, dto.OrderNotification{
			Type:    "order_update",
			Message: response.Message,
			Orders:  response.Orders,
		})
	})

	return response, nil
}

// placeForAccount performs the single submission attempt for one
// account. Any failure (missing token, decryption, broker rejection,
// transport) becomes that account's negative result; no Order row is
// persisted for a failed submission.
func (s *orderService) placeForAccount(ctx context.Context, account *model.BrokerAccount, resolved *ResolvedOrder, req dto.PlaceOrderRequest) dto.AccountOrderResult {
	if !account.IsAuthenticated() {
		return dto.AccountOrderResult{
			Account: account.Nickname,
			Success: false,
			Message: "Account not logged in",
		}
	}

	accessToken, err := s.vault.Decrypt(*account.AccessTokenEnc)
	if err != nil {
		return dto.AccountOrderResult{
			Account: account.Nickname,
			Success: false,
			Message: err.Error(),
		}
	}

	variety := model.VarietyRegular
	if req.AMO {
		variety = model.VarietyAMO
	}

	params := repository.KiteOrderParams{
		Exchange:        resolved.Exchange,
		Tradingsymbol:   resolved.Tradingsymbol,
		TransactionType: req.TransactionType,
		Quantity:        resolved.Quantity,
		Product:         req.Product,
		OrderType:       req.OrderType,
		Validity:        dto.ValidityDay,
		Variety:         variety,
	}
	if req.OrderType == dto.OrderTypeLimit && req.Price != nil {
		params.Price = req.Price
	}

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.Kite.BaseTimeout)
	defer cancel()

	brokerOrderID, err := s.kiteRepo.PlaceOrder(callCtx, account.APIKey, accessToken, params)
	if err != nil {
		s.log.WarnContext(ctx, "order submission failed",
			logger.UintField("account_id", account.ID), logger.ErrorField(err))
		return dto.AccountOrderResult{
			Account: account.Nickname,
			Success: false,
			Message: err.Error(),
		}
	}

	order := &model.Order{
		AccountID:       account.ID,
		BrokerOrderID:   brokerOrderID,
		Tradingsymbol:   resolved.Tradingsymbol,
		Exchange:        resolved.Exchange,
		TransactionType: req.TransactionType,
		Quantity:        resolved.Quantity,
		Product:         req.Product,
		OrderType:       req.OrderType,
		Price:           params.Price,
		Status:          model.OrderStatusPending,
		Variety:         variety,
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		// the broker accepted the order; report success but flag the
		// missing local record
		s.log.ErrorContext(ctx, "failed to persist order record",
			logger.UintField("account_id", account.ID),
			logger.StringField("broker_order_id", brokerOrderID),
			logger.ErrorField(err))
	}

	return dto.AccountOrderResult{
		Account: account.Nickname,
		Success: true,
		OrderID: brokerOrderID,
		Message: "Order placed successfully",
	}
}

func (s *orderService) ListOrders(ctx context.Context, userID uint, status string) ([]dto.OrderResponse, error) {
	var opts []utils.DBOption
	if status != "" {
		opts = append(opts, utils.WithWhere("orders.status = ?", status))
	}

	orders, err := s.orderRepo.ListByUser(ctx, userID, opts...)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.OrderResponse, 0, len(orders))
	for _, order := range orders {
		responses = append(responses, dto.OrderResponse{
			ID:              order.ID,
			AccountID:       order.AccountID,
			BrokerOrderID:   order.BrokerOrderID,
			Tradingsymbol:   order.Tradingsymbol,
			Exchange:        order.Exchange,
			TransactionType: order.TransactionType,
			Quantity:        order.Quantity,
			Product:         order.Product,
			OrderType:       order.OrderType,
			Price:           order.Price,
			Status:          order.Status,
			Variety:         order.Variety,
			ErrorMessage:    order.ErrorMessage,
			CreatedAt:       order.CreatedAt,
		})
	}
	return responses, nil
}
