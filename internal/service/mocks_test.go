package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/autobotela-sys/zap-trading/config"
	"github.com/autobotela-sys/zap-trading/internal/model"
	"github.com/autobotela-sys/zap-trading/internal/repository"
	"github.com/autobotela-sys/zap-trading/pkg/crypto"
	"github.com/autobotela-sys/zap-trading/pkg/logger"
	"github.com/autobotela-sys/zap-trading/pkg/utils"

	"gorm.io/gorm"
)

// ============ Test fixtures ============

const testVaultKey = "0123456789abcdef0123456789abcdef"

func testConfig() *config.Config {
	return &config.Config{
		Kite: config.KiteConfig{
			BaseTimeout:      2 * time.Second,
			MaxRequestPerSec: 3,
		},
		Cache: config.Cache{
			PnLExpiration: time.Minute,
		},
		Auth: config.Auth{
			JWTSecret:   "test-secret",
			TokenExpiry: time.Hour,
		},
	}
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("error", "console")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func testVault(t *testing.T) *crypto.Vault {
	t.Helper()
	vault, err := crypto.NewVault(testVaultKey)
	if err != nil {
		t.Fatalf("vault: %v", err)
	}
	return vault
}

// encrypted is a test shortcut for vault ciphertext of a plaintext.
func encrypted(t *testing.T, vault *crypto.Vault, plaintext string) string {
	t.Helper()
	enc, err := vault.Encrypt(plaintext)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	return enc
}

func authenticatedAccount(t *testing.T, vault *crypto.Vault, id, userID uint, nickname, apiKey, accessToken string) model.BrokerAccount {
	t.Helper()
	enc := encrypted(t, vault, accessToken)
	return model.BrokerAccount{
		ID:             id,
		UserID:         userID,
		Nickname:       nickname,
		APIKey:         apiKey,
		APISecretEnc:   encrypted(t, vault, "secret-"+apiKey),
		AccessTokenEnc: &enc,
		IsActive:       true,
	}
}

// ============ Fake account repository ============

type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts []model.BrokerAccount
	updates  map[uint]repository.SessionUpdate
	listErr  error
}

func newFakeAccountRepo(accounts ...model.BrokerAccount) *fakeAccountRepo {
	return &fakeAccountRepo{
		accounts: accounts,
		updates:  make(map[uint]repository.SessionUpdate),
	}
}

func (f *fakeAccountRepo) ListByUser(ctx context.Context, userID uint, opts ...utils.DBOption) ([]model.BrokerAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []model.BrokerAccount
	for _, a := range f.accounts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAccountRepo) GetOwned(ctx context.Context, userID, accountID uint, opts ...utils.DBOption) (*model.BrokerAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.accounts {
		if f.accounts[i].ID == accountID && f.accounts[i].UserID == userID {
			account := f.accounts[i]
			return &account, nil
		}
	}
	return nil, nil
}

func (f *fakeAccountRepo) ListOwned(ctx context.Context, userID uint, accountIDs []uint, opts ...utils.DBOption) ([]model.BrokerAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	wanted := make(map[uint]bool, len(accountIDs))
	for _, id := range accountIDs {
		wanted[id] = true
	}
	var out []model.BrokerAccount
	for _, a := range f.accounts {
		if a.UserID == userID && wanted[a.ID] {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAccountRepo) Create(ctx context.Context, account *model.BrokerAccount, opts ...utils.DBOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	account.ID = uint(len(f.accounts) + 1)
	f.accounts = append(f.accounts, *account)
	return nil
}

func (f *fakeAccountRepo) Delete(ctx context.Context, userID, accountID uint, opts ...utils.DBOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.accounts {
		if f.accounts[i].ID == accountID && f.accounts[i].UserID == userID {
			f.accounts = append(f.accounts[:i], f.accounts[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeAccountRepo) UpdateSession(ctx context.Context, accountID uint, session repository.SessionUpdate, opts ...utils.DBOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates[accountID] = session
	for i := range f.accounts {
		if f.accounts[i].ID == accountID {
			enc := session.AccessTokenEnc
			pub := session.PublicToken
			req := session.RequestToken
			last := session.LastLogin
			f.accounts[i].AccessTokenEnc = &enc
			f.accounts[i].PublicToken = &pub
			f.accounts[i].RequestToken = &req
			f.accounts[i].LastLogin = &last
		}
	}
	return nil
}

// ============ Fake user repository ============

type fakeUserRepo struct {
	mu    sync.Mutex
	users []model.User
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string, opts ...utils.DBOption) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.users {
		if f.users[i].Email == email {
			user := f.users[i]
			return &user, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uint, opts ...utils.DBOption) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.users {
		if f.users[i].ID == id {
			user := f.users[i]
			return &user, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User, opts ...utils.DBOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user.ID = uint(len(f.users) + 1)
	f.users = append(f.users, *user)
	return nil
}

// ============ Fake order repository ============

type fakeOrderRepo struct {
	mu        sync.Mutex
	orders    []model.Order
	createErr error
}

func (f *fakeOrderRepo) Create(ctx context.Context, order *model.Order, opts ...utils.DBOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	order.ID = uint(len(f.orders) + 1)
	f.orders = append(f.orders, *order)
	return nil
}

func (f *fakeOrderRepo) ListByUser(ctx context.Context, userID uint, opts ...utils.DBOption) ([]model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Order, len(f.orders))
	copy(out, f.orders)
	return out, nil
}

func (f *fakeOrderRepo) created() []model.Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Order, len(f.orders))
	copy(out, f.orders)
	return out
}

// ============ Fake broker client ============

type fakeKiteRepo struct {
	mu sync.Mutex

	session    *repository.KiteSession
	sessionErr error

	// keyed by api key
	orderIDs     map[string]string
	placeErrs    map[string]error
	positions    map[string][]repository.KitePosition
	positionErrs map[string]error

	placeCalls    []repository.KiteOrderParams
	placeTokens   []string
	positionCalls int
	sessionCalls  int
}

func newFakeKiteRepo() *fakeKiteRepo {
	return &fakeKiteRepo{
		orderIDs:     make(map[string]string),
		placeErrs:    make(map[string]error),
		positions:    make(map[string][]repository.KitePosition),
		positionErrs: make(map[string]error),
	}
}

func (f *fakeKiteRepo) LoginURL(apiKey string) string {
	return "https://broker.test/connect/login?v=3&api_key=" + apiKey
}

func (f *fakeKiteRepo) GenerateSession(ctx context.Context, apiKey, apiSecret, requestToken string) (*repository.KiteSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessionCalls++
	if f.sessionErr != nil {
		return nil, f.sessionErr
	}
	return f.session, nil
}

func (f *fakeKiteRepo) PlaceOrder(ctx context.Context, apiKey, accessToken string, params repository.KiteOrderParams) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.placeCalls = append(f.placeCalls, params)
	f.placeTokens = append(f.placeTokens, accessToken)
	if err := f.placeErrs[apiKey]; err != nil {
		return "", err
	}
	return f.orderIDs[apiKey], nil
}

func (f *fakeKiteRepo) GetNetPositions(ctx context.Context, apiKey, accessToken string) ([]repository.KitePosition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.positionCalls++
	if err := f.positionErrs[apiKey]; err != nil {
		return nil, err
	}
	return f.positions[apiKey], nil
}

func (f *fakeKiteRepo) placeCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.placeCalls)
}

// ============ Fake notifier ============

type fakeNotifier struct {
	mu       sync.Mutex
	messages []interface{}
	users    []uint
}

func (f *fakeNotifier) BroadcastToUser(userID uint, message interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users = append(f.users, userID)
	f.messages = append(f.messages, message)
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

// ============ Fake cache ============

type fakeCache struct {
	mu    sync.Mutex
	items map[string]interface{}
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: make(map[string]interface{})}
}

func (f *fakeCache) Set(key string, value interface{}, duration time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[key] = value
}

func (f *fakeCache) Get(key string) (interface{}, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.items[key]
	return v, ok
}

func (f *fakeCache) Delete(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, key)
}

func (f *fakeCache) Flush() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = make(map[string]interface{})
}
