package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/autobotela-sys/zap-trading/config"
	"github.com/autobotela-sys/zap-trading/pkg/httpclient"
	"github.com/autobotela-sys/zap-trading/pkg/logger"

	"golang.org/x/time/rate"
)

const kiteVersion = "3"

// BrokerError is a rejection reported by the broker API itself, as
// opposed to a transport failure.
type BrokerError struct {
	Type    string
	Message string
}

func (e *BrokerError) Error() string {
	return e.Message
}

type KiteSession struct {
	AccessToken string `json:"access_token"`
	PublicToken string `json:"public_token"`
}

type KiteOrderParams struct {
	Exchange        string
	Tradingsymbol   string
	TransactionType string
	Quantity        int
	Product         string
	OrderType       string
	Validity        string
	Variety         string
	Price           *float64
}

type KitePosition struct {
	Tradingsymbol string  `json:"tradingsymbol"`
	Exchange      string  `json:"exchange"`
	Quantity      int     `json:"quantity"`
	Product       string  `json:"product"`
	PnL           float64 `json:"pnl"`
	AveragePrice  float64 `json:"average_price"`
	LastPrice     float64 `json:"last_price"`
}

// KiteRepository is the Kite Connect client surface the services depend
// on. Every call may fail with a broker-defined error; callers treat all
// such failures uniformly as "this account's operation failed".
type KiteRepository interface {
	LoginURL(apiKey string) string
	GenerateSession(ctx context.Context, apiKey, apiSecret, requestToken string) (*KiteSession, error)
	PlaceOrder(ctx context.Context, apiKey, accessToken string, params KiteOrderParams) (string, error)
	GetNetPositions(ctx context.Context, apiKey, accessToken string) ([]KitePosition, error)
}

type kiteRepository struct {
	cfg        *config.Config
	log        *logger.Logger
	httpClient httpclient.HTTPClient
	limiter    *rate.Limiter
}

func NewKiteRepository(cfg *config.Config, log *logger.Logger) KiteRepository {
	rps := cfg.Kite.MaxRequestPerSec
	if rps <= 0 {
		rps = 3
	}
	return &kiteRepository{
		cfg:        cfg,
		log:        log,
		httpClient: httpclient.New(cfg.Kite.BaseURL, cfg.Kite.BaseTimeout),
		limiter:    rate.NewLimiter(rate.Limit(rps), rps),
	}
}

// kiteEnvelope is the common response wrapper of the Kite Connect API.
type kiteEnvelope struct {
	Status    string          `json:"status"`
	Message   string          `json:"message"`
	ErrorType string          `json:"error_type"`
	Data      json.RawMessage `json:"data"`
}

func (r *kiteRepository) LoginURL(apiKey string) string {
	return fmt.Sprintf("%s?v=%s&api_key=%s", r.cfg.Kite.LoginBaseURL, kiteVersion, url.QueryEscape(apiKey))
}

func (r *kiteRepository) GenerateSession(ctx context.Context, apiKey, apiSecret, requestToken string) (*KiteSession, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	// checksum = SHA-256(api_key + request_token + api_secret)
	sum := sha256.Sum256([]byte(apiKey + requestToken + apiSecret))

	form := url.Values{}
	form.Set("api_key", apiKey)
	form.Set("request_token", requestToken)
	form.Set("checksum", hex.EncodeToString(sum[:]))

	resp, err := r.httpClient.PostForm(ctx, "/session/token", form, r.headers(""), nil)
	if err != nil {
		return nil, err
	}

	var session KiteSession
	if err := r.decode(resp, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *kiteRepository) PlaceOrder(ctx context.Context, apiKey, accessToken string, params KiteOrderParams) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", err
	}

	form := url.Values{}
	form.Set("exchange", params.Exchange)
	form.Set("tradingsymbol", params.Tradingsymbol)
	form.Set("transaction_type", params.TransactionType)
	form.Set("quantity", strconv.Itoa(params.Quantity))
	form.Set("product", params.Product)
	form.Set("order_type", params.OrderType)
	form.Set("validity", params.Validity)
	if params.Price != nil {
		form.Set("price", strconv.FormatFloat(*params.Price, 'f', -1, 64))
	}

	endpoint := "/orders/" + params.Variety
	resp, err := r.httpClient.PostForm(ctx, endpoint, form, r.headers(apiKey+":"+accessToken), nil)
	if err != nil {
		return "", err
	}

	var data struct {
		OrderID string `json:"order_id"`
	}
	if err := r.decode(resp, &data); err != nil {
		return "", err
	}
	return data.OrderID, nil
}

func (r *kiteRepository) GetNetPositions(ctx context.Context, apiKey, accessToken string) ([]KitePosition, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := r.httpClient.Get(ctx, "/portfolio/positions", nil, r.headers(apiKey+":"+accessToken), nil)
	if err != nil {
		return nil, err
	}

	var data struct {
		Net []KitePosition `json:"net"`
		Day []KitePosition `json:"day"`
	}
	if err := r.decode(resp, &data); err != nil {
		return nil, err
	}
	return data.Net, nil
}

func (r *kiteRepository) headers(authToken string) map[string]string {
	h := map[string]string{
		"X-Kite-Version": kiteVersion,
	}
	if authToken != ":" && authToken != "" {
		h["Authorization"] = "token " + authToken
	}
	return h
}

// decode unwraps the Kite envelope and maps broker rejections to BrokerError.
func (r *kiteRepository) decode(resp *httpclient.BaseResponse, out interface{}) error {
	var envelope kiteEnvelope
	if err := json.Unmarshal(resp.Body, &envelope); err != nil {
		return fmt.Errorf("unexpected broker response (status %d): %w", resp.StatusCode, err)
	}

	if envelope.Status != "success" {
		message := envelope.Message
		if message == "" {
			message = fmt.Sprintf("broker returned status %d", resp.StatusCode)
		}
		return &BrokerError{Type: envelope.ErrorType, Message: message}
	}

	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("failed to decode broker payload: %w", err)
		}
	}
	return nil
}
