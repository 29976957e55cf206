package coinbase

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"coinbase-dca-bot-go/internal/config"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	apiHost      = "api.coinbase.com"
	baseURL      = "https://" + apiHost
	brokeragePfx = "/api/v3/brokerage"
)

// ClientInterface defines the brokerage operations consumed by the
// investment orchestrator, the trading loop and the status collector.
type ClientInterface interface {
	CreateOrder(ctx context.Context, clientOrderID, side string, size decimal.Decimal) (*OrderOutcome, error)
	CreateStopOrder(ctx context.Context, clientOrderID string, baseSize, stopPrice, limitPrice decimal.Decimal, direction string) (*OrderOutcome, error)
	GetOrder(ctx context.Context, orderID string) (*OrderDetails, error)
	FiatBalance(ctx context.Context) (decimal.Decimal, error)
	AssetBalance(ctx context.Context) (decimal.Decimal, error)
	SpotPrice(ctx context.Context) (decimal.Decimal, error)
	SpotPriceAsOf(ctx context.Context, date time.Time) (decimal.Decimal, error)
	PreviousDayClose(ctx context.Context) (decimal.Decimal, error)
	WeeklyPriceChange(ctx context.Context) (decimal.Decimal, error)
	DailyCloses(ctx context.Context, days int) ([]float64, error)
}

// Client talks to both Coinbase API surfaces: the Advanced Trade API for
// orders and candles (JWT bearer auth) and the v2 wallet API for balances
// (HMAC auth) and spot prices (public).
type Client struct {
	client     *resty.Client
	auth       *Auth
	walletAuth *WalletAuth
	limiter    *rate.Limiter
	logger     *zap.Logger
	productID  string
	fiat       string
	asset      string
}

// ensure Client implements the interface
var _ ClientInterface = (*Client)(nil)

// NewClient creates a Coinbase API client.
func NewClient(cfg *config.Coinbase, auth *Auth, logger *zap.Logger) *Client {
	return &Client{
		client:     resty.New().SetBaseURL(baseURL),
		auth:       auth,
		walletAuth: NewWalletAuth(cfg.APIKey, cfg.APISecret),
		limiter:    rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst),
		logger:     logger.Named("coinbase"),
		productID:  cfg.ProductID,
		fiat:       cfg.FiatCurrency,
		asset:      cfg.AssetCurrency,
	}
}

// doRequest executes a read request with rate limiting and bounded retry.
// Order submissions never go through here: resubmitting an order that may
// have been accepted risks duplicate spend.
func (c *Client) doRequest(ctx context.Context, method, url string, req *resty.Request) (*resty.Response, error) {
	var resp *resty.Response
	var err error
	const maxRetries = 3

	for i := 0; i < maxRetries; i++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}

		c.logger.Debug("Executing request", zap.String("method", method), zap.String("url", baseURL+url))
		resp, err = req.Execute(method, url)

		if err == nil && !resp.IsError() {
			return resp, nil
		}

		shouldRetry := false
		var retryAfter time.Duration

		if resp != nil && err == nil {
			statusCode := resp.StatusCode()
			if statusCode == http.StatusTooManyRequests {
				shouldRetry = true
				if seconds, convErr := strconv.Atoi(resp.Header().Get("Retry-After")); convErr == nil {
					retryAfter = time.Duration(seconds) * time.Second
				}
			} else if statusCode >= 500 {
				shouldRetry = true
			}
		} else {
			// Network or other client-side errors
			shouldRetry = true
		}

		if !shouldRetry {
			return nil, fmt.Errorf("request failed with status %s: %s", resp.Status(), resp.String())
		}

		if retryAfter == 0 {
			// Exponential backoff: 1s, 2s, 4s
			retryAfter = time.Duration(math.Pow(2, float64(i))) * time.Second
		}

		c.logger.Warn("Request failed, retrying...",
			zap.Int("attempt", i+1),
			zap.Duration("retry_after", retryAfter),
			zap.Error(err),
		)

		select {
		case <-time.After(retryAfter):
			continue
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", maxRetries, err)
}

type orderConfiguration struct {
	MarketMarketIOC *marketIOC `json:"market_market_ioc,omitempty"`
	StopLimitGTC    *stopLimit `json:"stop_limit_stop_limit_gtc,omitempty"`
}

type marketIOC struct {
	QuoteSize string `json:"quote_size,omitempty"`
	BaseSize  string `json:"base_size,omitempty"`
}

type stopLimit struct {
	BaseSize      string `json:"base_size"`
	LimitPrice    string `json:"limit_price"`
	StopPrice     string `json:"stop_price"`
	StopDirection string `json:"stop_direction"`
}

type createOrderRequest struct {
	ClientOrderID      string             `json:"client_order_id"`
	ProductID          string             `json:"product_id"`
	Side               string             `json:"side,omitempty"`
	OrderConfiguration orderConfiguration `json:"order_configuration"`
}

type createOrderResponse struct {
	Success         bool `json:"success"`
	SuccessResponse struct {
		OrderID string `json:"order_id"`
	} `json:"success_response"`
	FailureReason string `json:"failure_reason"`
	ErrorResponse struct {
		ErrorDetails string `json:"error_details"`
	} `json:"error_response"`
}

type apiErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
}

// CreateOrder submits a market IOC order. BUY orders are sized by quote
// currency, SELL orders by base currency, matching how the cycle budgets in
// fiat but liquidates in asset units. The request is sent exactly once.
func (c *Client) CreateOrder(ctx context.Context, clientOrderID, side string, size decimal.Decimal) (*OrderOutcome, error) {
	ioc := &marketIOC{}
	if side == SideBuy {
		ioc.QuoteSize = size.String()
	} else {
		ioc.BaseSize = size.String()
	}

	body := createOrderRequest{
		ClientOrderID:      clientOrderID,
		ProductID:          c.productID,
		Side:               side,
		OrderConfiguration: orderConfiguration{MarketMarketIOC: ioc},
	}

	return c.submitOrder(ctx, body)
}

// CreateStopOrder places a stop-limit GTC order, used by the trading loop
// for protective exits.
func (c *Client) CreateStopOrder(ctx context.Context, clientOrderID string, baseSize, stopPrice, limitPrice decimal.Decimal, direction string) (*OrderOutcome, error) {
	body := createOrderRequest{
		ClientOrderID: clientOrderID,
		ProductID:     c.productID,
		OrderConfiguration: orderConfiguration{StopLimitGTC: &stopLimit{
			BaseSize:      baseSize.String(),
			LimitPrice:    limitPrice.String(),
			StopPrice:     stopPrice.String(),
			StopDirection: direction,
		}},
	}

	return c.submitOrder(ctx, body)
}

func (c *Client) submitOrder(ctx context.Context, body createOrderRequest) (*OrderOutcome, error) {
	path := brokeragePfx + "/orders"
	bearer, err := c.auth.Bearer(http.MethodPost, apiHost, path)
	if err != nil {
		return nil, err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(bearer).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(path)
	if err != nil {
		// No response at all: the order's fate is unknown to the caller,
		// so report the exception shape instead of retrying.
		c.logger.Error("Order submission transport fault", zap.Error(err))
		return &OrderOutcome{
			Kind:    OutcomeException,
			Message: err.Error(),
			Details: "an exception occurred while sending the order request",
		}, nil
	}

	if resp.IsError() {
		var apiErr apiErrorResponse
		if err := json.Unmarshal(resp.Body(), &apiErr); err != nil {
			apiErr.Message = resp.String()
		}
		c.logger.Error("Order submission rejected by API",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("message", apiErr.Message),
		)
		return &OrderOutcome{
			Kind:    OutcomeError,
			Code:    apiErr.Code,
			Message: apiErr.Message,
			Details: apiErr.Details,
		}, nil
	}

	var result createOrderResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to decode order response: %w", err)
	}

	if !result.Success {
		c.logger.Warn("Order failure", zap.String("failure_reason", result.FailureReason))
		return &OrderOutcome{
			Kind:    OutcomeFailure,
			Reason:  result.FailureReason,
			Details: result.ErrorResponse.ErrorDetails,
		}, nil
	}

	c.logger.Info("Order successfully created", zap.String("order_id", result.SuccessResponse.OrderID))
	return &OrderOutcome{
		Kind:    OutcomeSuccess,
		OrderID: result.SuccessResponse.OrderID,
		Details: "order successfully created",
	}, nil
}

type getOrderResponse struct {
	Order struct {
		Status             string `json:"status"`
		FilledSize         string `json:"filled_size"`
		AverageFilledPrice string `json:"average_filled_price"`
		CreatedTime        string `json:"created_time"`
	} `json:"order"`
}

// GetOrder fetches the authoritative order record by order id.
func (c *Client) GetOrder(ctx context.Context, orderID string) (*OrderDetails, error) {
	path := fmt.Sprintf("%s/orders/historical/%s", brokeragePfx, orderID)
	bearer, err := c.auth.Bearer(http.MethodGet, apiHost, path)
	if err != nil {
		return nil, err
	}

	req := c.client.R().
		SetContext(ctx).
		SetAuthToken(bearer).
		SetResult(&getOrderResponse{})

	resp, err := c.doRequest(ctx, http.MethodGet, path, req)
	if err != nil {
		return nil, fmt.Errorf("failed to get order %s: %w", orderID, err)
	}

	raw := resp.Result().(*getOrderResponse).Order
	details := &OrderDetails{Status: raw.Status}

	if details.FilledSize, err = decimal.NewFromString(raw.FilledSize); err != nil {
		return nil, fmt.Errorf("failed to parse filled size %q: %w", raw.FilledSize, err)
	}
	if details.AverageFilledPrice, err = decimal.NewFromString(raw.AverageFilledPrice); err != nil {
		return nil, fmt.Errorf("failed to parse average filled price %q: %w", raw.AverageFilledPrice, err)
	}
	if details.CreatedTime, err = time.Parse(time.RFC3339, raw.CreatedTime); err != nil {
		return nil, fmt.Errorf("failed to parse created time %q: %w", raw.CreatedTime, err)
	}

	return details, nil
}

type accountsResponse struct {
	Data []struct {
		Type     string `json:"type"`
		Currency struct {
			Code string `json:"code"`
		} `json:"currency"`
		Balance struct {
			Amount string `json:"amount"`
		} `json:"balance"`
	} `json:"data"`
}

func (c *Client) accountBalance(ctx context.Context, match func(accountType, code string) bool) (decimal.Decimal, error) {
	const path = "/v2/accounts"

	req := c.client.R().
		SetContext(ctx).
		SetHeaders(c.walletAuth.Headers(http.MethodGet, path, "")).
		SetResult(&accountsResponse{})

	resp, err := c.doRequest(ctx, http.MethodGet, path, req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to list accounts: %w", err)
	}

	for _, account := range resp.Result().(*accountsResponse).Data {
		if !match(account.Type, account.Currency.Code) {
			continue
		}
		amount, err := decimal.NewFromString(account.Balance.Amount)
		if err != nil {
			return decimal.Zero, fmt.Errorf("failed to parse balance %q: %w", account.Balance.Amount, err)
		}
		return amount, nil
	}

	return decimal.Zero, fmt.Errorf("no account found for requested currency")
}

// FiatBalance returns the available balance of the configured fiat currency.
func (c *Client) FiatBalance(ctx context.Context) (decimal.Decimal, error) {
	return c.accountBalance(ctx, func(accountType, code string) bool {
		return accountType == "fiat" && code == c.fiat
	})
}

// AssetBalance returns the held quantity of the configured asset.
func (c *Client) AssetBalance(ctx context.Context) (decimal.Decimal, error) {
	return c.accountBalance(ctx, func(_, code string) bool {
		return code == c.asset
	})
}

type spotPriceResponse struct {
	Data struct {
		Amount string `json:"amount"`
	} `json:"data"`
}

func (c *Client) spotPrice(ctx context.Context, date string) (decimal.Decimal, error) {
	req := c.client.R().
		SetContext(ctx).
		SetResult(&spotPriceResponse{})
	if date != "" {
		req.SetQueryParam("date", date)
	}

	resp, err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/v2/prices/%s/spot", c.productID), req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get spot price: %w", err)
	}

	amount := resp.Result().(*spotPriceResponse).Data.Amount
	price, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse spot price %q: %w", amount, err)
	}
	return price, nil
}

// SpotPrice returns the current spot price of the configured product.
func (c *Client) SpotPrice(ctx context.Context) (decimal.Decimal, error) {
	return c.spotPrice(ctx, "")
}

// SpotPriceAsOf returns the spot price on a historical date.
func (c *Client) SpotPriceAsOf(ctx context.Context, date time.Time) (decimal.Decimal, error) {
	return c.spotPrice(ctx, date.Format("2006-01-02"))
}

// WeeklyPriceChange returns the percentage price change against the spot
// price one week ago. Negative values mean the price dropped.
func (c *Client) WeeklyPriceChange(ctx context.Context) (decimal.Decimal, error) {
	current, err := c.SpotPrice(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	past, err := c.SpotPriceAsOf(ctx, time.Now().AddDate(0, 0, -7))
	if err != nil {
		return decimal.Zero, err
	}
	if past.IsZero() {
		return decimal.Zero, fmt.Errorf("historical spot price is zero")
	}
	return current.Sub(past).Div(past).Mul(decimal.NewFromInt(100)), nil
}

type candlesResponse struct {
	Candles []struct {
		Start string `json:"start"`
		Close string `json:"close"`
	} `json:"candles"`
}

func (c *Client) dailyCandles(ctx context.Context, start, end time.Time) (*candlesResponse, error) {
	path := fmt.Sprintf("%s/products/%s/candles", brokeragePfx, c.productID)
	bearer, err := c.auth.Bearer(http.MethodGet, apiHost, path)
	if err != nil {
		return nil, err
	}

	req := c.client.R().
		SetContext(ctx).
		SetAuthToken(bearer).
		SetQueryParams(map[string]string{
			"start":       strconv.FormatInt(start.Unix(), 10),
			"end":         strconv.FormatInt(end.Unix(), 10),
			"granularity": "ONE_DAY",
		}).
		SetResult(&candlesResponse{})

	resp, err := c.doRequest(ctx, http.MethodGet, path, req)
	if err != nil {
		return nil, fmt.Errorf("failed to get candles: %w", err)
	}
	return resp.Result().(*candlesResponse), nil
}

// PreviousDayClose returns the closing price of the previous UTC day.
func (c *Client) PreviousDayClose(ctx context.Context) (decimal.Decimal, error) {
	dayStart := time.Now().UTC().AddDate(0, 0, -1).Truncate(24 * time.Hour)
	candles, err := c.dailyCandles(ctx, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return decimal.Zero, err
	}
	if len(candles.Candles) == 0 {
		return decimal.Zero, fmt.Errorf("no candle returned for the previous day")
	}

	close := candles.Candles[0].Close
	price, err := decimal.NewFromString(close)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse close price %q: %w", close, err)
	}
	return price, nil
}

// DailyCloses returns up to the requested number of daily closing prices in
// chronological order, for indicator computation.
func (c *Client) DailyCloses(ctx context.Context, days int) ([]float64, error) {
	end := time.Now().UTC()
	candles, err := c.dailyCandles(ctx, end.AddDate(0, 0, -days), end)
	if err != nil {
		return nil, err
	}

	// Candles arrive newest first; indicators want oldest first.
	closes := make([]float64, 0, len(candles.Candles))
	for i := len(candles.Candles) - 1; i >= 0; i-- {
		price, err := strconv.ParseFloat(candles.Candles[i].Close, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse close price %q: %w", candles.Candles[i].Close, err)
		}
		closes = append(closes, price)
	}
	return closes, nil
}
