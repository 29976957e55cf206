package sentiment

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const baseURL = "https://api.alternative.me"

// ClientInterface defines the sentiment index fetch consumed by the
// investment orchestrator.
type ClientInterface interface {
	FetchIndex(ctx context.Context) (int, error)
}

// Client fetches the Fear & Greed index, used as a contrarian signal when
// sizing purchases.
type Client struct {
	client *resty.Client
	logger *zap.Logger
}

var _ ClientInterface = (*Client)(nil)

// NewClient creates a Fear & Greed index client.
func NewClient(logger *zap.Logger) *Client {
	return &Client{
		client: resty.New().SetBaseURL(baseURL),
		logger: logger.Named("sentiment"),
	}
}

type indexResponse struct {
	Data []struct {
		Value string `json:"value"`
	} `json:"data"`
}

// FetchIndex returns the latest Fear & Greed index value in [0,100].
func (c *Client) FetchIndex(ctx context.Context) (int, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&indexResponse{}).
		Get("/fng/")
	if err != nil {
		return 0, fmt.Errorf("failed to fetch fear and greed index: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return 0, fmt.Errorf("fear and greed request failed with status %s", resp.Status())
	}

	result := resp.Result().(*indexResponse)
	if len(result.Data) == 0 {
		return 0, fmt.Errorf("fear and greed response contained no data points")
	}

	value, err := strconv.Atoi(result.Data[0].Value)
	if err != nil {
		return 0, fmt.Errorf("failed to parse index value %q: %w", result.Data[0].Value, err)
	}
	if value < 0 || value > 100 {
		return 0, fmt.Errorf("index value %d outside [0,100]", value)
	}

	c.logger.Debug("Fetched fear and greed index", zap.Int("value", value))
	return value, nil
}
