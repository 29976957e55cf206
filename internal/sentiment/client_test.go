package sentiment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func setupTestClient(handler http.Handler) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	c := &Client{
		client: resty.New().SetBaseURL(server.URL),
		logger: zap.NewNop(),
	}
	return c, server
}

func TestFetchIndex(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/fng/", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"data": [{"value": "25", "value_classification": "Extreme Fear"}]}`))
		})

		c, server := setupTestClient(handler)
		defer server.Close()

		value, err := c.FetchIndex(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, 25, value)
	})

	t.Run("APIError", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})

		c, server := setupTestClient(handler)
		defer server.Close()

		_, err := c.FetchIndex(context.Background())

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed with status")
	})

	t.Run("EmptyData", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"data": []}`))
		})

		c, server := setupTestClient(handler)
		defer server.Close()

		_, err := c.FetchIndex(context.Background())

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "no data points")
	})

	t.Run("NonNumericValue", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"data": [{"value": "extreme"}]}`))
		})

		c, server := setupTestClient(handler)
		defer server.Close()

		_, err := c.FetchIndex(context.Background())

		assert.Error(t, err)
	})

	t.Run("OutOfRangeValue", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"data": [{"value": "250"}]}`))
		})

		c, server := setupTestClient(handler)
		defer server.Close()

		_, err := c.FetchIndex(context.Background())

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "outside [0,100]")
	})
}
