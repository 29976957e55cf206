package invest

import (
	"context"
	"time"

	"coinbase-dca-bot-go/internal/coinbase"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockClient is a mock implementation of coinbase.ClientInterface.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) CreateOrder(_ context.Context, clientOrderID, side string, size decimal.Decimal) (*coinbase.OrderOutcome, error) {
	args := m.Called(clientOrderID, side, size)
	if outcome := args.Get(0); outcome != nil {
		return outcome.(*coinbase.OrderOutcome), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockClient) CreateStopOrder(_ context.Context, clientOrderID string, baseSize, stopPrice, limitPrice decimal.Decimal, direction string) (*coinbase.OrderOutcome, error) {
	args := m.Called(clientOrderID, baseSize, stopPrice, limitPrice, direction)
	if outcome := args.Get(0); outcome != nil {
		return outcome.(*coinbase.OrderOutcome), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockClient) GetOrder(_ context.Context, orderID string) (*coinbase.OrderDetails, error) {
	args := m.Called(orderID)
	if details := args.Get(0); details != nil {
		return details.(*coinbase.OrderDetails), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockClient) FiatBalance(_ context.Context) (decimal.Decimal, error) {
	args := m.Called()
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockClient) AssetBalance(_ context.Context) (decimal.Decimal, error) {
	args := m.Called()
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockClient) SpotPrice(_ context.Context) (decimal.Decimal, error) {
	args := m.Called()
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockClient) SpotPriceAsOf(_ context.Context, date time.Time) (decimal.Decimal, error) {
	args := m.Called(date)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockClient) PreviousDayClose(_ context.Context) (decimal.Decimal, error) {
	args := m.Called()
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockClient) WeeklyPriceChange(_ context.Context) (decimal.Decimal, error) {
	args := m.Called()
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockClient) DailyCloses(_ context.Context, days int) ([]float64, error) {
	args := m.Called(days)
	if closes := args.Get(0); closes != nil {
		return closes.([]float64), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockSentiment is a mock implementation of sentiment.ClientInterface.
type MockSentiment struct {
	mock.Mock
}

func (m *MockSentiment) FetchIndex(_ context.Context) (int, error) {
	args := m.Called()
	return args.Int(0), args.Error(1)
}
