package coinbase

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order sides accepted by the brokerage.
const (
	SideBuy  = "BUY"
	SideSell = "SELL"
)

// Stop directions for stop-limit orders.
const (
	StopDirectionUp   = "STOP_DIRECTION_STOP_UP"
	StopDirectionDown = "STOP_DIRECTION_STOP_DOWN"
)

// OutcomeKind is the closed set of order-submission outcome shapes. The
// brokerage reports three distinct failure shapes on top of success:
// a rejected order (failure), a non-200 API error (error) and a transport
// fault that produced no response at all (exception).
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeFailure
	OutcomeError
	OutcomeException
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	case OutcomeError:
		return "error"
	case OutcomeException:
		return "exception"
	default:
		return "unknown"
	}
}

// OrderOutcome is the normalized result of one order submission.
type OrderOutcome struct {
	Kind    OutcomeKind
	OrderID string
	Reason  string
	Code    string
	Message string
	Details string
}

// OrderDetails is the authoritative order record fetched by order id.
// Status is the raw brokerage status string; callers map it themselves.
type OrderDetails struct {
	Status             string
	FilledSize         decimal.Decimal
	AverageFilledPrice decimal.Decimal
	CreatedTime        time.Time
}
