package invest

import "strings"

// OrderState is the small completion taxonomy the tracker reduces brokerage
// status strings to. It lives only for the duration of one cycle.
type OrderState int

const (
	StatePending OrderState = iota
	StateFilled
	StateCancelled
	StateExpired
	StateFailed
	// StateTimedOut is local only: polling exhausted its budget without
	// observing a brokerage terminal state. The order's true fate is unknown.
	StateTimedOut
)

func (s OrderState) String() string {
	switch s {
	case StatePending:
		return "PENDING"
	case StateFilled:
		return "FILLED"
	case StateCancelled:
		return "CANCELLED"
	case StateExpired:
		return "EXPIRED"
	case StateFailed:
		return "FAILED"
	case StateTimedOut:
		return "TIMED_OUT"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether no further transition can occur.
func (s OrderState) Terminal() bool {
	return s != StatePending
}

// stateFromStatus maps a brokerage status string onto the taxonomy. Unknown
// or in-flight statuses count as pending: polling keeps going.
func stateFromStatus(status string) OrderState {
	switch strings.ToUpper(status) {
	case "FILLED":
		return StateFilled
	case "CANCELLED":
		return StateCancelled
	case "EXPIRED":
		return StateExpired
	case "FAILED":
		return StateFailed
	default:
		return StatePending
	}
}
