package marketdata

// Action is a trading signal direction.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
)

// Signal is one trading signal and the price index it fired at.
type Signal struct {
	Action Action
	Index  int
}

// GenerateSignals derives buy/sell signals from moving-average crossovers,
// gated by RSI and MACD confirmation: a golden cross only signals a buy
// when RSI shows the market oversold and MACD sits above its signal line;
// a death cross mirrors that on the sell side.
func GenerateSignals(prices []float64, shortWindow, longWindow, rsiPeriod int, rsiThreshold float64) []Signal {
	if len(prices) <= longWindow {
		return nil
	}

	shortMA := MovingAverage(prices, shortWindow)
	longMA := MovingAverage(prices, longWindow)
	rsi := RSI(prices, rsiPeriod)
	macd, macdSignal := MACD(prices)

	var signals []Signal
	for i := longWindow; i < len(prices); i++ {
		goldenCross := shortMA[i] > longMA[i] && shortMA[i-1] <= longMA[i-1]
		deathCross := shortMA[i] < longMA[i] && shortMA[i-1] >= longMA[i-1]

		switch {
		case goldenCross && rsi[i] < rsiThreshold && macd[i] > macdSignal[i]:
			signals = append(signals, Signal{Action: ActionBuy, Index: i})
		case deathCross && rsi[i] > 100-rsiThreshold && macd[i] < macdSignal[i]:
			signals = append(signals, Signal{Action: ActionSell, Index: i})
		}
	}
	return signals
}

// LatestSignal returns the signal fired at the most recent price point, or
// ok=false when the newest bar produced no signal.
func LatestSignal(prices []float64, shortWindow, longWindow, rsiPeriod int, rsiThreshold float64) (Signal, bool) {
	signals := GenerateSignals(prices, shortWindow, longWindow, rsiPeriod, rsiThreshold)
	if len(signals) == 0 {
		return Signal{}, false
	}
	last := signals[len(signals)-1]
	if last.Index != len(prices)-1 {
		return Signal{}, false
	}
	return last, true
}
