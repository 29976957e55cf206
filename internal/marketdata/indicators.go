// Package marketdata computes technical indicator series and derives
// crossover trading signals for the signal-driven loop.
package marketdata

import talib "github.com/markcheno/go-talib"

// MovingAverage returns the simple moving average over the given window.
// Entries before the window has filled are zero.
func MovingAverage(prices []float64, window int) []float64 {
	return talib.Sma(prices, window)
}

// RSI returns the relative strength index series for the given period.
func RSI(prices []float64, period int) []float64 {
	return talib.Rsi(prices, period)
}

// MACD returns the MACD line and its signal line with the conventional
// 12/26/9 periods.
func MACD(prices []float64) (macd, signal []float64) {
	macd, signal, _ = talib.Macd(prices, 12, 26, 9)
	return macd, signal
}
