// Package strategy sizes one cycle's purchase from market signals. All
// functions are pure: the orchestrator supplies the signals and the budget,
// the strategy returns a fiat amount rounded to one decimal place.
package strategy

import "github.com/shopspring/decimal"

// Algorithm names accepted in configuration.
const (
	AlgorithmSentimentOnly = "adaptive_cost_average"
	AlgorithmMarketTiming  = "adaptive_cost_average_with_market_timing"
)

var (
	multNeutral  = decimal.NewFromInt(1)
	multCautious = decimal.NewFromFloat(1.25)
	multFear     = decimal.NewFromFloat(1.5)
	multPanic    = decimal.NewFromInt(2)
	multHalf     = decimal.NewFromFloat(0.5)
)

// SentimentOnly maps the Fear & Greed index to a multiple of the per-cycle
// base amount. Band boundaries belong to the lower band: an index of exactly
// 55 is still the neutral band, not the skip band.
//
//	> 55  greed           skip the cycle entirely
//	> 45  neutral         1x
//	> 30  cautious        1.25x
//	> 20  fear            1.5x
//	else  extreme fear    2x
func SentimentOnly(index int, monthlyLimit decimal.Decimal, frequency int) decimal.Decimal {
	base := monthlyLimit.Div(decimal.NewFromInt(int64(frequency)))

	var mult decimal.Decimal
	switch {
	case index > 55:
		return decimal.Zero
	case index > 45:
		mult = multNeutral
	case index > 30:
		mult = multCautious
	case index > 20:
		mult = multFear
	default:
		mult = multPanic
	}

	return base.Mul(mult).Round(1)
}

// WithMarketTiming combines a sentiment multiplier with a recent price-trend
// multiplier, each in {0.5, 1, 1.5}. A large recent drop increases the
// amount, a large recent rise decreases it.
func WithMarketTiming(index int, priceChangePct, monthlyLimit decimal.Decimal, frequency int) decimal.Decimal {
	base := monthlyLimit.Div(decimal.NewFromInt(int64(frequency)))

	sentimentMult := multNeutral
	switch {
	case index > 65:
		sentimentMult = multHalf
	case index < 30:
		sentimentMult = multFear
	}

	priceMult := multNeutral
	switch {
	case priceChangePct.LessThan(decimal.NewFromInt(-4)):
		priceMult = multFear
	case priceChangePct.GreaterThan(decimal.NewFromInt(4)):
		priceMult = multHalf
	}

	return base.Mul(sentimentMult).Mul(priceMult).Round(1)
}
