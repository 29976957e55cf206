// Package status produces the flat set of labeled values shown on the
// display: sentiment, spot price, average cost basis and the last
// transaction date. The core only produces this data; sinks render it.
package status

import (
	"context"
	"strconv"

	"coinbase-dca-bot-go/internal/coinbase"
	"coinbase-dca-bot-go/internal/ledger"
	"coinbase-dca-bot-go/internal/sentiment"
	"go.uber.org/zap"
)

// Field is one labeled value in a snapshot.
type Field struct {
	Label string
	Value string
}

// Sink renders a snapshot somewhere: a log stream, a console, an e-paper
// panel.
type Sink interface {
	Render(fields []Field) error
}

// Collector gathers the snapshot values from the live services and the
// ledger. Individual fetch failures degrade the field to "n/a" instead of
// failing the whole snapshot.
type Collector struct {
	client    coinbase.ClientInterface
	sentiment sentiment.ClientInterface
	ledger    *ledger.Ledger
	logger    *zap.Logger
}

// NewCollector creates a Collector.
func NewCollector(client coinbase.ClientInterface, sentimentClient sentiment.ClientInterface, led *ledger.Ledger, logger *zap.Logger) *Collector {
	return &Collector{
		client:    client,
		sentiment: sentimentClient,
		ledger:    led,
		logger:    logger.Named("status"),
	}
}

const absent = "n/a"

// Snapshot returns the current display values in a fixed order.
func (c *Collector) Snapshot(ctx context.Context) []Field {
	fields := make([]Field, 0, 4)

	sentimentValue := absent
	if index, err := c.sentiment.FetchIndex(ctx); err == nil {
		sentimentValue = strconv.Itoa(index)
	} else {
		c.logger.Warn("Sentiment unavailable for snapshot", zap.Error(err))
	}
	fields = append(fields, Field{Label: "Fear & Greed", Value: sentimentValue})

	priceValue := absent
	if price, err := c.client.SpotPrice(ctx); err == nil {
		priceValue = price.StringFixed(2)
	} else {
		c.logger.Warn("Spot price unavailable for snapshot", zap.Error(err))
	}
	fields = append(fields, Field{Label: "Spot Price", Value: priceValue})

	basisValue := absent
	if basis, ok, err := c.ledger.AverageCostBasis(); err == nil && ok {
		basisValue = basis.StringFixed(2)
	} else if err != nil {
		c.logger.Warn("Average cost basis unavailable for snapshot", zap.Error(err))
	}
	fields = append(fields, Field{Label: "Avg Cost Basis", Value: basisValue})

	lastValue := absent
	if last, ok, err := c.ledger.MostRecentTransactionDate(); err == nil && ok {
		lastValue = last.Format("2006-01-02")
	} else if err != nil {
		c.logger.Warn("Last transaction date unavailable for snapshot", zap.Error(err))
	}
	fields = append(fields, Field{Label: "Last Purchase", Value: lastValue})

	return fields
}

// Publish renders a fresh snapshot on every sink. Sink failures are logged
// and do not stop the remaining sinks.
func (c *Collector) Publish(ctx context.Context, sinks ...Sink) {
	fields := c.Snapshot(ctx)
	for _, sink := range sinks {
		if err := sink.Render(fields); err != nil {
			c.logger.Error("Status sink failed", zap.Error(err))
		}
	}
}
