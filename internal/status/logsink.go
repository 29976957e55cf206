package status

import "go.uber.org/zap"

// LogSink renders a snapshot into the structured log stream.
type LogSink struct {
	logger *zap.Logger
}

var _ Sink = (*LogSink)(nil)

// NewLogSink creates a LogSink.
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger.Named("display")}
}

// Render logs the snapshot as one entry with a field per value.
func (s *LogSink) Render(fields []Field) error {
	zapFields := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		zapFields = append(zapFields, zap.String(f.Label, f.Value))
	}
	s.logger.Info("Status snapshot", zapFields...)
	return nil
}
