package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "lukthan"

// Metrics holds all lukthan metric instruments.
type Metrics struct {
	TurnsStarted   metric.Int64Counter
	TurnsCompleted metric.Int64Counter
	TurnsFailed    metric.Int64Counter
	TurnDuration   metric.Float64Histogram
	Uploads        metric.Int64Counter
	Transcriptions metric.Int64Counter
}

// NewMetrics creates all metric instruments on the global meter provider.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.TurnsStarted, err = meter.Int64Counter("lukthan.turns.started",
		metric.WithDescription("Number of chat turns sent"))
	if err != nil {
		return nil, err
	}

	m.TurnsCompleted, err = meter.Int64Counter("lukthan.turns.completed",
		metric.WithDescription("Number of chat turns resolved"))
	if err != nil {
		return nil, err
	}

	m.TurnsFailed, err = meter.Int64Counter("lukthan.turns.failed",
		metric.WithDescription("Number of chat turns rolled back"))
	if err != nil {
		return nil, err
	}

	m.TurnDuration, err = meter.Float64Histogram("lukthan.turn.duration_seconds",
		metric.WithDescription("Chat turn round-trip in seconds"))
	if err != nil {
		return nil, err
	}

	m.Uploads, err = meter.Int64Counter("lukthan.uploads",
		metric.WithDescription("Number of file uploads"))
	if err != nil {
		return nil, err
	}

	m.Transcriptions, err = meter.Int64Counter("lukthan.transcriptions",
		metric.WithDescription("Number of voice transcriptions"))
	if err != nil {
		return nil, err
	}

	return m, nil
}
