package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "zellij-autolock"

// Metrics holds all OTEL metric instruments for zellij-autolock.
// All counters are cumulative (monotonic) and safe for concurrent use.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Samples partitioned by outcome: indeterminate, none, command.
	Samples metric.Int64Counter
	// Mode switch requests partitioned by target mode.
	ModeSwitches metric.Int64Counter
	// Timer arms partitioned by reason: retry, watch, mode, focus, poke.
	TimerArms metric.Int64Counter
	// Results dropped because their tag did not match or the controller
	// was not active.
	IgnoredResults metric.Int64Counter
	// Host events dispatched, partitioned by kind.
	Events metric.Int64Counter
}

// NewMetrics creates all metric instruments on the global MeterProvider.
// Returns no-op instruments when none is registered (safe to call
// unconditionally).
func NewMetrics() (*Metrics, error) {
	return NewMetricsFrom(otel.GetMeterProvider())
}

// NewMetricsFrom creates all metric instruments on mp.
func NewMetricsFrom(mp metric.MeterProvider) (*Metrics, error) {
	meter := mp.Meter(meterName)
	m := &Metrics{}
	var err error

	m.Samples, err = meter.Int64Counter("autolock.samples",
		metric.WithDescription("Command samples of the focused pane partitioned by outcome"))
	if err != nil {
		return nil, err
	}

	m.ModeSwitches, err = meter.Int64Counter("autolock.mode_switches",
		metric.WithDescription("Input mode switch requests partitioned by target mode"))
	if err != nil {
		return nil, err
	}

	m.TimerArms, err = meter.Int64Counter("autolock.timer.arms",
		metric.WithDescription("Retry/debounce timer arms partitioned by reason"))
	if err != nil {
		return nil, err
	}

	m.IgnoredResults, err = meter.Int64Counter("autolock.results.ignored",
		metric.WithDescription("Listing results dropped (foreign tag or controller inactive)"))
	if err != nil {
		return nil, err
	}

	m.Events, err = meter.Int64Counter("autolock.events",
		metric.WithDescription("Host events dispatched to the controller partitioned by kind"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordSample records a classified sample.
func (m *Metrics) RecordSample(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.Samples.Add(ctx, 1, metric.WithAttributes(attribute.String("sample.outcome", outcome)))
}

// RecordModeSwitch records a mode switch request.
func (m *Metrics) RecordModeSwitch(ctx context.Context, target string) {
	if m == nil {
		return
	}
	m.ModeSwitches.Add(ctx, 1, metric.WithAttributes(attribute.String("mode.target", target)))
}

// RecordTimerArm records a timer arm that was not coalesced.
func (m *Metrics) RecordTimerArm(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.TimerArms.Add(ctx, 1, metric.WithAttributes(attribute.String("timer.reason", reason)))
}

// RecordIgnoredResult records a dropped listing result.
func (m *Metrics) RecordIgnoredResult(ctx context.Context) {
	if m == nil {
		return
	}
	m.IgnoredResults.Add(ctx, 1)
}

// RecordEvent records a dispatched host event.
func (m *Metrics) RecordEvent(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.Events.Add(ctx, 1, metric.WithAttributes(attribute.String("event.kind", kind)))
}
