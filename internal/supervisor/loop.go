// Package supervisor runs the auto-lock controller as a standalone daemon.
// The Loop plays the plugin host: it serializes every event through one
// goroutine, runs listings and mode switches against a multiplexer backend,
// and turns timeouts, polls and socket messages into controller events.
package supervisor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/timvw/zellij-autolock/internal/autolock"
	"github.com/timvw/zellij-autolock/internal/config"
	"github.com/timvw/zellij-autolock/internal/events"
	"github.com/timvw/zellij-autolock/internal/model"
	"github.com/timvw/zellij-autolock/internal/mux"
	telem "github.com/timvw/zellij-autolock/internal/otel"
)

// Options carries the optional collaborators of a Loop.
type Options struct {
	Logger  *zap.Logger    // nil logs nothing
	Metrics *telem.Metrics // nil records nothing
	Tracer  trace.Tracer   // nil uses the global provider

	// SocketPath is where the events collector listens. Empty disables it.
	SocketPath string
	// PollInterval posts a poke this often. Zero disables polling.
	PollInterval time.Duration
	// ConfigFile is watched for changes when set together with Reload,
	// which re-reads it. Only controller settings take effect on reload.
	ConfigFile string
	Reload     func() (*config.Config, error)
}

// Loop owns a Controller and implements autolock.Host for it.
type Loop struct {
	mux     mux.Multiplexer
	ctrl    *autolock.Controller
	opts    Options
	log     *zap.Logger
	metrics *telem.Metrics
	tracer  trace.Tracer

	events chan autolock.Event
	done   chan struct{}

	// Owned by the loop goroutine.
	ctx     context.Context
	pending []autolock.Event
	timer   *time.Timer

	// Backend calls and timer callbacks still running.
	inflight sync.WaitGroup
}

var _ autolock.Host = (*Loop)(nil)

// New creates a loop driving m with the given configuration.
func New(cfg *config.Config, m mux.Multiplexer, opts Options) *Loop {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer("zellij-autolock/supervisor")
	}
	l := &Loop{
		mux:     m,
		opts:    opts,
		log:     log,
		metrics: opts.Metrics,
		tracer:  tracer,
		events:  make(chan autolock.Event),
		done:    make(chan struct{}),
		ctx:     context.Background(),
	}
	l.ctrl = autolock.New(cfg, l, autolock.Options{Logger: log, Metrics: opts.Metrics})
	return l
}

// Controller returns the controller the loop drives. Its state may only be
// read once Run has returned.
func (l *Loop) Controller() *autolock.Controller {
	return l.ctrl
}

// Post queues an event for the loop. It is safe to call from any goroutine
// and blocks until the loop takes the event; after shutdown it is dropped.
func (l *Loop) Post(ev autolock.Event) {
	select {
	case l.events <- ev:
	case <-l.done:
	}
}

// Run loads the controller and processes events until ctx is cancelled,
// alongside the poll ticker, the events collector and the config watcher
// when configured. It
// returns once every goroutine it started has exited.
func (l *Loop) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	l.ctx = ctx

	g.Go(func() error { return l.loop(ctx) })
	if l.opts.PollInterval > 0 {
		g.Go(func() error { return l.poll(ctx) })
	}
	if l.opts.SocketPath != "" {
		collector := events.NewCollector(l.Post, l.opts.SocketPath, l.log)
		g.Go(func() error {
			if err := collector.Run(ctx); err != nil {
				return fmt.Errorf("events collector: %w", err)
			}
			return nil
		})
	}
	if l.opts.ConfigFile != "" && l.opts.Reload != nil {
		g.Go(func() error { return l.watchConfig(ctx) })
	}

	err := g.Wait()
	l.stopTimer()
	l.inflight.Wait()
	return err
}

func (l *Loop) loop(ctx context.Context) error {
	defer close(l.done)

	l.log.Info("auto-lock started", zap.String("mux", l.mux.Name()))
	l.ctrl.Load()
	l.drain(ctx)

	for {
		select {
		case <-ctx.Done():
			l.log.Info("auto-lock stopped",
				zap.Stringer("state", l.ctrl.State()),
				zap.Stringer("mode", l.ctrl.Mode()))
			return nil
		case ev := <-l.events:
			l.dispatch(ctx, ev)
			l.drain(ctx)
		}
	}
}

// drain dispatches events the host methods queued while the controller
// was handling the previous one.
func (l *Loop) drain(ctx context.Context) {
	for len(l.pending) > 0 {
		ev := l.pending[0]
		l.pending = l.pending[1:]
		l.dispatch(ctx, ev)
	}
}

func (l *Loop) dispatch(ctx context.Context, ev autolock.Event) {
	ctx, span := l.tracer.Start(ctx, "autolock."+ev.Kind(),
		trace.WithAttributes(attribute.String("event.kind", ev.Kind())))
	defer span.End()

	l.metrics.RecordEvent(ctx, ev.Kind())
	l.ctrl.Handle(ctx, ev)

	span.SetAttributes(
		attribute.String("controller.state", l.ctrl.State().String()),
		attribute.String("controller.mode", l.ctrl.Mode().String()),
		attribute.Bool("controller.watching", l.ctrl.Watching()),
	)
}

func (l *Loop) poll(ctx context.Context) error {
	ticker := time.NewTicker(l.opts.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			l.Post(autolock.Poke{Source: "poll"})
		}
	}
}

// RequestPermissions grants everything: a standalone process already has
// whatever the multiplexer CLI lets it do.
func (l *Loop) RequestPermissions(perms ...model.Permission) {
	l.log.Debug("permissions requested", zap.Int("count", len(perms)))
	l.pending = append(l.pending, autolock.PermissionResult{Granted: true})
}

// Subscribe records the subscription. Which events arrive is decided by
// what reaches the events socket.
func (l *Loop) Subscribe(kinds ...model.EventKind) {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	l.log.Debug("subscribed", zap.Strings("events", names))
}

// HideSelf has nothing to hide outside a plugin pane.
func (l *Loop) HideSelf() {
	l.log.Debug("hide requested")
}

// RequestListing runs the backend listing in the background and posts the
// result with tag. A failed listing is reported as an empty one.
func (l *Loop) RequestListing(tag autolock.Tag) {
	ctx := l.ctx
	l.inflight.Add(1)
	go func() {
		defer l.inflight.Done()
		res := autolock.ListingResult{Tag: tag}
		out, err := l.mux.ListClients(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			l.log.Warn("client listing failed", zap.String("mux", l.mux.Name()), zap.Error(err))
			res.ExitCode = 1
			res.Stderr = err.Error()
		} else {
			res.Stdout = out
		}
		l.Post(res)
	}()
}

// SwitchMode asks the backend for mode and reports the change back as a
// mode update once it succeeded, or as SwitchFailed.
func (l *Loop) SwitchMode(mode model.Mode) {
	ctx := l.ctx
	l.inflight.Add(1)
	go func() {
		defer l.inflight.Done()
		if err := l.mux.SwitchMode(ctx, mode); err != nil {
			if ctx.Err() != nil {
				return
			}
			l.Post(autolock.SwitchFailed{Mode: mode, Err: err})
			return
		}
		l.Post(autolock.ModeUpdate{Mode: mode})
	}()
}

// SetTimeout delivers TimerFired after d. The controller never has more
// than one timeout outstanding.
func (l *Loop) SetTimeout(d time.Duration) {
	l.inflight.Add(1)
	l.timer = time.AfterFunc(d, func() {
		defer l.inflight.Done()
		l.Post(autolock.TimerFired{})
	})
}

func (l *Loop) stopTimer() {
	if l.timer != nil && l.timer.Stop() {
		l.inflight.Done()
	}
}
