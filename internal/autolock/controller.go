package autolock

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/timvw/zellij-autolock/internal/config"
	"github.com/timvw/zellij-autolock/internal/model"
	telem "github.com/timvw/zellij-autolock/internal/otel"
	"github.com/timvw/zellij-autolock/internal/parser"
)

// State is the controller lifecycle state.
type State int

const (
	StateUninitialized State = iota
	StatePermissionPending
	StateActive
	// StateDisabled is entered when permissions are denied. Focus and mode
	// are still tracked but nothing is sampled or switched, so the feature
	// fails open. A later grant re-activates.
	StateDisabled
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StatePermissionPending:
		return "permission_pending"
	case StateActive:
		return "active"
	case StateDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}

// Options carries the optional collaborators of a Controller.
type Options struct {
	Logger  *zap.Logger    // nil logs nothing
	Metrics *telem.Metrics // nil records nothing
}

// Controller reconciles the host input mode with the command running in
// the focused pane. It is not safe for concurrent use: the host delivers
// events one at a time.
type Controller struct {
	cfg     *config.Config
	host    Host
	log     *zap.Logger
	metrics *telem.Metrics

	state   State
	focus   *FocusTracker
	sampler *CommandSampler
	timer   *Timer

	mode            model.Mode
	floatingVisible bool
	// requested is the mode last asked of the host and not yet confirmed
	// by a mode update. Empty when nothing is outstanding.
	requested model.Mode
	watching  bool
	last      parser.Sample
}

// New returns a controller in the Uninitialized state.
func New(cfg *config.Config, host Host, opts Options) *Controller {
	if cfg == nil {
		cfg = config.Defaults()
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	c := &Controller{
		cfg:     cfg,
		host:    host,
		log:     log,
		metrics: opts.Metrics,
		focus:   NewFocusTracker(),
		sampler: NewCommandSampler(host),
		mode:    model.ModeNormal,
	}
	c.timer = NewTimer(host.SetTimeout, c.onTimer)
	return c
}

// Load requests permissions and subscribes to host events.
func (c *Controller) Load() {
	if c.state != StateUninitialized {
		return
	}
	c.state = StatePermissionPending
	c.host.RequestPermissions(Permissions...)
	c.host.Subscribe(Subscriptions...)
	c.log.Debug("loaded",
		zap.Strings("triggers", c.cfg.Triggers.Names()),
		zap.Strings("watch_triggers", c.cfg.WatchTriggers.Names()),
		zap.Duration("reaction_interval", c.cfg.ReactionInterval),
		zap.Duration("watch_interval", c.cfg.WatchInterval),
		zap.Bool("debounce_focus", c.cfg.DebounceFocus))
}

// State returns the lifecycle state.
func (c *Controller) State() State { return c.state }

// Mode returns the last mode reported by the host.
func (c *Controller) Mode() model.Mode { return c.mode }

// Location returns the tracked focus.
func (c *Controller) Location() FocusedLocation { return c.focus.Location() }

// LastSample returns the most recent classified sample.
func (c *Controller) LastSample() parser.Sample { return c.last }

// Watching reports whether a watch trigger keeps the re-sample loop running.
func (c *Controller) Watching() bool { return c.watching }

// TimerPending reports whether a retry/debounce timeout is outstanding.
func (c *Controller) TimerPending() bool { return c.timer.Pending() }

func (c *Controller) active() bool { return c.state == StateActive }

// Handle processes one host event to completion.
func (c *Controller) Handle(ctx context.Context, ev Event) {
	switch e := ev.(type) {
	case PermissionResult:
		c.onPermission(e)
	case ModeUpdate:
		c.onMode(ctx, e)
	case TabUpdate:
		c.onTabs(ctx, e)
	case PaneUpdate:
		c.onPanes(ctx, e)
	case ListingResult:
		sample, ok := c.sampler.OnListing(e)
		c.onSample(ctx, e.Tag, sample, ok)
	case ClientList:
		sample, ok := c.sampler.OnClients(e)
		c.onSample(ctx, e.Tag, sample, ok)
	case SwitchFailed:
		c.onSwitchFailed(ctx, e)
	case TimerFired:
		c.timer.Fire()
	case Poke:
		c.onPoke(ctx, e)
	case ConfigChanged:
		c.onConfig(e)
	default:
		c.log.Debug("ignoring unknown event", zap.String("kind", ev.Kind()))
	}
}

func (c *Controller) onPermission(e PermissionResult) {
	if !e.Granted {
		c.state = StateDisabled
		c.log.Warn("permissions denied, auto-lock disabled")
		return
	}
	wasActive := c.active()
	c.state = StateActive
	c.host.HideSelf()
	if !wasActive {
		c.log.Info("permissions granted, auto-lock active")
		c.requestSample("permission")
	}
}

func (c *Controller) onMode(ctx context.Context, e ModeUpdate) {
	if e.Mode == "" {
		return
	}
	prev := c.mode
	c.mode = e.Mode
	c.requested = ""
	if prev != e.Mode {
		c.log.Debug("mode changed", zap.Stringer("from", prev), zap.Stringer("to", e.Mode))
	}
	// A mode change elsewhere often coincides with a command starting or
	// exiting; take another look once things settle.
	c.arm(ctx, c.cfg.ReactionInterval, "mode")
}

func (c *Controller) onTabs(ctx context.Context, e TabUpdate) {
	tab, ok := model.FocusedTab(e.Tabs)
	if !ok {
		return
	}
	c.floatingVisible = tab.AreFloatingPanesVisible
	if c.focus.OnTabFocusChanged(tab.Position) {
		c.onFocusChanged(ctx)
	}
}

func (c *Controller) onPanes(ctx context.Context, e PaneUpdate) {
	loc := c.focus.Location()
	if loc.Tab == UnknownTab {
		return
	}
	pane, ok := e.Manifest.FocusedPane(loc.Tab, c.floatingVisible)
	if !ok {
		return
	}
	if c.focus.OnPaneFocusCandidate(loc.Tab, pane.ID, pane.TerminalCommand) {
		c.onFocusChanged(ctx)
	}
}

func (c *Controller) onFocusChanged(ctx context.Context) {
	c.requested = ""
	c.log.Debug("focus changed", zap.Stringer("location", c.focus.Location()))
	if c.cfg.DebounceFocus {
		c.arm(ctx, c.cfg.ReactionInterval, "focus")
		return
	}
	c.requestSample("focus")
}

func (c *Controller) onPoke(ctx context.Context, e Poke) {
	c.requested = ""
	c.log.Debug("poked", zap.String("source", e.Source))
	c.requestSample("poke")
	c.arm(ctx, c.cfg.ReactionInterval, "poke")
}

// onConfig swaps the configuration and re-evaluates against it. A timeout
// already armed keeps its old duration.
func (c *Controller) onConfig(e ConfigChanged) {
	if e.Config == nil {
		return
	}
	c.cfg = e.Config
	c.requested = ""
	c.log.Info("configuration reloaded",
		zap.Strings("triggers", c.cfg.Triggers.Names()),
		zap.Strings("watch_triggers", c.cfg.WatchTriggers.Names()))
	c.requestSample("config")
}

func (c *Controller) onTimer() {
	c.requestSample("timer")
}

func (c *Controller) onSample(ctx context.Context, tag Tag, sample parser.Sample, ok bool) {
	if !ok {
		c.log.Debug("ignoring result with foreign tag", zap.String("purpose", tag.Purpose))
		c.metrics.RecordIgnoredResult(ctx)
		return
	}
	// Requests folded into the one that just completed get their sample
	// now, after this result has been acted on.
	defer func() {
		if c.sampler.TakeAgain() {
			c.requestSample("coalesced")
		}
	}()
	if !c.active() {
		c.metrics.RecordIgnoredResult(ctx)
		return
	}
	if c.sampler.Superseded(tag) {
		c.log.Debug("result superseded by a newer request", zap.Uint64("seq", tag.Seq))
	}

	c.last = sample
	c.metrics.RecordSample(ctx, sample.Outcome.String())

	if sample.Outcome == parser.Indeterminate {
		c.log.Debug("listing returned nothing usable, retrying")
		c.watching = false
		c.arm(ctx, c.cfg.ReactionInterval, "retry")
		return
	}

	d := Decide(sample, c.cfg.Triggers, c.cfg.WatchTriggers, c.mode)
	c.log.Debug("detected command",
		zap.String("command", commandName(sample)),
		zap.Stringer("mode", c.mode),
		zap.Stringer("target", d.Target),
		zap.Bool("apply", d.Apply))

	if d.Apply {
		c.switchMode(ctx, d.Target)
	} else {
		c.requested = ""
	}

	c.watching = d.Watch
	if d.Watch {
		c.arm(ctx, c.cfg.WatchInterval, "watch")
	}
}

// switchMode asks the host for target unless the same request is still
// awaiting confirmation.
func (c *Controller) switchMode(ctx context.Context, target model.Mode) {
	if c.requested == target {
		return
	}
	c.requested = target
	c.log.Info("switching input mode", zap.Stringer("from", c.mode), zap.Stringer("to", target))
	c.metrics.RecordModeSwitch(ctx, target.String())
	c.host.SwitchMode(target)
}

// onSwitchFailed forgets the failed request so the next evaluation asks
// again, and schedules that evaluation.
func (c *Controller) onSwitchFailed(ctx context.Context, e SwitchFailed) {
	if c.requested != e.Mode {
		return
	}
	c.requested = ""
	c.log.Warn("mode switch failed, will retry", zap.Stringer("mode", e.Mode), zap.Error(e.Err))
	c.arm(ctx, c.cfg.ReactionInterval, "switch_failed")
}

func (c *Controller) requestSample(reason string) {
	if !c.active() {
		return
	}
	tag, ok := c.sampler.RequestSample()
	if !ok {
		c.log.Debug("sample already in flight, folding request", zap.String("reason", reason))
		return
	}
	c.log.Debug("sampling focused pane", zap.String("reason", reason), zap.Uint64("seq", tag.Seq))
}

func (c *Controller) arm(ctx context.Context, d time.Duration, reason string) {
	if !c.active() {
		return
	}
	if !c.timer.Schedule(d) {
		c.log.Debug("timer already pending", zap.String("reason", reason))
		return
	}
	c.metrics.RecordTimerArm(ctx, reason)
}

func commandName(s parser.Sample) string {
	if s.Command == nil {
		return ""
	}
	return s.Command.Normalized
}
