package supervisor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/timvw/zellij-autolock/internal/autolock"
	"github.com/timvw/zellij-autolock/internal/config"
	"github.com/timvw/zellij-autolock/internal/events"
	"github.com/timvw/zellij-autolock/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeMux reports a configurable running command and records mode switches.
type fakeMux struct {
	mu       sync.Mutex
	command  string
	listErr  error
	switches []model.Mode
	listings int
	// failSwitches makes this many mode switches fail before they succeed.
	failSwitches int
}

func (f *fakeMux) Name() string { return "fake" }

func (f *fakeMux) ListClients(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listings++
	if f.listErr != nil {
		return "", f.listErr
	}
	return "CLIENT_ID ZELLIJ_PANE_ID RUNNING_COMMAND\n1 terminal_1 " + f.command + "\n", nil
}

func (f *fakeMux) SwitchMode(_ context.Context, mode model.Mode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.switches = append(f.switches, mode)
	if f.failSwitches > 0 {
		f.failSwitches--
		return errors.New("zellij: switch-mode failed")
	}
	return nil
}

func (f *fakeMux) setCommand(cmd string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.command = cmd
}

func (f *fakeMux) setListErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listErr = err
}

func (f *fakeMux) switched() []model.Mode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Mode(nil), f.switches...)
}

func (f *fakeMux) listCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listings
}

func testConfig() *config.Config {
	cfg := config.Defaults()
	cfg.ReactionInterval = 10 * time.Millisecond
	cfg.WatchInterval = 10 * time.Millisecond
	return cfg
}

// start runs the loop in the background and returns a stop function that
// cancels it and returns Run's error.
func start(t *testing.T, l *Loop) func() error {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- l.Run(ctx) }()
	return func() error {
		cancel()
		select {
		case err := <-errCh:
			return err
		case <-time.After(2 * time.Second):
			t.Fatal("Run did not return after cancel")
			return nil
		}
	}
}

func TestLoop_LocksAndUnlocks(t *testing.T) {
	fm := &fakeMux{command: "N/A"}
	l := New(testConfig(), fm, Options{Logger: zaptest.NewLogger(t)})
	stop := start(t, l)

	// Initial sample after the grant sees no command: nothing to do.
	require.Eventually(t, func() bool { return fm.listCount() >= 1 }, time.Second, 5*time.Millisecond)
	assert.Empty(t, fm.switched())

	fm.setCommand("nvim main.go")
	l.Post(autolock.Poke{Source: "test"})
	require.Eventually(t, func() bool {
		return len(fm.switched()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []model.Mode{model.ModeLocked}, fm.switched())

	fm.setCommand("N/A")
	l.Post(autolock.Poke{Source: "test"})
	require.Eventually(t, func() bool {
		return len(fm.switched()) == 2
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []model.Mode{model.ModeLocked, model.ModeNormal}, fm.switched())

	require.NoError(t, stop())
	assert.Equal(t, autolock.StateActive, l.Controller().State())
}

func TestLoop_FailedSwitchRetries(t *testing.T) {
	fm := &fakeMux{command: "vim", failSwitches: 1}
	l := New(testConfig(), fm, Options{Logger: zaptest.NewLogger(t)})
	stop := start(t, l)

	require.Eventually(t, func() bool {
		return len(fm.switched()) >= 2
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []model.Mode{model.ModeLocked, model.ModeLocked}, fm.switched()[:2])

	require.NoError(t, stop())
}

func TestLoop_FailedListingRetries(t *testing.T) {
	fm := &fakeMux{command: "vim"}
	fm.setListErr(errors.New("zellij: not in a session"))
	l := New(testConfig(), fm, Options{Logger: zaptest.NewLogger(t)})
	stop := start(t, l)

	// Each failure is indeterminate and re-armed on the reaction interval.
	require.Eventually(t, func() bool { return fm.listCount() >= 3 }, time.Second, 5*time.Millisecond)
	assert.Empty(t, fm.switched())

	fm.setListErr(nil)
	require.Eventually(t, func() bool {
		return len(fm.switched()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []model.Mode{model.ModeLocked}, fm.switched())

	require.NoError(t, stop())
}

func TestLoop_PollPokes(t *testing.T) {
	fm := &fakeMux{command: "N/A"}
	l := New(testConfig(), fm, Options{Logger: zaptest.NewLogger(t), PollInterval: 10 * time.Millisecond})
	stop := start(t, l)

	fm.setCommand("vim")
	require.Eventually(t, func() bool {
		return len(fm.switched()) >= 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, model.ModeLocked, fm.switched()[0])

	require.NoError(t, stop())
}

func TestLoop_CollectorDeliversMessages(t *testing.T) {
	fm := &fakeMux{command: "N/A"}
	socket := shortSocketPath(t)
	l := New(testConfig(), fm, Options{Logger: zaptest.NewLogger(t), SocketPath: socket})
	stop := start(t, l)

	require.Eventually(t, func() bool {
		_, err := os.Stat(socket)
		return err == nil
	}, time.Second, 5*time.Millisecond)

	fm.setCommand("vim")
	require.NoError(t, events.Send(socket, events.Poke("test")))
	require.Eventually(t, func() bool {
		return len(fm.switched()) >= 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, model.ModeLocked, fm.switched()[0])

	require.NoError(t, stop())
}

func TestLoop_ReloadsConfigOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("triggers: vim\n"), 0o600))

	fm := &fakeMux{command: "hx main.go"}
	l := New(testConfig(), fm, Options{
		Logger:     zaptest.NewLogger(t),
		ConfigFile: path,
		Reload:     func() (*config.Config, error) { return config.Load(path) },
	})
	stop := start(t, l)

	require.Eventually(t, func() bool { return fm.listCount() >= 1 }, time.Second, 5*time.Millisecond)
	assert.Empty(t, fm.switched())

	// Rewritten on every check until the watcher has picked it up; the
	// check interval leaves room for the settle delay.
	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("triggers: hx\n"), 0o600)
		return len(fm.switched()) >= 1
	}, 5*time.Second, 3*reloadSettle)
	assert.Equal(t, model.ModeLocked, fm.switched()[0])

	require.NoError(t, stop())
}

func TestLoop_CollectorBindFailureStopsRun(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	fm := &fakeMux{command: "N/A"}
	// The socket directory cannot be created below a regular file.
	l := New(testConfig(), fm, Options{SocketPath: filepath.Join(blocker, "events.sock")})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := l.Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "events collector")
}

func TestLoop_PostAfterShutdownDoesNotBlock(t *testing.T) {
	fm := &fakeMux{command: "N/A"}
	l := New(testConfig(), fm, Options{})
	stop := start(t, l)
	require.Eventually(t, func() bool { return fm.listCount() >= 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, stop())

	done := make(chan struct{})
	go func() {
		l.Post(autolock.Poke{})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Post blocked after shutdown")
	}
}

func shortSocketPath(t *testing.T) string {
	t.Helper()
	base := filepath.Join(os.TempDir(), "za-loop")
	require.NoError(t, os.MkdirAll(base, 0o700))
	p := filepath.Join(base, fmt.Sprintf("%d-%d.sock", time.Now().UnixNano(), os.Getpid()))
	t.Cleanup(func() { _ = os.Remove(p) })
	return p
}
