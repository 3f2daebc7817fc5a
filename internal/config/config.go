// Package config loads zellij-autolock configuration.
//
// The plugin host hands over a flat string map. The standalone daemon builds
// the same map from, in order of precedence (highest first):
//  1. Environment variables (ZELLIJ_AUTOLOCK_*)
//  2. Config file
//  3. Built-in defaults
//
// Config file search order (unless a path is given explicitly):
//  1. .zellij-autolock.yaml, then .zellij-autolock.toml in current directory
//  2. ~/.config/zellij-autolock/config.yaml, then config.toml
//
// Files ending in .toml are decoded as TOML, everything else as YAML. Both
// are flat key/value maps using the keys below.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Recognized keys.
const (
	KeyTriggers        = "triggers"
	KeyWatchTriggers   = "watch_triggers"
	KeyReactionSeconds = "reaction_seconds"
	KeyWatchInterval   = "watch_interval"
	KeyPrintToLog      = "print_to_log"
	KeyDebounceFocus   = "debounce_focus"

	// Daemon only.
	KeyMux         = "mux"
	KeyEventSocket = "event_socket"
	KeyPollSeconds = "poll_seconds"

	// OTLP export; empty endpoint disables telemetry export.
	KeyOTELEndpoint = "otel_endpoint"
	KeyOTELHeaders  = "otel_headers"
)

var keys = []string{
	KeyTriggers, KeyWatchTriggers, KeyReactionSeconds, KeyWatchInterval,
	KeyPrintToLog, KeyDebounceFocus, KeyMux, KeyEventSocket, KeyPollSeconds,
	KeyOTELEndpoint, KeyOTELHeaders,
}

// Standard OTLP variables, honoured when the prefixed ones are unset.
var otelEnv = map[string]string{
	KeyOTELEndpoint: "OTEL_EXPORTER_OTLP_ENDPOINT",
	KeyOTELHeaders:  "OTEL_EXPORTER_OTLP_HEADERS",
}

// ErrInvalidInterval is returned for interval values that are not positive
// finite numbers of seconds.
var ErrInvalidInterval = errors.New("invalid interval")

// ErrNotScalar is returned for config file values that are lists or tables.
// Command sets are written as one pipe-separated string.
var ErrNotScalar = errors.New("value must be a string, number or boolean")

const (
	defaultTriggers        = "vim|nvim"
	defaultReactionSeconds = 0.3
	defaultWatchSeconds    = 1.0
)

// Config holds all zellij-autolock configuration.
type Config struct {
	// Triggers are command names that force Locked mode.
	Triggers CommandSet
	// WatchTriggers also force Locked mode, and keep re-sampling on
	// WatchInterval while they stay detected.
	WatchTriggers CommandSet

	// ReactionInterval is the debounce and retry delay.
	ReactionInterval time.Duration
	// WatchInterval is the re-sample period while a watch trigger runs.
	WatchInterval time.Duration

	// PrintToLog enables diagnostic (debug level) output.
	PrintToLog bool
	// DebounceFocus arms the debounce timer on focus changes instead of
	// sampling immediately.
	DebounceFocus bool

	// Daemon settings.
	Mux          string
	EventSocket  string
	PollInterval time.Duration // 0 disables polling

	// OTEL
	OTELEndpoint string
	OTELHeaders  string // Comma-separated key=value pairs, e.g. "Authorization=Basic abc123"

	// ConfigFile is the path to the config file that was loaded (empty if none).
	ConfigFile string
}

// Defaults returns a Config with all default values.
func Defaults() *Config {
	return &Config{
		Triggers:         ParseCommandSet(defaultTriggers),
		WatchTriggers:    CommandSet{},
		ReactionInterval: seconds(defaultReactionSeconds),
		WatchInterval:    seconds(defaultWatchSeconds),
	}
}

// Parse validates a plugin configuration map. Unknown keys are ignored.
// When only one of reaction_seconds and watch_interval is present it sets
// both intervals.
func Parse(m map[string]string) (*Config, error) {
	cfg := Defaults()

	if v, ok := m[KeyTriggers]; ok {
		cfg.Triggers = ParseCommandSet(v)
	}
	if v, ok := m[KeyWatchTriggers]; ok {
		cfg.WatchTriggers = ParseCommandSet(v)
	}

	reaction, hasReaction := m[KeyReactionSeconds]
	watch, hasWatch := m[KeyWatchInterval]
	if hasReaction {
		d, err := parseSeconds(reaction)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", KeyReactionSeconds, err)
		}
		cfg.ReactionInterval = d
		if !hasWatch {
			cfg.WatchInterval = d
		}
	}
	if hasWatch {
		d, err := parseSeconds(watch)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", KeyWatchInterval, err)
		}
		cfg.WatchInterval = d
		if !hasReaction {
			cfg.ReactionInterval = d
		}
	}

	cfg.PrintToLog = parseBool(m[KeyPrintToLog])
	cfg.DebounceFocus = parseBool(m[KeyDebounceFocus])

	cfg.Mux = strings.TrimSpace(m[KeyMux])
	cfg.EventSocket = strings.TrimSpace(m[KeyEventSocket])
	if v := strings.TrimSpace(m[KeyPollSeconds]); v != "" && v != "0" && v != "off" {
		d, err := parseSeconds(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", KeyPollSeconds, err)
		}
		cfg.PollInterval = d
	}

	cfg.OTELEndpoint = strings.TrimSpace(m[KeyOTELEndpoint])
	cfg.OTELHeaders = strings.TrimSpace(m[KeyOTELHeaders])

	return cfg, nil
}

// Load builds the configuration map from file and environment and parses
// it. An explicit path must exist; otherwise the search order above applies
// and a missing file is not an error.
func Load(path string) (*Config, error) {
	m := map[string]string{}

	file, data, err := findConfigFile(path)
	switch {
	case err == nil:
		fileMap, err := decodeFile(file, data)
		if err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", file, err)
		}
		// Scalars of any type ("watch_interval: 0.5", "print_to_log: true")
		// are kept in their string form, as the plugin host would pass them.
		for k, v := range fileMap {
			switch v.(type) {
			case nil:
				continue
			case []any, map[string]any, []map[string]any:
				return nil, fmt.Errorf("config file %s: %s: %w", file, k, ErrNotScalar)
			}
			m[k] = fmt.Sprint(v)
		}
	case path != "":
		return nil, err
	}

	mergeEnv(m)

	cfg, err := Parse(m)
	if err != nil {
		return nil, err
	}
	cfg.ConfigFile = file
	return cfg, nil
}

// findConfigFile returns the path and contents of the config file to use.
func findConfigFile(explicit string) (string, []byte, error) {
	if explicit != "" {
		data, err := os.ReadFile(explicit)
		if err != nil {
			return "", nil, fmt.Errorf("reading config file: %w", err)
		}
		return explicit, data, nil
	}

	candidates := []string{".zellij-autolock.yaml", ".zellij-autolock.toml"}
	if home, err := os.UserHomeDir(); err == nil {
		dir := filepath.Join(home, ".config", "zellij-autolock")
		candidates = append(candidates,
			filepath.Join(dir, "config.yaml"),
			filepath.Join(dir, "config.toml"))
	}
	for _, path := range candidates {
		if data, err := os.ReadFile(path); err == nil {
			return path, data, nil
		}
	}

	return "", nil, fmt.Errorf("no config file found")
}

// decodeFile decodes a flat config file by extension.
func decodeFile(path string, data []byte) (map[string]any, error) {
	var m map[string]any
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if err := toml.Unmarshal(data, &m); err != nil {
			return nil, err
		}
		return m, nil
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// mergeEnv applies ZELLIJ_AUTOLOCK_<KEY> variables onto m. Env always wins.
func mergeEnv(m map[string]string) {
	for _, k := range keys {
		if v, ok := os.LookupEnv(EnvVar(k)); ok && v != "" {
			m[k] = v
			continue
		}
		if name, ok := otelEnv[k]; ok {
			if v := os.Getenv(name); v != "" {
				m[k] = v
			}
		}
	}
}

// EnvVar returns the environment variable overriding key.
func EnvVar(key string) string {
	return "ZELLIJ_AUTOLOCK_" + strings.ToUpper(key)
}

func parseSeconds(s string) (time.Duration, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w %q: %v", ErrInvalidInterval, s, err)
	}
	if f <= 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w %q: must be a positive number of seconds", ErrInvalidInterval, s)
	}
	if f >= maxSeconds {
		return 0, fmt.Errorf("%w %q: too large", ErrInvalidInterval, s)
	}
	d := seconds(f)
	if d <= 0 {
		return 0, fmt.Errorf("%w %q: shorter than a nanosecond", ErrInvalidInterval, s)
	}
	return d, nil
}

// maxSeconds is the largest interval representable as a time.Duration.
const maxSeconds = float64(math.MaxInt64) / float64(time.Second)

func seconds(f float64) time.Duration {
	return time.Duration(f * float64(time.Second))
}

// parseBool accepts the usual truthy spellings; everything else is false.
func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on", "y", "t":
		return true
	}
	return false
}
