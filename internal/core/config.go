package core

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/hclsimple"
)

// Defaults: sleep five seconds between ticks and
// advance the counter by five.
const (
	DefaultInterval       = 5 * time.Second
	DefaultStep           = 5
	DefaultLogColor       = "auto"
	DefaultKeepHeartbeats = 1000
)

// Config is the configuration used by the running command.
var Config = GetDefaultConfig()

// Configuration represents the complete sentinel configuration
type Configuration struct {
	ConfigFile string // File the configuration was loaded from ("" for defaults)
	Verbose    int    // Verbosity level from -v flags
	Heartbeat  HeartbeatConfig
	Log        LogConfig
	Journal    JournalConfig
}

// HeartbeatConfig controls the tick cycle
type HeartbeatConfig struct {
	Interval time.Duration // Sleep between ticks
	Step     int32         // Counter increment per tick
}

// LogConfig controls the diagnostic sink
type LogConfig struct {
	Level slog.Level
	Color string // "auto", "always" or "never"
}

// JournalConfig controls the optional SQLite journal
type JournalConfig struct {
	Path           string // Empty disables the journal
	KeepHeartbeats int    // Newest heartbeat rows retained
}

// Enabled reports whether a journal path was configured.
func (j JournalConfig) Enabled() bool {
	return j.Path != ""
}

// HCL parsing structs

type hclConfig struct {
	Heartbeat *hclHeartbeat `hcl:"heartbeat,block"`
	Log       *hclLog       `hcl:"log,block"`
	Journal   *hclJournal   `hcl:"journal,block"`
}

type hclHeartbeat struct {
	Interval string `hcl:"interval,optional"`
	Step     int    `hcl:"step,optional"`
}

type hclLog struct {
	Level string `hcl:"level,optional"`
	Color string `hcl:"color,optional"`
}

type hclJournal struct {
	Path           string `hcl:"path,optional"`
	KeepHeartbeats int    `hcl:"keep_heartbeats,optional"`
}

// LoadConfig loads the HCL configuration file and returns a Configuration struct.
// Missing blocks and attributes keep their defaults.
func LoadConfig(filename string) (*Configuration, error) {
	var hclCfg hclConfig

	if err := hclsimple.DecodeFile(filename, nil, &hclCfg); err != nil {
		return nil, fmt.Errorf("failed to parse HCL config: %w", err)
	}

	cfg := GetDefaultConfig()
	cfg.ConfigFile = filename

	if hb := hclCfg.Heartbeat; hb != nil {
		if hb.Interval != "" {
			interval, err := time.ParseDuration(hb.Interval)
			if err != nil {
				return nil, fmt.Errorf("invalid heartbeat interval %q: %w", hb.Interval, err)
			}
			if interval <= 0 {
				return nil, fmt.Errorf("heartbeat interval must be positive, got %s", interval)
			}
			cfg.Heartbeat.Interval = interval
		}
		if hb.Step != 0 {
			if hb.Step < 0 || hb.Step > math.MaxInt32 {
				return nil, fmt.Errorf("heartbeat step out of range: %d", hb.Step)
			}
			cfg.Heartbeat.Step = int32(hb.Step)
		}
	}

	if l := hclCfg.Log; l != nil {
		if l.Level != "" {
			level, err := ParseLevel(l.Level)
			if err != nil {
				return nil, err
			}
			cfg.Log.Level = level
		}
		if l.Color != "" {
			switch l.Color {
			case "auto", "always", "never":
				cfg.Log.Color = l.Color
			default:
				return nil, fmt.Errorf("invalid log color %q (want auto, always or never)", l.Color)
			}
		}
	}

	if j := hclCfg.Journal; j != nil {
		cfg.Journal.Path = j.Path
		if j.KeepHeartbeats < 0 {
			return nil, fmt.Errorf("journal keep_heartbeats must not be negative, got %d", j.KeepHeartbeats)
		}
		if j.KeepHeartbeats > 0 {
			cfg.Journal.KeepHeartbeats = j.KeepHeartbeats
		}
	}

	return cfg, nil
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	switch name {
	case "debug", "info", "warn", "error":
		if err := level.UnmarshalText([]byte(name)); err != nil {
			return 0, fmt.Errorf("invalid log level %q: %w", name, err)
		}
		return level, nil
	default:
		return 0, fmt.Errorf("invalid log level %q (want debug, info, warn or error)", name)
	}
}

// GetDefaultConfig returns a Configuration with default values
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Heartbeat: HeartbeatConfig{
			Interval: DefaultInterval,
			Step:     DefaultStep,
		},
		Log: LogConfig{
			Level: slog.LevelInfo,
			Color: DefaultLogColor,
		},
		Journal: JournalConfig{
			KeepHeartbeats: DefaultKeepHeartbeats,
		},
	}
}

// InitializeConfig sets Config from the given file, or to defaults when the
// path is empty. Each -v lowers the log level by one step.
func InitializeConfig(path string, verbose int) error {
	cfg := GetDefaultConfig()
	if path != "" {
		if !ConfigExists(path) {
			return fmt.Errorf("config file not found: %s", path)
		}
		loaded, err := LoadConfig(path)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	cfg.Verbose = verbose
	for i := 0; i < verbose && cfg.Log.Level > slog.LevelDebug; i++ {
		cfg.Log.Level -= 4
	}

	Config = cfg
	return nil
}

// ConfigExists checks if a config file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return err == nil
}
