// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults, Load(ctx) to layer in
//   file and environment overrides.
// - External errors must be wrapped via this package's error helpers.
package config

// Connection describes one control connection to a production tool
// instance.
type Connection struct {
	// Name identifies the connection in logs, metrics, and sessions.
	Name string `koanf:"name"`

	// URL is the websocket endpoint, e.g. "ws://127.0.0.1:4455".
	URL string `koanf:"url"`

	// Password authenticates the control connection. Empty disables auth.
	Password string `koanf:"password"`

	// Role selects what this connection drives: recording or streaming.
	Role string `koanf:"role"`
}

// Replay groups the video-review clip settings.
type Replay struct {
	// AutoTrigger saves a clip on every challenge event.
	AutoTrigger bool `koanf:"auto_trigger"`

	// MaxWaitMS bounds the wait for a saved clip to appear on disk.
	MaxWaitMS int `koanf:"max_wait_ms"`

	// PollIntervalMS is the clip-path polling cadence.
	PollIntervalMS int `koanf:"poll_interval_ms"`

	// SeekBackSeconds positions playback this far before the clip end.
	SeekBackSeconds float64 `koanf:"seek_back_seconds"`
}

// Correlation groups the timestamp correlation settings.
type Correlation struct {
	// GapThresholdMinutes is the minimum silence between sessions that
	// counts as an interruption.
	GapThresholdMinutes int `koanf:"gap_threshold_minutes"`
}

// Hub groups the UI broadcast settings.
type Hub struct {
	// SubscriberBuffer is the per-subscriber event buffer capacity.
	SubscriberBuffer int `koanf:"subscriber_buffer"`
}

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// UDPAddr is the scoring-system datagram listen address.
	UDPAddr string `koanf:"udp_addr"`

	// MetricsAddr configures the HTTP listen address for metrics and
	// health, e.g. ":9090".
	MetricsAddr string `koanf:"metrics_addr"`

	// Connections lists the production tool endpoints to drive.
	Connections []Connection `koanf:"connections"`

	// RecordingRoot is the directory tournament-day folders live under.
	RecordingRoot string `koanf:"recording_root"`

	// FilenameTemplate names recorded files; see the orchestrator's
	// placeholder vocabulary.
	FilenameTemplate string `koanf:"filename_template"`

	// SettleDelayMS is the pause between pushing the filename template
	// and starting the recording.
	SettleDelayMS int `koanf:"settle_delay_ms"`

	// PostWinnerDelayMS keeps recording after the winner declaration.
	PostWinnerDelayMS int `koanf:"post_winner_delay_ms"`

	// PlayerCommand launches external replay playback. Empty disables it.
	PlayerCommand string `koanf:"player_command"`

	// DatabasePath locates the SQLite event store.
	DatabasePath string `koanf:"database_path"`

	Replay      Replay      `koanf:"replay"`
	Correlation Correlation `koanf:"correlation"`
	Hub         Hub         `koanf:"hub"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		UDPAddr:           ":6000",
		MetricsAddr:       ":9090",
		RecordingRoot:     "videos",
		SettleDelayMS:     500,
		PostWinnerDelayMS: 3000,
		DatabasePath:      "ringcast.db",
		Replay: Replay{
			AutoTrigger:     true,
			MaxWaitMS:       10_000,
			PollIntervalMS:  250,
			SeekBackSeconds: 20,
		},
		Correlation: Correlation{
			GapThresholdMinutes: 5,
		},
		Hub: Hub{
			SubscriberBuffer: 256,
		},
	}
}

// RecordingConnection returns the first connection with the recording
// role, falling back to the first connection when roles are unset.
func (c *Config) RecordingConnection() (Connection, bool) {
	for _, conn := range c.Connections {
		if conn.Role == "recording" {
			return conn, true
		}
	}
	if len(c.Connections) > 0 && c.Connections[0].Role == "" {
		return c.Connections[0], true
	}
	return Connection{}, false
}

// StreamingConnection returns the first connection with the streaming role.
func (c *Config) StreamingConnection() (Connection, bool) {
	for _, conn := range c.Connections {
		if conn.Role == "streaming" {
			return conn, true
		}
	}
	return Connection{}, false
}
