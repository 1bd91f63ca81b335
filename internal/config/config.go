// ABOUTME: Client configuration with XDG-compliant file loading
// ABOUTME: YAML file via viper, TERMCHAT_* environment overrides, .env support, defaults and validation

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/harper/termchat/internal/logger"
	"github.com/harper/termchat/internal/xdg"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	TransportWebSocket = "websocket"
	TransportTCP       = "tcp"

	envPrefix = "TERMCHAT"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server" yaml:"server"`
	UI          UIConfig          `mapstructure:"ui" yaml:"ui"`
	Keybindings KeybindingsConfig `mapstructure:"keybindings" yaml:"keybindings"`
	Logging     LoggingConfig     `mapstructure:"logging" yaml:"logging"`
}

type ServerConfig struct {
	Transport               string `mapstructure:"transport" yaml:"transport"` // "websocket" or "tcp"
	APIURL                  string `mapstructure:"api_url" yaml:"api_url"`
	WSURL                   string `mapstructure:"ws_url" yaml:"ws_url"`
	TCPAddr                 string `mapstructure:"tcp_addr" yaml:"tcp_addr"`
	HandshakeTimeoutSeconds int    `mapstructure:"handshake_timeout_seconds" yaml:"handshake_timeout_seconds"`
}

type UIConfig struct {
	ThemeFile     string `mapstructure:"theme_file" yaml:"theme_file"`
	TickMillis    int    `mapstructure:"tick_ms" yaml:"tick_ms"`
	InputMaxLines int    `mapstructure:"input_max_lines" yaml:"input_max_lines"`
}

type KeybindingsConfig struct {
	Send        []string `mapstructure:"send" yaml:"send"`
	SoftNewline []string `mapstructure:"soft_newline" yaml:"soft_newline"`
	ScrollUp    []string `mapstructure:"scroll_up" yaml:"scroll_up"`
	ScrollDown  []string `mapstructure:"scroll_down" yaml:"scroll_down"`
	Reconnect   []string `mapstructure:"reconnect" yaml:"reconnect"`
	Leave       []string `mapstructure:"leave" yaml:"leave"`
	Quit        []string `mapstructure:"quit" yaml:"quit"`
	Help        []string `mapstructure:"help" yaml:"help"`
}

type LoggingConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Level   string `mapstructure:"level" yaml:"level"`
	File    string `mapstructure:"file" yaml:"file"`
}

// HandshakeTimeout is the bounded wait for register/login and connect.
func (s ServerConfig) HandshakeTimeout() time.Duration {
	return time.Duration(s.HandshakeTimeoutSeconds) * time.Second
}

// TickInterval is the render loop period.
func (u UIConfig) TickInterval() time.Duration {
	return time.Duration(u.TickMillis) * time.Millisecond
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Transport:               TransportWebSocket,
			APIURL:                  "http://localhost:8000",
			WSURL:                   "ws://localhost:8000/ws",
			TCPAddr:                 "localhost:9000",
			HandshakeTimeoutSeconds: 10,
		},
		UI: UIConfig{
			ThemeFile:     "theme.json",
			TickMillis:    100,
			InputMaxLines: 6,
		},
		Keybindings: defaultKeybindings(),
		Logging: LoggingConfig{
			Enabled: true,
			Level:   "info",
			File:    "$XDG_DATA_HOME/termchat/termchat.log",
		},
	}
}

func defaultKeybindings() KeybindingsConfig {
	return KeybindingsConfig{
		Send:        []string{"enter"},
		SoftNewline: []string{"alt+enter", "ctrl+j"},
		ScrollUp:    []string{"ctrl+up"},
		ScrollDown:  []string{"ctrl+down"},
		Reconnect:   []string{"ctrl+r"},
		Leave:       []string{"esc"},
		Quit:        []string{"ctrl+c"},
		Help:        []string{"f1"},
	}
}

// DefaultPath is the config file location when none is given.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome(), "config.yaml")
}

// Load reads configuration from configPath (or the XDG default), creating the
// file from defaults when it does not exist yet.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("config: ignoring .env: %v", err)
	}

	if configPath == "" {
		configPath = DefaultPath()
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := saveDefault(DefaultConfig(), configPath); err != nil {
			logger.Warn("config: could not write default config to %s: %v", configPath, err)
		}
	} else {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate clamps numeric settings, restores empty keybindings and expands
// paths. Only an unknown transport is reported as an error.
func (c *Config) Validate() error {
	c.Server.Transport = strings.ToLower(strings.TrimSpace(c.Server.Transport))
	if c.Server.Transport == "" {
		c.Server.Transport = TransportWebSocket
	}
	if c.Server.Transport != TransportWebSocket && c.Server.Transport != TransportTCP {
		return fmt.Errorf("invalid server.transport: %s (must be '%s' or '%s')",
			c.Server.Transport, TransportWebSocket, TransportTCP)
	}

	c.Server.HandshakeTimeoutSeconds = clamp(c.Server.HandshakeTimeoutSeconds, 1, 120)
	c.UI.TickMillis = clamp(c.UI.TickMillis, 16, 1000)
	c.UI.InputMaxLines = clamp(c.UI.InputMaxLines, 1, 20)

	if c.UI.ThemeFile == "" {
		c.UI.ThemeFile = DefaultConfig().UI.ThemeFile
	}

	defaults := defaultKeybindings()
	restore := func(dst *[]string, def []string) {
		if len(*dst) == 0 {
			*dst = def
		}
	}
	restore(&c.Keybindings.Send, defaults.Send)
	restore(&c.Keybindings.SoftNewline, defaults.SoftNewline)
	restore(&c.Keybindings.ScrollUp, defaults.ScrollUp)
	restore(&c.Keybindings.ScrollDown, defaults.ScrollDown)
	restore(&c.Keybindings.Reconnect, defaults.Reconnect)
	restore(&c.Keybindings.Leave, defaults.Leave)
	restore(&c.Keybindings.Quit, defaults.Quit)
	restore(&c.Keybindings.Help, defaults.Help)

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		c.Logging.Level = "info"
	}

	c.UI.ThemeFile = xdg.ExpandPath(c.UI.ThemeFile)
	c.Logging.File = xdg.ExpandPath(c.Logging.File)
	return nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("server.transport", d.Server.Transport)
	v.SetDefault("server.api_url", d.Server.APIURL)
	v.SetDefault("server.ws_url", d.Server.WSURL)
	v.SetDefault("server.tcp_addr", d.Server.TCPAddr)
	v.SetDefault("server.handshake_timeout_seconds", d.Server.HandshakeTimeoutSeconds)

	v.SetDefault("ui.theme_file", d.UI.ThemeFile)
	v.SetDefault("ui.tick_ms", d.UI.TickMillis)
	v.SetDefault("ui.input_max_lines", d.UI.InputMaxLines)

	v.SetDefault("keybindings.send", d.Keybindings.Send)
	v.SetDefault("keybindings.soft_newline", d.Keybindings.SoftNewline)
	v.SetDefault("keybindings.scroll_up", d.Keybindings.ScrollUp)
	v.SetDefault("keybindings.scroll_down", d.Keybindings.ScrollDown)
	v.SetDefault("keybindings.reconnect", d.Keybindings.Reconnect)
	v.SetDefault("keybindings.leave", d.Keybindings.Leave)
	v.SetDefault("keybindings.quit", d.Keybindings.Quit)
	v.SetDefault("keybindings.help", d.Keybindings.Help)

	v.SetDefault("logging.enabled", d.Logging.Enabled)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.file", d.Logging.File)
}

func saveDefault(cfg *Config, path string) error {
	if err := xdg.EnsureParent("XDG_CONFIG_HOME", path); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
