package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all bot configuration
type Config struct {
	Nick      string   `yaml:"nick"`
	Server    string   `yaml:"server"`
	Port      int      `yaml:"port"`
	Username  string   `yaml:"username"`
	IRCName   string   `yaml:"irc_name"`
	Channels  []string `yaml:"channels"`
	UserModes string   `yaml:"user_modes"`
	DataDir   string   `yaml:"data_dir"`

	// LogLevel is a zerolog level name: trace, debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// PrintLevel: 0 nothing, 1 unhandled, 2 also fall-through, 3 everything.
	PrintLevel  *int `yaml:"print_level"`
	TickSeconds int  `yaml:"tick_seconds"`

	Extensions Extensions `yaml:"extensions"`
}

// Extensions selects and tunes the bundled extensions.
type Extensions struct {
	Echo        bool   `yaml:"echo"`
	Hype        bool   `yaml:"hype"`
	CTCPVersion bool   `yaml:"ctcp_version"`
	Karma       Karma  `yaml:"karma"`
	Quotes      Quotes `yaml:"quotes"`
	Sundry      Sundry `yaml:"sundry"`
	Admin       Admin  `yaml:"admin"`
}

type Karma struct {
	Enabled     bool  `yaml:"enabled"`
	AllowMinus  *bool `yaml:"allow_minus"`
	PreventSpam *bool `yaml:"prevent_spam"`
	// Timeout is how long, in seconds, one sender may not repeat karma on one name.
	Timeout int `yaml:"karma_timeout"`
	// FlushPeriod is how often, in seconds, expired spam entries are dropped.
	FlushPeriod int `yaml:"flush_period"`
}

type Quotes struct {
	Record      bool  `yaml:"record"`
	RecordIsAre *bool `yaml:"record_is_are"`
	Retrieve    bool  `yaml:"retrieve"`
}

type Sundry struct {
	Enabled         bool `yaml:"enabled"`
	ShowServerInfo  bool `yaml:"show_server_info"`
	ShowServerStats bool `yaml:"show_server_stats"`
	ShowMOTD        bool `yaml:"show_motd"`
}

type Admin struct {
	// Password enables the admin extension when set.
	Password string `yaml:"password"`
}

// Load reads and parses a YAML configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}
	return &cfg, nil
}

func (cfg *Config) setDefaults() {
	if cfg.Port == 0 {
		cfg.Port = 6667
	}
	if cfg.Username == "" {
		cfg.Username = "x"
	}
	if cfg.IRCName == "" {
		cfg.IRCName = "x"
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "./data"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.PrintLevel == nil {
		level := 1
		cfg.PrintLevel = &level
	}
	if cfg.TickSeconds == 0 {
		cfg.TickSeconds = 5
	}

	k := &cfg.Extensions.Karma
	if k.AllowMinus == nil {
		k.AllowMinus = boolPtr(true)
	}
	if k.PreventSpam == nil {
		k.PreventSpam = boolPtr(true)
	}
	if k.Timeout == 0 {
		k.Timeout = 300
	}
	// should stay well below the timeout
	if k.FlushPeriod == 0 {
		k.FlushPeriod = 30
	}

	if cfg.Extensions.Quotes.RecordIsAre == nil {
		cfg.Extensions.Quotes.RecordIsAre = boolPtr(true)
	}
}

// Validate reports the first setting that cannot work.
func (cfg *Config) Validate() error {
	if cfg.Nick == "" {
		return errors.New("nick is required")
	}
	if cfg.Server == "" {
		return errors.New("server is required")
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("port %d out of range", cfg.Port)
	}
	if cfg.PrintLevel != nil && (*cfg.PrintLevel < 0 || *cfg.PrintLevel > 3) {
		return fmt.Errorf("print_level %d out of range 0-3", *cfg.PrintLevel)
	}
	if cfg.TickSeconds < 0 {
		return fmt.Errorf("tick_seconds %d is negative", cfg.TickSeconds)
	}
	return nil
}

func boolPtr(b bool) *bool {
	return &b
}
