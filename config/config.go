// Package config loads the engine settings from YAML.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"facestudio/geometry"
)

// DefaultFileName is looked up in the home directory when no path is given.
const DefaultFileName = ".facestudio.yaml"

// Canvas describes the watch display.
type Canvas struct {
	Width      float64 `yaml:"width"`
	Height     float64 `yaml:"height"`
	Background string  `yaml:"background"`
}

// History tunes the undo controller.
type History struct {
	MaxDepth    int           `yaml:"maxDepth"`
	SettleDelay time.Duration `yaml:"settleDelay"`
}

// Ticker tunes the shared time-update interval.
type Ticker struct {
	Interval time.Duration `yaml:"interval"`
}

// Assets tunes artwork fetching.
type Assets struct {
	BaseURL     string        `yaml:"baseUrl"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxRetries  uint          `yaml:"maxRetries"`
	Concurrency int           `yaml:"concurrency"`
}

// Battery holds the default level colours.
type Battery struct {
	LowColor    string `yaml:"lowColor"`
	MediumColor string `yaml:"mediumColor"`
	HighColor   string `yaml:"highColor"`
}

// MoveBar holds the default segment colours.
type MoveBar struct {
	ActiveColor   string `yaml:"activeColor"`
	InactiveColor string `yaml:"inactiveColor"`
}

// Text holds the default text style.
type Text struct {
	Color      string  `yaml:"color"`
	FontFamily string  `yaml:"fontFamily"`
	FontSize   float64 `yaml:"fontSize"`
}

// Clock selects the default time format.
type Clock struct {
	Hour24 bool `yaml:"hour24"`
}

// Config is the engine configuration.
type Config struct {
	Canvas        Canvas                          `yaml:"canvas"`
	History       History                         `yaml:"history"`
	Ticker        Ticker                          `yaml:"ticker"`
	Assets        Assets                          `yaml:"assets"`
	Battery       Battery                         `yaml:"battery"`
	MoveBar       MoveBar                         `yaml:"moveBar"`
	Text          Text                            `yaml:"text"`
	Clock         Clock                           `yaml:"clock"`
	Fonts         map[string]geometry.FontMetrics `yaml:"fonts"`
	SaveDirectory string                          `yaml:"saveDirectory"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Canvas:  Canvas{Width: 454, Height: 454, Background: "#000000"},
		History: History{MaxDepth: 50, SettleDelay: 30 * time.Millisecond},
		Ticker:  Ticker{Interval: 200 * time.Millisecond},
		Assets: Assets{
			Timeout:     10 * time.Second,
			MaxRetries:  3,
			Concurrency: 4,
		},
		Battery: Battery{LowColor: "#ff3b30", MediumColor: "#ffcc00", HighColor: "#34c759"},
		MoveBar: MoveBar{ActiveColor: "#34c759", InactiveColor: "#3a3a3c"},
		Text:    Text{Color: "#ffffff", FontFamily: "Go", FontSize: 24},
		Clock:   Clock{Hour24: true},
		Fonts:   map[string]geometry.FontMetrics{},
	}
}

// Load reads path over the defaults. An empty path means the default file in
// the home directory; a missing default file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(home, DefaultFileName)
	}
	path = ExpandHome(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.SaveDirectory = ExpandHome(cfg.SaveDirectory)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects settings the engine cannot run with.
func (c Config) Validate() error {
	var problems []string
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		problems = append(problems, "canvas size must be positive")
	}
	if c.History.MaxDepth < 1 {
		problems = append(problems, "history.maxDepth must be at least 1")
	}
	if c.History.SettleDelay < 0 {
		problems = append(problems, "history.settleDelay must not be negative")
	}
	if c.Ticker.Interval <= 0 {
		problems = append(problems, "ticker.interval must be positive")
	}
	if c.Assets.Concurrency < 1 {
		problems = append(problems, "assets.concurrency must be at least 1")
	}
	for family, m := range c.Fonts {
		if !m.Valid() {
			problems = append(problems, fmt.Sprintf("fonts.%s has invalid metrics", family))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// SavePath resolves filename inside the save directory, creating it when
// needed.
func (c Config) SavePath(filename string) (string, error) {
	if c.SaveDirectory == "" || filepath.IsAbs(filename) {
		return filename, nil
	}
	if err := os.MkdirAll(c.SaveDirectory, 0o755); err != nil {
		return "", fmt.Errorf("create save directory: %w", err)
	}
	return filepath.Join(c.SaveDirectory, filename), nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
