package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"dayflow/internal/model"
)

// ICSConfig describes a single ICS subscription source feeding calendar
// events into the timeline.
type ICSConfig struct {
	// URL is the ICS subscription endpoint.
	URL string `yaml:"url" json:"url"`
	// ID is an internal identifier used for de-dup and logging.
	ID string `yaml:"id" json:"id"`
	// Name is a human-friendly label.
	Name string `yaml:"name" json:"name"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA timezone used as the canonical display zone.
	Timezone string `yaml:"timezone" json:"timezone"`

	// DayStart / DayEnd bound the visible day window, as "HH:MM".
	DayStart string `yaml:"day_start" json:"day_start"`
	DayEnd   string `yaml:"day_end" json:"day_end"`

	// PixelsPerHour is the vertical scale of the timeline.
	PixelsPerHour float64 `yaml:"pixels_per_hour" json:"pixels_per_hour"`

	// Width is the rendered timeline width in pixels.
	Width int `yaml:"width" json:"width"`

	// RefreshCron is a cron-style schedule (e.g. "*/15 * * * *") driving
	// periodic ICS refresh and preview capture.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// PlanPath is the YAML file holding tasks and routines.
	PlanPath string `yaml:"plan_path" json:"plan_path"`

	// Participants is the ordered household member list. Lane order on the
	// timeline follows this order.
	Participants []model.Participant `yaml:"participants" json:"participants"`

	// ICS is the list of subscribed calendar sources.
	ICS []ICSConfig `yaml:"ics" json:"ics"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:        "127.0.0.1:8080",
		Timezone:      "UTC",
		DayStart:      "06:00",
		DayEnd:        "22:00",
		PixelsPerHour: 60,
		Width:         960,
		RefreshCron:   "*/15 * * * *",
		PlanPath:      "plan.yaml",
		Participants:  []model.Participant{},
		ICS:           []ICSConfig{},
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
	if _, err := ParseClock(c.DayStart); err != nil {
		c.DayStart = "06:00"
	}
	if _, err := ParseClock(c.DayEnd); err != nil {
		c.DayEnd = "22:00"
	}
	startMin, _ := ParseClock(c.DayStart)
	endMin, _ := ParseClock(c.DayEnd)
	if endMin <= startMin {
		c.DayStart = "06:00"
		c.DayEnd = "22:00"
	}
	if c.PixelsPerHour <= 0 {
		c.PixelsPerHour = 60
	}
	if c.Width <= 0 {
		c.Width = 960
	}
	if c.RefreshCron == "" {
		c.RefreshCron = "*/15 * * * *"
	}
	if c.PlanPath == "" {
		c.PlanPath = "plan.yaml"
	}
	if c.Participants == nil {
		c.Participants = []model.Participant{}
	}
	if c.ICS == nil {
		c.ICS = []ICSConfig{}
	}
}

// DayStartMinute returns the configured day-window start in minutes since
// midnight. Normalize must have been called.
func (c *Config) DayStartMinute() int {
	m, _ := ParseClock(c.DayStart)
	return m
}

// DayEndMinute returns the configured day-window end in minutes since
// midnight.
func (c *Config) DayEndMinute() int {
	m, _ := ParseClock(c.DayEnd)
	return m
}

// ParseClock parses an "HH:MM" string into minutes since midnight.
func ParseClock(s string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("config: invalid clock value %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("config: invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("config: invalid minute in %q", s)
	}
	if h < 0 || h > 24 || m < 0 || m > 59 {
		return 0, fmt.Errorf("config: clock value %q out of range", s)
	}
	return h*60 + m, nil
}

// Load loads configuration from the given YAML path.
//
// If the file does not exist, a default config is written (0600) and
// returned; otherwise the file is unmarshaled and normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path, atomically,
// with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".dayflow-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save delegates to the package-level Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
