package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"monthcal/internal/monthgrid"
)

const (
	defaultListen       = "127.0.0.1:8080"
	defaultWeekStart    = "sunday"
	defaultRefreshCron  = "0 0 * * *"
	defaultLogLevel     = "info"
	defaultTimelineDays = 1
	defaultWidth        = 184
	defaultHeight       = 224
	defaultCaptureSec   = 30
	defaultOutputDir    = "/var/lib/monthcal"
)

// DisplayConfig is the drawing area of the complication in pixels.
type DisplayConfig struct {
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

// ThemeConfig holds CSS colors for the rendered tiles.
type ThemeConfig struct {
	Accent     string `yaml:"accent" json:"accent"`
	Neutral    string `yaml:"neutral" json:"neutral"`
	Background string `yaml:"background" json:"background"`
	Foreground string `yaml:"foreground" json:"foreground"`
}

// CaptureConfig controls the headless preview capture after each refresh.
type CaptureConfig struct {
	Enabled    bool   `yaml:"enabled" json:"enabled"`
	TimeoutSec int    `yaml:"timeout_sec" json:"timeout_sec"`
	OutputDir  string `yaml:"output_dir" json:"output_dir"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA zone the calendar is evaluated in. Empty means
	// the host's local zone.
	Timezone string `yaml:"timezone" json:"timezone"`

	// WeekStart names the weekday in the first grid column ("sunday",
	// "monday", "sat", ...).
	WeekStart string `yaml:"week_start" json:"week_start"`

	LogLevel string `yaml:"log_level" json:"log_level"`

	// RefreshCron is a cron schedule for recomputing the complication.
	// The default fires at local midnight.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// TimelineDays is how many daily entries one timeline carries.
	TimelineDays int `yaml:"timeline_days" json:"timeline_days"`

	// TitleRows is the number of cell-high rows reserved above the grid.
	TitleRows *int `yaml:"title_rows,omitempty" json:"title_rows,omitempty"`

	Display DisplayConfig `yaml:"display" json:"display"`
	Theme   ThemeConfig   `yaml:"theme" json:"theme"`
	Capture CaptureConfig `yaml:"capture" json:"capture"`

	// BasicAuth, if set, protects all endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	c := &Config{}
	c.Normalize()
	return c
}

// Normalize fills in missing/zero values so that partially-filled configs
// still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	if _, err := monthgrid.ParseWeekday(c.WeekStart); err != nil {
		c.WeekStart = defaultWeekStart
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	if c.RefreshCron == "" {
		c.RefreshCron = defaultRefreshCron
	}
	if c.TimelineDays <= 0 {
		c.TimelineDays = defaultTimelineDays
	}
	if c.TitleRows == nil || *c.TitleRows < 0 {
		n := monthgrid.DefaultTitleRows
		c.TitleRows = &n
	}
	if c.Display.Width <= 0 {
		c.Display.Width = defaultWidth
	}
	if c.Display.Height <= 0 {
		c.Display.Height = defaultHeight
	}
	if c.Theme.Accent == "" {
		c.Theme.Accent = "#e5484d"
	}
	if c.Theme.Neutral == "" {
		c.Theme.Neutral = "#2b2b2b"
	}
	if c.Theme.Background == "" {
		c.Theme.Background = "#000000"
	}
	if c.Theme.Foreground == "" {
		c.Theme.Foreground = "#ffffff"
	}
	if c.Capture.TimeoutSec <= 0 {
		c.Capture.TimeoutSec = defaultCaptureSec
	}
	if c.Capture.OutputDir == "" {
		c.Capture.OutputDir = defaultOutputDir
	}
}

// Location resolves Timezone, falling back to time.Local when empty.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Calendar builds the Gregorian calendar described by WeekStart and Timezone.
func (c *Config) Calendar() (monthgrid.Gregorian, error) {
	start, err := monthgrid.ParseWeekday(c.WeekStart)
	if err != nil {
		return monthgrid.Gregorian{}, fmt.Errorf("config: week_start: %w", err)
	}
	loc, err := c.Location()
	if err != nil {
		return monthgrid.Gregorian{}, err
	}
	return monthgrid.NewGregorian(start, loc), nil
}

// Titles returns the configured title row count.
func (c *Config) Titles() int {
	if c.TitleRows == nil {
		return monthgrid.DefaultTitleRows
	}
	return *c.TitleRows
}

// Validate reports settings that Normalize cannot repair.
func (c *Config) Validate() error {
	var problems []string
	if _, err := c.Location(); err != nil {
		problems = append(problems, err.Error())
	}
	if strings.TrimSpace(c.RefreshCron) == "" {
		problems = append(problems, "refresh schedule is empty")
	} else if _, err := cron.ParseStandard(c.RefreshCron); err != nil {
		problems = append(problems, fmt.Sprintf("refresh schedule %q: %v", c.RefreshCron, err))
	}
	if c.BasicAuth != nil && (c.BasicAuth.Username == "") != (c.BasicAuth.Password == "") {
		problems = append(problems, "basic_auth needs both username and password")
	}
	if len(problems) > 0 {
		return errors.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, a default config is written with 0600
//     permissions and returned.
//   - Otherwise the YAML is unmarshalled and normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes cfg to path atomically (temp file + rename) with 0600
// permissions, creating the parent directory (0700) if needed.
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

	tmp, err := os.CreateTemp(dir, ".monthcal-config-*.tmp")
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

// Save delegates to the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
