package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"calinsights/internal/insights"
)

// DefaultPath is where the config file is looked up when no path is given.
const DefaultPath = "calinsights.yaml"

// Event sources.
const (
	SourceGoogle = "google"
	SourceCalDAV = "caldav"
)

// WorkingHoursConfig holds the working day bounds as "HH:MM" strings.
type WorkingHoursConfig struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// GoogleConfig selects the Google calendar to analyze.
type GoogleConfig struct {
	// CalendarID is the calendar to read, "primary" for the user's own.
	CalendarID string `yaml:"calendar_id"`
	// Account names the token file written by the auth command (token-<account>.json).
	Account      string `yaml:"account"`
	ClientID     string `yaml:"-"`
	ClientSecret string `yaml:"-"`
}

// CalDAVConfig selects the CalDAV calendar to analyze.
type CalDAVConfig struct {
	Endpoint     string `yaml:"endpoint"`
	CalendarName string `yaml:"calendar_name"`
	// Username also identifies the user among event attendees.
	Username string `yaml:"username"`
	Password string `yaml:"-"`
}

// Config is the top-level application configuration.
type Config struct {
	// Timezone is the IANA zone events are projected to (e.g. "America/Denver").
	Timezone     string             `yaml:"timezone"`
	WorkingHours WorkingHoursConfig `yaml:"working_hours"`
	// WeekStart is "monday" (default) or "sunday".
	WeekStart string       `yaml:"week_start"`
	Source    string       `yaml:"source"`
	Google    GoogleConfig `yaml:"google"`
	CalDAV    CalDAVConfig `yaml:"caldav"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Timezone:     "UTC",
		WorkingHours: WorkingHoursConfig{Start: "09:00", End: "18:00"},
		WeekStart:    "monday",
		Source:       SourceGoogle,
		Google:       GoogleConfig{CalendarID: "primary", Account: "default"},
		CalDAV:       CalDAVConfig{Endpoint: "https://caldav.icloud.com/"},
	}
}

// Normalize fills in missing values with defaults.
func (c *Config) Normalize() {
	def := Default()
	if c.Timezone == "" {
		c.Timezone = def.Timezone
	}
	if c.WorkingHours.Start == "" {
		c.WorkingHours.Start = def.WorkingHours.Start
	}
	if c.WorkingHours.End == "" {
		c.WorkingHours.End = def.WorkingHours.End
	}
	switch c.WeekStart {
	case "monday", "sunday":
	default:
		c.WeekStart = def.WeekStart
	}
	if c.Source == "" {
		c.Source = def.Source
	}
	if c.Google.CalendarID == "" {
		c.Google.CalendarID = def.Google.CalendarID
	}
	if c.Google.Account == "" {
		c.Google.Account = def.Google.Account
	}
	if c.CalDAV.Endpoint == "" {
		c.CalDAV.Endpoint = def.CalDAV.Endpoint
	}
}

// Load reads the YAML config at path. A missing file yields the defaults.
// Environment variables override file values; see ApplyEnv.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	default:
		cfg = &Config{}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.ApplyEnv(os.Getenv)
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides settings with any non-empty environment variables.
// Credentials are only ever read from the environment.
func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.Timezone, "PRIMARY_TIMEZONE")
	set(&c.Source, "CALINSIGHTS_SOURCE")
	set(&c.Google.CalendarID, "GOOGLE_CALENDAR_ID")
	set(&c.Google.ClientID, "GOOGLE_CLIENT_ID")
	set(&c.Google.ClientSecret, "GOOGLE_CLIENT_SECRET")
	set(&c.CalDAV.Username, "ICLOUD_USERNAME")
	set(&c.CalDAV.Password, "ICLOUD_APP_SPECIFIC_PASSWORD")
	set(&c.CalDAV.CalendarName, "ICLOUD_CALENDAR_NAME")
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.Hours(); err != nil {
		return err
	}
	switch c.Source {
	case SourceGoogle:
	case SourceCalDAV:
		if c.CalDAV.CalendarName == "" {
			return errors.New("caldav source needs a calendar name (caldav.calendar_name or ICLOUD_CALENDAR_NAME)")
		}
	default:
		return fmt.Errorf("unknown source %q, expected %q or %q", c.Source, SourceGoogle, SourceCalDAV)
	}
	return nil
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone '%s': %w", c.Timezone, err)
	}
	return loc, nil
}

// Hours parses the configured working hours.
func (c *Config) Hours() (insights.WorkingHours, error) {
	start, err := insights.ParseClock(c.WorkingHours.Start)
	if err != nil {
		return insights.WorkingHours{}, fmt.Errorf("working_hours.start: %w", err)
	}
	end, err := insights.ParseClock(c.WorkingHours.End)
	if err != nil {
		return insights.WorkingHours{}, fmt.Errorf("working_hours.end: %w", err)
	}
	if end.Before(start) {
		return insights.WorkingHours{}, fmt.Errorf("working hours end %s is before start %s", end, start)
	}
	return insights.WorkingHours{Start: start, End: end}, nil
}

// FirstWeekday returns the weekday a reporting week starts on.
func (c *Config) FirstWeekday() time.Weekday {
	if c.WeekStart == "sunday" {
		return time.Sunday
	}
	return time.Monday
}
