package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"calinsights/internal/insights"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "calinsights.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PRIMARY_TIMEZONE", "CALINSIGHTS_SOURCE", "GOOGLE_CALENDAR_ID", "GOOGLE_CLIENT_ID",
		"GOOGLE_CLIENT_SECRET", "ICLOUD_USERNAME", "ICLOUD_APP_SPECIFIC_PASSWORD", "ICLOUD_CALENDAR_NAME",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
timezone: America/Denver
working_hours:
  start: "08:30"
week_start: sunday
source: caldav
caldav:
  calendar_name: Work
  username: me@example.com
`)
	t.Setenv("ICLOUD_APP_SPECIFIC_PASSWORD", "secret")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	hours, err := cfg.Hours()
	if err != nil {
		t.Fatalf("Hours() error = %v", err)
	}
	want := insights.WorkingHours{Start: insights.Clock{Hour: 8, Minute: 30}, End: insights.Clock{Hour: 18}}
	if hours != want {
		t.Errorf("Hours() = %+v, want %+v", hours, want)
	}
	if cfg.FirstWeekday() != time.Sunday {
		t.Errorf("FirstWeekday() = %v, want Sunday", cfg.FirstWeekday())
	}
	if cfg.CalDAV.Password != "secret" {
		t.Errorf("password not read from environment")
	}
	if cfg.CalDAV.Endpoint != "https://caldav.icloud.com/" {
		t.Errorf("endpoint = %q, want default", cfg.CalDAV.Endpoint)
	}
	loc, err := cfg.Location()
	if err != nil || loc.String() != "America/Denver" {
		t.Errorf("Location() = %v, %v", loc, err)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad yaml", "timezone: [unterminated"},
		{"bad timezone", "timezone: Mars/Olympus"},
		{"bad hours", "working_hours: {start: '9am'}"},
		{"end before start", "working_hours: {start: '18:00', end: '09:00'}"},
		{"unknown source", "source: outlook"},
		{"caldav without calendar", "source: caldav"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			if _, err := Load(writeConfig(t, tt.body)); err == nil {
				t.Errorf("Load() expected error")
			}
		})
	}
}
