package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"calinsights/internal/google"
	"calinsights/internal/insights"
	"calinsights/internal/models"
	"calinsights/internal/report"
)

func partialReport() insights.Report {
	loc := time.FixedZone("MST", -7*60*60)
	start := time.Date(2024, 3, 4, 10, 0, 0, 0, loc)
	in := insights.New(insights.WorkingHours{Start: insights.Clock{Hour: 9}, End: insights.Clock{Hour: 18}}, nil)
	in.Process(&models.Event{
		Status:    models.StatusConfirmed,
		Start:     start,
		End:       start.Add(time.Hour),
		Attendees: []models.Attendee{{Email: "me@example.com", Self: true, ResponseStatus: models.ResponseAccepted}},
	})
	return in.Generate()
}

func TestWriteReport(t *testing.T) {
	tests := []struct {
		name       string
		data       insights.Report
		runErr     error
		wantOutput bool
		wantErr    error
	}{
		{"complete run", partialReport(), nil, true, nil},
		{"interrupted run renders partial insights", partialReport(), context.Canceled, true, context.Canceled},
		{"interrupted fetch has nothing to render", insights.Report{}, fmt.Errorf("failed to fetch events: %w", context.Canceled), false, context.Canceled},
		{"source failure", insights.Report{}, errors.New("boom"), false, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := writeReport(&buf, report.FormatJSON, tt.data, tt.runErr)

			if (tt.runErr == nil) != (err == nil) {
				t.Fatalf("writeReport() error = %v, run error %v", err, tt.runErr)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("writeReport() error = %v, want %v", err, tt.wantErr)
			}
			if got := buf.Len() > 0; got != tt.wantOutput {
				t.Fatalf("wrote output = %v, want %v", got, tt.wantOutput)
			}
			if !tt.wantOutput {
				return
			}
			var got map[string]json.RawMessage
			if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			var meetings map[string]float64
			if err := json.Unmarshal(got[insights.DailyTimeInMeetingsName], &meetings); err != nil {
				t.Fatalf("meetings: %v", err)
			}
			if diff := cmp.Diff(map[string]float64{"2024-03-04": 60}, meetings); diff != "" {
				t.Errorf("meetings mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolveAccount(t *testing.T) {
	writeToken := func(t *testing.T, dir, account string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, google.TokenFile(account)), []byte("{}"), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	t.Run("configured account", func(t *testing.T) {
		dir := t.TempDir()
		writeToken(t, dir, "work")
		writeToken(t, dir, "personal")
		if got, err := resolveAccount(dir, "work"); err != nil || got != "work" {
			t.Errorf("resolveAccount() = %q, %v; want work", got, err)
		}
	})

	t.Run("single other account", func(t *testing.T) {
		dir := t.TempDir()
		writeToken(t, dir, "personal")
		if got, err := resolveAccount(dir, "default"); err != nil || got != "personal" {
			t.Errorf("resolveAccount() = %q, %v; want personal", got, err)
		}
	})

	t.Run("ambiguous accounts", func(t *testing.T) {
		dir := t.TempDir()
		writeToken(t, dir, "work")
		writeToken(t, dir, "personal")
		if _, err := resolveAccount(dir, "default"); err == nil || !strings.Contains(err.Error(), "auth") {
			t.Errorf("resolveAccount() error = %v, want hint to run auth", err)
		}
	})

	t.Run("unreadable directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "missing")
		_, err := resolveAccount(dir, "default")
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("resolveAccount() error = %v, want wrapped not-exist error", err)
		}
	})
}
