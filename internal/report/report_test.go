package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"

	"calinsights/internal/insights"
	"calinsights/internal/models"
)

func sampleReport() insights.Report {
	loc := time.FixedZone("MST", -7*60*60)
	in := insights.New(insights.WorkingHours{Start: insights.Clock{Hour: 9}, End: insights.Clock{Hour: 18}}, nil)
	in.Process(&models.Event{
		Status:    models.StatusConfirmed,
		Start:     time.Date(2024, 3, 4, 9, 0, 0, 0, loc),
		End:       time.Date(2024, 3, 4, 9, 20, 0, 0, loc),
		Organizer: models.Organizer{Email: "me@example.com", Self: true},
		Attendees: []models.Attendee{
			{Email: "me@example.com", Self: true, ResponseStatus: models.ResponseAccepted},
			{Email: "alice@example.com", ResponseStatus: models.ResponseAccepted},
		},
	})
	in.Process(&models.Event{
		Status: models.StatusConfirmed,
		Start:  time.Date(2024, 3, 4, 9, 50, 0, 0, loc),
		End:    time.Date(2024, 3, 4, 18, 0, 0, 0, loc),
	})
	return in.Generate()
}

func TestDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0 minutes"},
		{30 * time.Second, "0 minutes"},
		{time.Minute, "1 minute"},
		{90 * time.Minute, "1 hour and 30 minutes"},
		{2 * time.Hour, "2 hours"},
		{26*time.Hour + 5*time.Minute, "1 day, 2 hours and 5 minutes"},
		{-45 * time.Minute, "-45 minutes"},
	}
	for _, tt := range tests {
		if got := Duration(tt.in); got != tt.want {
			t.Errorf("Duration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDateLabel(t *testing.T) {
	d := insights.Date{Year: 2024, Month: time.March, Day: 4}
	if got := DateLabel(d); got != "Mon Mar 4" {
		t.Errorf("DateLabel() = %q, want %q", got, "Mon Mar 4")
	}
}

func TestText(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	if err := Render(&buf, FormatText, sampleReport()); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Time per day in all meetings:\nMon Mar 4:      8 hours and 30 minutes\nTotal:          8 hours and 30 minutes\n",
		"Time per day in unconfirmed meetings:\nTotal:          0 minutes\n",
		"Time per day lost to < 1 hour gaps between meetings:\nMon Mar 4:      30 minutes\n",
		"Total time spent per people:\nalice@example.com:             20 minutes\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text report missing %q\ngot:\n%s", want, out)
		}
	}
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, FormatJSON, sampleReport()); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	var got map[string]json.RawMessage
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	var meetings map[string]float64
	if err := json.Unmarshal(got[insights.DailyTimeInMeetingsName], &meetings); err != nil {
		t.Fatalf("meetings: %v", err)
	}
	if diff := cmp.Diff(map[string]float64{"2024-03-04": 510}, meetings); diff != "" {
		t.Errorf("meetings mismatch (-want +got):\n%s", diff)
	}
	var people []jsonPerson
	if err := json.Unmarshal(got[insights.TotalTimePerPersonName], &people); err != nil {
		t.Fatalf("people: %v", err)
	}
	if diff := cmp.Diff([]jsonPerson{{Key: "alice@example.com", Minutes: 20}}, people); diff != "" {
		t.Errorf("people mismatch (-want +got):\n%s", diff)
	}
}

func TestXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, FormatXLSX, sampleReport()); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	if got := len(f.GetSheetList()); got != 6 {
		t.Errorf("workbook has %d sheets, want 6", got)
	}
	rows, err := f.GetRows(insights.DailyTimeWastedName)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	want := [][]string{{"Date", "Minutes"}, {"2024-03-04", "30"}, {"Total", "30"}}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderUnknownFormat(t *testing.T) {
	if err := Render(&bytes.Buffer{}, "pdf", sampleReport()); err == nil {
		t.Errorf("Render() expected error for unknown format")
	}
}
