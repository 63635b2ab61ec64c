// Package report renders generated insights for people and other programs.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"calinsights/internal/insights"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatXLSX = "xlsx"
)

// section is one block of the text report.
type section struct {
	name  string
	title string
}

var sections = []section{
	{insights.DailyTimeInMeetingsName, "Time per day in all meetings:"},
	{insights.DailyTimeInOneOnOneName, "Time per day in 1-on-1 meetings:"},
	{insights.DailyTimeInGroupMeetingsName, "Time per day in group meetings:"},
	{insights.DailyTimeUnconfirmedName, "Time per day in unconfirmed meetings:"},
	{insights.DailyTimeWastedName, "Time per day lost to < 1 hour gaps between meetings:"},
	{insights.TotalTimePerPersonName, "Total time spent per people:"},
}

const (
	dailyLabelWidth  = 15
	personLabelWidth = 30
)

// Render writes r to w in the given format.
func Render(w io.Writer, format string, r insights.Report) error {
	switch format {
	case "", FormatText:
		return Text(w, r)
	case FormatJSON:
		return JSON(w, r)
	case FormatXLSX:
		return XLSX(w, r)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

// Text pretty-prints the known insights.
func Text(w io.Writer, r insights.Report) error {
	heading := color.New(color.Bold, color.FgCyan)
	for i, s := range sections {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := heading.Fprintln(w, s.title); err != nil {
			return err
		}

		res, ok := r.Get(s.name)
		if !ok {
			continue
		}
		var err error
		switch res := res.(type) {
		case insights.DailyTotals:
			err = dailyTotals(w, res)
		case insights.PersonTotals:
			err = personTotals(w, res)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func dailyTotals(w io.Writer, days insights.DailyTotals) error {
	for _, day := range days.Days() {
		label := pad(DateLabel(day)+":", dailyLabelWidth)
		if _, err := fmt.Fprintf(w, "%s %s\n", label, Duration(days[day])); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%s %s\n", pad("Total:", dailyLabelWidth), Duration(days.Total()))
	return err
}

func personTotals(w io.Writer, people insights.PersonTotals) error {
	for _, p := range people {
		if _, err := fmt.Fprintf(w, "%s %s\n", pad(p.Key+":", personLabelWidth), Duration(p.Duration)); err != nil {
			return err
		}
	}
	return nil
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// DateLabel renders a day as "Mon Mar 4".
func DateLabel(d insights.Date) string {
	return fmt.Sprintf("%s %s %d", d.Weekday().String()[:3], d.Month.String()[:3], d.Day)
}

// Duration renders d down to the minute, e.g. "1 day, 2 hours and 5 minutes".
// Seconds are dropped.
func Duration(d time.Duration) string {
	if d < 0 {
		return "-" + Duration(-d)
	}
	minutes := int64(d / time.Minute)
	units := []struct {
		name string
		size int64
	}{
		{"day", 24 * 60},
		{"hour", 60},
		{"minute", 1},
	}

	var parts []string
	for _, u := range units {
		n := minutes / u.size
		minutes %= u.size
		if n == 0 {
			continue
		}
		part := fmt.Sprintf("%d %s", n, u.name)
		if n != 1 {
			part += "s"
		}
		parts = append(parts, part)
	}

	switch len(parts) {
	case 0:
		return "0 minutes"
	case 1:
		return parts[0]
	default:
		return strings.Join(parts[:len(parts)-1], ", ") + " and " + parts[len(parts)-1]
	}
}

// jsonPerson is a per-person entry with the duration in minutes.
type jsonPerson struct {
	Key     string  `json:"key"`
	Minutes float64 `json:"minutes"`
}

// JSON writes every insight as a JSON object. Durations are in minutes;
// daily results are keyed by YYYY-MM-DD.
func JSON(w io.Writer, r insights.Report) error {
	out := make(map[string]any, len(r.Names()))
	for _, name := range r.Names() {
		res, _ := r.Get(name)
		switch res := res.(type) {
		case insights.DailyTotals:
			days := make(map[insights.Date]float64, len(res))
			for day, d := range res {
				days[day] = d.Minutes()
			}
			out[name] = days
		case insights.PersonTotals:
			people := make([]jsonPerson, 0, len(res))
			for _, p := range res {
				people = append(people, jsonPerson{Key: p.Key, Minutes: p.Duration.Minutes()})
			}
			out[name] = people
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
