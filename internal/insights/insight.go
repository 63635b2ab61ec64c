package insights

import (
	"log/slog"
	"sort"
	"time"

	"calinsights/internal/models"
)

// Insight folds a chronological stream of events into a single statistic.
//
// Process must be called with events in non-decreasing start order. Generate
// only reads the accumulated state and may be called any number of times.
type Insight interface {
	Name() string
	Process(e *models.Event)
	Generate() Result
}

// Filter selects the events an insight cares about.
type Filter func(e *models.Event) bool

// And combines filters; the result accepts an event only if all of them do.
func And(filters ...Filter) Filter {
	return func(e *models.Event) bool {
		for _, f := range filters {
			if !f(e) {
				return false
			}
		}
		return true
	}
}

// DefaultFilter restricts to accepted, confirmed, busy meetings with a
// defined start.
func DefaultFilter(e *models.Event) bool {
	return rejection(e) == ""
}

// rejection names the first default filter check the event fails, or "".
func rejection(e *models.Event) string {
	switch {
	case !IsMeeting(e):
		return "not meeting"
	case !IsAccepted(e):
		return "not accepted"
	case !IsConfirmed(e):
		return "not confirmed"
	case !IsBusy(e):
		return "not busy"
	}
	return ""
}

// Result is the output of a single insight: DailyTotals or PersonTotals.
type Result interface {
	isResult()
}

// DailyTotals maps a day to the time accumulated on it.
type DailyTotals map[Date]time.Duration

func (DailyTotals) isResult() {}

// Days returns the days in chronological order.
func (d DailyTotals) Days() []Date {
	days := make([]Date, 0, len(d))
	for day := range d {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

// Total sums all days.
func (d DailyTotals) Total() time.Duration {
	var total time.Duration
	for _, v := range d {
		total += v
	}
	return total
}

// PersonTotal is the time spent with a single attendee.
type PersonTotal struct {
	Key      string        `json:"key"`
	Duration time.Duration `json:"duration"`
}

// PersonTotals is sorted by duration, longest first.
type PersonTotals []PersonTotal

func (PersonTotals) isResult() {}

// Report holds the output of every insight, keyed by insight name.
type Report struct {
	names   []string
	results map[string]Result
}

// Names returns insight names in pipeline order.
func (r Report) Names() []string {
	return r.names
}

// Get returns the result for the named insight.
func (r Report) Get(name string) (Result, bool) {
	res, ok := r.results[name]
	return res, ok
}

// Daily returns the named result as daily totals, or nil.
func (r Report) Daily(name string) DailyTotals {
	d, _ := r.results[name].(DailyTotals)
	return d
}

// People returns the named result as per-person totals, or nil.
func (r Report) People(name string) PersonTotals {
	p, _ := r.results[name].(PersonTotals)
	return p
}

func discardLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}
