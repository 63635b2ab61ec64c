// Package insights turns a chronological stream of calendar events into
// per-day and per-person time statistics.
package insights

import (
	"log/slog"

	"calinsights/internal/models"
)

// Names of the insights computed by the pipeline.
const (
	DailyTimeInMeetingsName      = "dailyTimeInMeetings"
	DailyTimeInGroupMeetingsName = "dailyTimeInGroupMeetings"
	DailyTimeInOneOnOneName      = "dailyTimeInOneOnOne"
	DailyTimeUnconfirmedName     = "dailyTimeUnconfirmed"
	DailyTimeWastedName          = "dailyTimeWasted"
	TotalTimePerPersonName       = "totalTimePerPerson"
)

// Insights calculates a set of insights from a user's calendar.
type Insights struct {
	logger   *slog.Logger
	insights []Insight
}

// New creates the pipeline with every insight. logger may be nil.
func New(hours WorkingHours, logger *slog.Logger) *Insights {
	return &Insights{
		logger: discardLogger(logger),
		insights: []Insight{
			NewDailyTimeInMeetings(DailyTimeInMeetingsName),
			NewDailyTimeInGroupMeetings(DailyTimeInGroupMeetingsName),
			NewDailyTimeInOneOnOne(DailyTimeInOneOnOneName),
			NewDailyTimeInUnconfirmedMeetings(DailyTimeUnconfirmedName),
			NewDailyTimeWasted(DailyTimeWastedName, hours),
			NewMostFrequentAttendees(TotalTimePerPersonName),
		},
	}
}

// Process feeds an event to every insight.
// Events are expected to be processed in chronological order.
func (in *Insights) Process(e *models.Event) {
	if reason := rejection(e); reason != "" {
		in.logger.Debug("Event skipped by default filter", "title", e.Title, "id", e.ID, "reason", reason, "recurring", IsRecurring(e))
	}
	for _, insight := range in.insights {
		insight.Process(e)
	}
}

// Generate collects the current output of every insight.
func (in *Insights) Generate() Report {
	r := Report{
		names:   make([]string, 0, len(in.insights)),
		results: make(map[string]Result, len(in.insights)),
	}
	for _, insight := range in.insights {
		r.names = append(r.names, insight.Name())
		r.results[insight.Name()] = insight.Generate()
	}
	return r
}
