package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"calinsights/internal/insights"
	"calinsights/internal/models"
)

// EventSource yields the events of one calendar in start time order.
type EventSource interface {
	ListEvents(ctx context.Context, from, to time.Time, loc *time.Location) ([]*models.Event, error)
}

// Window is the [From, To) span a report covers.
type Window struct {
	From time.Time
	To   time.Time
}

// WeekWindow returns the week containing now, starting at midnight on first.
func WeekWindow(now time.Time, loc *time.Location, first time.Weekday) Window {
	today := insights.DateOf(now.In(loc))
	offset := (int(today.Weekday()) - int(first) + 7) % 7
	return DaysWindow(today.AddDays(-offset), 7, loc)
}

// DaysWindow returns the n days starting at midnight on start.
func DaysWindow(start insights.Date, n int, loc *time.Location) Window {
	midnight := insights.Clock{}
	return Window{
		From: start.At(midnight, loc),
		To:   start.AddDays(n).At(midnight, loc),
	}
}

// Runner orchestrates a report: fetch events, feed the insights, generate.
type Runner struct {
	logger *slog.Logger
	source EventSource
	hours  insights.WorkingHours
	loc    *time.Location
}

// NewRunner creates a new Runner.
func NewRunner(logger *slog.Logger, source EventSource, hours insights.WorkingHours, loc *time.Location) *Runner {
	return &Runner{
		logger: logger,
		source: source,
		hours:  hours,
		loc:    loc,
	}
}

// Run computes the insights for the window. When ctx is cancelled while
// events are being processed, the insights of the events seen so far are
// returned along with the context error.
func (r *Runner) Run(ctx context.Context, w Window) (insights.Report, error) {
	r.logger.Info("Starting report.", "from", w.From, "to", w.To)

	events, err := r.source.ListEvents(ctx, w.From, w.To, r.loc)
	if err != nil {
		return insights.Report{}, fmt.Errorf("failed to fetch events: %w", err)
	}
	r.logger.Info("Fetched events.", "count", len(events))

	in := insights.New(r.hours, r.logger)
	var prev time.Time
	for i, e := range events {
		if err := ctx.Err(); err != nil {
			r.logger.Warn("Report interrupted, returning partial insights.", "processed", i, "error", err)
			return in.Generate(), err
		}
		if !e.Start.IsZero() {
			if e.Start.Before(prev) {
				r.logger.Warn("Event out of order, totals may be inaccurate.", "title", e.Title, "start", e.Start, "previous", prev)
			}
			prev = e.Start
		}
		in.Process(e)
	}

	r.logger.Info("Report finished.")
	return in.Generate(), nil
}
