package insights

import (
	"time"

	"calinsights/internal/models"
)

// shortBreak is the length from which a gap is free time rather than waste.
const shortBreak = time.Hour

// DailyTimeWasted computes the total time lost to short breaks between
// meetings for each day, including the gaps to the start and end of working
// hours.
//
// Gaps can only be measured once a day's meetings are all known, so events are
// buffered per day and the arithmetic happens in Generate.
type DailyTimeWasted struct {
	name  string
	hours WorkingHours
	days  map[Date][]*models.Event
}

// NewDailyTimeWasted creates the insight for the given working hours.
func NewDailyTimeWasted(name string, hours WorkingHours) *DailyTimeWasted {
	return &DailyTimeWasted{
		name:  name,
		hours: hours,
		days:  make(map[Date][]*models.Event),
	}
}

func (w *DailyTimeWasted) Name() string { return w.name }

func (w *DailyTimeWasted) Process(e *models.Event) {
	if !DefaultFilter(e) {
		return
	}
	w.onEvent(e)
}

func (w *DailyTimeWasted) onEvent(e *models.Event) {
	if !e.HasTime() {
		return
	}
	day := DateOf(e.Start)
	w.days[day] = append(w.days[day], e)
}

func (w *DailyTimeWasted) Generate() Result {
	out := make(DailyTotals, len(w.days))
	for day, events := range w.days {
		out[day] = w.wastedOn(day, events, events[0].Start.Location())
	}
	return out
}

// wastedOn sums the short gaps of one day. Events are walked in the order they
// were received.
func (w *DailyTimeWasted) wastedOn(day Date, events []*models.Event, loc *time.Location) time.Duration {
	var total time.Duration
	prevEnd := day.At(w.hours.Start, loc)
	for _, e := range events {
		total += wastedGap(prevEnd, e.Start)
		prevEnd = e.End
	}
	return total + wastedGap(prevEnd, day.At(w.hours.End, loc))
}

// wastedGap returns the gap between from and to when it is strictly positive
// and shorter than an hour, zero otherwise.
func wastedGap(from, to time.Time) time.Duration {
	gap := to.Sub(from)
	if gap > 0 && gap < shortBreak {
		return gap
	}
	return 0
}
