package insights

import (
	"sort"
	"time"

	"calinsights/internal/models"
)

// MostFrequentAttendees computes the total time spent with each person the
// user meets with. People are keyed by email; attendees without one are
// skipped.
type MostFrequentAttendees struct {
	name   string
	people map[string]time.Duration
	order  []string // keys in first-seen order, for stable ties
}

// NewMostFrequentAttendees creates an empty per-person accumulator.
func NewMostFrequentAttendees(name string) *MostFrequentAttendees {
	return &MostFrequentAttendees{
		name:   name,
		people: make(map[string]time.Duration),
	}
}

func (a *MostFrequentAttendees) Name() string { return a.name }

func (a *MostFrequentAttendees) Process(e *models.Event) {
	if !DefaultFilter(e) {
		return
	}
	a.onEvent(e)
}

func (a *MostFrequentAttendees) onEvent(e *models.Event) {
	iv, ok := TimeRange(e)
	if !ok {
		return
	}
	d := iv.Duration()

	for _, attendee := range e.People() {
		if attendee.Self || !attendee.Accepted() || attendee.Email == "" {
			continue
		}
		if _, seen := a.people[attendee.Email]; !seen {
			a.order = append(a.order, attendee.Email)
		}
		a.people[attendee.Email] += d
	}
}

func (a *MostFrequentAttendees) Generate() Result {
	out := make(PersonTotals, 0, len(a.order))
	for _, key := range a.order {
		out = append(out, PersonTotal{Key: key, Duration: a.people[key]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Duration > out[j].Duration })
	return out
}
