package insights

import (
	"maps"

	"calinsights/internal/models"
)

// DailyTimeInMeetings computes the total time spent in meetings for each day.
//
// Overlapping meetings are counted once: each new interval is merged with the
// previous one when they overlap and only the extra time is added. Only the
// single most recent interval is looked at, so events must arrive sorted by
// start time; an out of order stream gives a best-effort total.
type DailyTimeInMeetings struct {
	name   string
	filter Filter
	days   DailyTotals
	prev   *TimeInterval
}

func newDailyTime(name string, filter Filter) *DailyTimeInMeetings {
	return &DailyTimeInMeetings{
		name:   name,
		filter: filter,
		days:   make(DailyTotals),
	}
}

// NewDailyTimeInMeetings counts all accepted, confirmed, busy meetings.
func NewDailyTimeInMeetings(name string) *DailyTimeInMeetings {
	return newDailyTime(name, DefaultFilter)
}

// NewDailyTimeInOneOnOne counts 1-on-1 meetings only.
func NewDailyTimeInOneOnOne(name string) *DailyTimeInMeetings {
	return newDailyTime(name, And(IsOneOnOne, DefaultFilter))
}

// NewDailyTimeInGroupMeetings counts meetings with 3+ people only.
func NewDailyTimeInGroupMeetings(name string) *DailyTimeInMeetings {
	return newDailyTime(name, And(IsGroupMeeting, DefaultFilter))
}

// NewDailyTimeInUnconfirmedMeetings counts meetings that are still pending.
// Pending meetings are not confirmed by definition, so the default filter
// does not apply.
func NewDailyTimeInUnconfirmedMeetings(name string) *DailyTimeInMeetings {
	return newDailyTime(name, And(IsMeeting, IsPending))
}

func (m *DailyTimeInMeetings) Name() string { return m.name }

func (m *DailyTimeInMeetings) Process(e *models.Event) {
	if !m.filter(e) {
		return
	}
	m.onEvent(e)
}

func (m *DailyTimeInMeetings) onEvent(e *models.Event) {
	iv, ok := TimeRange(e)
	if !ok {
		return
	}

	if m.prev == nil || !iv.Overlaps(*m.prev) {
		m.prev = &iv
		m.days[iv.Date()] += iv.Duration()
		return
	}

	merged := m.prev.Merge(iv)
	m.days[merged.Date()] += merged.Duration() - m.prev.Duration()
	m.prev = &merged
}

func (m *DailyTimeInMeetings) Generate() Result {
	return maps.Clone(m.days)
}
