package icloud

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"calinsights/internal/models"

	"github.com/emersion/go-ical"
	"github.com/teambition/rrule-go"
)

// decoder maps iCalendar VEVENTs to events inside a time window.
type decoder struct {
	self     string // the user's email
	from, to time.Time
	loc      *time.Location
	logger   *slog.Logger
}

// decode returns the events of a calendar object. Recurring events are
// expanded into one event per occurrence in the window, with RECURRENCE-ID
// overrides replacing the occurrence they modify.
func (d decoder) decode(cal *ical.Calendar) ([]*models.Event, error) {
	var masters []ical.Event
	overrides := make(map[string]*models.Event)
	var overrideOrder []string

	for _, vevent := range cal.Events() {
		rid := vevent.Props.Get(ical.PropRecurrenceID)
		if rid == nil {
			masters = append(masters, vevent)
			continue
		}
		ridTime, err := rid.DateTime(d.loc)
		if err != nil {
			return nil, fmt.Errorf("invalid RECURRENCE-ID: %w", err)
		}
		e, err := d.toEvent(vevent)
		if err != nil {
			return nil, err
		}
		e.RecurringEventID = uid(vevent)
		key := occurrenceKey(e.RecurringEventID, ridTime)
		e.ID = key
		overrides[key] = e
		overrideOrder = append(overrideOrder, key)
	}

	var events []*models.Event
	for _, vevent := range masters {
		base, err := d.toEvent(vevent)
		if err != nil {
			return nil, err
		}

		set, err := recurrence(vevent, d.loc)
		if err != nil {
			return nil, err
		}
		if set == nil || !base.HasTime() {
			if d.inWindow(base) {
				events = append(events, base)
			}
			continue
		}

		for _, start := range d.occurrences(set, base.End.Sub(base.Start)) {
			key := occurrenceKey(base.ID, start)
			if o, ok := overrides[key]; ok {
				delete(overrides, key)
				if d.inWindow(o) {
					events = append(events, o)
				}
				continue
			}
			occ := *base
			occ.ID = key
			occ.RecurringEventID = base.ID
			occ.Start = start
			occ.End = start.Add(base.End.Sub(base.Start))
			events = append(events, &occ)
		}
	}

	// Overrides whose original slot fell outside the window.
	for _, key := range overrideOrder {
		if o, ok := overrides[key]; ok && d.inWindow(o) {
			events = append(events, o)
		}
	}
	return events, nil
}

// recurrence returns the event's recurrence set, or nil when it does not repeat.
func recurrence(vevent ical.Event, loc *time.Location) (*rrule.Set, error) {
	if vevent.Props.Get(ical.PropRecurrenceRule) == nil {
		return nil, nil
	}
	set, err := vevent.RecurrenceSet(loc)
	if err != nil {
		return nil, fmt.Errorf("invalid recurrence for %s: %w", uid(vevent), err)
	}
	return set, nil
}

// occurrences lists the starts of occurrences overlapping the window.
func (d decoder) occurrences(set *rrule.Set, length time.Duration) []time.Time {
	var starts []time.Time
	for _, start := range set.Between(d.from.Add(-length), d.to, true) {
		start = start.In(d.loc)
		if start.Before(d.to) && start.Add(length).After(d.from) {
			starts = append(starts, start)
		}
	}
	return starts
}

// inWindow reports whether a timed event overlaps the window. All-day events
// are kept; the aggregation skips them.
func (d decoder) inWindow(e *models.Event) bool {
	if !e.HasTime() {
		return true
	}
	return e.Start.Before(d.to) && e.End.After(d.from)
}

func (d decoder) toEvent(vevent ical.Event) (*models.Event, error) {
	e := &models.Event{
		ID:           uid(vevent),
		Title:        text(vevent, ical.PropSummary),
		Status:       status(text(vevent, ical.PropStatus)),
		Transparency: models.TransparencyOpaque,
	}
	if strings.EqualFold(text(vevent, ical.PropTransparency), "TRANSPARENT") {
		e.Transparency = models.TransparencyTransparent
	}
	if strings.EqualFold(text(vevent, "X-MICROSOFT-CDO-BUSYSTATUS"), "OOF") {
		e.Type = models.EventTypeOutOfOffice
	}

	if start := vevent.Props.Get(ical.PropDateTimeStart); start != nil && !isDate(start) {
		var err error
		if e.Start, err = vevent.DateTimeStart(d.loc); err != nil {
			return nil, fmt.Errorf("invalid DTSTART for %s: %w", e.ID, err)
		}
		if e.End, err = vevent.DateTimeEnd(d.loc); err != nil {
			return nil, fmt.Errorf("invalid DTEND for %s: %w", e.ID, err)
		}
		e.Start = e.Start.In(d.loc)
		e.End = e.End.In(d.loc)
	}

	if org := vevent.Props.Get(ical.PropOrganizer); org != nil {
		email := mailbox(org.Value)
		e.Organizer = models.Organizer{Email: email, Self: d.isSelf(email)}
	}
	for _, p := range vevent.Props.Values(ical.PropAttendee) {
		email := mailbox(p.Value)
		guests := 0
		if n := p.Params.Get("X-NUM-GUESTS"); n != "" {
			v, err := strconv.Atoi(n)
			if err != nil {
				d.logger.Debug("Ignoring malformed X-NUM-GUESTS", "uid", e.ID, "attendee", email, "value", n)
			} else {
				guests = v
			}
		}
		cutype := strings.ToUpper(p.Params.Get(ical.ParamCalendarUserType))
		e.Attendees = append(e.Attendees, models.Attendee{
			Email:            email,
			DisplayName:      p.Params.Get(ical.ParamCommonName),
			ResponseStatus:   partStat(p.Params.Get(ical.ParamParticipationStatus)),
			Resource:         cutype == "RESOURCE" || cutype == "ROOM",
			AdditionalGuests: guests,
			Self:             d.isSelf(email),
		})
	}
	return e, nil
}

func (d decoder) isSelf(email string) bool {
	return d.self != "" && strings.EqualFold(email, d.self)
}

func uid(vevent ical.Event) string {
	return text(vevent, ical.PropUID)
}

func text(vevent ical.Event, name string) string {
	if p := vevent.Props.Get(name); p != nil {
		return p.Value
	}
	return ""
}

func isDate(p *ical.Prop) bool {
	return p.ValueType() == ical.ValueDate || len(p.Value) == len("20060102")
}

func occurrenceKey(uid string, start time.Time) string {
	return uid + "_" + start.UTC().Format("20060102T150405Z")
}

// mailbox strips the mailto: scheme from a calendar user address.
func mailbox(address string) string {
	if len(address) > len("mailto:") && strings.EqualFold(address[:len("mailto:")], "mailto:") {
		return address[len("mailto:"):]
	}
	return address
}

// status maps STATUS. Events without one are definite per RFC 5545.
func status(s string) models.Status {
	switch strings.ToUpper(s) {
	case "TENTATIVE":
		return models.StatusTentative
	case "CANCELLED":
		return models.StatusCancelled
	default:
		return models.StatusConfirmed
	}
}

func partStat(s string) models.ResponseStatus {
	switch strings.ToUpper(s) {
	case "ACCEPTED":
		return models.ResponseAccepted
	case "DECLINED":
		return models.ResponseDeclined
	case "TENTATIVE":
		return models.ResponseTentative
	default:
		return models.ResponseNeedsAction
	}
}
