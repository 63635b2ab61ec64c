package models

import "time"

// EventType distinguishes regular events from the special blocks calendars
// put on a user's schedule.
type EventType string

const (
	EventTypeDefault         EventType = "default"
	EventTypeOutOfOffice     EventType = "outOfOffice"
	EventTypeFocusTime       EventType = "focusTime"
	EventTypeWorkingLocation EventType = "workingLocation"
)

// OrDefault returns t, or EventTypeDefault when t is unset.
func (t EventType) OrDefault() EventType {
	if t == "" {
		return EventTypeDefault
	}
	return t
}

// Status is the overall status of an event.
type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusTentative Status = "tentative"
	StatusCancelled Status = "cancelled"
)

// OrDefault returns s, or StatusTentative when s is unset.
func (s Status) OrDefault() Status {
	if s == "" {
		return StatusTentative
	}
	return s
}

// Transparency tells whether an event blocks time on the calendar.
type Transparency string

const (
	TransparencyOpaque      Transparency = "opaque"
	TransparencyTransparent Transparency = "transparent"
)

// OrDefault returns t, or TransparencyOpaque when t is unset.
func (t Transparency) OrDefault() Transparency {
	if t == "" {
		return TransparencyOpaque
	}
	return t
}

// ResponseStatus is an attendee's answer to an invitation.
type ResponseStatus string

const (
	ResponseNeedsAction ResponseStatus = "needsAction"
	ResponseDeclined    ResponseStatus = "declined"
	ResponseTentative   ResponseStatus = "tentative"
	ResponseAccepted    ResponseStatus = "accepted"
)

// OrDefault returns r, or ResponseNeedsAction when r is unset.
func (r ResponseStatus) OrDefault() ResponseStatus {
	if r == "" {
		return ResponseNeedsAction
	}
	return r
}

// Attendee is a single guest of an event.
type Attendee struct {
	Email            string
	DisplayName      string
	ResponseStatus   ResponseStatus
	Resource         bool // Rooms and other calendar resources
	AdditionalGuests int  // Extra +N guests brought by this attendee
	Self             bool // Attendee entry for the calendar owner
}

// Accepted reports whether the attendee accepted the invitation.
func (a Attendee) Accepted() bool {
	return a.ResponseStatus.OrDefault() == ResponseAccepted
}

// Organizer describes who owns an event.
type Organizer struct {
	Email string
	Self  bool
}

// Event represents a standard calendar event.
// This is an internal representation, independent of any specific calendar provider.
// Zero values of the tag fields mean "not provided" and resolve through OrDefault.
type Event struct {
	ID               string    // Unique identifier for the event (e.g., from the source calendar)
	Title            string    // Summary or title of the event
	RecurringEventID string    // Set for instances of a recurring series
	Type             EventType // Event type tag
	Status           Status
	Transparency     Transparency
	Start            time.Time // Zero for all-day events
	End              time.Time // Zero for all-day events
	Organizer        Organizer
	Attendees        []Attendee
	AttendeesOmitted bool
	// GuestsCanSeeOtherGuests is nil when the source did not say; nil means true.
	GuestsCanSeeOtherGuests *bool
	Source                  string // The source of the event (e.g., "google-primary")
}

// HasTime reports whether the event has both a start and an end timestamp.
func (e *Event) HasTime() bool {
	return !e.Start.IsZero() && !e.End.IsZero()
}

// GuestsCanSeeOthers resolves GuestsCanSeeOtherGuests with its default.
func (e *Event) GuestsCanSeeOthers() bool {
	if e.GuestsCanSeeOtherGuests == nil {
		return true
	}
	return *e.GuestsCanSeeOtherGuests
}

// SelfAttendee returns the attendee entry for the calendar owner, if any.
func (e *Event) SelfAttendee() (Attendee, bool) {
	for _, a := range e.Attendees {
		if a.Self {
			return a, true
		}
	}
	return Attendee{}, false
}

// FindAttendee returns the attendee with the given email, if any.
func (e *Event) FindAttendee(email string) (Attendee, bool) {
	for _, a := range e.Attendees {
		if a.Email == email {
			return a, true
		}
	}
	return Attendee{}, false
}

// People returns the attendees that are not calendar resources.
func (e *Event) People() []Attendee {
	people := make([]Attendee, 0, len(e.Attendees))
	for _, a := range e.Attendees {
		if !a.Resource {
			people = append(people, a)
		}
	}
	return people
}
