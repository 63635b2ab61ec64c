package insights

import (
	"strings"

	"calinsights/internal/models"
)

// secondaryCalendarSuffix marks organizers that are group or resource
// calendars rather than people.
const secondaryCalendarSuffix = "calendar.google.com"

// IsMeeting reports whether an event represents a meeting.
// All-day events and non-meeting blocks (out of office, focus time,
// working location) are excluded.
func IsMeeting(e *models.Event) bool {
	switch e.Type.OrDefault() {
	case models.EventTypeOutOfOffice, models.EventTypeFocusTime, models.EventTypeWorkingLocation:
		return false
	}
	return !e.Start.IsZero()
}

// IsAccepted reports whether the current user accepted the event.
// An event without a self attendee was created to block out time and counts
// as accepted.
func IsAccepted(e *models.Event) bool {
	self, ok := e.SelfAttendee()
	if !ok {
		return true
	}
	return self.Accepted()
}

// IsConfirmed reports whether the event has been confirmed.
func IsConfirmed(e *models.Event) bool {
	return e.Status.OrDefault() == models.StatusConfirmed
}

// IsBusy reports whether the event blocks the user's time.
func IsBusy(e *models.Event) bool {
	if e.Transparency.OrDefault() == models.TransparencyTransparent {
		return false
	}
	return IsAccepted(e)
}

// IsPending reports whether the event still waits on confirmation or on the
// user's answer.
func IsPending(e *models.Event) bool {
	if e.Status.OrDefault() == models.StatusTentative {
		return true
	}
	self, ok := e.SelfAttendee()
	if !ok {
		return false
	}
	switch self.ResponseStatus.OrDefault() {
	case models.ResponseNeedsAction, models.ResponseTentative:
		return true
	}
	return false
}

// IsRecurring reports whether the event is an instance of a recurring series.
func IsRecurring(e *models.Event) bool {
	return e.RecurringEventID != ""
}

// IsOrganizer reports whether the current user organizes the event.
func IsOrganizer(e *models.Event) bool {
	return e.Organizer.Self
}

// IsOrganizerAttendee reports whether the organizer has to be counted on top
// of the attendee list: it is someone else, a person rather than a secondary
// calendar, and not listed as an attendee already.
func IsOrganizerAttendee(e *models.Event) bool {
	if e.Organizer.Self {
		return false
	}
	if strings.HasSuffix(e.Organizer.Email, secondaryCalendarSuffix) {
		return false
	}
	_, listed := e.FindAttendee(e.Organizer.Email)
	return !listed
}

// CountAttendees counts the people in a meeting, including +N guests and the
// organizer when not already listed. Resources are not counted.
func CountAttendees(e *models.Event) int {
	count := 0
	if IsOrganizerAttendee(e) {
		count++
	}
	for _, a := range e.People() {
		count += 1 + a.AdditionalGuests
	}
	return count
}

// AreAttendeesMissing reports whether the attendee list may be incomplete
// from the current user's point of view.
func AreAttendeesMissing(e *models.Event) bool {
	if e.AttendeesOmitted {
		return true
	}
	return !IsOrganizer(e) && !e.GuestsCanSeeOthers()
}

// IsOneOnOne reports whether the event is (probably) a 1-on-1 meeting.
// A meeting with a partially hidden guest list is never a 1-on-1.
func IsOneOnOne(e *models.Event) bool {
	if !IsMeeting(e) || AreAttendeesMissing(e) {
		return false
	}
	return CountAttendees(e) == 2
}

// IsGroupMeeting reports whether the event is a meeting with 3+ people.
// A meeting with a partially hidden guest list is assumed to be a group.
func IsGroupMeeting(e *models.Event) bool {
	if !IsMeeting(e) {
		return false
	}
	if AreAttendeesMissing(e) {
		return true
	}
	return CountAttendees(e) >= 3
}
