package insights

import (
	"time"

	"calinsights/internal/models"
)

const selfEmail = "me@example.com"

var denver = time.FixedZone("MST", -7*60*60)

// at parses "2024-03-04 10:00" in the test zone.
func at(s string) time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04", s, denver)
	if err != nil {
		panic(err)
	}
	return t
}

func guest(email string) models.Attendee {
	return models.Attendee{Email: email, ResponseStatus: models.ResponseAccepted}
}

// meeting builds a confirmed event organized and accepted by the user.
func meeting(start, end string, guests ...models.Attendee) *models.Event {
	attendees := []models.Attendee{{Email: selfEmail, Self: true, ResponseStatus: models.ResponseAccepted}}
	return &models.Event{
		ID:        start,
		Title:     "meeting at " + start,
		Status:    models.StatusConfirmed,
		Start:     at(start),
		End:       at(end),
		Organizer: models.Organizer{Email: selfEmail, Self: true},
		Attendees: append(attendees, guests...),
	}
}

func ptr[T any](v T) *T { return &v }

var nineToSix = WorkingHours{Start: Clock{Hour: 9}, End: Clock{Hour: 18}}
