package insights

import (
	"fmt"
	"time"

	"calinsights/internal/models"
)

// TimeInterval is the half-open span [Start, End).
type TimeInterval struct {
	Start time.Time
	End   time.Time
}

// TimeRange returns the interval covered by an event. ok is false for
// all-day events, which carry no timestamps.
func TimeRange(e *models.Event) (iv TimeInterval, ok bool) {
	if !e.HasTime() {
		return TimeInterval{}, false
	}
	return TimeInterval{Start: e.Start, End: e.End}, true
}

// Overlaps reports whether the two intervals share any time. Touching
// endpoints do not overlap.
func (iv TimeInterval) Overlaps(other TimeInterval) bool {
	start := iv.Start
	if other.Start.After(start) {
		start = other.Start
	}
	end := iv.End
	if other.End.Before(end) {
		end = other.End
	}
	return start.Before(end)
}

// Merge returns the interval spanning both iv and other. Only meaningful
// when the two overlap or touch.
func (iv TimeInterval) Merge(other TimeInterval) TimeInterval {
	merged := iv
	if other.Start.Before(merged.Start) {
		merged.Start = other.Start
	}
	if other.End.After(merged.End) {
		merged.End = other.End
	}
	return merged
}

// Duration is the length of the interval.
func (iv TimeInterval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// Date is the day the interval starts on.
func (iv TimeInterval) Date() Date {
	return DateOf(iv.Start)
}

func (iv TimeInterval) String() string {
	return fmt.Sprintf("range(%s-%s)", iv.Start.Format(time.RFC3339), iv.End.Format(time.RFC3339))
}
