package insights

import (
	"testing"
	"time"

	"calinsights/internal/models"
)

func TestTimeIntervalOverlaps(t *testing.T) {
	iv := func(start, end string) TimeInterval {
		return TimeInterval{Start: at("2024-03-04 " + start), End: at("2024-03-04 " + end)}
	}
	tests := []struct {
		name string
		a, b TimeInterval
		want bool
	}{
		{"partial", iv("10:00", "11:00"), iv("10:30", "11:30"), true},
		{"contained", iv("10:00", "12:00"), iv("10:30", "11:00"), true},
		{"touching", iv("10:00", "11:00"), iv("11:00", "12:00"), false},
		{"disjoint", iv("10:00", "11:00"), iv("13:00", "14:00"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Overlaps(tt.b); got != tt.want {
				t.Errorf("%v.Overlaps(%v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			if got := tt.b.Overlaps(tt.a); got != tt.want {
				t.Errorf("%v.Overlaps(%v) = %v, want %v", tt.b, tt.a, got, tt.want)
			}
		})
	}
}

func TestTimeIntervalMerge(t *testing.T) {
	a := TimeInterval{Start: at("2024-03-04 10:00"), End: at("2024-03-04 11:00")}
	b := TimeInterval{Start: at("2024-03-04 10:30"), End: at("2024-03-04 11:30")}

	merged := a.Merge(b)
	if !merged.Start.Equal(a.Start) || !merged.End.Equal(b.End) {
		t.Errorf("Merge() = %v, want 10:00-11:30", merged)
	}
	if got, want := merged.Duration(), 90*time.Minute; got != want {
		t.Errorf("Duration() = %v, want %v", got, want)
	}
	if merged.Duration() >= a.Duration()+b.Duration() {
		t.Errorf("merged duration %v not below sum %v", merged.Duration(), a.Duration()+b.Duration())
	}
}

func TestTimeIntervalDateUsesStart(t *testing.T) {
	iv := TimeInterval{Start: at("2024-03-04 23:00"), End: at("2024-03-05 01:00")}
	if got, want := iv.Date(), (Date{2024, time.March, 4}); got != want {
		t.Errorf("Date() = %v, want %v", got, want)
	}
}

func TestTimeRangeAllDay(t *testing.T) {
	if _, ok := TimeRange(&models.Event{}); ok {
		t.Errorf("TimeRange() ok for all-day event")
	}
	if _, ok := TimeRange(meeting("2024-03-04 10:00", "2024-03-04 11:00")); !ok {
		t.Errorf("TimeRange() not ok for timed event")
	}
}

func TestDateHelpers(t *testing.T) {
	d, err := ParseDate("2024-02-28")
	if err != nil {
		t.Fatalf("ParseDate() error = %v", err)
	}
	if got := d.AddDays(2).String(); got != "2024-03-01" {
		t.Errorf("AddDays(2) = %s, want 2024-03-01", got)
	}
	if !d.Before(d.AddDays(1)) || d.AddDays(1).Before(d) {
		t.Errorf("Before() ordering wrong")
	}
	if got := d.Weekday(); got != time.Wednesday {
		t.Errorf("Weekday() = %v, want Wednesday", got)
	}

	c, err := ParseClock("09:30")
	if err != nil {
		t.Fatalf("ParseClock() error = %v", err)
	}
	if got := d.At(c, denver); !got.Equal(at("2024-02-28 09:30")) {
		t.Errorf("At() = %v", got)
	}
	if _, err := ParseClock("25:00"); err == nil {
		t.Errorf("ParseClock(25:00) expected error")
	}
}
