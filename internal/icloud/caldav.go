package icloud

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"calinsights/internal/models"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav/caldav"
)

// DefaultEndpoint is iCloud's CalDAV server.
const DefaultEndpoint = "https://caldav.icloud.com/"

// customTransport handles adding Basic Auth and custom headers to requests.
type customTransport struct {
	Username  string
	Password  string
	Transport http.RoundTripper
}

// RoundTrip adds required headers and authentication to each request.
func (t *customTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.SetBasicAuth(t.Username, t.Password)
	req.Header.Set("User-Agent", "calinsights/1.0")
	return t.Transport.RoundTrip(req)
}

// CalDAVClient reads events from a CalDAV server such as iCloud.
type CalDAVClient struct {
	caldavClient *caldav.Client
	logger       *slog.Logger
	calendarPath string
	username     string
}

// NewClient connects to endpoint and locates the calendar named calendarName.
// username doubles as the email identifying the user among attendees.
func NewClient(ctx context.Context, logger *slog.Logger, endpoint, username, password, calendarName string) (*CalDAVClient, error) {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	transport := &customTransport{
		Username:  username,
		Password:  password,
		Transport: http.DefaultTransport,
	}
	httpClient := &http.Client{Transport: transport}

	caldavClient, err := caldav.NewClient(httpClient, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create caldav client: %w", err)
	}

	c := &CalDAVClient{
		caldavClient: caldavClient,
		logger:       logger,
		username:     username,
	}

	logger.Info("Finding CalDAV calendar", "calendarName", calendarName)
	calendarPath, err := c.findCalendar(ctx, calendarName)
	if err != nil {
		return nil, fmt.Errorf("could not find calendar '%s': %w", calendarName, err)
	}
	c.calendarPath = calendarPath
	logger.Info("Successfully found CalDAV calendar", "path", calendarPath)

	return c, nil
}

// ListEvents returns the events intersecting [from, to) with recurring
// events expanded, sorted by start time. Times are converted to loc.
func (c *CalDAVClient) ListEvents(ctx context.Context, from, to time.Time, loc *time.Location) ([]*models.Event, error) {
	c.logger.Debug("Querying CalDAV calendar", "path", c.calendarPath, "from", from, "to", to)

	query := &caldav.CalendarQuery{
		CompRequest: caldav.CalendarCompRequest{
			Name:     ical.CompCalendar,
			AllProps: true,
			AllComps: true,
		},
		CompFilter: caldav.CompFilter{
			Name: ical.CompCalendar,
			Comps: []caldav.CompFilter{{
				Name:  ical.CompEvent,
				Start: from.UTC(),
				End:   to.UTC(),
			}},
		},
	}
	objects, err := c.caldavClient.QueryCalendar(ctx, c.calendarPath, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query calendar: %w", err)
	}

	d := decoder{self: c.username, from: from, to: to, loc: loc, logger: c.logger}
	var events []*models.Event
	for _, obj := range objects {
		if obj.Data == nil {
			continue
		}
		decoded, err := d.decode(obj.Data)
		if err != nil {
			// Continue with the next object even if one fails.
			c.logger.Error("Failed to decode calendar object", "path", obj.Path, "error", err)
			continue
		}
		for _, e := range decoded {
			e.Source = "caldav-" + c.calendarPath
		}
		events = append(events, decoded...)
	}

	sortByStart(events)
	c.logger.Info("Successfully fetched events from CalDAV", "count", len(events), "objects", len(objects))
	return events, nil
}

// sortByStart orders events chronologically, all-day events first.
func sortByStart(events []*models.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Start.Before(events[j].Start)
	})
}

// findCalendar discovers the user's calendars and returns the path of the one with the matching name.
func (c *CalDAVClient) findCalendar(ctx context.Context, name string) (string, error) {
	principalPath, err := c.caldavClient.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to find principal path: %w", err)
	}

	homeSetPath, err := c.caldavClient.FindCalendarHomeSet(ctx, principalPath)
	if err != nil {
		return "", fmt.Errorf("failed to find calendar home set: %w", err)
	}

	calendars, err := c.caldavClient.FindCalendars(ctx, homeSetPath)
	if err != nil {
		return "", fmt.Errorf("failed to find calendars: %w", err)
	}

	for _, cal := range calendars {
		if cal.Name == name {
			return cal.Path, nil
		}
	}

	return "", fmt.Errorf("no calendar found with name '%s'", name)
}
