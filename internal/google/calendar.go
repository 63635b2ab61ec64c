package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"calinsights/internal/models"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	credentialsFile = "credentials.json"
	pageSize        = 1000
)

// CalendarClient provides a client for reading events from the Google Calendar API.
type CalendarClient struct {
	service    *calendar.Service
	logger     *slog.Logger
	newBackOff func() backoff.BackOff
}

// NewClient creates a new Google Calendar client.
// It handles loading credentials and setting up an authenticated HTTP client.
// The accountName selects the token file written by the auth command (token-<account>.json).
func NewClient(ctx context.Context, logger *slog.Logger, clientID, clientSecret, accountName string) (*CalendarClient, error) {
	config, err := getOAuthConfig(clientID, clientSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to get OAuth config: %w", err)
	}

	token, err := tokenFromFile(TokenFile(accountName))
	if err != nil {
		return nil, fmt.Errorf("could not load token for account %s: %w. Please run the 'auth' command first", accountName, err)
	}

	service, err := calendar.NewService(ctx, option.WithHTTPClient(config.Client(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	return newClient(service, logger), nil
}

func newClient(service *calendar.Service, logger *slog.Logger) *CalendarClient {
	return &CalendarClient{
		service: service,
		logger:  logger,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.MaxElapsedTime = time.Minute
			return b
		},
	}
}

// ListEvents fetches every event of calendarID that intersects [from, to),
// one expanded instance per recurring occurrence, ordered by start time.
// Timestamps are converted to loc.
func (c *CalendarClient) ListEvents(ctx context.Context, calendarID string, from, to time.Time, loc *time.Location) ([]*models.Event, error) {
	c.logger.Debug("Fetching events", "calendarID", calendarID, "from", from, "to", to)

	var events []*models.Event
	pageToken := ""
	for pages := 1; ; pages++ {
		page, err := c.fetchPage(ctx, calendarID, from, to, loc, pageToken)
		if err != nil {
			return nil, fmt.Errorf("failed to retrieve events: %w", err)
		}
		events = append(events, c.toInternalEvents(page.Items, calendarID, loc)...)

		if page.NextPageToken == "" {
			c.logger.Info("Successfully fetched events from Google Calendar", "count", len(events), "pages", pages, "calendarID", calendarID)
			return events, nil
		}
		pageToken = page.NextPageToken
	}
}

// fetchPage retrieves a single page, retrying transient failures.
func (c *CalendarClient) fetchPage(ctx context.Context, calendarID string, from, to time.Time, loc *time.Location, pageToken string) (*calendar.Events, error) {
	var page *calendar.Events
	op := func() error {
		call := c.service.Events.List(calendarID).
			ShowDeleted(false).
			SingleEvents(true).
			OrderBy("startTime").
			TimeMin(from.Format(time.RFC3339)).
			TimeMax(to.Format(time.RFC3339)).
			TimeZone(loc.String()).
			MaxResults(pageSize).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		var err error
		page, err = call.Do()
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return backoff.Permanent(err)
		}
		c.logger.Warn("Event page request failed, retrying", "calendarID", calendarID, "error", err)
		return err
	}

	if err := backoff.Retry(op, backoff.WithContext(c.newBackOff(), ctx)); err != nil {
		return nil, err
	}
	return page, nil
}

// retryable reports whether a failed request is worth repeating.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError
	}
	return true
}

// toInternalEvents converts Google Calendar events to the internal Event model.
func (c *CalendarClient) toInternalEvents(googleEvents []*calendar.Event, source string, loc *time.Location) []*models.Event {
	internalEvents := make([]*models.Event, 0, len(googleEvents))
	for _, item := range googleEvents {
		event, err := toInternalEvent(item, loc)
		if err != nil {
			c.logger.Warn("Skipping event with unreadable times", "id", item.Id, "title", item.Summary, "error", err)
			continue
		}
		event.Source = fmt.Sprintf("google-%s", source)
		internalEvents = append(internalEvents, event)
	}
	return internalEvents
}

func toInternalEvent(item *calendar.Event, loc *time.Location) (*models.Event, error) {
	event := &models.Event{
		ID:                      item.Id,
		Title:                   item.Summary,
		RecurringEventID:        item.RecurringEventId,
		Type:                    models.EventType(item.EventType),
		Status:                  models.Status(item.Status),
		Transparency:            models.Transparency(item.Transparency),
		AttendeesOmitted:        item.AttendeesOmitted,
		GuestsCanSeeOtherGuests: item.GuestsCanSeeOtherGuests,
	}

	// All-day events only carry a date and are left without timestamps.
	if item.Start != nil && item.Start.DateTime != "" && item.End != nil && item.End.DateTime != "" {
		start, err := time.Parse(time.RFC3339, item.Start.DateTime)
		if err != nil {
			return nil, fmt.Errorf("start: %w", err)
		}
		end, err := time.Parse(time.RFC3339, item.End.DateTime)
		if err != nil {
			return nil, fmt.Errorf("end: %w", err)
		}
		event.Start = start.In(loc)
		event.End = end.In(loc)
	}

	if item.Organizer != nil {
		event.Organizer = models.Organizer{Email: item.Organizer.Email, Self: item.Organizer.Self}
	}
	for _, a := range item.Attendees {
		event.Attendees = append(event.Attendees, models.Attendee{
			Email:            a.Email,
			DisplayName:      a.DisplayName,
			ResponseStatus:   models.ResponseStatus(a.ResponseStatus),
			Resource:         a.Resource,
			AdditionalGuests: int(a.AdditionalGuests),
			Self:             a.Self,
		})
	}
	return event, nil
}

// GetOAuthConfigForAuthFlow is used by the auth command to get the config for the web flow.
func GetOAuthConfigForAuthFlow(clientID, clientSecret string) (*oauth2.Config, error) {
	return getOAuthConfig(clientID, clientSecret)
}

// getOAuthConfig reads credentials and returns an OAuth2 config.
// It prioritizes explicit client credentials over a local credentials.json file.
func getOAuthConfig(clientID, clientSecret string) (*oauth2.Config, error) {
	if clientID != "" && clientSecret != "" {
		return &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  "urn:ietf:wg:oauth:2.0:oob",
			Scopes:       []string{calendar.CalendarReadonlyScope},
			Endpoint:     google.Endpoint,
		}, nil
	}

	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		if _, ok := err.(*fs.PathError); ok {
			return nil, fmt.Errorf("credentials.json not found. Please provide GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET env vars or place credentials.json in the working directory")
		}
		return nil, fmt.Errorf("unable to read client secret file: %w", err)
	}

	config, err := google.ConfigFromJSON(b, calendar.CalendarReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secret file to config: %w", err)
	}
	config.RedirectURL = "urn:ietf:wg:oauth:2.0:oob" // For desktop app flow
	return config, nil
}

// TokenFromWeb is called by the auth flow to retrieve a token.
func TokenFromWeb(ctx context.Context, config *oauth2.Config, authCode string) (*oauth2.Token, error) {
	return config.Exchange(ctx, authCode)
}

// TokenFile is the path of the token saved for an account.
func TokenFile(accountName string) string {
	return "token-" + accountName + ".json"
}

// SaveToken saves a token to a file path.
func SaveToken(path string, token *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("unable to create token file: %w", err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}

// tokenFromFile retrieves a token from a local file.
func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}

// CalendarInfo describes a calendar the account can read.
type CalendarInfo struct {
	ID      string
	Summary string
	Primary bool
}

// DiscoverGoogleCalendars finds all calendars associated with the authenticated account.
func (c *CalendarClient) DiscoverGoogleCalendars(ctx context.Context) ([]CalendarInfo, error) {
	var calendars []CalendarInfo
	err := c.service.CalendarList.List().Pages(ctx, func(list *calendar.CalendarList) error {
		for _, item := range list.Items {
			calendars = append(calendars, CalendarInfo{ID: item.Id, Summary: item.Summary, Primary: item.Primary})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list calendars: %w", err)
	}
	return calendars, nil
}

// GetTokenAccounts lists the accounts that have a token file in dir.
func GetTokenAccounts(dir string) ([]string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var accounts []string
	for _, file := range files {
		if strings.HasPrefix(file.Name(), "token-") && strings.HasSuffix(file.Name(), ".json") {
			accountName := strings.TrimSuffix(strings.TrimPrefix(file.Name(), "token-"), ".json")
			accounts = append(accounts, accountName)
		}
	}
	return accounts, nil
}

// Source reads the events of a single calendar.
type Source struct {
	client     *CalendarClient
	calendarID string
}

// Source binds the client to one calendar.
func (c *CalendarClient) Source(calendarID string) *Source {
	return &Source{client: c, calendarID: calendarID}
}

// ListEvents fetches the calendar's events in [from, to).
func (s *Source) ListEvents(ctx context.Context, from, to time.Time, loc *time.Location) ([]*models.Event, error) {
	return s.client.ListEvents(ctx, s.calendarID, from, to, loc)
}
