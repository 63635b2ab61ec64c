package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"calinsights/internal/config"
	"calinsights/internal/google"
	"calinsights/internal/icloud"
	"calinsights/internal/insights"
	"calinsights/internal/report"
	"calinsights/internal/runner"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"golang.org/x/oauth2"
)

func main() {
	// Load .env file first, but don't error if it doesn't exist.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "calinsights",
		Usage: "Report how much of your week goes to meetings.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: config.DefaultPath, Usage: "Path to the YAML config file."},
		},
		Commands: []*cli.Command{
			authCommand(),
			calendarsCommand(),
			reportCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func authCommand() *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authenticate with a Google account to get an API token.",
		Action: func(c *cli.Context) error {
			logger := setupLogger(os.Getenv("LOG_LEVEL"))
			logger.Info("Starting Google authentication flow.")

			oauthConfig, err := google.GetOAuthConfigForAuthFlow(os.Getenv("GOOGLE_CLIENT_ID"), os.Getenv("GOOGLE_CLIENT_SECRET"))
			if err != nil {
				return fmt.Errorf("failed to get google oauth config: %w", err)
			}

			authURL := oauthConfig.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
			fmt.Printf("Go to the following link in your browser then type the "+
				"authorization code: \n%v\n", authURL)

			fmt.Print("Enter Authorization Code: ")
			reader := bufio.NewReader(os.Stdin)
			authCode, _ := reader.ReadString('\n')
			authCode = strings.TrimSpace(authCode)

			token, err := google.TokenFromWeb(c.Context, oauthConfig, authCode)
			if err != nil {
				return fmt.Errorf("unable to retrieve token from web: %w", err)
			}

			fmt.Print("Enter a name for this account (e.g., 'personal', 'work') [default]: ")
			accountName, _ := reader.ReadString('\n')
			accountName = strings.TrimSpace(accountName)
			if accountName == "" {
				accountName = "default"
			}
			tokenFile := google.TokenFile(accountName)

			if err := google.SaveToken(tokenFile, token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			logger.Info("Successfully authenticated and saved token.", "file", tokenFile)
			return nil
		},
	}
}

func calendarsCommand() *cli.Command {
	return &cli.Command{
		Name:  "calendars",
		Usage: "List the Google calendars the account can read.",
		Action: func(c *cli.Context) error {
			logger := setupLogger(os.Getenv("LOG_LEVEL"))
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			client, err := newGoogleClient(c.Context, logger, cfg)
			if err != nil {
				return err
			}
			calendars, err := client.DiscoverGoogleCalendars(c.Context)
			if err != nil {
				return err
			}
			for _, cal := range calendars {
				marker := ""
				if cal.Primary {
					marker = " (primary)"
				}
				fmt.Printf("%s\t%s%s\n", cal.ID, cal.Summary, marker)
			}
			return nil
		},
	}
}

func reportCommand() *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Generate meeting insights for a range of days.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "source", Usage: "Event source: google or caldav. Overrides the config file."},
			&cli.StringFlag{Name: "start", Usage: "First day of the report (YYYY-MM-DD). Defaults to the start of the current week."},
			&cli.IntFlag{Name: "days", Value: 7, Usage: "Number of days covered by the report."},
			&cli.StringFlag{Name: "format", Value: report.FormatText, Usage: "Output format: text, json or xlsx."},
			&cli.StringFlag{Name: "out", Usage: "Write the report to this file instead of stdout."},
		},
		Action: func(c *cli.Context) error {
			logLevel := os.Getenv("LOG_LEVEL")
			if logLevel == "" {
				logLevel = "info"
			}
			logger := setupLogger(logLevel).With("run", uuid.New().String())

			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if c.IsSet("source") {
				cfg.Source = c.String("source")
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			loc, err := cfg.Location()
			if err != nil {
				return err
			}
			hours, err := cfg.Hours()
			if err != nil {
				return err
			}

			window := runner.WeekWindow(time.Now(), loc, cfg.FirstWeekday())
			if c.IsSet("start") || c.IsSet("days") {
				start := insights.DateOf(window.From)
				if c.IsSet("start") {
					if start, err = insights.ParseDate(c.String("start")); err != nil {
						return err
					}
				}
				if c.Int("days") <= 0 {
					return fmt.Errorf("--days must be positive")
				}
				window = runner.DaysWindow(start, c.Int("days"), loc)
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
			defer stop()

			source, err := newSource(ctx, logger, cfg)
			if err != nil {
				return err
			}

			data, runErr := runner.NewRunner(logger, source, hours, loc).Run(ctx, window)
			if runErr != nil && !partial(data, runErr) {
				return fmt.Errorf("report failed: %w", runErr)
			}

			var out io.Writer = os.Stdout
			if path := c.String("out"); path != "" {
				f, err := os.Create(path)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer f.Close()
				out = f
			}
			return writeReport(out, c.String("format"), data, runErr)
		},
	}
}

// partial reports whether an interrupted run still produced insights.
func partial(data insights.Report, runErr error) bool {
	return errors.Is(runErr, context.Canceled) && len(data.Names()) > 0
}

// writeReport renders data, then returns runErr. An interrupted run renders
// the insights of the events processed before the interrupt.
func writeReport(w io.Writer, format string, data insights.Report, runErr error) error {
	if runErr != nil && !partial(data, runErr) {
		return fmt.Errorf("report failed: %w", runErr)
	}
	if err := report.Render(w, format, data); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	if runErr != nil {
		return fmt.Errorf("report interrupted, output is partial: %w", runErr)
	}
	return nil
}

func newSource(ctx context.Context, logger *slog.Logger, cfg *config.Config) (runner.EventSource, error) {
	switch cfg.Source {
	case config.SourceCalDAV:
		client, err := icloud.NewClient(ctx, logger, cfg.CalDAV.Endpoint, cfg.CalDAV.Username, cfg.CalDAV.Password, cfg.CalDAV.CalendarName)
		if err != nil {
			return nil, fmt.Errorf("failed to create caldav client: %w", err)
		}
		return client, nil
	default:
		client, err := newGoogleClient(ctx, logger, cfg)
		if err != nil {
			return nil, err
		}
		return client.Source(cfg.Google.CalendarID), nil
	}
}

func newGoogleClient(ctx context.Context, logger *slog.Logger, cfg *config.Config) (*google.CalendarClient, error) {
	account, err := resolveAccount(".", cfg.Google.Account)
	if err != nil {
		return nil, err
	}

	client, err := google.NewClient(ctx, logger, cfg.Google.ClientID, cfg.Google.ClientSecret, account)
	if err != nil {
		return nil, fmt.Errorf("failed to create google client for account %s: %w", account, err)
	}
	return client, nil
}

// resolveAccount returns account when dir holds its token, or else the only
// account with a token in dir.
func resolveAccount(dir, account string) (string, error) {
	if _, err := os.Stat(filepath.Join(dir, google.TokenFile(account))); err == nil {
		return account, nil
	}
	accounts, err := google.GetTokenAccounts(dir)
	if err != nil {
		return "", fmt.Errorf("no token for google account %q and token files could not be listed: %w", account, err)
	}
	if len(accounts) != 1 {
		return "", fmt.Errorf("no token for google account %q. Run the 'auth' command first", account)
	}
	return accounts[0], nil
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}
