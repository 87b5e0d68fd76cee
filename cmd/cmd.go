package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"movelite-client/internal/apiclient"
	"movelite-client/internal/config"
	"movelite-client/internal/handlers"
	"movelite-client/internal/images"
	"movelite-client/internal/metrics"
	"movelite-client/internal/schedule"
	"movelite-client/internal/services"
	"movelite-client/internal/session"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

// Version is stamped at build time
var Version = "dev"

func Run() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := newApp().RunContext(ctx, os.Args)
	if err == nil {
		return
	}

	var uerr *handlers.UserError
	if errors.As(err, &uerr) {
		if uerr.Err != nil {
			log.Debug().Err(uerr.Err).Msg("Command failed")
		}
		fmt.Fprintln(os.Stderr, uerr.Message)
		stop()
		os.Exit(1)
	}
	log.Fatal().Err(err).Msg("Failed to run command")
}

func newApp() *cli.App {
	rt := &runtime{}
	return &cli.App{
		Name:     "movelite",
		Usage:    "browse and book Move & Lite activities",
		Version:  Version,
		Flags:    globalFlags(),
		Before:   rt.setup,
		After:    rt.teardown,
		Commands: rt.commands(),
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Value: "config.yaml", EnvVars: []string{"MOVELITE_CONFIG"}, Usage: "path to the YAML configuration"},
		&cli.StringFlag{Name: "api-url", Usage: "base URL of the API"},
		&cli.DurationFlag{Name: "timeout", Usage: "per-request timeout"},
		&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
		&cli.StringFlag{Name: "email", EnvVars: []string{"MOVELITE_EMAIL"}, Usage: "account used to sign in"},
		&cli.StringFlag{Name: "password", EnvVars: []string{"MOVELITE_PASSWORD"}, Usage: "password used to sign in"},
		&cli.StringFlag{Name: "metrics-file", Usage: "write request metrics to this file on exit"},
	}
}

// runtime holds what the commands share within one process
type runtime struct {
	cfg      *config.Config
	registry *prometheus.Registry

	email    string
	password string

	auth         *handlers.AuthHandler
	activities   *handlers.ActivityHandler
	reservations *handlers.ReservationHandler
	admin        *handlers.AdminHandler
	calendar     *handlers.CalendarHandler
}

func (rt *runtime) setup(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if c.IsSet("api-url") {
		cfg.API.BaseURL = c.String("api-url")
	}
	if c.IsSet("timeout") {
		cfg.API.Timeout = c.Duration("timeout")
	}
	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
	}
	if c.IsSet("metrics-file") {
		cfg.Metrics.Textfile = c.String("metrics-file")
	}

	setupLogger(cfg.Log.Level)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	rt.cfg = cfg
	rt.email = c.String("email")
	rt.password = c.String("password")
	rt.registry = prometheus.NewRegistry()

	// Initialize client
	client := apiclient.New(session.New(), apiclient.Options{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
		Metrics: metrics.NewClientMetrics(rt.registry),
	})
	resolver := images.NewResolver(cfg.API.BaseURL, cfg.Images.Debug, log.Logger)
	resolver.SetActivityFallbacks(cfg.Images.FallbackLocal, cfg.Images.FallbackRemote)

	// Initialize services
	authService := services.NewAuthService(client, cfg.Images.AvatarFallback)
	activityService := services.NewActivityService(client)
	reservationService := services.NewReservationService(client, cfg.Booking.CancelWindow, loc)

	// Initialize handlers
	out := c.App.Writer
	rt.auth = handlers.NewAuthHandler(authService, out)
	rt.activities = handlers.NewActivityHandler(activityService, reservationService, resolver, out)
	rt.reservations = handlers.NewReservationHandler(activityService, reservationService, out)
	rt.admin = handlers.NewAdminHandler(activityService, out)
	rt.calendar = handlers.NewCalendarHandler(activityService, out)

	log.Debug().
		Str("api", cfg.API.BaseURL).
		Dur("timeout", cfg.API.Timeout).
		Str("timezone", loc.String()).
		Msg("Client configured")
	return nil
}

func (rt *runtime) teardown(c *cli.Context) error {
	if rt.auth != nil {
		rt.auth.Logout()
	}
	if rt.cfg == nil || rt.cfg.Metrics.Textfile == "" {
		return nil
	}
	if err := metrics.WriteTextfile(rt.cfg.Metrics.Textfile, rt.registry); err != nil {
		log.Error().Err(err).Str("path", rt.cfg.Metrics.Textfile).Msg("Failed to write metrics")
		return nil
	}
	log.Debug().Str("path", rt.cfg.Metrics.Textfile).Msg("Metrics written")
	return nil
}

// signedIn wraps an action that needs a session
func (rt *runtime) signedIn(action cli.ActionFunc) cli.ActionFunc {
	return func(c *cli.Context) error {
		if err := rt.auth.EnsureLogin(c.Context, rt.email, rt.password); err != nil {
			return err
		}
		return action(c)
	}
}

func (rt *runtime) commands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "login",
			Usage: "check the --email and --password credentials",
			Action: func(c *cli.Context) error {
				return rt.auth.Login(c.Context, rt.email, rt.password)
			},
		},
		{
			Name:   "whoami",
			Usage:  "show the signed-in profile",
			Action: rt.signedIn(func(c *cli.Context) error { return rt.auth.Profile() }),
		},
		{
			Name:  "register",
			Usage: "create an account",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "name"},
				&cli.StringFlag{Name: "surname"},
				&cli.StringFlag{Name: "email"},
				&cli.StringFlag{Name: "phone"},
				&cli.StringFlag{Name: "password"},
				&cli.StringFlag{Name: "confirm", Usage: "repeat the password"},
			},
			Action: func(c *cli.Context) error {
				return rt.auth.Register(c.Context, services.RegisterInput{
					Name:     c.String("name"),
					Surname:  c.String("surname"),
					Email:    c.String("email"),
					Phone:    c.String("phone"),
					Password: c.String("password"),
					Confirm:  c.String("confirm"),
				})
			},
		},
		{
			Name:  "activities",
			Usage: "list activities",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "search", Aliases: []string{"s"}, Usage: "filter by name"},
			},
			Action: rt.signedIn(func(c *cli.Context) error {
				return rt.activities.List(c.Context, c.String("search"))
			}),
		},
		{
			Name:      "activity",
			Usage:     "show one activity",
			ArgsUsage: "<id>",
			Action: rt.signedIn(func(c *cli.Context) error {
				id, err := activityID(c)
				if err != nil {
					return err
				}
				return rt.activities.Show(c.Context, id)
			}),
		},
		{
			Name:      "reserve",
			Usage:     "book an activity",
			ArgsUsage: "<id>",
			Action: rt.signedIn(func(c *cli.Context) error {
				id, err := activityID(c)
				if err != nil {
					return err
				}
				return rt.reservations.Reserve(c.Context, id)
			}),
		},
		{
			Name:   "reservations",
			Usage:  "list your reservations",
			Action: rt.signedIn(func(c *cli.Context) error { return rt.reservations.Mine(c.Context) }),
		},
		{
			Name:      "cancel",
			Usage:     "cancel a reservation",
			ArgsUsage: "<id>",
			Flags:     []cli.Flag{yesFlag()},
			Action: rt.signedIn(func(c *cli.Context) error {
				id, err := activityID(c)
				if err != nil {
					return err
				}
				return rt.reservations.Cancel(c.Context, id, prompter(c))
			}),
		},
		{
			Name:  "admin",
			Usage: "manage activities",
			Subcommands: []*cli.Command{
				{
					Name:   "create",
					Usage:  "create an activity",
					Flags:  activityFlags(),
					Action: rt.signedIn(func(c *cli.Context) error { return rt.admin.Create(c.Context, activityChanges(c)) }),
				},
				{
					Name:      "update",
					Usage:     "edit an activity; omitted fields keep their value",
					ArgsUsage: "<id>",
					Flags:     activityFlags(),
					Action: rt.signedIn(func(c *cli.Context) error {
						id, err := activityID(c)
						if err != nil {
							return err
						}
						return rt.admin.Update(c.Context, id, activityChanges(c))
					}),
				},
				{
					Name:      "delete",
					Usage:     "delete an activity",
					ArgsUsage: "<id>",
					Flags:     []cli.Flag{yesFlag()},
					Action: rt.signedIn(func(c *cli.Context) error {
						id, err := activityID(c)
						if err != nil {
							return err
						}
						return rt.admin.Delete(c.Context, id, prompter(c))
					}),
				},
			},
		},
		{
			Name:  "calendar",
			Usage: "show the day picker for a month",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "month", Usage: "YYYY-MM, defaults to the current month"},
				&cli.StringFlag{Name: "selected", Usage: "YYYY-MM-DD to highlight"},
			},
			Action: func(c *cli.Context) error {
				if rt.email != "" {
					if err := rt.auth.EnsureLogin(c.Context, rt.email, rt.password); err != nil {
						return err
					}
				}
				month, err := calendarMonth(c, rt.cfg)
				if err != nil {
					return err
				}
				return rt.calendar.Show(c.Context, month, c.String("selected"))
			},
		},
	}
}

func activityFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "name"},
		&cli.StringFlag{Name: "description"},
		&cli.StringFlag{Name: "photo", Usage: "picture name or URL"},
		&cli.StringFlag{Name: "day", Usage: "YYYY-MM-DD"},
		&cli.StringFlag{Name: "time", Usage: "HH:MM"},
		&cli.StringFlag{Name: "hour", Usage: "change only the hour, 00-23"},
		&cli.StringFlag{Name: "minute", Usage: "change only the minute, 00-59"},
		&cli.StringFlag{Name: "max-people", Usage: "capacity"},
	}
}

func activityChanges(c *cli.Context) handlers.ActivityChanges {
	return handlers.ActivityChanges{
		Name:        c.String("name"),
		Description: c.String("description"),
		Photo:       c.String("photo"),
		Day:         c.String("day"),
		Time:        c.String("time"),
		Hour:        c.String("hour"),
		Minute:      c.String("minute"),
		MaxPeople:   c.String("max-people"),
	}
}

func yesFlag() cli.Flag {
	return &cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "do not ask for confirmation"}
}

func prompter(c *cli.Context) handlers.Prompter {
	return handlers.NewLinePrompter(os.Stdin, c.App.Writer, c.Bool("yes"))
}

func activityID(c *cli.Context) (string, error) {
	id := strings.TrimSpace(c.Args().First())
	if id == "" {
		return "", &handlers.UserError{Message: "Missing activity id."}
	}
	return id, nil
}

func calendarMonth(c *cli.Context, cfg *config.Config) (schedule.Month, error) {
	if value := c.String("month"); value != "" {
		month, ok := schedule.ParseMonth(value)
		if !ok {
			return schedule.Month{}, &handlers.UserError{Message: "Month must be YYYY-MM."}
		}
		return month, nil
	}
	loc, err := cfg.Location()
	if err != nil {
		return schedule.Month{}, err
	}
	return schedule.MonthOf(time.Now().In(loc)), nil
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
