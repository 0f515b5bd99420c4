package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/avwhitney/stagehand/internal/config"
	"github.com/avwhitney/stagehand/internal/interactions"
	"github.com/avwhitney/stagehand/pkg/clients/calendarclient"
	"github.com/avwhitney/stagehand/pkg/clients/discordclient"
	"github.com/avwhitney/stagehand/pkg/core/model"
	"github.com/avwhitney/stagehand/pkg/core/services"
	"github.com/avwhitney/stagehand/pkg/postgres"
	"github.com/avwhitney/stagehand/pkg/utils/logging"
)

// App holds the application dependencies
type App struct {
	cfg            *config.Config
	calendarClient *calendarclient.Client
	discordClient  *discordclient.Client
	database       *postgres.DB
	service        *services.Service
	logger         *zap.Logger
	ctx            context.Context
}

var app *App

func main() {
	rootCmd := &cobra.Command{
		Use:   "stagehand",
		Short: "Stagehand - volunteer signups for shows",
		Long:  `Stagehand keeps show cards on Discord in sync with a Google Calendar and tracks who is working the door, the desk and the books.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp(cmd.Context())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil {
				if app.database != nil {
					app.database.Close()
				}
				if app.logger != nil {
					app.logger.Sync()
				}
			}
		},
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(syncCmd())
	rootCmd.AddCommand(publishCmd())
	rootCmd.AddCommand(upcomingCmd())
	rootCmd.AddCommand(reportCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config, clients, database and the service
func initApp(ctx context.Context) error {
	var err error
	app = &App{ctx: ctx}

	app.logger, err = logging.InitLogger("stagehand")
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.logger.Info("Loading configuration")
	app.cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	app.logger.Info("Loading OAuth client configuration")
	oauthCfg, err := config.LoadOAuthClient()
	if err != nil {
		return fmt.Errorf("failed to load OAuth client config: %w", err)
	}

	app.logger.Info("Initializing calendar client")
	app.calendarClient, err = calendarclient.NewClient(app.ctx, oauthCfg, app.cfg.Calendar.CalendarID)
	if err != nil {
		return fmt.Errorf("failed to create calendar client: %w", err)
	}

	app.logger.Info("Connecting to database")
	app.database, err = postgres.NewDB(app.ctx, app.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := app.database.RunMigrations(app.ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	app.discordClient = discordclient.NewClient(app.cfg.Discord.BotToken, app.cfg.Discord.ShowChannelID)

	modeRules, err := parseModeRules(app.cfg)
	if err != nil {
		return err
	}

	app.service = services.NewService(
		app.database,
		app.database,
		app.discordClient,
		app.cfg.Styles(),
		services.Defaults{
			NeededBookers: app.cfg.Defaults.NeededBookers,
			NeededDoors:   app.cfg.Defaults.NeededDoors,
			NeededSound:   app.cfg.Defaults.NeededSound,
		},
		modeRules,
		app.cfg.Location(),
		app.logger,
	)

	app.logger.Info("Application initialized")
	return nil
}

// parseModeRules compiles the configured mode overrides. Config
// validation has already checked the rrule and mode syntax.
func parseModeRules(cfg *config.Config) ([]services.ModeRule, error) {
	rules := make([]services.ModeRule, 0, len(cfg.ModeOverrides))
	for _, override := range cfg.ModeOverrides {
		rule, err := rrule.StrToRRule(override.RRule)
		if err != nil {
			return nil, fmt.Errorf("failed to parse mode override rrule %q: %w", override.RRule, err)
		}
		rules = append(rules, services.ModeRule{Rule: rule, Mode: model.Mode(override.Mode)})
	}
	return rules, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the interactions webhook and the calendar sync loop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.logger.Info("Registering slash commands",
				zap.String("application_id", app.cfg.Discord.ApplicationID))
			if err := app.discordClient.RegisterCommands(app.ctx, app.cfg.Discord.ApplicationID); err != nil {
				return err
			}

			handler, err := interactions.NewHandler(
				app.service,
				app.cfg.Styles(),
				app.cfg.Discord.PublicKey,
				app.cfg.Discord.AdminRole,
				app.logger,
			)
			if err != nil {
				return fmt.Errorf("failed to create interactions handler: %w", err)
			}

			mux := http.NewServeMux()
			mux.Handle("/interactions", handler)

			server := &http.Server{
				Addr:         app.cfg.ListenAddr,
				Handler:      mux,
				ReadTimeout:  10 * time.Second,
				WriteTimeout: 10 * time.Second,
			}

			scheduler := cron.New()
			_, err = scheduler.AddFunc(app.cfg.Calendar.SyncCron, func() {
				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
				defer cancel()

				if _, err := app.service.SyncEvents(ctx, app.calendarClient); err != nil {
					app.logger.Error("Scheduled calendar sync failed", zap.Error(err))
					return
				}
				if _, err := app.service.PublishCards(ctx); err != nil {
					app.logger.Error("Scheduled card publishing failed", zap.Error(err))
				}
			})
			if err != nil {
				return fmt.Errorf("failed to schedule calendar sync: %w", err)
			}
			scheduler.Start()
			defer scheduler.Stop()

			errCh := make(chan error, 1)
			go func() {
				app.logger.Info("Interactions webhook listening", zap.String("addr", app.cfg.ListenAddr))
				errCh <- server.ListenAndServe()
			}()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

			select {
			case err := <-errCh:
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("webhook server failed: %w", err)
				}
			case sig := <-stop:
				app.logger.Info("Shutting down", zap.String("signal", sig.String()))
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					return fmt.Errorf("failed to shut down webhook server: %w", err)
				}
			}

			return nil
		},
	}
}

func syncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Pull upcoming events from the calendar into the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := app.service.SyncEvents(app.ctx, app.calendarClient)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Calendar sync complete\n\n")
			fmt.Printf("New events:       %d\n", result.Created)
			fmt.Printf("Refreshed events: %d\n\n", result.Refreshed)

			return nil
		},
	}
}

func publishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "publish",
		Short: "Post show cards for upcoming events that don't have one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := app.service.PublishCards(app.ctx)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Publishing complete\n\n")
			fmt.Printf("Cards posted:  %d\n", result.Created)
			fmt.Printf("Cards healed:  %d\n", result.Healed)
			fmt.Printf("Cards live:    %d\n\n", result.Skipped)

			return nil
		},
	}
}

func upcomingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upcoming",
		Short: "List upcoming shows and the volunteers they still need",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := app.service.Upcoming(app.ctx)
			if err != nil {
				return err
			}

			if len(items) == 0 {
				fmt.Println("No upcoming shows.")
				return nil
			}

			styles := app.cfg.Styles()
			loc := app.cfg.Location()

			fmt.Printf("\nFound %d upcoming shows:\n\n", len(items))
			for _, item := range items {
				needed := "card not posted yet"
				if item.HasCard {
					needed = "Needed: " + item.NeededString(styles)
				}
				fmt.Printf("- %s  %s  [%s]  %s\n",
					item.Event.StartTime.In(loc).Format("2006-01-02 15:04"),
					item.Event.Summary,
					item.Event.Mode,
					needed,
				)
			}
			fmt.Println()

			return nil
		},
	}
}

func reportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report <start> <end>",
		Short: "Count signups per volunteer over a date range",
		Long:  "Count signups per volunteer across shows starting between the two dates, given as YYYY-MM-DD.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc := app.cfg.Location()

			start, err := time.ParseInLocation("2006-01-02", args[0], loc)
			if err != nil {
				return fmt.Errorf("start date must look like 2026-01-31: %w", err)
			}
			end, err := time.ParseInLocation("2006-01-02", args[1], loc)
			if err != nil {
				return fmt.Errorf("end date must look like 2026-01-31: %w", err)
			}
			end = end.AddDate(0, 0, 1).Add(-time.Second)

			entries, err := app.service.Report(app.ctx, start, end)
			if err != nil {
				return err
			}

			if len(entries) == 0 {
				fmt.Println("No signups in that window.")
				return nil
			}

			fmt.Printf("\nSignups per volunteer (%s to %s):\n\n", args[0], args[1])
			for _, entry := range entries {
				fmt.Printf("  %-24s %d\n", entry.UserID, entry.Count)
			}
			fmt.Println()

			return nil
		},
	}
}
