// Command playbook projects fantasy-basketball category totals for the
// rest of the scoring week.
//
// Usage:
//
//	playbook auth url
//	playbook auth exchange CODE
//	playbook project own --games 5
//	playbook project opponent --json
//	playbook project players "Stephen Curry:GS" "Nikola Jokic"
//	playbook matchup
//	playbook resolve "Jaren Jackson Jr." --team MEM
//	playbook serve
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/albapepper/fantasy-playbook/internal/api"
	"github.com/albapepper/fantasy-playbook/internal/cache"
	"github.com/albapepper/fantasy-playbook/internal/config"
	"github.com/albapepper/fantasy-playbook/internal/maintenance"
	"github.com/albapepper/fantasy-playbook/internal/playbook"
	"github.com/albapepper/fantasy-playbook/internal/provider"
	"github.com/albapepper/fantasy-playbook/internal/roster"
)

var logger = slog.Default()

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:           "playbook",
		Short:         "Weekly fantasy-basketball category projections",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(authCmd())
	root.AddCommand(projectCmd())
	root.AddCommand(matchupCmd())
	root.AddCommand(resolveCmd())
	root.AddCommand(serveCmd())

	if err := root.Execute(); err != nil {
		logger.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

// newLogger writes to stderr so projection output on stdout stays clean.
// Production gets JSON lines for log shipping.
func newLogger(level string, production bool) *slog.Logger {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		l = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: l}
	if production {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// loadConfig reads configuration and rebuilds the logger from it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger = newLogger(cfg.LogLevel, cfg.IsProduction())
	slog.SetDefault(logger)
	return cfg, nil
}

// --------------------------------------------------------------------------
// auth command
// --------------------------------------------------------------------------

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize access to the Yahoo Fantasy API",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "url",
		Short: "Print the page that grants access",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if !cfg.HasYahooCredentials() {
				return fmt.Errorf("YAHOO_CLIENT_ID and YAHOO_CLIENT_SECRET are required")
			}
			fmt.Fprintln(cmd.OutOrStdout(), oauthConfig(cfg).AuthCodeURL("playbook"))
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "exchange CODE",
		Short: "Trade the code shown after granting access for a stored token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if !cfg.HasYahooCredentials() {
				return fmt.Errorf("YAHOO_CLIENT_ID and YAHOO_CLIENT_SECRET are required")
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			if err := oauthConfig(cfg).Exchange(ctx, args[0]); err != nil {
				return err
			}
			logger.Info("Token stored", "path", cfg.YahooTokenFile)
			return nil
		},
	})
	return cmd
}

// --------------------------------------------------------------------------
// project command
// --------------------------------------------------------------------------

func projectCmd() *cobra.Command {
	var (
		games   int
		asJSON  bool
		details bool
	)
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Project category totals through the end of the week",
	}
	cmd.PersistentFlags().IntVar(&games, "games", 0, "Recent games to average (default LOOKBACK_GAMES)")
	cmd.PersistentFlags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	cmd.PersistentFlags().BoolVar(&details, "breakdown", false, "Include the per-player breakdown")

	run := func(project func(ctx context.Context, svc *playbook.Service) (*playbook.Report, error)) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("games") && games <= 0 {
				return fmt.Errorf("--games must be at least 1")
			}
			return runApp(func(ctx context.Context, a *app) error {
				report, err := project(ctx, a.svc)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), report)
				}
				return writeReport(cmd.OutOrStdout(), report, details)
			})
		}
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "own",
		Short: "Project the logged-in team",
		RunE: run(func(ctx context.Context, svc *playbook.Service) (*playbook.Report, error) {
			return svc.ProjectOwn(ctx, games)
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "opponent",
		Short: "Project this week's opponent",
		RunE: run(func(ctx context.Context, svc *playbook.Service) (*playbook.Report, error) {
			return svc.ProjectOpponent(ctx, games)
		}),
	})

	players := &cobra.Command{
		Use:   "players NAME[:TEAM]...",
		Short: "Project an explicit list of players",
		Args:  cobra.MinimumNArgs(1),
	}
	players.RunE = func(cmd *cobra.Command, args []string) error {
		entries := parseEntries(args)
		return run(func(ctx context.Context, svc *playbook.Service) (*playbook.Report, error) {
			return svc.ProjectRoster(ctx, playbook.SideCustom, entries, games)
		})(cmd, args)
	}
	cmd.AddCommand(players)
	return cmd
}

// parseEntries turns "Name:TEAM" arguments into roster entries.
func parseEntries(args []string) []provider.RosterEntry {
	entries := make([]provider.RosterEntry, 0, len(args))
	for _, arg := range args {
		name, team, _ := strings.Cut(arg, ":")
		entries = append(entries, provider.RosterEntry{
			DisplayName: strings.TrimSpace(name),
			TeamHint:    roster.NormalizeTeam(team),
		})
	}
	return entries
}

// --------------------------------------------------------------------------
// matchup command
// --------------------------------------------------------------------------

func matchupCmd() *cobra.Command {
	var (
		games  int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "matchup",
		Short: "Compare projected totals against this week's opponent",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("games") && games <= 0 {
				return fmt.Errorf("--games must be at least 1")
			}
			return runApp(func(ctx context.Context, a *app) error {
				report, err := a.svc.Matchup(ctx, games)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), report)
				}
				return writeMatchup(cmd.OutOrStdout(), report)
			})
		},
	}
	cmd.Flags().IntVar(&games, "games", 0, "Recent games to average (default LOOKBACK_GAMES)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

// --------------------------------------------------------------------------
// resolve command
// --------------------------------------------------------------------------

func resolveCmd() *cobra.Command {
	var team string
	cmd := &cobra.Command{
		Use:   "resolve NAME",
		Short: "Look up a player's statistics-provider id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(func(ctx context.Context, a *app) error {
				id, err := a.svc.Resolve(ctx, args[0], roster.NormalizeTeam(team))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", args[0], id)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&team, "team", "", "Team abbreviation to break last-name ties")
	return cmd
}

// --------------------------------------------------------------------------
// serve command
// --------------------------------------------------------------------------

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(func(ctx context.Context, a *app) error {
				go maintenance.Start(ctx, maintenanceTasks(a), logger)

				router := api.NewRouter(a.svc, a.store, a.cfg, logger)

				addr := fmt.Sprintf("%s:%d", a.cfg.APIHost, a.cfg.APIPort)
				srv := &http.Server{
					Addr:         addr,
					Handler:      router,
					ReadTimeout:  10 * time.Second,
					WriteTimeout: 3 * time.Minute,
					IdleTimeout:  60 * time.Second,
				}

				errCh := make(chan error, 1)
				go func() {
					logger.Info("Starting Fantasy Playbook API",
						"addr", addr,
						"environment", a.cfg.Environment)
					if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
						errCh <- err
					}
					close(errCh)
				}()

				// Wait for interrupt or a listener failure
				select {
				case <-ctx.Done():
				case err := <-errCh:
					if err != nil {
						return fmt.Errorf("server failed: %w", err)
					}
				}
				logger.Info("Shutting down...")

				// Graceful shutdown with timeout
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer shutdownCancel()

				if err := srv.Shutdown(shutdownCtx); err != nil {
					logger.Error("Shutdown error", "error", err)
				}
				logger.Info("Server stopped")
				return nil
			})
		},
	}
}

// maintenanceTasks refreshes the registry and, with a fantasy provider,
// re-projects the matchup from upstream so provider caches hold fresh data.
func maintenanceTasks(a *app) []maintenance.Task {
	tasks := []maintenance.Task{{
		Name:     "registry-refresh",
		Interval: a.cfg.RegistryRefreshInterval,
		Run:      a.registry.Refresh,
	}}
	if a.cfg.HasYahooCredentials() {
		tasks = append(tasks, maintenance.Task{
			Name:     "cache-warm",
			Interval: a.cfg.CacheWarmInterval,
			Run: func(ctx context.Context) error {
				_, err := a.svc.Matchup(cache.Bypass(ctx), 0)
				return err
			},
		})
	}
	return tasks
}
