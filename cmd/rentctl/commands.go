package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rentledger/backend/internal/bootstrap"
	"github.com/rentledger/backend/internal/domain/rental"
	"github.com/rentledger/backend/internal/infrastructure/config"
	"github.com/rentledger/backend/internal/infrastructure/logger"
	"github.com/rentledger/backend/internal/infrastructure/telemetry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

var errNotConfirmed = errors.New("refusing to run without --confirm")

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "rentctl",
		Short:         "Rent ledger operator tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")

	root.AddCommand(
		rolloverCmd(),
		refreshStatusCmd(),
		remindCmd(),
		clearPaymentsCmd(),
	)
	return root
}

func rolloverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rollover",
		Short: "Start a new billing cycle for every fully paid tenant",
		RunE: func(cmd *cobra.Command, args []string) error {
			if confirmed, _ := cmd.Flags().GetBool("confirm"); !confirmed {
				return errNotConfirmed
			}
			asOf, err := parseDateFlag(cmd, "as-of")
			if err != nil {
				return err
			}
			return withServices(cmd, func(ctx context.Context, s *bootstrap.Services) error {
				report, err := s.Rollover.RolloverAll(ctx, asOf)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), report)
			})
		},
	}
	cmd.Flags().Bool("confirm", false, "Charge every Paid tenant a new month")
	cmd.Flags().String("as-of", "", "Run as of this date (YYYY-MM-DD, default today)")
	return cmd
}

func refreshStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh-status",
		Short: "Recompute every tenant's rent status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, func(ctx context.Context, s *bootstrap.Services) error {
				report, err := s.StatusRefresh.RefreshAll(ctx, time.Now())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), report)
			})
		},
	}
}

func remindCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Text reminders to tenants who owe rent",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, _ := cmd.Flags().GetStringSlice("status")
			statuses := make([]rental.RentStatus, 0, len(raw))
			for _, value := range raw {
				status, err := rental.ParseRentStatus(value)
				if err != nil {
					return err
				}
				statuses = append(statuses, status)
			}
			daysBefore, _ := cmd.Flags().GetInt("days-before")

			return withServices(cmd, func(ctx context.Context, s *bootstrap.Services) error {
				if daysBefore > 0 {
					result, err := s.Notifications.SendUpcomingReminders(ctx, time.Now(), daysBefore)
					if err != nil {
						return err
					}
					return printJSON(cmd.OutOrStdout(), result)
				}
				result, err := s.Notifications.SendBulkReminders(ctx, statuses)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), result)
			})
		},
	}
	cmd.Flags().StringSlice("status", nil, "Only tenants in these statuses (Unpaid, Partial, Overdue)")
	cmd.Flags().Int("days-before", 0, "Only tenants whose due date is this many days away")
	return cmd
}

func clearPaymentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear-payments",
		Short: "Archive and delete payments older than --days",
		RunE: func(cmd *cobra.Command, args []string) error {
			if confirmed, _ := cmd.Flags().GetBool("confirm"); !confirmed {
				return errNotConfirmed
			}
			days, _ := cmd.Flags().GetInt("days")
			if days < 1 {
				return fmt.Errorf("--days must be at least 1, got %d", days)
			}
			actor, _ := cmd.Flags().GetString("actor")

			return withServices(cmd, func(ctx context.Context, s *bootstrap.Services) error {
				result, err := s.Archive.ClearPaymentsOlderThan(ctx, days, actor)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), result)
			})
		},
	}
	cmd.Flags().Int("days", 0, "Age in days of the newest payment to remove")
	cmd.Flags().Bool("confirm", false, "Delete the payments")
	cmd.Flags().String("actor", rental.SystemActor, "Name recorded in the archive")
	return cmd
}

// withServices opens the database, wires the services and runs fn
func withServices(cmd *cobra.Command, fn func(ctx context.Context, s *bootstrap.Services) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	level, _ := cmd.Flags().GetString("log-level")
	log, err := logger.New(&logger.Config{
		Level:      level,
		Format:     "console",
		Output:     "stderr",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	tp, err := telemetry.NewTracerProvider(ctx, bootstrap.TracerConfig(cfg, version), log)
	if err != nil {
		return err
	}
	defer func() {
		if err := tp.ForceFlush(context.Background()); err != nil {
			log.Warn("Failed to flush spans", zap.Error(err))
		}
		_ = tp.Shutdown(context.Background())
	}()

	db, err := bootstrap.OpenDatabase(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	services, err := bootstrap.NewServices(ctx, cfg, db, time.Local, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := services.Close(context.Background()); err != nil {
			log.Error("Error closing services", zap.Error(err))
		}
	}()

	return fn(ctx, services)
}

func parseDateFlag(cmd *cobra.Command, name string) (time.Time, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		return time.Now(), nil
	}
	t, err := time.ParseInLocation(dateLayout, raw, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s must be YYYY-MM-DD: %w", name, err)
	}
	return t, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
