package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/dentalcare-api/internal/service"
	"github.com/noah-isme/dentalcare-api/pkg/config"
	"github.com/noah-isme/dentalcare-api/pkg/database"
	"github.com/noah-isme/dentalcare-api/pkg/logger"
)

// @title Dentalcare API
// @version 1.0.0
// @description Appointment scheduling for a dental clinic
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	rootCmd := &cobra.Command{
		Use:          "dentalcare",
		Short:        "Dental clinic appointment scheduling API",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(slotsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return runServer(cfg)
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logr, err := logger.New(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer logr.Sync() //nolint:errcheck

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
			defer cancel()

			db, err := database.NewPostgres(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			applied, err := database.NewMigrator(db, nil, logr).Up(ctx)
			if err != nil {
				return err
			}
			logr.Info("migrations complete", zap.Int("applied", applied))
			fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s)\n", applied)
			return nil
		},
	}
}

func slotsCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "slots",
		Short: "Print the bookable time slots of a clinic day",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return printSlots(cmd.OutOrStdout(), slotOptions(cfg.Clinic), date, time.Now(), cfg.Clinic.Location())
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "clinic day (YYYY-MM-DD) to check for bookability")
	return cmd
}

func slotOptions(c config.ClinicConfig) service.SlotOptions {
	return service.SlotOptions{OpenHour: c.OpenHour, CloseHour: c.CloseHour, StepMinutes: c.SlotMinutes}
}

func printSlots(w io.Writer, opts service.SlotOptions, date string, now time.Time, loc *time.Location) error {
	if date != "" {
		if _, err := service.ParseLocalDate(date, loc); err != nil {
			return fmt.Errorf("invalid date %q: %w", date, err)
		}
		state := "bookable"
		if !service.IsBookableDate(date, now, loc) {
			state = "not bookable"
		}
		fmt.Fprintf(w, "%s is %s\n", date, state)
	}
	for _, slot := range service.GenerateTimeSlots(opts) {
		fmt.Fprintln(w, slot.Display)
	}
	return nil
}
