package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/giygas/medication-catalog/config"
	"github.com/giygas/medication-catalog/entities"
	"github.com/giygas/medication-catalog/handlers"
	"github.com/giygas/medication-catalog/health"
	"github.com/giygas/medication-catalog/importer"
	"github.com/giygas/medication-catalog/logging"
	"github.com/giygas/medication-catalog/scheduler"
	"github.com/giygas/medication-catalog/server"
	"github.com/giygas/medication-catalog/session"
	"github.com/giygas/medication-catalog/store"
	"github.com/giygas/medication-catalog/validation"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var verbose bool

func main() {
	rootCmd := &cobra.Command{
		Use:   "medication-catalog",
		Short: "Local medication catalog with an Arabic web interface",
		Long: `medication-catalog manages a local SQLite catalog of medications,
their classifications and age/weight dosing estimates.

Examples:

  medication-catalog init-db
  medication-catalog serve
  medication-catalog info
`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log info records to the console in test mode")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(initDBCmd())
	rootCmd.AddCommand(infoCmd())

	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed, color.Bold).Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}

// loadEnv reads .env from the working directory, then from the directory of
// the executable. A missing file is not an error.
func loadEnv() {
	if err := godotenv.Load(); err == nil {
		return
	}

	ex, err := os.Executable()
	if err != nil {
		return
	}
	_ = godotenv.Load(filepath.Join(filepath.Dir(ex), ".env"))
}

// setup loads configuration and initializes logging.
func setup() (*config.Config, *logging.LoggingService, error) {
	loadEnv()

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	logSvc := logging.InitLoggerWithOptions(logging.Options{
		Dir:            cfg.LogDir,
		RetentionWeeks: cfg.LogRetentionWeeks,
		MaxFileSize:    cfg.MaxLogFileSize,
		Env:            cfg.Env,
		Level:          cfg.LogLevel,
		Verbose:        verbose,
	})
	return cfg, logSvc, nil
}

func openStore(ctx context.Context, cfg *config.Config) (*store.SQLiteStore, error) {
	return store.Open(ctx, store.Config{
		Path:       cfg.DBPath,
		SchemaPath: cfg.SchemaPath,
		SeedPath:   cfg.SeedPath,
	})
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the web interface and JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func runServer() error {
	cfg, logSvc, err := setup()
	if err != nil {
		return err
	}
	defer logSvc.Close()

	ctx := context.Background()
	catalog, err := openStore(ctx, cfg)
	if err != nil {
		logging.Error("Failed to open catalog database", "path", cfg.DBPath, "error", err)
		return err
	}
	defer catalog.Close()

	sessions := session.NewManager(cfg.SessionTTL)
	validator := validation.NewDataValidator()
	healthChecker := health.NewHealthChecker(catalog)

	jobs := scheduler.NewScheduler(catalog, sessions, scheduler.Options{
		RefreshInterval: cfg.MetricsRefreshInterval,
	})
	if err := jobs.Start(); err != nil {
		logging.Error("Failed to start scheduler", "error", err)
		return err
	}
	defer jobs.Stop()

	handler := handlers.NewHTTPHandler(catalog, validator, healthChecker, importer.New(cfg.ImportPreviewRows), cfg.MaxRequestBody)
	srv := server.NewServer(cfg, handler, sessions)

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-quit:
	case err := <-errCh:
		if err != nil {
			logging.Error("Server failed to start", "error", err)
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func initDBCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-db",
		Short: "Create and seed the database file if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logSvc, err := setup()
			if err != nil {
				return err
			}
			defer logSvc.Close()

			_, statErr := os.Stat(cfg.DBPath)
			existed := statErr == nil

			catalog, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer catalog.Close()

			if existed {
				color.New(color.FgYellow, color.Bold).Printf("⚠️  %s already exists, left untouched\n", cfg.DBPath)
				return nil
			}
			color.New(color.FgGreen, color.Bold).Printf("✅ Created %s from schema and seed data\n", cfg.DBPath)
			return nil
		},
	}
}

func infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show database size, row counts and data quality gaps",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logSvc, err := setup()
			if err != nil {
				return err
			}
			defer logSvc.Close()

			ctx := cmd.Context()
			catalog, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer catalog.Close()

			info, err := catalog.Info(ctx)
			if err != nil {
				return err
			}

			blue := color.New(color.FgBlue, color.Bold)
			cyan := color.New(color.FgCyan)
			yellow := color.New(color.FgYellow)
			green := color.New(color.FgGreen)

			blue.Printf("📦 %s (%d bytes)\n", info.Path, info.SizeBytes)
			for _, kind := range entities.AllKinds {
				cyan.Printf("   %-22s", kind)
				fmt.Printf(" %d\n", info.RowCounts[kind])
			}

			meds, err := catalog.ListMedications(ctx)
			if err != nil {
				return err
			}
			report := validation.NewDataValidator().ReportDataQuality(meds)

			gaps := []struct {
				label string
				count int
			}{
				{"duplicate generic names", len(report.DuplicateGenericNames)},
				{"without category", report.MedicationsWithoutCategory},
				{"without availability", report.MedicationsWithoutAvailability},
				{"without dosing", report.MedicationsWithoutDosing},
			}

			blue.Println("🔍 Data quality")
			for _, g := range gaps {
				c := green
				if g.count > 0 {
					c = yellow
				}
				c.Printf("   %-24s %d\n", g.label, g.count)
			}
			return nil
		},
	}
}
