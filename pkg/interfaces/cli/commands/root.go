// Package commands implements the pdm command line
package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Rushen88/PDM-sub000/pkg/application/services/orchestration"
	"github.com/Rushen88/PDM-sub000/pkg/domain/entities"
	"github.com/Rushen88/PDM-sub000/pkg/domain/repositories"
	"github.com/Rushen88/PDM-sub000/pkg/infrastructure/config"
	"github.com/Rushen88/PDM-sub000/pkg/infrastructure/events"
	"github.com/Rushen88/PDM-sub000/pkg/infrastructure/logging"
	"github.com/Rushen88/PDM-sub000/pkg/infrastructure/repositories/csv"
	"github.com/Rushen88/PDM-sub000/pkg/infrastructure/repositories/memory"
	"github.com/Rushen88/PDM-sub000/pkg/infrastructure/repositories/postgres"
	"github.com/Rushen88/PDM-sub000/pkg/interfaces/cli/output"
)

// App carries the global flags and the lazily opened engine
type App struct {
	ConfigPath string
	DataDir    string
	Format     string

	cfg     *config.Config
	logger  *zap.Logger
	pg      *postgres.Store
	engine  *orchestration.Engine
	printer *output.Printer
}

// NewRootCommand builds the pdm command tree
func NewRootCommand() *cobra.Command {
	app := &App{}
	root := &cobra.Command{
		Use:           "pdm",
		Short:         "Inventory allocation and requirement planning engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return app.Close()
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&app.ConfigPath, "config", "", "configuration file (default ./config.yaml or ./configs/config.yaml)")
	flags.StringVar(&app.DataDir, "data", "", "catalog directory with CSV files, imported on start into the memory store")
	flags.StringVarP(&app.Format, "format", "f", output.FormatText, "output format (text, json)")

	root.AddCommand(
		newSeedCommand(app),
		newProjectCommand(app),
		newRequirementsCommand(app),
		newStockCommand(app),
		newMigrateCommand(app),
	)
	return root
}

// Open loads configuration, connects the store and builds the engine.
// With the memory driver the --data catalog is imported unless skipImport is set.
func (a *App) Open(ctx context.Context, w io.Writer, skipImport bool) error {
	printer, err := output.NewPrinter(w, a.Format)
	if err != nil {
		return err
	}
	a.printer = printer

	cfg, err := config.Load(a.ConfigPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	a.logger = logger

	opts, err := orchestration.OptionsFromConfig(cfg.Planning)
	if err != nil {
		return err
	}

	var store repositories.Store
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		pg, err := postgres.Open(cfg.Database, logger.Named("postgres"))
		if err != nil {
			return err
		}
		a.pg = pg
		store = pg
	default:
		store = memory.NewStore(logger.Named("memory"))
	}

	eventStore := events.NewInMemoryEventStore(logger.Named("events"))
	if err := eventStore.Subscribe(events.AllEventTypes, events.NewLogHandler(logger.Named("audit"))); err != nil {
		return fmt.Errorf("failed to subscribe audit log: %w", err)
	}
	a.engine = orchestration.NewEngine(store, eventStore, opts, nil, logger)

	if skipImport || a.DataDir == "" || cfg.Storage.Driver != config.DriverMemory {
		return nil
	}
	_, err = a.importCatalog(ctx)
	return err
}

func (a *App) importCatalog(ctx context.Context) (int, error) {
	seed, err := csv.NewLoader().LoadDir(a.DataDir)
	if err != nil {
		return 0, err
	}
	result, err := a.engine.ImportCatalog(ctx, seed)
	if err != nil {
		return 0, err
	}
	a.logger.Debug("catalog loaded", zap.String("dir", a.DataDir), zap.Int("items", result.Items))
	return result.Items, nil
}

// Close releases the database connection and flushes the logger
func (a *App) Close() error {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	if a.pg != nil {
		return a.pg.Close()
	}
	return nil
}

func parseQuantity(s string) (entities.Quantity, error) {
	q, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid quantity %q: %w", s, err)
	}
	return q, nil
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", s, err)
	}
	return &t, nil
}
