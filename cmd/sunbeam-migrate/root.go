package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sunbeamcloud/sunbeam-migrate/internal/config"
	"github.com/sunbeamcloud/sunbeam-migrate/internal/handlers"
	"github.com/sunbeamcloud/sunbeam-migrate/internal/ledger"
	"github.com/sunbeamcloud/sunbeam-migrate/internal/logging"
	"github.com/sunbeamcloud/sunbeam-migrate/internal/orchestrate"
	"github.com/sunbeamcloud/sunbeam-migrate/internal/registry"
	"github.com/sunbeamcloud/sunbeam-migrate/internal/uitable"
)

// outputFormat backs the shared -f/--format flag every read/write command
// exposes (§6, "list"/"show"/"capabilities" output formats).
var outputFormat string

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "table", "output format: table or json")
}

func format() uitable.Format {
	if outputFormat == string(uitable.FormatJSON) {
		return uitable.FormatJSON
	}
	return uitable.FormatTable
}

// app bundles the wiring every command needs: configuration, logging, the
// Ledger, the handler Registry, and the Orchestrator built from them.
type app struct {
	cfg   *config.Config
	log   *slog.Logger
	store *ledger.Store
	reg   *registry.Registry
	orch  *orchestrate.Orchestrator
}

// bootstrap loads configuration, sets up logging, opens the Ledger, and
// wires the Registry and Orchestrator. requireMigration gates the
// source/destination-cloud-name and cloud-config-file checks that only
// migration-performing commands need (§6: administrative commands like
// `list`/`show`/`delete`/`restore` work against a bare database_file).
func bootstrap(ctx context.Context, requireMigration bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if requireMigration {
		if err := cfg.RequireMigrationFields(); err != nil {
			return nil, err
		}
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogDir, cfg.LogConsole)
	if err != nil {
		return nil, fmt.Errorf("setting up logging: %w", err)
	}

	store, err := ledger.Open(ctx, cfg.DatabaseFile)
	if err != nil {
		return nil, err
	}

	reg := registry.New(handlers.Registered())
	orch := orchestrate.New(store, reg, cfg.SourceCloudName, cfg.DestinationCloudName, cfg.MultitenantMode, log)

	return &app{cfg: cfg, log: log, store: store, reg: reg, orch: orch}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}
