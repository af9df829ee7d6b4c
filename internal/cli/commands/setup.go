package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/argtable/internal/cli/config"
	"github.com/leapstack-labs/argtable/internal/macro"
	"github.com/leapstack-labs/argtable/internal/output"
	"github.com/leapstack-labs/argtable/internal/registry"
	"github.com/leapstack-labs/argtable/internal/state"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext from the loaded configuration.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	mode, err := output.ParseMode(cfg.OutputFormat)
	if err != nil {
		return nil, err
	}
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}, nil
}

// BuildRegistry loads builtins, the prelude and user macros.
func (cc *CommandContext) BuildRegistry(ctx context.Context) (*registry.CallableRegistry, error) {
	return macro.BuildRegistry(ctx, macro.BuildOptions{
		MacrosDir:        cc.Cfg.MacrosDir,
		DefaultNamespace: cc.Cfg.DefaultNamespace,
		Concurrency:      cc.Cfg.Concurrency,
		Logger:           cc.Logger,
	})
}

// OpenStore opens and migrates the state database.
// The returned cleanup function must be called (typically via defer).
func (cc *CommandContext) OpenStore() (*state.SQLiteStore, func(), error) {
	if err := ensureStateDir(cc.Cfg.StatePath); err != nil {
		return nil, nil, err
	}

	store := state.NewSQLiteStore()
	if err := store.Open(cc.Cfg.StatePath); err != nil {
		return nil, nil, fmt.Errorf("failed to open state database: %w", err)
	}
	if err := store.Migrate(); err != nil {
		_ = store.Close()
		return nil, nil, err
	}

	version, err := store.GetMigrationVersion()
	if err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("failed to read schema version: %w", err)
	}
	cc.Logger.Debug("state store opened", "path", cc.Cfg.StatePath, "schema_version", version)
	return store, func() { _ = store.Close() }, nil
}

// getConfig returns the loaded configuration, or defaults when none was loaded.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return config.Default()
}

func ensureStateDir(statePath string) error {
	if statePath == ":memory:" {
		return nil
	}
	stateDir := filepath.Dir(statePath)
	if stateDir != "." && stateDir != "" {
		if err := os.MkdirAll(stateDir, 0750); err != nil {
			return fmt.Errorf("failed to create state directory: %w", err)
		}
	}
	return nil
}
