// Package main is the ruslat CLI entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hyperjump/ruslat/internal/config"
	"github.com/hyperjump/ruslat/internal/indexer"
	"github.com/hyperjump/ruslat/internal/search"
	"github.com/hyperjump/ruslat/internal/storage"
	"github.com/hyperjump/ruslat/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/ruslat/config.yaml"

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	debug      bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:           "ruslat",
		Short:         "User lookup that tolerates keyboard layout and transliteration mistakes",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", defaultConfigPath, "config file path")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newServerCmd(opts),
		newSearchCmd(opts),
		newLookupCmd(opts),
		newPickCmd(opts),
		newImportCmd(opts),
		newVariationsCmd(),
		newConfigCmd(opts),
		newVersionCmd(),
	)
	return root
}

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); when neither exists the
// built-in defaults are used. Returns the config and the path that was actually
// loaded, empty for defaults.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return config.Default(), "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// setup loads the config and builds a logger. Server logs use the production
// encoder; interactive commands log to stderr at warn level unless debugging.
func (o *globalOptions) setup(interactive bool) (*config.Config, *zap.Logger, error) {
	cfg, resolved, err := loadConfig(o.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	debug := cfg.Debug || o.debug
	newLogger := utils.NewLogger
	if interactive {
		newLogger = utils.NewCLILogger
	}
	logger, err := newLogger(debug)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	logger.Debug("config loaded", zap.String("config_path", resolved), zap.Bool("debug", debug))
	return cfg, logger, nil
}

// Components holds the local storage-backed services.
type Components struct {
	Storage *storage.SQLiteStorage
	Engine  *search.Engine
	Indexer *indexer.Indexer
}

// Close releases storage.
func (c *Components) Close() {
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
}

// initializeComponents opens storage and loads the engine. When importUsers is
// set and the config names a users file that exists, the file is imported first.
func initializeComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger, importUsers bool) (*Components, error) {
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	c := &Components{Storage: store}
	c.Engine = search.NewEngine(store, &cfg.Search, logger)
	c.Indexer = indexer.NewIndexer(store, c.Engine, indexer.WithLogger(logger))

	if importUsers && cfg.Data.UsersFile != "" {
		if _, statErr := os.Stat(cfg.Data.UsersFile); statErr == nil {
			if _, err := c.Indexer.ImportFile(ctx, cfg.Data.UsersFile); err != nil {
				c.Close()
				return nil, fmt.Errorf("failed to import %s: %w", cfg.Data.UsersFile, err)
			}
			return c, nil
		}
		logger.Warn("users file not found, serving stored users", zap.String("path", cfg.Data.UsersFile))
	}
	if err := c.Engine.Reload(ctx); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}
