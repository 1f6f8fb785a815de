package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hyperjump/ruslat/internal/cache"
	"github.com/hyperjump/ruslat/internal/cli"
	"github.com/hyperjump/ruslat/internal/client"
	"github.com/hyperjump/ruslat/internal/config"
	"github.com/hyperjump/ruslat/internal/models"
)

// buildQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// remoteOptions are the flags of commands that can talk to a server.
type remoteOptions struct {
	serverURL string
	local     bool
	format    string
}

func (r *remoteOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&r.serverURL, "server", "", "server URL (overrides config)")
	cmd.Flags().BoolVar(&r.local, "local", false, "read the local database instead of asking the server")
	cmd.Flags().StringVar(&r.format, "format", "text", "output format: text or json")
}

// newClient builds a client for the configured server with the configured cache.
func (r *remoteOptions) newClient(cfg *config.Config, logger *zap.Logger) (*client.Client, error) {
	if r.serverURL != "" {
		cfg.Client.ServerURL = r.serverURL
	}
	c, err := cache.New(&cfg.Client, &cfg.Redis)
	if err != nil {
		return nil, err
	}
	return client.NewFromConfig(&cfg.Client, c, logger), nil
}

func newSearchCmd(opts *globalOptions) *cobra.Command {
	var ro remoteOptions
	cmd := &cobra.Command{
		Use:   "search [query...]",
		Short: "Find users whose names match every word of the query",
		Long: `Find users whose names match every word of the query.

Each word may be typed in the wrong keyboard layout or in the other alphabet:
  ruslat search petrov        # finds "Иван Петров"
  ruslat search jkmuf         # "ольга" typed on a Latin layout
  ruslat search иван петров   # word order does not matter

With no query every user is listed. The server is asked first; when it is
unreachable the local database is used.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := cli.ParseOutputFormat(ro.format)
			if err != nil {
				return err
			}
			cfg, logger, err := opts.setup(true)
			if err != nil {
				return err
			}
			defer logger.Sync()
			query := buildQuery(args)
			ctx := cmd.Context()

			if !ro.local {
				cl, err := ro.newClient(cfg, logger)
				if err != nil {
					return err
				}
				users, err := cl.SearchUsers(ctx, query)
				if err == nil {
					return cli.WriteUsers(cmd.OutOrStdout(), users, format)
				}
				if !errors.Is(err, client.ErrUnavailable) {
					return err
				}
				logger.Warn("server unavailable, searching local database", zap.Error(err))
			}

			users, err := searchLocal(ctx, cfg, logger, query)
			if err != nil {
				return err
			}
			return cli.WriteUsers(cmd.OutOrStdout(), users, format)
		},
	}
	ro.register(cmd)
	return cmd
}

func searchLocal(ctx context.Context, cfg *config.Config, logger *zap.Logger, query string) ([]*models.User, error) {
	components, err := initializeComponents(ctx, cfg, logger, false)
	if err != nil {
		return nil, err
	}
	defer components.Close()
	return components.Engine.Search(query), nil
}

func newLookupCmd(opts *globalOptions) *cobra.Command {
	var ro remoteOptions
	cmd := &cobra.Command{
		Use:   "lookup <page>",
		Short: "Print the ids of users whose page handle matches",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := cli.ParseOutputFormat(ro.format)
			if err != nil {
				return err
			}
			cfg, logger, err := opts.setup(true)
			if err != nil {
				return err
			}
			defer logger.Sync()
			page := buildQuery(args)
			ctx := cmd.Context()

			var ids []string
			if ro.local {
				components, err := initializeComponents(ctx, cfg, logger, false)
				if err != nil {
					return err
				}
				defer components.Close()
				if ids, err = components.Engine.SearchByPage(page); err != nil {
					return err
				}
			} else {
				cl, err := ro.newClient(cfg, logger)
				if err != nil {
					return err
				}
				if ids, err = cl.SearchByPage(ctx, page); err != nil {
					return err
				}
			}
			if len(ids) == 0 && format == cli.OutputText {
				fmt.Fprintln(cmd.ErrOrStderr(), "Nothing found.")
				return nil
			}
			return cli.WriteIDs(cmd.OutOrStdout(), ids, format)
		},
	}
	ro.register(cmd)
	return cmd
}
