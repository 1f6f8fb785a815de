package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hyperjump/ruslat/internal/cli"
	"github.com/hyperjump/ruslat/internal/client"
	"github.com/hyperjump/ruslat/internal/dropdown"
	"github.com/hyperjump/ruslat/internal/models"
	"github.com/hyperjump/ruslat/internal/search"
)

var errCancelled = errors.New("selection cancelled")

// localRemote answers page lookups from the local engine.
type localRemote struct {
	engine *search.Engine
}

func (l localRemote) SearchByPage(_ context.Context, page string) ([]string, error) {
	return l.engine.SearchByPage(page)
}

func newPickCmd(opts *globalOptions) *cobra.Command {
	var (
		ro          remoteOptions
		caps        = dropdown.Capabilities{Autocomplete: true, ShowPageHandle: true}
		placeholder string
	)
	cmd := &cobra.Command{
		Use:   "pick",
		Short: "Choose users interactively from a searchable dropdown",
		Args:  cobra.NoArgs,
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
			ctx := cmd.Context()

			var (
				users  []*models.User
				remote dropdown.Remote
			)
			if !ro.local {
				cl, err := ro.newClient(cfg, logger)
				if err != nil {
					return err
				}
				users, err = cl.Users(ctx)
				switch {
				case err == nil:
					remote = cl
				case errors.Is(err, client.ErrUnavailable):
					logger.Warn("server unavailable, using local database", zap.Error(err))
				default:
					return err
				}
			}
			if remote == nil {
				components, err := initializeComponents(ctx, cfg, logger, false)
				if err != nil {
					return err
				}
				defer components.Close()
				users = components.Engine.Users()
				remote = localRemote{components.Engine}
			}

			ddOpts := []dropdown.Option{
				dropdown.WithRemote(remote),
				dropdown.WithMinRemoteLength(cfg.Search.MinQueryLength),
				dropdown.WithLogger(logger),
			}
			if placeholder != "" {
				ddOpts = append(ddOpts, dropdown.WithPlaceholder(placeholder))
			}
			dd := dropdown.New(caps, ddOpts...)
			dd.SetItems(dropdown.ItemsFromUsers(users))

			m := dropdown.NewModel(ctx, dd, cfg.Search.Debounce)
			if err := m.Run(); err != nil {
				return err
			}
			if m.Cancelled {
				return errCancelled
			}
			selected := make([]*models.User, 0, len(dd.Value()))
			for _, it := range dd.Selected() {
				selected = append(selected, &models.User{ID: it.Value, Name: it.Title, Page: it.Page, Avatar: it.Avatar})
			}
			if format == cli.OutputJSON {
				return cli.WriteUsers(cmd.OutOrStdout(), selected, format)
			}
			ids := make([]string, len(selected))
			for i, u := range selected {
				ids[i] = u.ID
			}
			return cli.WriteIDs(cmd.OutOrStdout(), ids, format)
		},
	}
	ro.register(cmd)
	cmd.Flags().BoolVar(&caps.Multi, "multi", false, "allow choosing several users")
	cmd.Flags().BoolVar(&caps.Autocomplete, "autocomplete", true, "filter by typed text")
	cmd.Flags().BoolVar(&caps.ShowAvatar, "avatar", false, "show avatar markers")
	cmd.Flags().BoolVar(&caps.ShowPageHandle, "pages", true, "show page handles and search them")
	cmd.Flags().StringVar(&placeholder, "placeholder", "", "input placeholder")
	return cmd
}
