package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hyperjump/ruslat/internal/cli"
)

func newImportCmd(opts *globalOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the stored users with the contents of a .json, .yaml or .xlsx file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := cli.ParseOutputFormat(format)
			if err != nil {
				return err
			}
			cfg, logger, err := opts.setup(true)
			if err != nil {
				return err
			}
			defer logger.Sync()

			components, err := initializeComponents(cmd.Context(), cfg, logger, false)
			if err != nil {
				return err
			}
			defer components.Close()

			res, err := components.Indexer.ImportFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if f == cli.OutputJSON {
				return cli.WriteJSON(cmd.OutOrStdout(), res)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d users from %s\n", res.Users, res.Path)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "output format: text or json")
	return cmd
}
