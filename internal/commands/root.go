package commands

import (
	"github.com/spf13/cobra"

	"github.com/tamogatas-dev/tamogatas/internal/buildinfo"
)

type rootOptions struct {
	repo string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:     "tamogatas",
		Short:   "Supporter and donation bookkeeping for small organizations",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.repo, "repo", ".", "project directory")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newImportCommand(opts))
	rootCmd.AddCommand(newSupportersCommand(opts))
	rootCmd.AddCommand(newDonationsCommand(opts))
	rootCmd.AddCommand(newExportCommand(opts))
	rootCmd.AddCommand(newStatusCommand(opts))

	return rootCmd
}
