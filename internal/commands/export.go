package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tamogatas-dev/tamogatas/internal/export"
)

func newExportCommand(opts *rootOptions) *cobra.Command {
	var format, output string
	var rng dateRange

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export donations to CSV or XLSX",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(cmd.Context(), opts.repo, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer p.Close()

			list, err := rng.load(cmd.Context(), p.store)
			if err != nil {
				return err
			}

			if output == "-" {
				return export.Write(cmd.OutOrStdout(), format, list)
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating %s: %w", output, err)
			}
			if err := export.Write(f, format, list); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("closing %s: %w", output, err)
			}

			p.log.Info().Str("file", output).Int("donations", len(list)).Msg("export written")
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d donations to %s\n", len(list), output)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", export.FormatCSV, "csv or xlsx")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout (required)")
	_ = cmd.MarkFlagRequired("output")
	rng.bind(cmd)

	return cmd
}
