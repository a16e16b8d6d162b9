package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tamogatas-dev/tamogatas/internal/buildinfo"
	"github.com/tamogatas-dev/tamogatas/internal/importer"
	"github.com/tamogatas-dev/tamogatas/internal/importlog"
)

func newStatusCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show project, database and import state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := openProject(ctx, opts.repo, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer p.Close()

			version, err := p.store.SchemaVersion(ctx)
			if err != nil {
				return err
			}
			supporterList, err := p.store.ListSupporters(ctx)
			if err != nil {
				return err
			}
			donationList, err := p.store.ListDonations(ctx)
			if err != nil {
				return err
			}
			pending, err := importer.Scan(p.importDir())
			if err != nil {
				return err
			}
			entries, err := importlog.Read(p.root)
			if err != nil {
				return err
			}
			sessions := 0
			for _, e := range entries {
				if e.Action == importlog.ActionLoad {
					sessions++
				}
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "Organization\t%s\n", p.cfg.Organization.Name)
			fmt.Fprintf(tw, "Version\t%s\n", buildinfo.String())
			fmt.Fprintf(tw, "Database\t%s\n", resolve(p.root, p.cfg.Database.Path))
			fmt.Fprintf(tw, "Schema version\t%d\n", version)
			fmt.Fprintf(tw, "Supporters\t%d\n", len(supporterList))
			fmt.Fprintf(tw, "Donations\t%d\n", len(donationList))
			fmt.Fprintf(tw, "Statement format\t%s\n", p.cfg.Import.Format)
			fmt.Fprintf(tw, "Pending statements\t%d\n", len(pending))
			fmt.Fprintf(tw, "Import sessions\t%d\n", sessions)
			return tw.Flush()
		},
	}
}
