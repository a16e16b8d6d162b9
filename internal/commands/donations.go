package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tamogatas-dev/tamogatas/internal/model"
	"github.com/tamogatas-dev/tamogatas/internal/reconcile"
	"github.com/tamogatas-dev/tamogatas/internal/store"
	"github.com/tamogatas-dev/tamogatas/internal/supporters"
)

const dateLayout = "2006-01-02"

// dateRange restricts a donation listing. Empty bounds are open.
type dateRange struct {
	from string
	to   string
}

func (r *dateRange) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&r.from, "from", "", "first donation date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&r.to, "to", "", "last donation date (YYYY-MM-DD)")
}

func (r dateRange) bounds() (from, to string, err error) {
	from, to = r.from, r.to
	if from == "" {
		from = "0001-01-01"
	}
	if to == "" {
		to = "9999-12-31"
	}
	for _, d := range []string{from, to} {
		if _, err := time.Parse(dateLayout, d); err != nil {
			return "", "", fmt.Errorf("invalid date %q, expected YYYY-MM-DD", d)
		}
	}
	return from, to, nil
}

func (r dateRange) load(ctx context.Context, st *store.Store) ([]model.Donation, error) {
	if r.from == "" && r.to == "" {
		return st.ListDonations(ctx)
	}
	from, to, err := r.bounds()
	if err != nil {
		return nil, err
	}
	return st.ListDonationsByDateRange(ctx, from, to)
}

// loadSupporter lists one supporter's donations inside the range.
func (r dateRange) loadSupporter(ctx context.Context, st *store.Store, supporterID int64) ([]model.Donation, error) {
	from, to, err := r.bounds()
	if err != nil {
		return nil, err
	}
	if _, err := st.GetSupporter(ctx, supporterID); err != nil {
		return nil, err
	}
	all, err := st.ListDonationsBySupporter(ctx, supporterID)
	if err != nil {
		return nil, err
	}
	var list []model.Donation
	for _, d := range all {
		if d.Date >= from && d.Date <= to {
			list = append(list, d)
		}
	}
	return list, nil
}

func newDonationsCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "donations",
		Short: "Inspect and correct recorded donations",
	}
	cmd.AddCommand(newDonationsListCommand(opts))
	cmd.AddCommand(newDonationsUpdateCommand(opts))
	cmd.AddCommand(newDonationsDeleteCommand(opts))
	return cmd
}

func newDonationsListCommand(opts *rootOptions) *cobra.Command {
	var (
		rng       dateRange
		supporter int64
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List donations, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(cmd.Context(), opts.repo, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer p.Close()

			var list []model.Donation
			if supporter != 0 {
				list, err = rng.loadSupporter(cmd.Context(), p.store, supporter)
			} else {
				list, err = rng.load(cmd.Context(), p.store)
			}
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tDATE\tSUPPORTER\tAMOUNT\tREFERENCE")
			var total int64
			for _, d := range list {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%d %s\t%s\n", d.ID, d.Date, d.SupporterName, d.Amount, d.Currency, d.Reference)
				total += d.Amount
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d donations, total %d\n", len(list), total)
			return nil
		},
	}
	rng.bind(cmd)
	cmd.Flags().Int64Var(&supporter, "supporter", 0, "only donations of this supporter ID")

	return cmd
}

func newDonationsUpdateCommand(opts *rootOptions) *cobra.Command {
	var in model.DonationInput

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Correct a donation",
		Long:  "Correct a donation. Only the given flags are changed.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "donation")
			if err != nil {
				return err
			}
			p, err := openProject(cmd.Context(), opts.repo, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer p.Close()

			cur, err := p.store.GetDonation(cmd.Context(), id)
			if err != nil {
				return err
			}
			merged := model.DonationInput{
				SupporterID:   pick(cmd, "supporter", in.SupporterID, cur.SupporterID),
				Amount:        pick(cmd, "amount", in.Amount, cur.Amount),
				Currency:      pick(cmd, "currency", in.Currency, cur.Currency),
				Date:          pick(cmd, "date", in.Date, cur.Date),
				PaymentMethod: pick(cmd, "payment-method", in.PaymentMethod, cur.PaymentMethod),
				Reference:     pick(cmd, "reference", in.Reference, cur.Reference),
				Notes:         pick(cmd, "notes", in.Notes, cur.Notes),
				Source:        cur.Source,
			}

			dir, err := supporters.Load(cmd.Context(), p.store)
			if err != nil {
				return err
			}
			if err := reconcile.ValidateDonation(merged, dir); err != nil {
				return err
			}

			d, err := p.store.UpdateDonation(cmd.Context(), id, merged)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated donation #%d: %s %d %s from %s\n", d.ID, d.Date, d.Amount, d.Currency, d.SupporterName)
			return nil
		},
	}

	cmd.Flags().Int64Var(&in.SupporterID, "supporter", 0, "supporter ID")
	cmd.Flags().Int64Var(&in.Amount, "amount", 0, "amount in whole currency units")
	cmd.Flags().StringVar(&in.Currency, "currency", "", "currency code")
	cmd.Flags().StringVar(&in.Date, "date", "", "donation date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&in.PaymentMethod, "payment-method", "", "payment method")
	cmd.Flags().StringVar(&in.Reference, "reference", "", "bank reference")
	cmd.Flags().StringVar(&in.Notes, "notes", "", "free-form notes")

	return cmd
}

func newDonationsDeleteCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a donation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "donation")
			if err != nil {
				return err
			}
			p, err := openProject(cmd.Context(), opts.repo, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer p.Close()

			if err := p.store.DeleteDonation(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted donation #%d\n", id)
			return nil
		},
	}
}
