package commands

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tamogatas-dev/tamogatas/internal/model"
)

func newSupportersCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "supporters",
		Short: "Manage supporters",
	}
	cmd.AddCommand(newSupportersListCommand(opts))
	cmd.AddCommand(newSupportersAddCommand(opts))
	cmd.AddCommand(newSupportersShowCommand(opts))
	cmd.AddCommand(newSupportersUpdateCommand(opts))
	cmd.AddCommand(newSupportersDeleteCommand(opts))
	cmd.AddCommand(newSupportersAddContactCommand(opts, contactEmail))
	cmd.AddCommand(newSupportersAddContactCommand(opts, contactPhone))
	cmd.AddCommand(newSupportersRemoveContactCommand(opts, contactEmail))
	cmd.AddCommand(newSupportersRemoveContactCommand(opts, contactPhone))
	return cmd
}

func newSupportersListCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List supporters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(cmd.Context(), opts.repo, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer p.Close()

			list, err := p.store.ListSupporters(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tNICKNAME\tCITY")
			for _, s := range list {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", s.ID, s.Name, s.Nickname, s.City)
			}
			return tw.Flush()
		},
	}
}

func newSupportersAddCommand(opts *rootOptions) *cobra.Command {
	var in model.SupporterInput

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a supporter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(cmd.Context(), opts.repo, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer p.Close()

			s, err := p.store.CreateSupporter(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added supporter #%d %s\n", s.ID, s.Name)
			return nil
		},
	}

	bindSupporterFlags(cmd, &in)
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func bindSupporterFlags(cmd *cobra.Command, in *model.SupporterInput) {
	cmd.Flags().StringVar(&in.Name, "name", "", "full name")
	cmd.Flags().StringVar(&in.Nickname, "nickname", "", "name used on bank transfers")
	cmd.Flags().StringVar(&in.Address, "address", "", "street address")
	cmd.Flags().StringVar(&in.Postcode, "postcode", "", "postal code")
	cmd.Flags().StringVar(&in.City, "city", "", "city")
	cmd.Flags().StringVar(&in.Country, "country", "", "country")
	cmd.Flags().StringVar(&in.CID, "cid", "", "customer or tax identifier")
	cmd.Flags().StringVar(&in.Notes, "notes", "", "free-form notes")
}

func parseID(arg, what string) (int64, error) {
	n, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, arg)
	}
	return n, nil
}

func newSupportersShowCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a supporter with contacts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "supporter")
			if err != nil {
				return err
			}
			p, err := openProject(cmd.Context(), opts.repo, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer p.Close()

			s, err := p.store.GetSupporter(cmd.Context(), id)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "ID\t%d\n", s.ID)
			fmt.Fprintf(tw, "Name\t%s\n", s.Name)
			fmt.Fprintf(tw, "Nickname\t%s\n", s.Nickname)
			fmt.Fprintf(tw, "Address\t%s\n", s.Address)
			fmt.Fprintf(tw, "Postcode\t%s\n", s.Postcode)
			fmt.Fprintf(tw, "City\t%s\n", s.City)
			fmt.Fprintf(tw, "Country\t%s\n", s.Country)
			fmt.Fprintf(tw, "CID\t%s\n", s.CID)
			fmt.Fprintf(tw, "Notes\t%s\n", s.Notes)
			for _, e := range s.Emails {
				fmt.Fprintf(tw, "Email\t%s%s\t#%d\n", e.Email, primaryMark(e.IsPrimary), e.ID)
			}
			for _, ph := range s.Phones {
				fmt.Fprintf(tw, "Phone\t%s%s\t#%d\n", ph.Phone, primaryMark(ph.IsPrimary), ph.ID)
			}
			return tw.Flush()
		},
	}
}

func primaryMark(primary bool) string {
	if primary {
		return " (primary)"
	}
	return ""
}

func newSupportersUpdateCommand(opts *rootOptions) *cobra.Command {
	var in model.SupporterInput

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change supporter fields",
		Long:  "Change supporter fields. Only the given flags are changed; pass an empty value to clear a field.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "supporter")
			if err != nil {
				return err
			}
			p, err := openProject(cmd.Context(), opts.repo, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer p.Close()

			cur, err := p.store.GetSupporter(cmd.Context(), id)
			if err != nil {
				return err
			}
			merged := model.SupporterInput{
				Name:     pick(cmd, "name", in.Name, cur.Name),
				Nickname: pick(cmd, "nickname", in.Nickname, cur.Nickname),
				Address:  pick(cmd, "address", in.Address, cur.Address),
				Postcode: pick(cmd, "postcode", in.Postcode, cur.Postcode),
				City:     pick(cmd, "city", in.City, cur.City),
				Country:  pick(cmd, "country", in.Country, cur.Country),
				CID:      pick(cmd, "cid", in.CID, cur.CID),
				Notes:    pick(cmd, "notes", in.Notes, cur.Notes),
			}

			s, err := p.store.UpdateSupporter(cmd.Context(), id, merged)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated supporter #%d %s\n", s.ID, s.Name)
			return nil
		},
	}
	bindSupporterFlags(cmd, &in)

	return cmd
}

// pick returns the flag value when the flag was given, otherwise the current value.
func pick[T any](cmd *cobra.Command, flag string, value, current T) T {
	if cmd.Flags().Changed(flag) {
		return value
	}
	return current
}

func newSupportersDeleteCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a supporter without donations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "supporter")
			if err != nil {
				return err
			}
			p, err := openProject(cmd.Context(), opts.repo, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer p.Close()

			if err := p.store.DeleteSupporter(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted supporter #%d\n", id)
			return nil
		},
	}
}

type contactKind string

const (
	contactEmail contactKind = "email"
	contactPhone contactKind = "phone"
)

func newSupportersAddContactCommand(opts *rootOptions, kind contactKind) *cobra.Command {
	var primary bool

	cmd := &cobra.Command{
		Use:   fmt.Sprintf("add-%s <supporter-id> <%s>", kind, kind),
		Short: fmt.Sprintf("Add a supporter %s", kind),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			supporterID, err := parseID(args[0], "supporter")
			if err != nil {
				return err
			}
			p, err := openProject(cmd.Context(), opts.repo, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer p.Close()

			var contactID int64
			switch kind {
			case contactEmail:
				e, err := p.store.AddEmail(cmd.Context(), supporterID, args[1], primary)
				if err != nil {
					return err
				}
				contactID = e.ID
			case contactPhone:
				ph, err := p.store.AddPhone(cmd.Context(), supporterID, args[1], primary)
				if err != nil {
					return err
				}
				contactID = ph.ID
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s #%d to supporter #%d\n", kind, contactID, supporterID)
			return nil
		},
	}
	cmd.Flags().BoolVar(&primary, "primary", false, "mark as the primary "+string(kind))

	return cmd
}

func newSupportersRemoveContactCommand(opts *rootOptions, kind contactKind) *cobra.Command {
	return &cobra.Command{
		Use:   fmt.Sprintf("remove-%s <%s-id>", kind, kind),
		Short: fmt.Sprintf("Remove a supporter %s", kind),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], string(kind))
			if err != nil {
				return err
			}
			p, err := openProject(cmd.Context(), opts.repo, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer p.Close()

			remove := p.store.RemoveEmail
			if kind == contactPhone {
				remove = p.store.RemovePhone
			}
			if err := remove(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s #%d\n", kind, id)
			return nil
		},
	}
}
