package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/tamogatas-dev/tamogatas/internal/id"
	"github.com/tamogatas-dev/tamogatas/internal/importlog"
	"github.com/tamogatas-dev/tamogatas/internal/model"
	"github.com/tamogatas-dev/tamogatas/internal/reconcile"
	"github.com/tamogatas-dev/tamogatas/internal/store"
)

const promptHelp = `Commands:
  list                       show remaining transactions
  supporters                 show known supporters
  select <n>|all             mark rows for import
  deselect <n>|all           unmark rows
  assign <n> [supporter-id]  assign a supporter (default: the suggested one)
  new <n>                    create a supporter for a row
  date <n> <YYYY-MM-DD>      correct a row's date
  import                     import selected and assigned rows
  help                       show this help
  quit                       leave without importing the rest
`

var errQuit = errors.New("quit")

// prompt is the line-oriented review loop over one import session.
type prompt struct {
	session *reconcile.Session
	store   *store.Store
	root    string
	file    string
	in      *bufio.Scanner
	out     io.Writer
}

func (p *prompt) run(ctx context.Context) error {
	p.list()
	for {
		line, ok := p.readLine("> ")
		if !ok {
			return nil
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		err := p.dispatch(ctx, fields[0], fields[1:])
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(p.out, "Error: %v\n", err)
		}
		if len(p.session.Candidates()) == 0 {
			fmt.Fprintln(p.out, "All transactions handled.")
			return nil
		}
	}
}

func (p *prompt) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "list", "ls":
		p.list()
	case "supporters":
		p.supporters()
	case "select", "deselect":
		return p.selectRows(cmd == "select", args)
	case "assign":
		return p.assign(args)
	case "new":
		return p.newSupporter(ctx, args)
	case "date":
		return p.date(args)
	case "import":
		return p.commit(ctx)
	case "help", "?":
		fmt.Fprint(p.out, promptHelp)
	case "quit", "exit", "q":
		return errQuit
	default:
		fmt.Fprintf(p.out, "Unknown command %q. Type help for a list.\n", cmd)
	}
	return nil
}

func (p *prompt) readLine(label string) (string, bool) {
	fmt.Fprint(p.out, label)
	if !p.in.Scan() {
		fmt.Fprintln(p.out)
		return "", false
	}
	return strings.TrimSpace(p.in.Text()), true
}

func (p *prompt) list() {
	dir := p.session.Directory()
	tw := tabwriter.NewWriter(p.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSEL\tDATE\tAMOUNT\tFROM\tREFERENCE\tSUPPORTER")
	for i, txn := range p.session.Candidates() {
		sel := "[ ]"
		if p.session.IsSelected(txn.ID) {
			sel = "[x]"
		}
		date := txn.Date
		if !txn.HasDate() {
			date = "?"
		}

		supporter := "-"
		if id, ok := p.session.Assignment(txn.ID); ok {
			if s, ok := dir.Get(id); ok {
				supporter = fmt.Sprintf("%s (#%d)", s.Name, s.ID)
			}
		} else if p.session.Pending(txn.ID) {
			supporter = "(new)"
		} else if s, ok := dir.Suggest(txn.SupporterHint); ok {
			supporter = fmt.Sprintf("suggested: %s (#%d)", s.Name, s.ID)
		}

		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\t%s\n",
			i+1, sel, date, txn.Amount, txn.SupporterHint, txn.Reference, supporter)
	}
	tw.Flush()
	fmt.Fprintf(p.out, "%d ready to import\n", p.session.ReadyCount())
}

func (p *prompt) supporters() {
	all := p.session.Directory().All()
	if len(all) == 0 {
		fmt.Fprintln(p.out, "No supporters yet. Use new <n> to create one.")
		return
	}
	tw := tabwriter.NewWriter(p.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tNICKNAME")
	for _, s := range all {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", s.ID, s.Name, s.Nickname)
	}
	tw.Flush()
}

// row resolves a 1-based row number to a candidate.
func (p *prompt) row(arg string) (model.BankTransaction, error) {
	n, err := strconv.Atoi(arg)
	candidates := p.session.Candidates()
	if err != nil || n < 1 || n > len(candidates) {
		return model.BankTransaction{}, fmt.Errorf("no row %q", arg)
	}
	return candidates[n-1], nil
}

func (p *prompt) selectRows(selected bool, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: select|deselect <n>|all")
	}
	if args[0] == "all" {
		if selected {
			return p.session.SelectAll()
		}
		return p.session.DeselectAll()
	}
	txn, err := p.row(args[0])
	if err != nil {
		return err
	}
	return p.session.SetSelected(txn.ID, selected)
}

func (p *prompt) assign(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return errors.New("usage: assign <n> [supporter-id]")
	}
	txn, err := p.row(args[0])
	if err != nil {
		return err
	}

	if len(args) == 1 {
		s, ok := p.session.Directory().Suggest(txn.SupporterHint)
		if !ok {
			return fmt.Errorf("no supporter matches %q; give a supporter id", txn.SupporterHint)
		}
		return p.session.Assign(txn.ID, s.ID)
	}

	id, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid supporter id %q", args[1])
	}
	return p.session.Assign(txn.ID, id)
}

func (p *prompt) newSupporter(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: new <n>")
	}
	txn, err := p.row(args[0])
	if err != nil {
		return err
	}

	req, err := p.session.RequestNewSupporter(txn.ID)
	if err != nil {
		return err
	}

	name, ok := p.readLine(fmt.Sprintf("Name [%s] (. to cancel): ", req.SuggestedName))
	if !ok || name == "." {
		return p.session.AbandonNewSupporter(req)
	}

	created, err := p.session.ResolveNewSupporter(ctx, req, name, p.store)
	if err != nil {
		return err
	}
	fmt.Fprintf(p.out, "Created supporter #%d %s\n", created.ID, created.Name)
	return nil
}

func (p *prompt) date(args []string) error {
	if len(args) != 2 {
		return errors.New("usage: date <n> <YYYY-MM-DD>")
	}
	txn, err := p.row(args[0])
	if err != nil {
		return err
	}
	return p.session.SetDate(txn.ID, args[1])
}

func (p *prompt) commit(ctx context.Context) error {
	if !p.session.CanCommit() {
		fmt.Fprintln(p.out, "Nothing to import: select and assign at least one row.")
		return nil
	}

	report, err := p.session.Commit(ctx, p.store)
	if err != nil {
		return err
	}

	fmt.Fprintf(p.out, "Imported %d, failed %d\n", report.Succeeded, report.Failed)
	for _, f := range report.Failures {
		fmt.Fprintf(p.out, "  %s\n", failureLine(f))
	}

	now := time.Now()
	entries := make([]importlog.Entry, 0, len(report.Imported)+len(report.Failures))
	for _, imp := range report.Imported {
		entries = append(entries, importlog.Entry{
			Timestamp:     now,
			Session:       p.session.ID(),
			File:          p.file,
			Action:        importlog.ActionImported,
			TransactionID: imp.TransactionID,
			Reference:     imp.Reference,
			DonationID:    imp.DonationID,
		})
	}
	for _, f := range report.Failures {
		entries = append(entries, importlog.Entry{
			Timestamp:     now,
			Session:       p.session.ID(),
			File:          p.file,
			Action:        importlog.ActionFailed,
			TransactionID: f.TransactionID,
			Reference:     f.Reference,
			Details:       f.Message(),
		})
	}
	return importlog.Append(p.root, entries)
}

// failureLine adds the statement row to a failure message so the operator can
// find it in the file.
func failureLine(f reconcile.Failure) string {
	row, _, err := id.ParseTransactionID(f.TransactionID)
	if err != nil {
		return f.Message()
	}
	return fmt.Sprintf("%s (statement row %d)", f.Message(), row+1)
}
