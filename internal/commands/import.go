package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tamogatas-dev/tamogatas/internal/importer"
	"github.com/tamogatas-dev/tamogatas/internal/importlog"
	"github.com/tamogatas-dev/tamogatas/internal/model"
	"github.com/tamogatas-dev/tamogatas/internal/reconcile"
	"github.com/tamogatas-dev/tamogatas/internal/supporters"
)

func newImportCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import [file]",
		Short: "Reconcile a bank statement into donations",
		Long: "Reconcile a bank statement into donations. Without a file, every CSV in the\n" +
			"import directory is processed in turn.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(cmd.Context(), opts.repo, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer p.Close()

			var paths []string
			if len(args) > 0 {
				paths = append(paths, args[0])
			} else {
				files, err := importer.Scan(p.importDir())
				if err != nil {
					return err
				}
				for _, f := range files {
					paths = append(paths, f.Path)
				}
			}

			out := cmd.OutOrStdout()
			if len(paths) == 0 {
				fmt.Fprintf(out, "No statements in %s\n", p.importDir())
				return nil
			}

			in := bufio.NewScanner(cmd.InOrStdin())
			for _, path := range paths {
				if err := runImport(cmd.Context(), p, path, in, out); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func runImport(ctx context.Context, p *project, path string, in *bufio.Scanner, out io.Writer) error {
	txns, err := readStatement(p, path)
	if err != nil {
		return err
	}

	dir, err := supporters.Load(ctx, p.store)
	if err != nil {
		return err
	}

	session, err := reconcile.Load(ctx, txns, p.store, dir, reconcile.Options{
		Currency:      p.cfg.Import.Currency,
		PaymentMethod: p.cfg.Import.PaymentMethod,
		Logger:        &p.log,
	})
	if err != nil {
		return err
	}

	name := filepath.Base(path)
	if err := printHistory(p.root, name, out); err != nil {
		return err
	}

	remaining := len(session.Candidates())
	fmt.Fprintf(out, "%s: %d new transactions, %d already imported\n", name, remaining, session.SkippedCount())
	if err := importlog.Append(p.root, []importlog.Entry{{
		Timestamp: time.Now(),
		Session:   session.ID(),
		File:      name,
		Action:    importlog.ActionLoad,
		Details:   fmt.Sprintf("%s: %d candidates, %d skipped", name, remaining, session.SkippedCount()),
	}}); err != nil {
		return err
	}

	if remaining > 0 {
		pr := &prompt{session: session, store: p.store, root: p.root, file: name, in: in, out: out}
		if err := pr.run(ctx); err != nil {
			return err
		}
	}

	if len(session.Candidates()) > 0 {
		return nil
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}
	if filepath.Dir(abs) != filepath.Clean(p.importDir()) {
		return nil
	}
	if err := importer.MarkProcessed(p.importDir(), name); err != nil {
		return err
	}
	fmt.Fprintf(out, "Moved %s to processed\n", name)
	return importlog.Append(p.root, []importlog.Entry{{
		Timestamp: time.Now(),
		Session:   session.ID(),
		File:      name,
		Action:    importlog.ActionArchived,
		Details:   name,
	}})
}

func readStatement(p *project, path string) ([]model.BankTransaction, error) {
	registry := importer.DefaultRegistry()
	parser := registry.Get(p.cfg.Import.Format)
	if parser == nil {
		return nil, fmt.Errorf("unknown statement format %q (supported: %s)",
			p.cfg.Import.Format, strings.Join(registry.Formats(), ", "))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening statement: %w", err)
	}
	defer f.Close()

	r, err := importer.Decode(f, p.cfg.Import.Encoding)
	if err != nil {
		return nil, err
	}

	txns, err := parser.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	p.log.Debug().Str("file", path).Int("transactions", len(txns)).Msg("statement parsed")
	return txns, nil
}

// printHistory reports earlier sessions for the same statement file.
func printHistory(root, name string, out io.Writer) error {
	entries, err := importlog.Read(root)
	if err != nil {
		return err
	}
	sum := importlog.Summarize(entries, name)
	if sum.Sessions == 0 {
		return nil
	}
	fmt.Fprintf(out, "%s was opened %d time(s) before, last on %s: %d imported, %d failed\n",
		name, sum.Sessions, sum.Last.Local().Format("2006-01-02 15:04"), sum.Imported, sum.Failed)
	return nil
}
