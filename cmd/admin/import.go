package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/pocketbook/internal/calendar"
	"github.com/MrJamesThe3rd/pocketbook/internal/category"
	categoryStore "github.com/MrJamesThe3rd/pocketbook/internal/category/store"
	"github.com/MrJamesThe3rd/pocketbook/internal/importer"
	"github.com/MrJamesThe3rd/pocketbook/internal/rules"
	rulesStore "github.com/MrJamesThe3rd/pocketbook/internal/rules/store"
	"github.com/MrJamesThe3rd/pocketbook/internal/transaction"
	txStore "github.com/MrJamesThe3rd/pocketbook/internal/transaction/store"
	"github.com/MrJamesThe3rd/pocketbook/internal/user"
	userStore "github.com/MrJamesThe3rd/pocketbook/internal/user/store"
)

type importOptions struct {
	email           string
	incomeCategory  string
	expenseCategory string
	format          string
	onConflict      string
}

const (
	conflictAbort = "abort"
	conflictSkip  = "skip"
	conflictForce = "force"
)

func importCmd() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import [files...]",
		Short: "Import bank statements into a user's ledger",
		Long: `Import CSV or OFX/QFX bank statements for one user.

Rows matching a learned rule take the rule's category. Other rows fall back to
the income or expense category given by flag, chosen by the sign of the amount.

Examples:
  pocketbook-admin import --email ana@example.com --expense-category <id> extrato.csv
  pocketbook-admin import --email ana@example.com --on-conflict skip ~/Downloads/*.ofx`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), cmd.OutOrStdout(), opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.email, "email", "", "owner of the imported transactions")
	cmd.Flags().StringVar(&opts.incomeCategory, "income-category", "", "default category ID for positive rows")
	cmd.Flags().StringVar(&opts.expenseCategory, "expense-category", "", "default category ID for negative rows")
	cmd.Flags().StringVar(&opts.format, "format", "", "statement format (csv, ofx, qfx); defaults to the file extension")
	cmd.Flags().StringVar(&opts.onConflict, "on-conflict", conflictAbort, "what to do with duplicates: abort, skip or force")

	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func runImport(ctx context.Context, out io.Writer, opts importOptions, files []string) error {
	switch opts.onConflict {
	case conflictAbort, conflictSkip, conflictForce:
	default:
		return fmt.Errorf("--on-conflict must be abort, skip or force, got %q", opts.onConflict)
	}

	defaults, err := parseDefaults(opts)
	if err != nil {
		return err
	}

	_, db, err := connect()
	if err != nil {
		return err
	}
	defer db.Close()

	var (
		userService        = user.NewService(userStore.New(db))
		categoryService    = category.NewService(categoryStore.New(db))
		transactionService = transaction.NewService(txStore.New(db), categoryService)
		importService      = importer.NewService(rules.NewService(rulesStore.New(db), categoryService))
	)

	owner, err := userService.GetByEmail(ctx, opts.email)
	if err != nil {
		return fmt.Errorf("finding user %s: %w", opts.email, err)
	}

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("importing statements"),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(os.Stderr) }),
	)

	var failed int

	for _, path := range files {
		n, err := importFile(ctx, out, importService, transactionService, owner.ID, path, opts, defaults)
		if err != nil {
			failed++

			slog.Error("import failed", "file", path, "error", err)
		} else {
			slog.Info("imported file", "file", path, "transactions", n)
		}

		_ = bar.Add(1)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(files))
	}

	return nil
}

func parseDefaults(opts importOptions) (importer.Defaults, error) {
	var d importer.Defaults

	for _, f := range []struct {
		value string
		dst   *uuid.UUID
	}{
		{opts.incomeCategory, &d.IncomeCategoryID},
		{opts.expenseCategory, &d.ExpenseCategoryID},
	} {
		if f.value == "" {
			continue
		}

		id, err := uuid.Parse(f.value)
		if err != nil {
			return importer.Defaults{}, fmt.Errorf("invalid category id %q: %w", f.value, err)
		}

		*f.dst = id
	}

	return d, nil
}

func importFile(
	ctx context.Context,
	out io.Writer,
	importService *importer.Service,
	transactionService *transaction.Service,
	ownerID uuid.UUID,
	path string,
	opts importOptions,
	defaults importer.Defaults,
) (int, error) {
	name := opts.format
	if name == "" {
		name = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}

	format, err := importer.ParseFormat(name)
	if err != nil {
		return 0, err
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening statement: %w", err)
	}
	defer f.Close()

	rows, err := importService.Parse(format, f)
	if err != nil {
		return 0, err
	}

	params, err := importService.Categorize(ctx, ownerID, rows, defaults)
	if err != nil {
		return 0, err
	}

	result, err := transactionService.ImportBatch(ctx, ownerID, params)
	if err != nil {
		return 0, err
	}

	if len(result.Conflicts) == 0 {
		return len(result.Imported), nil
	}

	for _, c := range result.Conflicts {
		fmt.Fprintf(out, "%s: duplicate %s %s %q\n",
			filepath.Base(path), calendar.Format(c.Incoming.Date), c.Incoming.Amount.StringFixed(2), c.Incoming.Description)
	}

	var batch []transaction.CreateParams

	switch opts.onConflict {
	case conflictSkip:
		batch = result.New
	case conflictForce:
		batch = params
	default:
		return 0, errors.New("duplicates found, nothing imported (use --on-conflict skip or force)")
	}

	txs, err := transactionService.CreateBatch(ctx, ownerID, batch)
	if err != nil {
		return 0, err
	}

	return len(txs), nil
}
