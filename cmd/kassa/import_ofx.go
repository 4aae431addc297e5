package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Veraticus/kassa/internal/accounts"
	"github.com/Veraticus/kassa/internal/cli"
	"github.com/Veraticus/kassa/internal/common"
	"github.com/Veraticus/kassa/internal/ofx"
	"github.com/Veraticus/kassa/internal/storage"
	"github.com/spf13/cobra"
)

func importOFXCmd() *cobra.Command {
	var wallet string
	var dryRun, noCheckpoint bool

	cmd := &cobra.Command{
		Use:   "import-ofx [files...]",
		Short: "Import a bank statement into a wallet",
		Long: `Import transactions from OFX or QFX files exported by a bank. Debits become
expenses and credits income in the given wallet, in the statement's currency.
Importing the same statement again skips what is already there. A checkpoint
is taken before anything is written.`,
		Example: `  kassa import-ofx --wallet Card ~/Downloads/statement_2024_03.qfx
  kassa import-ofx --wallet Card --dry-run ~/Downloads/*.ofx`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !dryRun {
				if err := requireEditor(); err != nil {
					return err
				}
			}

			files, err := expandFiles(args)
			if err != nil {
				return err
			}

			parser := ofx.NewParser()
			var entries []ofx.Entry
			for _, path := range files {
				parsed, err := parseStatement(cmd, parser, path)
				if err != nil {
					common.LogError(err, "Failed to parse OFX file", common.Fields{"file": path})
					continue
				}
				entries = append(entries, parsed...)
			}
			if len(entries) == 0 {
				fmt.Fprintln(out(cmd), cli.FormatWarning("No transactions found"))
				return nil
			}

			if dryRun {
				fmt.Fprintln(out(cmd), renderEntries(entries))
				fmt.Fprintln(out(cmd), cli.FormatInfo(fmt.Sprintf("Dry run: %d transactions would be imported", len(entries))))
				return nil
			}

			handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
			ctx := handler.HandleInterrupts(cmd.Context(), "Import")

			return withAccounts(ctx, func(svc *accounts.Service, store *storage.SQLiteStorage) error {
				if !noCheckpoint {
					manager, err := store.NewCheckpointManager()
					if err != nil {
						return fmt.Errorf("failed to create checkpoint manager: %w", err)
					}
					info, err := manager.AutoCheckpoint(ctx, "import")
					if err != nil {
						return fmt.Errorf("failed to checkpoint before import: %w", err)
					}
					slog.Info("Created checkpoint before import", "id", info.ID)
				}

				settings, err := store.GetSettings(ctx)
				if err != nil {
					return err
				}

				result, err := ofx.NewImporter(store, cmd.ErrOrStderr()).Import(ctx, wallet, entries, settings.BaseCurrency)
				if err != nil {
					return common.AsUserError(err)
				}

				fmt.Fprintln(out(cmd), cli.FormatSuccess(fmt.Sprintf("Imported %d of %d transactions into %s",
					result.Imported, result.Parsed, wallet)))
				if result.Duplicates > 0 {
					fmt.Fprintln(out(cmd), cli.FormatInfo(fmt.Sprintf("%d already imported", result.Duplicates)))
				}
				if result.Skipped > 0 {
					fmt.Fprintln(out(cmd), cli.FormatInfo(fmt.Sprintf("%d zero-amount entries skipped", result.Skipped)))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&wallet, "wallet", "w", "", "Wallet to import into")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Show what would be imported without saving")
	cmd.Flags().BoolVar(&noCheckpoint, "no-checkpoint", false, "Skip the automatic checkpoint")
	_ = cmd.MarkFlagRequired("wallet")

	return cmd
}

// expandFiles resolves globs, keeping plain paths that exist.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) > 0 {
			files = append(files, matches...)
			continue
		}
		if _, err := os.Stat(pattern); err == nil {
			files = append(files, pattern)
		} else {
			slog.Warn("No files found matching pattern", "pattern", pattern)
		}
	}
	if len(files) == 0 {
		return nil, common.NewUserError("no files found to import", common.ErrNotFound)
	}
	return files, nil
}

func parseStatement(cmd *cobra.Command, parser *ofx.Parser, path string) ([]ofx.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return parser.ParseFile(cmd.Context(), f)
}

func renderEntries(entries []ofx.Entry) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{formatDate(e.PostedAt), e.Currency, e.Amount.StringFixed(2), e.Payee, e.FITID})
	}
	return cli.Table([]string{"Date", "Currency", "Amount", "Payee", "FITID"}, rows)
}
