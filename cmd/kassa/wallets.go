package main

import (
	"fmt"
	"strings"

	"github.com/Veraticus/kassa/internal/accounts"
	"github.com/Veraticus/kassa/internal/cli"
	"github.com/Veraticus/kassa/internal/ledger"
	"github.com/Veraticus/kassa/internal/model"
	"github.com/Veraticus/kassa/internal/storage"
	"github.com/spf13/cobra"
)

func walletsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wallets",
		Short: "Manage wallets",
		Long: `Wallets are the named places money is kept: a cash box, a bank card,
a savings account. Names are matched without regard to case.`,
		Example: `  kassa wallets add "Cash box"
  kassa wallets balances
  kassa wallets archive "Old card"`,
	}

	cmd.AddCommand(listWalletsCmd())
	cmd.AddCommand(addWalletCmd())
	cmd.AddCommand(archiveWalletCmd())
	cmd.AddCommand(walletBalancesCmd())

	return cmd
}

func listWalletsCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List wallets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withAccounts(cmd.Context(), func(_ *accounts.Service, store *storage.SQLiteStorage) error {
				wallets, err := store.GetWallets(cmd.Context(), all)
				if err != nil {
					return err
				}
				if len(wallets) == 0 {
					fmt.Fprintln(out(cmd), cli.SubtleStyle.Render("No wallets yet. Add one with: kassa wallets add <name>"))
					return nil
				}

				rows := make([][]string, 0, len(wallets))
				for _, w := range wallets {
					status := "active"
					if w.Archived {
						status = "archived"
					}
					rows = append(rows, []string{w.Name, status, formatDate(w.CreatedAt)})
				}
				fmt.Fprintln(out(cmd), cli.Table([]string{"Wallet", "Status", "Created"}, rows))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include archived wallets")
	return cmd
}

func addWalletCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Create a wallet, or reactivate an archived one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireEditor(); err != nil {
				return err
			}
			return withAccounts(cmd.Context(), func(_ *accounts.Service, store *storage.SQLiteStorage) error {
				wallet, err := store.CreateWallet(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(out(cmd), cli.FormatSuccess(fmt.Sprintf("Wallet %q is ready", wallet.Name)))
				return nil
			})
		},
	}
}

func archiveWalletCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "archive <name>",
		Short: "Archive a wallet",
		Long: `Archive a wallet. Its operations still count toward the totals, but it
no longer appears among the active wallets.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireEditor(); err != nil {
				return err
			}
			return withAccounts(cmd.Context(), func(_ *accounts.Service, store *storage.SQLiteStorage) error {
				if err := store.ArchiveWallet(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintln(out(cmd), cli.FormatSuccess(fmt.Sprintf("Archived wallet %q", args[0])))
				return nil
			})
		},
	}
}

func walletBalancesCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "balances",
		Short: "Show the balance of each wallet",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withAccounts(cmd.Context(), func(svc *accounts.Service, _ *storage.SQLiteStorage) error {
				snap, err := svc.Snapshot(cmd.Context())
				if err != nil {
					return err
				}
				balances, err := snap.WalletBalances()
				if err != nil {
					return err
				}
				fmt.Fprintln(out(cmd), renderWalletBalances(balances, snap.Settings.BaseCurrency, all))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include archived and unknown wallets")
	return cmd
}

func renderWalletBalances(balances *ledger.WalletBalances, base model.Currency, all bool) string {
	rows := make([][]string, 0, balances.Len())
	for _, wb := range balances.List() {
		if !all && !wb.Active {
			continue
		}
		natives := make([]string, 0, len(wb.ByCurrency))
		for _, c := range wb.Currencies() {
			natives = append(natives, cli.Money(wb.Native(c), c))
		}
		rows = append(rows, []string{
			wb.Wallet,
			strings.Join(natives, ", "),
			cli.SignedMoney(wb.BaseAmount, base),
		})
	}
	if len(rows) == 0 {
		return cli.SubtleStyle.Render("No wallets with activity.")
	}

	table := cli.Table([]string{"Wallet", "Holdings", "Value (" + string(base) + ")"}, rows)
	return table + "\n" + cli.BoldStyle.Render("Total: ") + cli.SignedMoney(balances.Total(), base)
}
