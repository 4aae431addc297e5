package main

import (
	"fmt"
	"strings"

	"github.com/Veraticus/kassa/internal/accounts"
	"github.com/Veraticus/kassa/internal/cli"
	"github.com/Veraticus/kassa/internal/ledger"
	"github.com/Veraticus/kassa/internal/storage"
	"github.com/spf13/cobra"
)

func balanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Show the community's overall position",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withAccounts(cmd.Context(), func(svc *accounts.Service, _ *storage.SQLiteStorage) error {
				summary, err := svc.Balance(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(out(cmd), renderBalance(summary))
				return nil
			})
		},
	}
}

func renderBalance(b ledger.BalanceSummary) string {
	line := func(label, value string) string {
		return fmt.Sprintf("%-22s %s", label, value)
	}

	var sb strings.Builder
	sb.WriteString(line("Cash on hand:", cli.SignedMoney(b.Balance, b.Currency)) + "\n")
	sb.WriteString(cli.SubtleStyle.Render(line("  from operations:", cli.Money(b.Operations, b.Currency))) + "\n")
	sb.WriteString(cli.SubtleStyle.Render(line("  from open debts:", cli.Money(b.DebtEffect, b.Currency))) + "\n")
	sb.WriteString(line("We owe:", cli.Money(b.Borrowed, b.Currency)) + "\n")
	sb.WriteString(line("Owed to us:", cli.Money(b.Lent, b.Currency)) + "\n")
	sb.WriteString(line("Saved in goals:", cli.Money(b.Savings, b.Currency)) + "\n")
	sb.WriteString(cli.BoldStyle.Render(line("Net position:", cli.Money(b.NetBalance, b.Currency))))

	return cli.RenderBox(cli.KassaIcon+" Balance", sb.String())
}
