package main

import (
	"fmt"

	"github.com/Veraticus/kassa/internal/accounts"
	"github.com/Veraticus/kassa/internal/cli"
	"github.com/Veraticus/kassa/internal/common"
	"github.com/Veraticus/kassa/internal/storage"
	"github.com/spf13/cobra"
)

func transferCmd() *cobra.Command {
	var from, to, amount, currency, comment, date string

	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Move money between wallets",
		Long: `Move money between two wallets in one currency. The source wallet must
hold enough of that currency; otherwise nothing is recorded.`,
		Example: `  kassa transfer --from Card --to "Cash box" --amount 200 --currency GEL`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireEditor(); err != nil {
				return err
			}

			req := accounts.TransferRequest{From: from, To: to, Comment: comment}
			var err error
			if req.Amount, err = parseAmount(amount); err != nil {
				return err
			}
			if req.Currency, err = parseCurrency(currency); err != nil {
				return err
			}
			if req.OccurredAt, err = parseDate(date); err != nil {
				return err
			}

			return withAccounts(cmd.Context(), func(svc *accounts.Service, _ *storage.SQLiteStorage) error {
				result, err := svc.Transfer(cmd.Context(), req)
				if err != nil {
					return common.AsUserError(err)
				}
				fmt.Fprintln(out(cmd), cli.FormatSuccess(fmt.Sprintf("Moved %s from %s to %s",
					cli.Money(result.Outgoing.Amount, result.Outgoing.Currency),
					result.Outgoing.Wallet, result.Incoming.Wallet)))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Source wallet")
	cmd.Flags().StringVar(&to, "to", "", "Destination wallet")
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "Amount")
	cmd.Flags().StringVarP(&currency, "currency", "c", "", "Currency (default: base currency)")
	cmd.Flags().StringVar(&comment, "comment", "", "Free-form comment")
	cmd.Flags().StringVarP(&date, "date", "d", "", "Date (YYYY-MM-DD, default: now)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}
