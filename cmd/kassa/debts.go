package main

import (
	"fmt"
	"strings"

	"github.com/Veraticus/kassa/internal/accounts"
	"github.com/Veraticus/kassa/internal/cli"
	"github.com/Veraticus/kassa/internal/common"
	"github.com/Veraticus/kassa/internal/model"
	"github.com/Veraticus/kassa/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func debtsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "debts",
		Short: "Track money borrowed and lent",
		Long: `Track money the community borrowed or lent.

A new borrowed debt adds its amount to the wallet it was received in; a new
lent debt removes it. Use --existing for debts from before the cash book:
they count toward the totals but never moved money through a wallet.`,
		Example: `  kassa debts add --type borrowed --amount 500 --currency USD --wallet Card --counterpart "Neighbour"
  kassa debts repay d1a2 --amount 100
  kassa debts close d1a2`,
	}

	cmd.AddCommand(addDebtCmd())
	cmd.AddCommand(listDebtsCmd())
	cmd.AddCommand(closeDebtCmd())
	cmd.AddCommand(repayDebtCmd())

	return cmd
}

func addDebtCmd() *cobra.Command {
	var (
		debtType, amount, currency, wallet string
		counterpart, comment, date         string
		existing                           bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Open a debt",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireEditor(); err != nil {
				return err
			}

			debt := model.Debt{
				Type:        model.DebtType(strings.ToLower(debtType)),
				Wallet:      wallet,
				Counterpart: counterpart,
				Comment:     comment,
				Existing:    existing,
			}
			var err error
			if debt.Amount, err = parseAmount(amount); err != nil {
				return err
			}
			if debt.Currency, err = parseCurrency(currency); err != nil {
				return err
			}
			if debt.CreatedAt, err = parseDate(date); err != nil {
				return err
			}

			return withAccounts(cmd.Context(), func(svc *accounts.Service, _ *storage.SQLiteStorage) error {
				saved, err := svc.OpenDebt(cmd.Context(), debt)
				if err != nil {
					return common.AsUserError(err)
				}
				fmt.Fprintln(out(cmd), cli.FormatSuccess(fmt.Sprintf("Opened %s debt of %s (%s)",
					saved.Type, cli.Money(saved.Amount, saved.Currency), saved.ID)))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&debtType, "type", "t", "borrowed", "Debt type (borrowed, lent)")
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "Amount")
	cmd.Flags().StringVarP(&currency, "currency", "c", "", "Currency (default: base currency)")
	cmd.Flags().StringVarP(&wallet, "wallet", "w", "", "Wallet the money moved through")
	cmd.Flags().StringVar(&counterpart, "counterpart", "", "Who the debt is with")
	cmd.Flags().StringVar(&comment, "comment", "", "Free-form comment")
	cmd.Flags().StringVarP(&date, "date", "d", "", "Date (YYYY-MM-DD, default: now)")
	cmd.Flags().BoolVar(&existing, "existing", false, "The debt predates the cash book")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func listDebtsCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List debts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withAccounts(cmd.Context(), func(svc *accounts.Service, _ *storage.SQLiteStorage) error {
				snap, err := svc.Snapshot(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(out(cmd), renderDebts(snap.Debts, snap.Operations, all))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include closed debts")
	return cmd
}

func renderDebts(debts []model.Debt, ops []model.Operation, all bool) string {
	repaid := make(map[string]decimal.Decimal)
	for _, op := range ops {
		if tag, ok := op.Source.First(model.SourceDebt); ok && op.Type == model.OperationExpense {
			repaid[tag.Value] = repaid[tag.Value].Add(op.Amount)
		}
	}

	rows := make([][]string, 0, len(debts))
	for _, d := range debts {
		if !all && !d.IsOpen() {
			continue
		}
		kind := string(d.Type)
		if d.Existing {
			kind += " (existing)"
		}
		rows = append(rows, []string{
			d.ID,
			kind,
			d.Counterpart,
			d.Wallet,
			cli.Money(d.Amount, d.Currency),
			cli.Money(repaid[d.ID], d.Currency),
			string(d.Status),
			formatDate(d.CreatedAt),
		})
	}
	if len(rows) == 0 {
		return cli.SubtleStyle.Render("No debts.")
	}
	return cli.Table([]string{"ID", "Type", "With", "Wallet", "Amount", "Repaid", "Status", "Opened"}, rows)
}

func closeDebtCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "close <id>",
		Short: "Mark a debt as settled",
		Long: `Mark a debt as settled. A closed debt no longer affects any balance,
including the cash it moved when it was opened.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireEditor(); err != nil {
				return err
			}
			return withAccounts(cmd.Context(), func(svc *accounts.Service, _ *storage.SQLiteStorage) error {
				if err := svc.CloseDebt(cmd.Context(), args[0]); err != nil {
					return common.AsUserError(err)
				}
				fmt.Fprintln(out(cmd), cli.FormatSuccess("Closed debt "+args[0]))
				return nil
			})
		},
	}
}

func repayDebtCmd() *cobra.Command {
	var amount, comment, date string

	cmd := &cobra.Command{
		Use:   "repay <id>",
		Short: "Pay back part or all of a borrowed debt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireEditor(); err != nil {
				return err
			}

			req := accounts.RepayRequest{DebtID: args[0], Comment: comment}
			var err error
			if amount != "" {
				if req.Amount, err = parseAmount(amount); err != nil {
					return err
				}
			}
			if req.OccurredAt, err = parseDate(date); err != nil {
				return err
			}

			return withAccounts(cmd.Context(), func(svc *accounts.Service, _ *storage.SQLiteStorage) error {
				result, err := svc.RepayDebt(cmd.Context(), req)
				if err != nil {
					return common.AsUserError(err)
				}
				op := result.Operation
				if result.Closed {
					fmt.Fprintln(out(cmd), cli.FormatSuccess(fmt.Sprintf("Paid %s; debt %s is settled",
						cli.Money(op.Amount, op.Currency), args[0])))
					return nil
				}
				fmt.Fprintln(out(cmd), cli.FormatSuccess(fmt.Sprintf("Paid %s; %s still owed",
					cli.Money(op.Amount, op.Currency), cli.Money(result.Remaining, op.Currency))))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&amount, "amount", "a", "", "Amount to pay (default: everything still owed)")
	cmd.Flags().StringVar(&comment, "comment", "", "Free-form comment")
	cmd.Flags().StringVarP(&date, "date", "d", "", "Date (YYYY-MM-DD, default: now)")

	return cmd
}
