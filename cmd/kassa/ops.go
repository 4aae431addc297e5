package main

import (
	"fmt"
	"strings"

	"github.com/Veraticus/kassa/internal/accounts"
	"github.com/Veraticus/kassa/internal/cli"
	"github.com/Veraticus/kassa/internal/common"
	"github.com/Veraticus/kassa/internal/model"
	"github.com/Veraticus/kassa/internal/service"
	"github.com/Veraticus/kassa/internal/storage"
	"github.com/spf13/cobra"
)

func opsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "ops",
		Aliases: []string{"operations"},
		Short:   "Record and list income and expenses",
		Example: `  kassa ops add --type expense --amount 12.40 --currency GEL --category Food --wallet Cash
  kassa ops list --from 2024-01-01 --to 2024-01-31 --wallet cash`,
	}

	cmd.AddCommand(addOperationCmd())
	cmd.AddCommand(listOperationsCmd())
	cmd.AddCommand(deleteOperationCmd())

	return cmd
}

func addOperationCmd() *cobra.Command {
	var (
		opType, amount, currency, category string
		wallet, comment, date, debtPayment string
		debtID                             string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an income or expense",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireEditor(); err != nil {
				return err
			}

			op := model.Operation{
				Type:     model.OperationType(strings.ToLower(opType)),
				Category: category,
				Wallet:   wallet,
				Comment:  comment,
			}
			var err error
			if op.Amount, err = parseAmount(amount); err != nil {
				return err
			}
			if op.Currency, err = parseCurrency(currency); err != nil {
				return err
			}
			if op.OccurredAt, err = parseDate(date); err != nil {
				return err
			}
			if debtPayment != "" {
				paid, err := parseAmount(debtPayment)
				if err != nil {
					return err
				}
				op.Source = model.DebtPaymentSource(paid)
			}
			if debtID != "" {
				op.Source = op.Source.With(model.SourceDebt, debtID)
			}

			return withAccounts(cmd.Context(), func(svc *accounts.Service, _ *storage.SQLiteStorage) error {
				saved, err := svc.RecordOperation(cmd.Context(), op)
				if err != nil {
					return common.AsUserError(err)
				}
				fmt.Fprintln(out(cmd), cli.FormatSuccess(fmt.Sprintf("Recorded %s of %s (%s)",
					saved.Type, cli.Money(saved.Amount, saved.Currency), saved.ID)))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&opType, "type", "t", "expense", "Operation type (income, expense)")
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "Amount, always positive")
	cmd.Flags().StringVarP(&currency, "currency", "c", "", "Currency (default: base currency)")
	cmd.Flags().StringVar(&category, "category", "", "Category")
	cmd.Flags().StringVarP(&wallet, "wallet", "w", "", "Wallet")
	cmd.Flags().StringVar(&comment, "comment", "", "Free-form comment")
	cmd.Flags().StringVarP(&date, "date", "d", "", "Date (YYYY-MM-DD, default: now)")
	cmd.Flags().StringVar(&debtPayment, "debt-payment", "", "Mark the operation as repaying this much of a borrowed debt")
	cmd.Flags().StringVar(&debtID, "debt", "", "Debt this operation belongs to")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func listOperationsCmd() *cobra.Command {
	var (
		from, to, wallet, opType string
		limit                    int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List operations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter := service.OperationFilter{
				Wallet: wallet,
				Type:   model.OperationType(strings.ToLower(opType)),
				Limit:  limit,
			}
			start, err := parseDate(from)
			if err != nil {
				return err
			}
			end, err := parseEndDate(to)
			if err != nil {
				return err
			}
			if !start.IsZero() {
				filter.StartDate = &start
			}
			if !end.IsZero() {
				filter.EndDate = &end
			}

			return withAccounts(cmd.Context(), func(_ *accounts.Service, store *storage.SQLiteStorage) error {
				ops, err := store.GetOperations(cmd.Context(), filter)
				if err != nil {
					return err
				}
				fmt.Fprintln(out(cmd), renderOperations(ops))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "End date, inclusive (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&wallet, "wallet", "w", "", "Only this wallet")
	cmd.Flags().StringVarP(&opType, "type", "t", "", "Only this type (income, expense)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show at most this many operations")

	return cmd
}

func renderOperations(ops []model.Operation) string {
	if len(ops) == 0 {
		return cli.SubtleStyle.Render("No operations found.")
	}

	rows := make([][]string, 0, len(ops))
	for _, op := range ops {
		rows = append(rows, []string{
			formatDate(op.OccurredAt),
			op.Wallet,
			op.Category,
			cli.SignedMoney(op.Signed(), op.Currency),
			op.Comment,
			op.ID,
		})
	}
	return cli.Table([]string{"Date", "Wallet", "Category", "Amount", "Comment", "ID"}, rows)
}

func deleteOperationCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an operation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireEditor(); err != nil {
				return err
			}
			return withAccounts(cmd.Context(), func(_ *accounts.Service, store *storage.SQLiteStorage) error {
				if err := store.DeleteOperation(cmd.Context(), args[0]); err != nil {
					return common.AsUserError(err)
				}
				fmt.Fprintln(out(cmd), cli.FormatSuccess("Deleted operation "+args[0]))
				return nil
			})
		},
	}
}
