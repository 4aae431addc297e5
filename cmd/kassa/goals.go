package main

import (
	"fmt"

	"github.com/Veraticus/kassa/internal/accounts"
	"github.com/Veraticus/kassa/internal/cli"
	"github.com/Veraticus/kassa/internal/common"
	"github.com/Veraticus/kassa/internal/ledger"
	"github.com/Veraticus/kassa/internal/model"
	"github.com/Veraticus/kassa/internal/storage"
	"github.com/spf13/cobra"
)

func goalsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goals",
		Short: "Save toward goals",
		Long: `Savings goals set money aside. A contribution is recorded as an expense
whose category is the goal's title; that money leaves the wallet balances but
is still counted as savings.`,
		Example: `  kassa goals add "New roof" --target 2000 --currency EUR
  kassa goals contribute g7f3 --amount 150 --wallet Card`,
	}

	cmd.AddCommand(addGoalCmd())
	cmd.AddCommand(listGoalsCmd())
	cmd.AddCommand(contributeGoalCmd())

	return cmd
}

func addGoalCmd() *cobra.Command {
	var target, currency string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a savings goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireEditor(); err != nil {
				return err
			}

			goal := model.Goal{Title: args[0]}
			var err error
			if goal.TargetAmount, err = parseAmount(target); err != nil {
				return err
			}
			if goal.Currency, err = parseCurrency(currency); err != nil {
				return err
			}

			return withAccounts(cmd.Context(), func(svc *accounts.Service, _ *storage.SQLiteStorage) error {
				saved, err := svc.CreateGoal(cmd.Context(), goal)
				if err != nil {
					return common.AsUserError(err)
				}
				fmt.Fprintln(out(cmd), cli.FormatSuccess(fmt.Sprintf("Created goal %q with target %s (%s)",
					saved.Title, cli.Money(saved.TargetAmount, saved.Currency), saved.ID)))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&target, "target", "", "Target amount")
	cmd.Flags().StringVarP(&currency, "currency", "c", "", "Currency (default: base currency)")
	_ = cmd.MarkFlagRequired("target")

	return cmd
}

func listGoalsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show progress on every goal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withAccounts(cmd.Context(), func(svc *accounts.Service, _ *storage.SQLiteStorage) error {
				summary, err := svc.Goals(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(out(cmd), renderGoals(summary))
				return nil
			})
		},
	}
}

func renderGoals(summary ledger.GoalsSummary) string {
	if len(summary.Goals) == 0 {
		return cli.SubtleStyle.Render("No goals yet.")
	}

	rows := make([][]string, 0, len(summary.Goals))
	for _, gp := range summary.Goals {
		g := gp.Goal
		rows = append(rows, []string{
			g.ID,
			g.Title,
			cli.Money(g.CurrentAmount, g.Currency),
			cli.Money(g.TargetAmount, g.Currency),
			cli.Percent(gp.Progress),
			string(g.Status),
		})
	}

	table := cli.Table([]string{"ID", "Goal", "Saved", "Target", "Progress", "Status"}, rows)
	return fmt.Sprintf("%s\n%s %s of %s", table, cli.GoalIcon,
		cli.Money(summary.Saved, summary.Currency), cli.Money(summary.Target, summary.Currency))
}

func contributeGoalCmd() *cobra.Command {
	var amount, wallet, comment, date string

	cmd := &cobra.Command{
		Use:   "contribute <goal-id>",
		Short: "Set money aside for a goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireEditor(); err != nil {
				return err
			}

			c := accounts.Contribution{GoalID: args[0], Wallet: wallet, Comment: comment}
			var err error
			if c.Amount, err = parseAmount(amount); err != nil {
				return err
			}
			if c.OccurredAt, err = parseDate(date); err != nil {
				return err
			}

			return withAccounts(cmd.Context(), func(svc *accounts.Service, _ *storage.SQLiteStorage) error {
				goal, err := svc.Contribute(cmd.Context(), c)
				if err != nil {
					return common.AsUserError(err)
				}
				msg := fmt.Sprintf("%q now has %s of %s", goal.Title,
					cli.Money(goal.CurrentAmount, goal.Currency), cli.Money(goal.TargetAmount, goal.Currency))
				if goal.Status == model.GoalDone {
					msg += " (reached!)"
				}
				fmt.Fprintln(out(cmd), cli.FormatSuccess(msg))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&amount, "amount", "a", "", "Amount in the goal's currency")
	cmd.Flags().StringVarP(&wallet, "wallet", "w", "", "Wallet the money comes from")
	cmd.Flags().StringVar(&comment, "comment", "", "Free-form comment")
	cmd.Flags().StringVarP(&date, "date", "d", "", "Date (YYYY-MM-DD, default: now)")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("wallet")

	return cmd
}
