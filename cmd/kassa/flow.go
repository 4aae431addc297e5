package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/kassa/internal/accounts"
	"github.com/Veraticus/kassa/internal/cli"
	"github.com/Veraticus/kassa/internal/common"
	"github.com/Veraticus/kassa/internal/ledger"
	"github.com/Veraticus/kassa/internal/service"
	"github.com/Veraticus/kassa/internal/storage"
	"github.com/spf13/cobra"
)

func flowCmd() *cobra.Command {
	var from, to, month string

	cmd := &cobra.Command{
		Use:   "flow",
		Short: "Report income and spending over a period",
		Long: `Summarize where money came from and went over a period, valued in the
base currency. Transfers between wallets are left out; contributions to goals
are reported as savings and debt repayments separately.`,
		Example: `  kassa flow --month 2024-03
  kassa flow --from 2024-01-01 --to 2024-06-30`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			period, err := flowPeriod(from, to, month)
			if err != nil {
				return err
			}

			return withAccounts(cmd.Context(), func(svc *accounts.Service, _ *storage.SQLiteStorage) error {
				flow, err := svc.CashFlow(cmd.Context(), period)
				if err != nil {
					return err
				}
				fmt.Fprintln(out(cmd), renderFlow(flow))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "End date, inclusive (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&month, "month", "m", "", "A single month (YYYY-MM)")

	return cmd
}

func flowPeriod(from, to, month string) (service.DateRange, error) {
	if month != "" {
		start, err := time.Parse("2006-01", month)
		if err != nil {
			return service.DateRange{}, common.NewUserError(fmt.Sprintf("invalid month %q (use YYYY-MM)", month), err)
		}
		return service.DateRange{Start: start, End: start.AddDate(0, 1, 0).Add(-time.Nanosecond)}, nil
	}

	start, err := parseDate(from)
	if err != nil {
		return service.DateRange{}, err
	}
	end, err := parseEndDate(to)
	if err != nil {
		return service.DateRange{}, err
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return service.DateRange{}, common.NewUserError("--to is before --from", common.ErrInvalidInput)
	}
	return service.DateRange{Start: start, End: end}, nil
}

func renderFlow(flow *service.CashFlowSummary) string {
	c := flow.Currency
	var sb strings.Builder

	section := func(title string, byCategory map[string]service.CategorySummary) {
		if len(byCategory) == 0 {
			return
		}
		rows := make([][]string, 0, len(byCategory))
		for _, name := range ledger.SortedCategories(byCategory) {
			cs := byCategory[name]
			rows = append(rows, []string{name, cli.Money(cs.Amount, c), fmt.Sprintf("%d", cs.Count)})
		}
		sb.WriteString(cli.BoldStyle.Render(title) + "\n")
		sb.WriteString(cli.Table([]string{"Category", "Amount", "Ops"}, rows) + "\n")
	}

	section("Income", flow.IncomeByCategory)
	section("Expenses", flow.ExpensesByCategory)
	section("Savings", flow.SavingsByGoal)

	sb.WriteString(fmt.Sprintf("Income:      %s\n", cli.Money(flow.TotalIncome, c)))
	sb.WriteString(fmt.Sprintf("Expenses:    %s\n", cli.Money(flow.TotalExpenses, c)))
	sb.WriteString(fmt.Sprintf("Savings:     %s\n", cli.Money(flow.TotalSavings, c)))
	sb.WriteString(fmt.Sprintf("Repayments:  %s\n", cli.Money(flow.TotalRepayments, c)))
	sb.WriteString(fmt.Sprintf("Transfers:   %s\n", cli.SubtleStyle.Render(cli.Money(flow.TransferTotal, c))))
	sb.WriteString(cli.BoldStyle.Render("Net flow:    ") + cli.SignedMoney(flow.NetCashFlow, c))

	for _, insight := range flow.Insights {
		sb.WriteString("\n" + cli.FormatInfo(insight))
	}

	return cli.RenderBox(cli.ChartIcon+" "+flowTitle(flow.DateRange), sb.String())
}

func flowTitle(r service.DateRange) string {
	switch {
	case r.Start.IsZero() && r.End.IsZero():
		return "Cash flow, all time"
	case r.Start.IsZero():
		return "Cash flow until " + formatDate(r.End)
	case r.End.IsZero():
		return "Cash flow since " + formatDate(r.Start)
	default:
		return fmt.Sprintf("Cash flow %s to %s", formatDate(r.Start), formatDate(r.End))
	}
}
