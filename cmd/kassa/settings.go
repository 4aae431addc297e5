package main

import (
	"fmt"
	"sort"

	"github.com/Veraticus/kassa/internal/accounts"
	"github.com/Veraticus/kassa/internal/cli"
	"github.com/Veraticus/kassa/internal/common"
	"github.com/Veraticus/kassa/internal/model"
	"github.com/Veraticus/kassa/internal/storage"
	"github.com/spf13/cobra"
)

func settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Base currency and exchange rates",
		Long: `Every balance is valued in the base currency. A rate says how many
units of the base currency one unit of another currency is worth.`,
		Example: `  kassa settings show
  kassa settings base GEL
  kassa settings rate USD 2.68`,
	}

	cmd.AddCommand(showSettingsCmd())
	cmd.AddCommand(setBaseCmd())
	cmd.AddCommand(setRateCmd())

	return cmd
}

func showSettingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the base currency and rates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withAccounts(cmd.Context(), func(_ *accounts.Service, store *storage.SQLiteStorage) error {
				settings, err := store.GetSettings(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(out(cmd), renderSettings(settings))
				return nil
			})
		},
	}
}

func renderSettings(s *model.Settings) string {
	currencies := make([]string, 0, len(s.Rates))
	for c := range s.Rates {
		currencies = append(currencies, string(c))
	}
	sort.Strings(currencies)

	rows := make([][]string, 0, len(currencies))
	for _, c := range currencies {
		rows = append(rows, []string{"1 " + c, s.Rates[model.Currency(c)].String() + " " + string(s.BaseCurrency)})
	}

	header := cli.BoldStyle.Render("Base currency: ") + string(s.BaseCurrency)
	if !s.UpdatedAt.IsZero() {
		header += cli.SubtleStyle.Render(" (rates updated " + s.UpdatedAt.Format("2006-01-02 15:04") + ")")
	}
	return header + "\n" + cli.Table([]string{"Currency", "Worth"}, rows)
}

func setBaseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "base <currency>",
		Short: "Change the base currency",
		Long: `Change the base currency. Existing rates are converted through the old
base; when the new base had no rate, the other rates are dropped and must be
set again.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireEditor(); err != nil {
				return err
			}
			base, err := parseCurrency(args[0])
			if err != nil {
				return err
			}
			if base == "" {
				return common.NewUserError("a currency is required", common.ErrInvalidInput)
			}

			return withAccounts(cmd.Context(), func(_ *accounts.Service, store *storage.SQLiteStorage) error {
				current, err := store.GetSettings(cmd.Context())
				if err != nil {
					return err
				}
				updated := current.Rebase(base)
				if err := store.SaveSettings(cmd.Context(), &updated); err != nil {
					return err
				}
				fmt.Fprintln(out(cmd), cli.FormatSuccess("Base currency is now "+string(base)))
				if len(updated.Rates) == 1 && len(current.Rates) > 1 {
					fmt.Fprintln(out(cmd), cli.FormatWarning("No rate was known for "+string(base)+"; run 'kassa rates sync' or set rates by hand"))
				}
				return nil
			})
		},
	}
}

func setRateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rate <currency> <value>",
		Short: "Set how much one unit of a currency is worth in the base currency",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireEditor(); err != nil {
				return err
			}
			c, err := parseCurrency(args[0])
			if err != nil {
				return err
			}
			if c == "" {
				return common.NewUserError("a currency is required", common.ErrInvalidInput)
			}
			rate, err := parseAmount(args[1])
			if err != nil {
				return err
			}

			return withAccounts(cmd.Context(), func(_ *accounts.Service, store *storage.SQLiteStorage) error {
				settings, err := store.GetSettings(cmd.Context())
				if err != nil {
					return err
				}
				if c == settings.BaseCurrency {
					return common.NewUserError("the base currency's rate is always 1", common.ErrInvalidInput)
				}
				settings.Rates[c] = rate
				if err := store.SaveSettings(cmd.Context(), settings); err != nil {
					return err
				}
				fmt.Fprintln(out(cmd), cli.FormatSuccess(fmt.Sprintf("1 %s = %s %s", c, rate, settings.BaseCurrency)))
				return nil
			})
		},
	}
}
