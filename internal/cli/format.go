package cli

import (
	"strings"

	"github.com/Veraticus/kassa/internal/model"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"
)

// Money renders an amount with two decimals, thousands separators and the
// currency code, e.g. "-1,234.50 GEL".
func Money(amount decimal.Decimal, c model.Currency) string {
	s := amount.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	out := sign + b.String() + "." + frac
	if c != "" {
		out += " " + string(c)
	}
	return out
}

// SignedMoney colors Money by sign.
func SignedMoney(amount decimal.Decimal, c model.Currency) string {
	switch {
	case amount.IsNegative():
		return ExpenseStyle.Render(Money(amount, c))
	case amount.IsPositive():
		return IncomeStyle.Render(Money(amount, c))
	default:
		return Money(amount, c)
	}
}

// Percent renders a 0..1 ratio as a whole percentage.
func Percent(ratio decimal.Decimal) string {
	return ratio.Mul(decimal.NewFromInt(100)).Round(0).String() + "%"
}

// Table renders rows under headers with a rounded border.
func Table(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(SubtleStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return tableCellStyle
		})
	return t.Render()
}
