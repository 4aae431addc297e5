// Package cli provides styled terminal output using lipgloss.
package cli

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette. Amber for the book itself, teal for money in, coral for money out.
var (
	PrimaryColor = lipgloss.Color("#E9A23B")
	IncomeColor  = lipgloss.Color("#4ECDC4")
	ExpenseColor = lipgloss.Color("#FF6B6B")
	WarningColor = lipgloss.Color("#FFE66D")
	InfoColor    = lipgloss.Color("#95E1D3")
	SubtleColor  = lipgloss.Color("#666666")
	BorderColor  = lipgloss.Color("#333333")
)

var (
	// TitleStyle is used for box and section titles.
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(PrimaryColor)

	SuccessStyle = lipgloss.NewStyle().Foreground(IncomeColor)
	WarningStyle = lipgloss.NewStyle().Foreground(WarningColor)
	ErrorStyle   = lipgloss.NewStyle().Foreground(ExpenseColor)
	InfoStyle    = lipgloss.NewStyle().Foreground(InfoColor)
	SubtleStyle  = lipgloss.NewStyle().Foreground(SubtleColor)
	BoldStyle    = lipgloss.NewStyle().Bold(true)

	// IncomeStyle and ExpenseStyle color amounts by direction.
	IncomeStyle  = lipgloss.NewStyle().Foreground(IncomeColor)
	ExpenseStyle = lipgloss.NewStyle().Foreground(ExpenseColor)

	// BoxStyle frames summaries such as the balance and cash-flow reports.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(1, 2)

	tableHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(PrimaryColor).Padding(0, 1)
	tableCellStyle   = lipgloss.NewStyle().Padding(0, 1)
	promptStyle      = lipgloss.NewStyle().Bold(true).Foreground(PrimaryColor)
)

// Icons.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "⚠️"
	InfoIcon    = "ℹ️"
	KassaIcon   = "💰"
	ChartIcon   = "📊"
	GoalIcon    = "🎯"
)

func message(style lipgloss.Style, icon, text string) string {
	return style.Render(icon + " " + text)
}

// FormatSuccess formats a success message with icon.
func FormatSuccess(text string) string { return message(SuccessStyle, SuccessIcon, text) }

// FormatError formats an error message with icon.
func FormatError(text string) string { return message(ErrorStyle, ErrorIcon, text) }

// FormatWarning formats a warning message with icon.
func FormatWarning(text string) string { return message(WarningStyle, WarningIcon, text) }

// FormatInfo formats an info message with icon.
func FormatInfo(text string) string { return message(InfoStyle, InfoIcon, text) }

// FormatPrompt formats a question awaiting input on the same line.
func FormatPrompt(prompt string) string {
	return promptStyle.Render(prompt + " → ")
}

// RenderBox renders content under a title inside BoxStyle.
func RenderBox(title, content string) string {
	return BoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, TitleStyle.Render(title), "", content))
}
