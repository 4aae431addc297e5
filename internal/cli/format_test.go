package cli

import (
	"testing"

	"github.com/Veraticus/kassa/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMoney(t *testing.T) {
	tests := []struct {
		amount   string
		currency model.Currency
		expected string
	}{
		{amount: "0", currency: model.USD, expected: "0.00 USD"},
		{amount: "12.5", currency: model.EUR, expected: "12.50 EUR"},
		{amount: "1234.567", currency: model.GEL, expected: "1,234.57 GEL"},
		{amount: "-1234567.1", currency: model.RUB, expected: "-1,234,567.10 RUB"},
		{amount: "999", currency: "", expected: "999.00"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, Money(decimal.RequireFromString(tt.amount), tt.currency))
		})
	}
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "0%", Percent(decimal.Zero))
	assert.Equal(t, "43%", Percent(decimal.RequireFromString("0.4321")))
	assert.Equal(t, "100%", Percent(decimal.NewFromInt(1)))
}

func TestTable(t *testing.T) {
	out := Table([]string{"Wallet", "Balance"}, [][]string{
		{"Cash", "10.00 USD"},
		{"Card", "2,500.00 GEL"},
	})
	assert.Contains(t, out, "Wallet")
	assert.Contains(t, out, "Cash")
	assert.Contains(t, out, "2,500.00 GEL")
}

func TestSignedMoney(t *testing.T) {
	assert.Contains(t, SignedMoney(decimal.NewFromInt(-3), model.USD), "-3.00 USD")
	assert.Contains(t, SignedMoney(decimal.NewFromInt(3), model.USD), "3.00 USD")
}

func TestFormatMessages(t *testing.T) {
	assert.Contains(t, FormatSuccess("saved"), SuccessIcon+" saved")
	assert.Contains(t, FormatError("failed"), ErrorIcon+" failed")
	assert.Contains(t, FormatWarning("stale"), "stale")
	assert.Contains(t, FormatInfo("note"), "note")
	assert.Contains(t, FormatPrompt("Continue?"), "Continue? →")
}

func TestRenderBox(t *testing.T) {
	out := RenderBox("Balance", "Cash on hand: 10.00 USD")
	assert.Contains(t, out, "Balance")
	assert.Contains(t, out, "Cash on hand: 10.00 USD")
	assert.Contains(t, out, "╭")
}
