package model

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseSource_DebtPayment(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "missing source", raw: "", want: "0"},
		{name: "whitespace only", raw: "   ", want: "0"},
		{name: "single tag", raw: "debt-payment:30", want: "30"},
		{name: "decimal amount", raw: "debt-payment:12.75", want: "12.75"},
		{name: "multi tag source", raw: "debt-payment:30|transfer:abc", want: "30"},
		{name: "payment after other tags", raw: "import:fit-1|debt-payment:5", want: "5"},
		{name: "unrelated tags only", raw: "transfer:abc|import:x", want: "0"},
		{name: "malformed amount", raw: "debt-payment:abc", want: "0"},
		{name: "empty amount", raw: "debt-payment:", want: "0"},
		{name: "negative amount", raw: "debt-payment:-10", want: "0"},
		{name: "tag without value", raw: "debt-payment", want: "0"},
		{name: "first tag wins", raw: "debt-payment:10|debt-payment:20", want: "10"},
		{name: "case and spacing", raw: " Debt-Payment : 7 | transfer:x", want: "7"},
		{name: "dangling separators", raw: "||debt-payment:3||", want: "3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseSource(tt.raw).DebtPayment()
			want := decimal.RequireFromString(tt.want)
			if !got.Equal(want) {
				t.Errorf("DebtPayment() = %s, want %s", got, want)
			}
		})
	}
}

func TestSource_String(t *testing.T) {
	src := ParseSource("debt-payment:30|transfer:abc|note")
	if got := src.String(); got != "debt-payment:30|transfer:abc|note" {
		t.Errorf("String() = %q", got)
	}

	if id, ok := src.TransferID(); !ok || id != "abc" {
		t.Errorf("TransferID() = %q, %v", id, ok)
	}

	var empty Source
	if empty.String() != "" {
		t.Errorf("empty source should encode to empty string")
	}
	if _, ok := empty.TransferID(); ok {
		t.Errorf("empty source should have no transfer id")
	}
}

func TestSource_With(t *testing.T) {
	base := DebtPaymentSource(decimal.NewFromInt(15))
	extended := base.With(SourceDebt, "debt-1")

	if len(base) != 1 {
		t.Fatalf("With must not modify the receiver, got %d tags", len(base))
	}
	if got := extended.String(); got != "debt-payment:15|debt:debt-1" {
		t.Errorf("String() = %q", got)
	}
}
