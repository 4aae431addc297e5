package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// SourceKind identifies what a source tag records about an operation.
type SourceKind string

// Known source tag kinds. Unknown kinds are preserved verbatim.
const (
	SourceDebtPayment SourceKind = "debt-payment"
	SourceTransfer    SourceKind = "transfer"
	SourceImport      SourceKind = "import"
	SourceDebt        SourceKind = "debt"
)

const (
	sourceSeparator = "|"
	sourceKeyValue  = ":"
)

// SourceTag is one piece of provenance metadata attached to an operation.
type SourceTag struct {
	Kind  SourceKind
	Value string
}

// Source is the structured provenance of an operation. It is decoded once
// from its stored text form ("kind:value|kind:value") by ParseSource.
type Source []SourceTag

// ParseSource decodes the stored text form. Empty segments are skipped and a
// segment without a colon becomes a tag with an empty value. Never fails.
func ParseSource(raw string) Source {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var src Source
	for _, part := range strings.Split(raw, sourceSeparator) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kind, value, _ := strings.Cut(part, sourceKeyValue)
		src = append(src, SourceTag{
			Kind:  SourceKind(strings.ToLower(strings.TrimSpace(kind))),
			Value: strings.TrimSpace(value),
		})
	}
	return src
}

// String encodes the source back into its stored text form.
func (s Source) String() string {
	parts := make([]string, 0, len(s))
	for _, tag := range s {
		if tag.Value == "" {
			parts = append(parts, string(tag.Kind))
			continue
		}
		parts = append(parts, string(tag.Kind)+sourceKeyValue+tag.Value)
	}
	return strings.Join(parts, sourceSeparator)
}

// First returns the first tag of the given kind. Later tags of the same kind
// are ignored.
func (s Source) First(kind SourceKind) (SourceTag, bool) {
	for _, tag := range s {
		if tag.Kind == kind {
			return tag, true
		}
	}
	return SourceTag{}, false
}

// With returns a copy of s with a tag appended.
func (s Source) With(kind SourceKind, value string) Source {
	out := make(Source, 0, len(s)+1)
	out = append(out, s...)
	return append(out, SourceTag{Kind: kind, Value: value})
}

// DebtPayment returns the repayment amount carried by the first debt-payment
// tag, or zero when the tag is absent, malformed, or not positive.
func (s Source) DebtPayment() decimal.Decimal {
	tag, ok := s.First(SourceDebtPayment)
	if !ok {
		return decimal.Zero
	}
	amount, err := decimal.NewFromString(tag.Value)
	if err != nil || !amount.IsPositive() {
		return decimal.Zero
	}
	return amount
}

// TransferID returns the id of the first transfer tag.
func (s Source) TransferID() (string, bool) {
	tag, ok := s.First(SourceTransfer)
	if !ok || tag.Value == "" {
		return "", false
	}
	return tag.Value, true
}

// DebtPaymentSource builds a source recording a repayment of amount.
func DebtPaymentSource(amount decimal.Decimal) Source {
	return Source{{Kind: SourceDebtPayment, Value: amount.String()}}
}
