// Package ofx reads OFX/QFX bank statements and turns their transactions
// into wallet operations.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/Veraticus/kassa/internal/model"
	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"
)

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// Entry is one statement transaction. Amount is signed the way the bank
// reports it: negative for money leaving the account.
type Entry struct {
	PostedAt time.Time
	Amount   decimal.Decimal
	FITID    string
	Payee    string
	Memo     string
	Type     string
	Account  string
	Currency string
}

// Parser implements OFX/QFX file parsing.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// preprocessOFX fixes common formatting issues in bank exports.
func (p *Parser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// SEVERITY must be upper case.
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// SGML files sometimes drop the closing bracket of a bare tag.
	return tagFixRegex.ReplaceAllString(content, "$1>")
}

// ParseFile parses an OFX/QFX file and returns its transactions in file order.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) ([]Entry, error) {
	resp, err := p.parse(reader)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok {
			continue
		}
		bankStmts++
		entries = append(entries, p.statementEntries(stmt.BankTranList, string(stmt.BankAcctFrom.AcctID), stmt.CurDef.String())...)
	}

	for _, msg := range resp.CreditCard {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok {
			continue
		}
		ccStmts++
		entries = append(entries, p.statementEntries(stmt.BankTranList, string(stmt.CCAcctFrom.AcctID), stmt.CurDef.String())...)
	}

	slog.Info("Parsed OFX file",
		"entries", len(entries),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return entries, nil
}

func (p *Parser) parse(reader io.Reader) (*ofxgo.Response, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}
	return resp, nil
}

func (p *Parser) statementEntries(list *ofxgo.TransactionList, account, currency string) []Entry {
	if list == nil {
		return nil
	}

	entries := make([]Entry, 0, len(list.Transactions))
	for _, tx := range list.Transactions {
		entry, err := p.convertTransaction(tx, account, currency)
		if err != nil {
			slog.Warn("Skipping OFX transaction", "fitid", tx.FiTID, "account", account, "error", err)
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}

func (p *Parser) convertTransaction(tx ofxgo.Transaction, account, currency string) (Entry, error) {
	amount, err := decimal.NewFromString(tx.TrnAmt.Rat.FloatString(4))
	if err != nil {
		return Entry{}, fmt.Errorf("bad amount: %w", err)
	}

	return Entry{
		FITID:    strings.TrimSpace(string(tx.FiTID)),
		PostedAt: tx.DtPosted.Time,
		Amount:   amount,
		Payee:    p.extractPayee(tx),
		Memo:     strings.TrimSpace(string(tx.Memo)),
		Type:     tx.TrnType.String(),
		Account:  account,
		Currency: currency,
	}, nil
}

var payeePrefixes = []string{
	"POS PURCHASE ",
	"PURCHASE AUTHORIZED ON ",
	"DEBIT CARD PURCHASE ",
	"ACH DEBIT ",
	"CHECK CARD ",
	"VISA PURCHASE ",
	"MC PURCHASE ",
	"DEBIT PURCHASE ",
}

// extractPayee returns the cleanest counterparty name available.
func (p *Parser) extractPayee(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := string(tx.Name)
	if tx.Memo != "" && isGenericDescription(name) {
		name = string(tx.Memo)
	}
	name = strings.TrimSpace(name)

	for _, prefix := range payeePrefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Leading "MM/DD " dates.
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

func isGenericDescription(name string) bool {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "POS TRANSACTION", "CARD PURCHASE":
		return true
	}
	return false
}

// Accounts lists the distinct account ids in the file.
func (p *Parser) Accounts(reader io.Reader) ([]string, error) {
	resp, err := p.parse(reader)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var accounts []string
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			accounts = append(accounts, id)
		}
	}

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			add(string(stmt.BankAcctFrom.AcctID))
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			add(string(stmt.CCAcctFrom.AcctID))
		}
	}

	return accounts, nil
}

// Category maps an OFX transaction type to an operation category.
func Category(trnType string) string {
	switch strings.ToUpper(trnType) {
	case "INT", "DIV":
		return "Interest"
	case "FEE", "SRVCHG":
		return "Bank fees"
	case "ATM", "CASH":
		return "Cash"
	default:
		return "Imported"
	}
}

// ToOperation converts an entry into an operation for wallet. Statement
// currencies outside the supported set fall back to fallback.
func (e Entry) ToOperation(wallet string, fallback model.Currency, now time.Time) model.Operation {
	opType := model.OperationIncome
	if e.Amount.IsNegative() {
		opType = model.OperationExpense
	}

	comment := e.Payee
	if e.Memo != "" && !strings.EqualFold(e.Memo, e.Payee) {
		if comment == "" {
			comment = e.Memo
		} else {
			comment += " (" + e.Memo + ")"
		}
	}

	return model.Operation{
		ID:         OperationID(wallet, e.Key()),
		OccurredAt: e.PostedAt.UTC(),
		CreatedAt:  now,
		Amount:     e.Amount.Abs(),
		Type:       opType,
		Category:   Category(e.Type),
		Wallet:     wallet,
		Comment:    comment,
		Currency:   model.SanitizeCurrency(e.Currency, fallback),
		Source:     model.Source{{Kind: model.SourceImport, Value: e.Key()}},
	}
}
