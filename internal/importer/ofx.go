package importer

import (
	"io"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"

	"zaman/internal/core"
)

var (
	leadingSpace = regexp.MustCompile(`^[\s\x{FEFF}]+`)
	openTagFix   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
	severityFix  = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)`)
)

// ParseOFX reads bank and credit card transactions from an OFX or QFX
// statement. OFX carries no categories.
func ParseOFX(r io.Reader) (Result, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Result{}, importErr(ErrStatement, MsgStatement, err)
	}
	content := leadingSpace.ReplaceAllString(string(raw), "")
	if content == "" {
		return Result{}, importErr(ErrEmptyFile, MsgEmptyFile, nil)
	}
	content = severityFix.ReplaceAllStringFunc(content, strings.ToUpper)
	content = openTagFix.ReplaceAllString(content, "$1>")

	resp, err := ofxgo.ParseResponse(strings.NewReader(content))
	if err != nil {
		return Result{}, importErr(ErrStatement, MsgStatement, err)
	}

	var txs []core.Transaction
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankTranList != nil {
			txs = appendOFX(txs, stmt.BankTranList.Transactions)
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.BankTranList != nil {
			txs = appendOFX(txs, stmt.BankTranList.Transactions)
		}
	}

	if len(txs) == 0 {
		return Result{}, importErr(ErrNoValidRows, MsgNoValidRows, nil)
	}
	return Result{Transactions: txs}, nil
}

func appendOFX(dst []core.Transaction, src []ofxgo.Transaction) []core.Transaction {
	for _, t := range src {
		amount, _ := t.TrnAmt.Float64()
		dst = append(dst, core.Transaction{
			Date:     t.DtPosted.Time.Format(core.ISODate),
			Amount:   amount,
			Merchant: ofxMerchant(t),
		})
	}
	return dst
}

func ofxMerchant(t ofxgo.Transaction) string {
	if t.Payee != nil && t.Payee.Name != "" {
		return strings.TrimSpace(string(t.Payee.Name))
	}
	if name := strings.TrimSpace(string(t.Name)); name != "" {
		return name
	}
	return strings.TrimSpace(string(t.Memo))
}
