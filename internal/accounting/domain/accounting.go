// Package domain holds the chart of accounts and the double-entry journal.
package domain

import "time"

// AccountType classifies an account and decides its normal balance side.
type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeIncome    AccountType = "INCOME"
	AccountTypeExpense   AccountType = "EXPENSE"
)

// AccountTypes lists the valid account types.
var AccountTypes = []string{
	string(AccountTypeAsset), string(AccountTypeLiability), string(AccountTypeEquity),
	string(AccountTypeIncome), string(AccountTypeExpense),
}

// DebitNormal reports whether the account type grows with debits.
func (t AccountType) DebitNormal() bool {
	return t == AccountTypeAsset || t == AccountTypeExpense
}

// Balance returns the balance in the type's normal direction.
func (t AccountType) Balance(debitCents, creditCents int64) int64 {
	if t.DebitNormal() {
		return debitCents - creditCents
	}
	return creditCents - debitCents
}

// Account is one entry of an organization's chart of accounts. Code is unique per org.
type Account struct {
	ID        string      `json:"id"`
	OrgID     string      `json:"-"`
	Code      string      `json:"code"`
	Name      string      `json:"name"`
	Type      AccountType `json:"type"`
	CreatedAt time.Time   `json:"createdAt"`
}

// JournalEntry is a dated, balanced set of journal lines. SubtotalCents and TotalCents are the
// debit side of the lines; entries carry no tax so the two are equal.
type JournalEntry struct {
	ID            string        `json:"id"`
	OrgID         string        `json:"-"`
	Date          time.Time     `json:"date"`
	Memo          string        `json:"memo,omitempty"`
	SubtotalCents int64         `json:"subtotalCents"`
	TotalCents    int64         `json:"totalCents"`
	CreatedAt     time.Time     `json:"createdAt"`
	Lines         []JournalLine `json:"lines"`
}

// JournalLine debits or credits one account. Exactly one of DebitCents and CreditCents is non-zero.
type JournalLine struct {
	ID          string `json:"id"`
	EntryID     string `json:"entryId"`
	AccountID   string `json:"accountId"`
	AccountCode string `json:"accountCode,omitempty"`
	AccountName string `json:"accountName,omitempty"`
	DebitCents  int64  `json:"debitCents"`
	CreditCents int64  `json:"creditCents"`
}

// Balanced reports whether total debits equal total credits.
func (e *JournalEntry) Balanced() bool {
	var debit, credit int64
	for _, l := range e.Lines {
		debit += l.DebitCents
		credit += l.CreditCents
	}
	return debit == credit
}

// ComputeTotals sets SubtotalCents and TotalCents from the debit lines.
func (e *JournalEntry) ComputeTotals() {
	var debit int64
	for _, l := range e.Lines {
		debit += l.DebitCents
	}
	e.SubtotalCents = debit
	e.TotalCents = debit
}

// TrialBalanceRow is the posted totals of one account.
type TrialBalanceRow struct {
	AccountID    string      `json:"accountId"`
	Code         string      `json:"code"`
	Name         string      `json:"name"`
	Type         AccountType `json:"type"`
	DebitCents   int64       `json:"debitCents"`
	CreditCents  int64       `json:"creditCents"`
	BalanceCents int64       `json:"balanceCents"`
}

// TrialBalance lists every account with its totals. It balances when TotalDebitCents equals TotalCreditCents.
type TrialBalance struct {
	Rows             []TrialBalanceRow `json:"rows"`
	TotalDebitCents  int64             `json:"totalDebitCents"`
	TotalCreditCents int64             `json:"totalCreditCents"`
}

// DefaultChart is the starter chart of accounts created for an empty organization.
func DefaultChart() []Account {
	return []Account{
		{Code: "1000", Name: "Cash", Type: AccountTypeAsset},
		{Code: "1100", Name: "Accounts Receivable", Type: AccountTypeAsset},
		{Code: "1200", Name: "Inventory", Type: AccountTypeAsset},
		{Code: "2000", Name: "Accounts Payable", Type: AccountTypeLiability},
		{Code: "3000", Name: "Owner's Equity", Type: AccountTypeEquity},
		{Code: "4000", Name: "Sales", Type: AccountTypeIncome},
		{Code: "5000", Name: "Cost of Goods Sold", Type: AccountTypeExpense},
		{Code: "5100", Name: "Operating Expenses", Type: AccountTypeExpense},
		{Code: "5200", Name: "Utilities Expense", Type: AccountTypeExpense},
	}
}
