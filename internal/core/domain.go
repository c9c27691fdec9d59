package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	USD Currency = "USD"
	KHR Currency = "KHR"
	LAK Currency = "LAK"
)

const (
	Deposit  TransactionKind = "deposit"
	Withdraw TransactionKind = "withdraw"
)

type (
	Currency string

	TransactionKind string

	// Account is a wallet account with its own balance. Catalog entries are
	// templates; a session works on a copy.
	Account struct {
		ID       string
		Name     string
		Currency Currency
		Balance  decimal.Decimal
	}

	// TransactionRecord describes the most recent completed transaction.
	TransactionRecord struct {
		Kind   TransactionKind
		Amount decimal.Decimal
	}

	// TransactionEvent is emitted after every completed transaction.
	TransactionEvent struct {
		SessionID   string          `json:"session_id"`
		AccountID   string          `json:"account_id"`
		AccountName string          `json:"account_name"`
		Kind        TransactionKind `json:"kind"`
		Amount      decimal.Decimal `json:"amount"`
		Currency    Currency        `json:"currency"`
		Balance     decimal.Decimal `json:"balance"`
		OccurredAt  time.Time       `json:"occurred_at"`
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidCurrency  = errors.New("invalid currency")
	ErrInvalidKind      = errors.New("invalid transaction kind")
	ErrEmptyAccountID   = errors.New("empty account id")
	ErrEmptyName        = errors.New("empty account name")
	ErrNegativeBalance  = errors.New("negative balance")
	ErrDuplicateAccount = errors.New("duplicate account id")
)

// Symbol returns the display symbol for the currency.
func (c Currency) Symbol() string {
	switch c {
	case USD:
		return "$"
	case KHR:
		return "៛"
	case LAK:
		return "₭"
	default:
		return ""
	}
}

func (c Currency) Validate() error {
	switch c {
	case USD, KHR, LAK:
		return nil
	default:
		return ErrInvalidCurrency
	}
}

func (k TransactionKind) Validate() error {
	switch k {
	case Deposit, Withdraw:
		return nil
	default:
		return ErrInvalidKind
	}
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.ID) == "" {
		return ErrEmptyAccountID
	}
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if err := a.Currency.Validate(); err != nil {
		return err
	}
	if a.Balance.IsNegative() {
		return ErrNegativeBalance
	}
	return nil
}

func (r TransactionRecord) Validate() error {
	if err := r.Kind.Validate(); err != nil {
		return err
	}
	if !r.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

// Event builds the transaction event for a record applied to the account.
func (r TransactionRecord) Event(sessionID string, a Account, at time.Time) TransactionEvent {
	return TransactionEvent{
		SessionID:   sessionID,
		AccountID:   a.ID,
		AccountName: a.Name,
		Kind:        r.Kind,
		Amount:      r.Amount,
		Currency:    a.Currency,
		Balance:     a.Balance,
		OccurredAt:  at.UTC(),
	}
}
