package wallet

import (
	"demowallet/internal/core"
)

// Result is the outcome of a ledger operation. On failure Account is the
// unchanged input, Record is nil and Message holds the user-facing reason.
type Result struct {
	Account core.Account
	Record  *core.TransactionRecord
	Message string
}

// Deposit adds the parsed amount to the account balance.
func Deposit(acct core.Account, raw string) (Result, error) {
	amount, err := core.ParseAmount(raw)
	if err != nil {
		return Result{Account: acct, Message: MsgInvalidDeposit}, ErrInvalidAmount
	}
	acct.Balance = acct.Balance.Add(amount)
	return Result{
		Account: acct,
		Record:  &core.TransactionRecord{Kind: core.Deposit, Amount: amount},
		Message: depositedMessage(acct, amount),
	}, nil
}

// Withdraw subtracts the parsed amount. The amount is validated before the
// balance is compared, and the comparison is exact.
func Withdraw(acct core.Account, raw string) (Result, error) {
	amount, err := core.ParseAmount(raw)
	if err != nil {
		return Result{Account: acct, Message: MsgInvalidWithdrawal}, ErrInvalidAmount
	}
	if amount.GreaterThan(acct.Balance) {
		return Result{Account: acct, Message: MsgInsufficientFunds}, ErrInsufficientFunds
	}
	acct.Balance = acct.Balance.Sub(amount)
	return Result{
		Account: acct,
		Record:  &core.TransactionRecord{Kind: core.Withdraw, Amount: amount},
		Message: withdrewMessage(acct, amount),
	}, nil
}
