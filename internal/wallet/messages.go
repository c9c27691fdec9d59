package wallet

import (
	"fmt"

	"github.com/shopspring/decimal"

	"demowallet/internal/core"
)

// User-facing strings shown in the renderer's message and insight slots.
const (
	MsgInvalidCredentials = "Invalid username or PIN."
	MsgInvalidDeposit     = "Please enter a valid positive deposit amount."
	MsgInvalidWithdrawal  = "Please enter a valid positive withdrawal amount."
	MsgInsufficientFunds  = "Insufficient funds."
	MsgNoTransaction      = "Perform a transaction first to get an insight."
	MsgInsightEmpty       = "Could not generate insight. Please try again."
	MsgInsightFailed      = "Failed to get insight. Please check your connection and try again."
)

func depositedMessage(a core.Account, amount decimal.Decimal) string {
	return fmt.Sprintf("Successfully deposited %s%s to %s.", a.Currency.Symbol(), core.FormatAmount(amount), a.Name)
}

func withdrewMessage(a core.Account, amount decimal.Decimal) string {
	return fmt.Sprintf("Successfully withdrew %s%s from %s.", a.Currency.Symbol(), core.FormatAmount(amount), a.Name)
}
