package wallet

import (
	"errors"

	"demowallet/internal/core"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidAmount      = core.ErrInvalidAmount
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrNoActiveAccount    = errors.New("no active account")
	ErrUnknownAccount     = errors.New("unknown account")
	ErrInvalidTransition  = errors.New("invalid screen transition")
	ErrUnknownScreen      = errors.New("unknown screen")
	ErrInsightInFlight    = errors.New("insight request already in flight")
	ErrNoInputScreen      = errors.New("current screen has no amount input")
)
