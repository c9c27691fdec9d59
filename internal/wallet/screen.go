package wallet

import (
	"fmt"
	"strings"
)

// ScreenName identifies a screen on the wire.
type ScreenName string

const (
	ScreenHome     ScreenName = "home"
	ScreenOverview ScreenName = "overview"
	ScreenDeposit  ScreenName = "deposit"
	ScreenWithdraw ScreenName = "withdraw"
)

// Screen is the closed set of screens a session can be on. Each variant
// carries only its own data.
type Screen interface {
	Name() ScreenName
	screen()
}

type (
	// HomeScreen shows the login gate, or account selection once authenticated.
	HomeScreen struct{}

	AccountOverviewScreen struct{}

	DepositScreen struct {
		Input string
	}

	WithdrawScreen struct {
		Input string
	}
)

func (HomeScreen) Name() ScreenName            { return ScreenHome }
func (AccountOverviewScreen) Name() ScreenName { return ScreenOverview }
func (DepositScreen) Name() ScreenName         { return ScreenDeposit }
func (WithdrawScreen) Name() ScreenName        { return ScreenWithdraw }

func (HomeScreen) screen()            {}
func (AccountOverviewScreen) screen() {}
func (DepositScreen) screen()         {}
func (WithdrawScreen) screen()        {}

// ParseScreenName accepts the wire names, case-insensitively.
func ParseScreenName(s string) (ScreenName, error) {
	switch n := ScreenName(strings.ToLower(strings.TrimSpace(s))); n {
	case ScreenHome, ScreenOverview, ScreenDeposit, ScreenWithdraw:
		return n, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownScreen, s)
	}
}

// screenInput returns the pending amount of an input screen.
func screenInput(s Screen) (string, bool) {
	switch v := s.(type) {
	case DepositScreen:
		return v.Input, true
	case WithdrawScreen:
		return v.Input, true
	default:
		return "", false
	}
}
