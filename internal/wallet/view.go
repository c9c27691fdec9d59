package wallet

import (
	"demowallet/internal/core"
)

// View is the renderer-facing snapshot of a session.
type View struct {
	Screen          ScreenName       `json:"screen"`
	Authenticated   bool             `json:"authenticated"`
	LoginError      string           `json:"loginError"`
	Accounts        []AccountView    `json:"accounts"`
	Account         *AccountView     `json:"account"`
	Input           string           `json:"input"`
	Message         string           `json:"message"`
	Insight         string           `json:"insight"`
	InsightLoading  bool             `json:"insightLoading"`
	LastTransaction *TransactionView `json:"lastTransaction"`
}

type AccountView struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Currency       string `json:"currency"`
	Symbol         string `json:"symbol"`
	Balance        string `json:"balance"`
	BalanceDisplay string `json:"balanceDisplay"`
}

type TransactionView struct {
	Kind   string `json:"kind"`
	Amount string `json:"amount"`
}

func activeAccountView(a core.Account) *AccountView {
	return &AccountView{
		ID:             a.ID,
		Name:           a.Name,
		Currency:       string(a.Currency),
		Symbol:         a.Currency.Symbol(),
		Balance:        core.FormatAmount(a.Balance),
		BalanceDisplay: core.FormatBalance(a.Balance),
	}
}

func catalogAccountView(a core.Account) AccountView {
	return AccountView{
		ID:             a.ID,
		Name:           a.Name,
		Currency:       string(a.Currency),
		Symbol:         a.Currency.Symbol(),
		Balance:        core.FormatAmount(a.Balance),
		BalanceDisplay: core.FormatGrouped(a.Balance),
	}
}

func (s *Session) viewLocked(catalog []AccountView) View {
	v := View{
		Screen:         s.screen.Name(),
		Authenticated:  s.authenticated,
		LoginError:     s.loginError,
		Accounts:       []AccountView{},
		Message:        s.message,
		Insight:        s.insight,
		InsightLoading: s.insightTask != nil,
	}
	if s.authenticated && v.Screen == ScreenHome {
		v.Accounts = catalog
	}
	if s.account != nil {
		v.Account = activeAccountView(*s.account)
	}
	if in, ok := screenInput(s.screen); ok {
		v.Input = in
	}
	if s.lastTx != nil {
		v.LastTransaction = &TransactionView{
			Kind:   string(s.lastTx.Kind),
			Amount: core.FormatAmount(s.lastTx.Amount),
		}
	}
	return v
}
