package core

import "github.com/shopspring/decimal"

// Catalog is an ordered, immutable set of account templates.
type Catalog struct {
	accounts []Account
	byID     map[string]int
}

// DefaultCatalog returns the built-in demo accounts.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog([]Account{
		{ID: "personalWallet", Name: "Personal Wallet", Currency: USD, Balance: decimal.RequireFromString("2500.50")},
		{ID: "familyWallet", Name: "Family Wallet", Currency: KHR, Balance: decimal.NewFromInt(8000000)},
		{ID: "travelWallet", Name: "Travel Wallet", Currency: LAK, Balance: decimal.NewFromInt(12000)},
	})
	if err != nil {
		panic(err)
	}
	return c
}

// NewCatalog validates the templates and keeps their order.
func NewCatalog(accounts []Account) (*Catalog, error) {
	c := &Catalog{
		accounts: make([]Account, 0, len(accounts)),
		byID:     make(map[string]int, len(accounts)),
	}
	for _, a := range accounts {
		if err := a.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.byID[a.ID]; dup {
			return nil, ErrDuplicateAccount
		}
		c.byID[a.ID] = len(c.accounts)
		c.accounts = append(c.accounts, a)
	}
	return c, nil
}

// List returns a copy of the templates in catalog order.
func (c *Catalog) List() []Account {
	out := make([]Account, len(c.accounts))
	copy(out, c.accounts)
	return out
}

// Instantiate returns a fresh copy of the template with the given id.
func (c *Catalog) Instantiate(id string) (Account, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Account{}, false
	}
	return c.accounts[i], true
}
