package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Currency is the fixed set of currencies an account can hold.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

// Currencies lists every supported currency in display order.
var Currencies = []Currency{CurrencyUSD, CurrencyEUR}

// Valid reports whether c is one of the supported currencies.
func (c Currency) Valid() bool {
	for _, known := range Currencies {
		if c == known {
			return true
		}
	}
	return false
}

// Account holds the balance of a single user in a single currency.
// Balance only changes through ledger entries.
type Account struct {
	ID        string          // unique identifier
	OwnerID   string          // user that owns the account for its whole lifetime
	Currency  Currency        // immutable after creation
	Balance   decimal.Decimal // two fractional digits, never negative
	CreatedAt time.Time
}
