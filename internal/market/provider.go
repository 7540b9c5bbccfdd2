package market

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrNoPrice is returned by providers when a symbol resolves but carries no usable price.
var ErrNoPrice = errors.New("no price available")

// Quote is the last known price of a listed symbol.
type Quote struct {
	Symbol   string          `json:"symbol"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency"`
}

// Provider fetches raw market data from an upstream source.
type Provider interface {
	Quote(ctx context.Context, symbol string) (Quote, error)
	// USDRate returns how many units of currency one US dollar buys.
	USDRate(ctx context.Context, currency string) (decimal.Decimal, error)
}

// fxSymbol maps a currency code onto the upstream USD cross symbol.
func fxSymbol(currency string) string {
	if currency == "RMB" {
		currency = "CNY"
	}
	return currency + "=X"
}

// currencyForSymbol infers the trading currency from the exchange suffix
// when upstream did not report one.
func currencyForSymbol(symbol string) string {
	switch {
	case strings.HasSuffix(symbol, ".TW"), strings.HasSuffix(symbol, ".TWO"):
		return "TWD"
	case strings.HasSuffix(symbol, ".T"):
		return "JPY"
	}
	return "USD"
}
