package market

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/wnjoon/go-yfinance/pkg/models"
	"github.com/wnjoon/go-yfinance/pkg/ticker"
)

// quoteSource is the part of a go-yfinance ticker the provider reads.
type quoteSource interface {
	Quote() (*models.Quote, error)
	Info() (*models.Info, error)
	Close()
}

// Yahoo serves quotes and FX crosses from Yahoo Finance.
type Yahoo struct {
	open func(symbol string) (quoteSource, error)
}

// NewYahoo returns the Yahoo Finance provider.
func NewYahoo() *Yahoo {
	return &Yahoo{open: openTicker}
}

func openTicker(symbol string) (quoteSource, error) {
	t, err := ticker.New(symbol)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Quote reports the price in the currency the listing trades in. The
// currency comes from the quote, then the profile, then the symbol suffix.
func (y *Yahoo) Quote(ctx context.Context, symbol string) (Quote, error) {
	price, currency, err := y.lastPrice(ctx, symbol)
	if err != nil {
		return Quote{}, err
	}
	if currency == "" {
		currency = currencyForSymbol(symbol)
	}
	return Quote{
		Symbol:   symbol,
		Price:    price,
		Currency: currency,
	}, nil
}

func (y *Yahoo) USDRate(ctx context.Context, currency string) (decimal.Decimal, error) {
	rate, _, err := y.lastPrice(ctx, fxSymbol(currency))
	return rate, err
}

func (y *Yahoo) lastPrice(ctx context.Context, symbol string) (decimal.Decimal, string, error) {
	if err := ctx.Err(); err != nil {
		return decimal.Zero, "", err
	}

	t, err := y.open(symbol)
	if err != nil {
		return decimal.Zero, "", fmt.Errorf("create ticker %s: %w", symbol, err)
	}
	defer t.Close()

	quote, err := t.Quote()
	if err == nil && quote != nil && quote.RegularMarketPrice > 0 {
		currency := strings.TrimSpace(quote.Currency)
		if currency == "" {
			currency = infoCurrency(t)
		}
		return decimal.NewFromFloat(quote.RegularMarketPrice), currency, nil
	}

	info, err := t.Info()
	if err == nil && info != nil && info.CurrentPrice > 0 {
		return decimal.NewFromFloat(info.CurrentPrice), strings.TrimSpace(info.Currency), nil
	}
	if err != nil {
		return decimal.Zero, "", fmt.Errorf("quote %s: %w", symbol, err)
	}
	return decimal.Zero, "", fmt.Errorf("quote %s: %w", symbol, ErrNoPrice)
}

func infoCurrency(t quoteSource) string {
	info, err := t.Info()
	if err != nil || info == nil {
		return ""
	}
	return strings.TrimSpace(info.Currency)
}
