package market

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mywealth/wealth-backend/pkg/cache"
	pkgerrors "github.com/mywealth/wealth-backend/pkg/errors"
	"github.com/mywealth/wealth-backend/pkg/logger"
	"github.com/mywealth/wealth-backend/pkg/metrics"
)

const (
	RegionUS = "US"
	RegionTW = "TW"
	RegionJP = "JP"

	kindPrice = "price"
	kindRate  = "rate"

	ratePlaces = 4
)

var supportedCurrencies = map[string]struct{}{
	"TWD": {}, "JPY": {}, "SGD": {}, "USD": {}, "KRW": {}, "CNY": {},
	"RMB": {}, "EUR": {}, "GBP": {}, "AUD": {}, "CAD": {},
}

// Service answers price and FX lookups through the injected caches.
type Service interface {
	Price(ctx context.Context, symbol, region string) (*QuoteDTO, error)
	Rate(ctx context.Context, from, to string) (*RateDTO, error)
}

type service struct {
	provider Provider
	prices   cache.Store
	rates    cache.Store
	metrics  *metrics.MarketMetrics
	logg     *logger.Logger
	now      func() time.Time
}

// NewService wires the provider with a price cache and a USD rate cache.
func NewService(provider Provider, prices, rates cache.Store, m *metrics.MarketMetrics, logg *logger.Logger) (Service, error) {
	if provider == nil {
		return nil, fmt.Errorf("market provider required")
	}
	if prices == nil || rates == nil {
		return nil, fmt.Errorf("market caches required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		provider: provider,
		prices:   prices,
		rates:    rates,
		metrics:  m,
		logg:     logg,
		now:      time.Now,
	}, nil
}

// Candidates expands a ticker into the exchange symbols tried in order.
func Candidates(symbol, region string) []string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	target := symbol
	switch strings.ToUpper(strings.TrimSpace(region)) {
	case RegionTW:
		if !strings.HasSuffix(symbol, ".TW") && !strings.HasSuffix(symbol, ".TWO") {
			target = symbol + ".TW"
		}
		if strings.HasSuffix(target, ".TW") {
			return []string{target, strings.TrimSuffix(target, ".TW") + ".TWO"}
		}
	case RegionJP:
		if !strings.HasSuffix(symbol, ".T") {
			target = symbol + ".T"
		}
	}
	return []string{target}
}

func (s *service) Price(ctx context.Context, symbol, region string) (*QuoteDTO, error) {
	if strings.TrimSpace(symbol) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ticker is required")
	}

	for _, candidate := range Candidates(symbol, region) {
		if quote, ok := s.cachedQuote(ctx, candidate); ok {
			return quoteDTO(quote), nil
		}

		quote, err := s.provider.Quote(ctx, candidate)
		if err != nil || !quote.Price.IsPositive() {
			s.metrics.UpstreamFailure(kindPrice)
			logCtx := s.logg.WithField(ctx, "symbol", candidate)
			if err != nil {
				s.logg.Warn(s.logg.WithField(logCtx, "cause", err.Error()), "quote lookup failed")
			}
			continue
		}
		if quote.Symbol == "" {
			quote.Symbol = candidate
		}
		s.storeQuote(ctx, candidate, quote)
		return quoteDTO(quote), nil
	}

	return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "stock not found: %s (region: %s)", strings.TrimSpace(symbol), regionLabel(region))
}

func (s *service) Rate(ctx context.Context, from, to string) (*RateDTO, error) {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))
	for _, code := range []string{from, to} {
		if _, ok := supportedCurrencies[code]; !ok {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "unsupported currency: %s", code)
		}
	}

	out := &RateDTO{From: from, To: to, Rate: 1, UpdatedAt: s.now().UTC()}
	if from == to {
		return out, nil
	}

	usdFrom, err := s.usdRate(ctx, from)
	if err != nil {
		return nil, err
	}
	usdTo, err := s.usdRate(ctx, to)
	if err != nil {
		return nil, err
	}

	out.Rate = usdTo.Div(usdFrom).Round(ratePlaces).InexactFloat64()
	return out, nil
}

func (s *service) usdRate(ctx context.Context, currency string) (decimal.Decimal, error) {
	if currency == "USD" {
		return decimal.NewFromInt(1), nil
	}
	key := fxSymbol(currency)

	raw, ok, err := s.rates.Get(ctx, key)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "cause", err.Error()), "rate cache read failed")
	}
	if ok {
		if cached, parseErr := decimal.NewFromString(raw); parseErr == nil && cached.IsPositive() {
			s.metrics.CacheHit(kindRate)
			return cached, nil
		}
	}
	s.metrics.CacheMiss(kindRate)

	rate, err := s.provider.USDRate(ctx, currency)
	if err != nil || !rate.IsPositive() {
		s.metrics.UpstreamFailure(kindRate)
		cause := ErrNoPrice
		if err != nil {
			cause = err
		}
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeValidation, cause, fmt.Sprintf("exchange rate lookup failed: %s", key))
	}

	if err := s.rates.Set(ctx, key, rate.String()); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "cause", err.Error()), "rate cache write failed")
	}
	return rate, nil
}

func (s *service) cachedQuote(ctx context.Context, symbol string) (Quote, bool) {
	raw, ok, err := s.prices.Get(ctx, symbol)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "cause", err.Error()), "price cache read failed")
	}
	if !ok {
		s.metrics.CacheMiss(kindPrice)
		return Quote{}, false
	}
	var quote Quote
	if err := json.Unmarshal([]byte(raw), &quote); err != nil {
		s.metrics.CacheMiss(kindPrice)
		return Quote{}, false
	}
	s.metrics.CacheHit(kindPrice)
	return quote, true
}

func (s *service) storeQuote(ctx context.Context, symbol string, quote Quote) {
	payload, err := json.Marshal(quote)
	if err != nil {
		return
	}
	if err := s.prices.Set(ctx, symbol, string(payload)); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "cause", err.Error()), "price cache write failed")
	}
}

func regionLabel(region string) string {
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		return RegionUS
	}
	return region
}
