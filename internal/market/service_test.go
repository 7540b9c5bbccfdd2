package market

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"

	"github.com/mywealth/wealth-backend/pkg/cache"
	pkgerrors "github.com/mywealth/wealth-backend/pkg/errors"
	"github.com/mywealth/wealth-backend/pkg/logger"
	"github.com/mywealth/wealth-backend/pkg/metrics"
)

type fakeProvider struct {
	mu     sync.Mutex
	quotes map[string]Quote
	rates  map[string]decimal.Decimal
	calls  []string
}

func (f *fakeProvider) Quote(_ context.Context, symbol string) (Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, symbol)
	q, ok := f.quotes[symbol]
	if !ok {
		return Quote{}, errors.New("symbol not listed")
	}
	return q, nil
}

func (f *fakeProvider) USDRate(_ context.Context, currency string) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fxSymbol(currency))
	r, ok := f.rates[currency]
	if !ok {
		return decimal.Zero, errors.New("rate not listed")
	}
	return r, nil
}

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newTestService(t *testing.T, provider *fakeProvider) (*service, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	svc, err := NewService(
		provider,
		cache.NewMemory(16, time.Minute),
		cache.NewMemory(16, 5*time.Minute),
		metrics.NewMarketMetrics(reg),
		logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc.(*service), reg
}

func TestCandidates(t *testing.T) {
	cases := []struct {
		symbol string
		region string
		want   []string
	}{
		{" aapl ", "US", []string{"AAPL"}},
		{"2330", "TW", []string{"2330.TW", "2330.TWO"}},
		{"2330.tw", "tw", []string{"2330.TW", "2330.TWO"}},
		{"6488.TWO", "TW", []string{"6488.TWO"}},
		{"7203", "JP", []string{"7203.T"}},
		{"7203.T", "JP", []string{"7203.T"}},
		{"VOO", "", []string{"VOO"}},
	}
	for _, tc := range cases {
		got := Candidates(tc.symbol, tc.region)
		if len(got) != len(tc.want) {
			t.Fatalf("Candidates(%q,%q) = %v, want %v", tc.symbol, tc.region, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("Candidates(%q,%q) = %v, want %v", tc.symbol, tc.region, got, tc.want)
			}
		}
	}
}

func TestPriceFallsBackToOTCAndCaches(t *testing.T) {
	provider := &fakeProvider{quotes: map[string]Quote{
		"6488.TWO": {Symbol: "6488.TWO", Price: decimal.RequireFromString("512.5"), Currency: "TWD"},
	}}
	svc, reg := newTestService(t, provider)
	ctx := context.Background()

	got, err := svc.Price(ctx, "6488", "TW")
	if err != nil {
		t.Fatalf("price: %v", err)
	}
	if got.Symbol != "6488.TWO" || got.Price != 512.5 || got.Currency != "TWD" {
		t.Fatalf("unexpected quote %+v", got)
	}
	if provider.callCount() != 2 {
		t.Fatalf("expected two upstream calls, got %d", provider.callCount())
	}

	if _, err := svc.Price(ctx, "6488", "TW"); err != nil {
		t.Fatalf("second price: %v", err)
	}
	// .TW still misses upstream; .TWO is served from cache
	if provider.callCount() != 3 {
		t.Fatalf("expected cached .TWO lookup, got %d calls", provider.callCount())
	}

	if n, err := testutil.GatherAndCount(reg, "market_cache_lookups_total"); err != nil || n != 2 {
		t.Fatalf("expected hit and miss series, got %d (%v)", n, err)
	}
}

func TestPriceExhaustedIsNotFound(t *testing.T) {
	svc, _ := newTestService(t, &fakeProvider{})

	_, err := svc.Price(context.Background(), "NOPE", "US")
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	_, err = svc.Price(context.Background(), "  ", "US")
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPriceSkipsNonPositiveQuotes(t *testing.T) {
	provider := &fakeProvider{quotes: map[string]Quote{
		"2330.TW":  {Symbol: "2330.TW", Price: decimal.Zero, Currency: "TWD"},
		"2330.TWO": {Symbol: "2330.TWO", Price: decimal.NewFromInt(600), Currency: "TWD"},
	}}
	svc, _ := newTestService(t, provider)

	got, err := svc.Price(context.Background(), "2330", "TW")
	if err != nil {
		t.Fatalf("price: %v", err)
	}
	if got.Symbol != "2330.TWO" {
		t.Fatalf("expected OTC fallback, got %s", got.Symbol)
	}
}

func TestRatePivotsThroughUSD(t *testing.T) {
	provider := &fakeProvider{rates: map[string]decimal.Decimal{
		"TWD": decimal.RequireFromString("32.5"),
		"EUR": decimal.RequireFromString("0.92"),
		"RMB": decimal.RequireFromString("7.2"),
	}}
	svc, _ := newTestService(t, provider)
	ctx := context.Background()

	got, err := svc.Rate(ctx, "twd", "eur")
	if err != nil {
		t.Fatalf("rate: %v", err)
	}
	// 0.92 / 32.5 = 0.028307...
	if got.Rate != 0.0283 || got.From != "TWD" || got.To != "EUR" {
		t.Fatalf("unexpected rate %+v", got)
	}

	usd, err := svc.Rate(ctx, "USD", "TWD")
	if err != nil {
		t.Fatalf("usd rate: %v", err)
	}
	if usd.Rate != 32.5 {
		t.Fatalf("expected 32.5, got %v", usd.Rate)
	}

	rmb, err := svc.Rate(ctx, "RMB", "USD")
	if err != nil {
		t.Fatalf("rmb rate: %v", err)
	}
	if rmb.Rate != 0.1389 {
		t.Fatalf("expected 0.1389, got %v", rmb.Rate)
	}

	calls := provider.callCount()
	if _, err := svc.Rate(ctx, "TWD", "EUR"); err != nil {
		t.Fatalf("cached rate: %v", err)
	}
	if provider.callCount() != calls {
		t.Fatalf("expected cached USD legs")
	}
}

func TestRateSameCurrencyAndValidation(t *testing.T) {
	provider := &fakeProvider{}
	svc, _ := newTestService(t, provider)
	ctx := context.Background()

	same, err := svc.Rate(ctx, "jpy", "JPY")
	if err != nil || same.Rate != 1 {
		t.Fatalf("expected identity rate, got %+v (%v)", same, err)
	}
	if provider.callCount() != 0 {
		t.Fatalf("identity rate must not hit upstream")
	}

	_, err = svc.Rate(ctx, "XYZ", "USD")
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation for unsupported currency, got %v", err)
	}

	_, err = svc.Rate(ctx, "KRW", "USD")
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation for failed lookup, got %v", err)
	}
}

func TestNewServiceRequiresCollaborators(t *testing.T) {
	logg := logger.New(logger.Options{Output: io.Discard})
	store := cache.NewMemory(1, time.Second)
	if _, err := NewService(nil, store, store, nil, logg); err == nil {
		t.Fatal("expected provider error")
	}
	if _, err := NewService(&fakeProvider{}, nil, store, nil, logg); err == nil {
		t.Fatal("expected cache error")
	}
	if _, err := NewService(&fakeProvider{}, store, store, nil, nil); err == nil {
		t.Fatal("expected logger error")
	}
}
