package transactions

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mywealth/wealth-backend/internal/assets"
	"github.com/mywealth/wealth-backend/pkg/db"
	"github.com/mywealth/wealth-backend/pkg/db/models"
	"github.com/mywealth/wealth-backend/pkg/enums"
	pkgerrors "github.com/mywealth/wealth-backend/pkg/errors"
	"github.com/mywealth/wealth-backend/pkg/metrics"
	"github.com/mywealth/wealth-backend/pkg/pagination"
)

const (
	alice = "uid-alice"
	bob   = "uid-bob"
)

type fixture struct {
	client   *db.Client
	ledger   *service
	assets   assets.Service
	registry *prometheus.Registry
	clock    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	client := openTestDB(t)
	assetRepo := assets.NewRepository(client.DB())

	registry, err := assets.NewService(assetRepo, client, testLogger())
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	ledger, err := NewService(NewRepository(client.DB()), assetRepo, client, testLogger(), metrics.NewLedgerMetrics(reg))
	require.NoError(t, err)

	f := &fixture{
		client:   client,
		ledger:   ledger.(*service),
		assets:   registry,
		registry: reg,
		clock:    time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	f.ledger.now = func() time.Time { return f.clock }
	return f
}

func (f *fixture) tick(d time.Duration) {
	f.clock = f.clock.Add(d)
}

func (f *fixture) newAsset(t *testing.T, userID string, assetType enums.AssetType, qty, cost string) int64 {
	t.Helper()
	created, err := f.assets.Create(context.Background(), userID, assets.CreateAssetInput{
		Name:             string(assetType) + " holding",
		AssetType:        assetType,
		InitialQuantity:  dec(qty),
		InitialTotalCost: dec(cost),
	})
	require.NoError(t, err)
	return created.ID
}

func (f *fixture) asset(t *testing.T, id int64) models.Asset {
	t.Helper()
	var asset models.Asset
	require.NoError(t, f.client.DB().First(&asset, id).Error)
	return asset
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func assertDecimal(t *testing.T, label string, got decimal.Decimal, want string) {
	t.Helper()
	assert.Truef(t, got.Equal(dec(want)), "%s: expected %s, got %s", label, want, got)
}

func TestStockScenarioBuySellAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	stockID := f.newAsset(t, alice, enums.AssetTypeStock, "0", "0")

	buy, err := f.ledger.Create(ctx, alice, CreateTransactionInput{
		AssetID:        stockID,
		Type:           enums.TransactionTypeBuy,
		Amount:         dec("-1000"),
		QuantityChange: dec("10"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1000.0, buy.BalanceAfter)
	assert.Nil(t, buy.RealizedPnL)

	stock := f.asset(t, stockID)
	assertDecimal(t, "qty", stock.Quantity, "10")
	assertDecimal(t, "book", stock.BookValue, "1000")
	assertDecimal(t, "avg", stock.AverageCost, "100")

	f.tick(time.Minute)
	sell, err := f.ledger.Create(ctx, alice, CreateTransactionInput{
		AssetID:        stockID,
		Type:           enums.TransactionTypeSell,
		Amount:         dec("600"),
		QuantityChange: dec("-5"),
	})
	require.NoError(t, err)
	require.NotNil(t, sell.RealizedPnL)
	assert.Equal(t, 100.0, *sell.RealizedPnL)
	assert.Equal(t, 500.0, sell.BalanceAfter)

	stock = f.asset(t, stockID)
	assertDecimal(t, "qty", stock.Quantity, "5")
	assertDecimal(t, "book", stock.BookValue, "500")
	assertDecimal(t, "avg", stock.AverageCost, "100")

	require.NoError(t, f.ledger.Delete(ctx, alice, sell.ID))
	stock = f.asset(t, stockID)
	assertDecimal(t, "qty", stock.Quantity, "10")
	assertDecimal(t, "book", stock.BookValue, "1000")
	assertDecimal(t, "avg", stock.AverageCost, "100")

	var remaining int64
	require.NoError(t, f.client.DB().Model(&models.Transaction{}).Where("id = ?", sell.ID).Count(&remaining).Error)
	assert.Zero(t, remaining)

	applied, err := testutil.GatherAndCount(f.registry, "ledger_transactions_applied_total")
	require.NoError(t, err)
	assert.Equal(t, 2, applied, "expected BUY and SELL series")
	reversed, err := testutil.GatherAndCount(f.registry, "ledger_transactions_reversed_total")
	require.NoError(t, err)
	assert.Equal(t, 1, reversed)
}

func TestSellAllArchivesAndBuyReactivates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	goldID := f.newAsset(t, alice, enums.AssetTypeGold, "2", "200")

	_, err := f.ledger.Create(ctx, alice, CreateTransactionInput{
		AssetID:        goldID,
		Type:           enums.TransactionTypeSell,
		Amount:         dec("180"),
		QuantityChange: dec("-2"),
	})
	require.NoError(t, err)

	gold := f.asset(t, goldID)
	assertDecimal(t, "qty", gold.Quantity, "0")
	assertDecimal(t, "book", gold.BookValue, "0")
	assertDecimal(t, "avg kept", gold.AverageCost, "100")
	assert.Equal(t, enums.AssetStatusArchived, gold.Status)

	f.tick(time.Minute)
	_, err = f.ledger.Create(ctx, alice, CreateTransactionInput{
		AssetID:        goldID,
		Type:           enums.TransactionTypeBuy,
		Amount:         dec("-330"),
		QuantityChange: dec("3"),
	})
	require.NoError(t, err)

	gold = f.asset(t, goldID)
	assert.Equal(t, enums.AssetStatusActive, gold.Status)
	assertDecimal(t, "avg", gold.AverageCost, "110")
}

func TestCashRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cashID := f.newAsset(t, alice, enums.AssetTypeCash, "5000", "5000")

	deposit, err := f.ledger.Create(ctx, alice, CreateTransactionInput{
		AssetID: cashID,
		Type:    enums.TransactionTypeDeposit,
		Amount:  dec("250.5"),
	})
	require.NoError(t, err)
	assert.Equal(t, 5250.5, deposit.BalanceAfter)
	assert.Equal(t, 1.0, deposit.ExchangeRate)

	cash := f.asset(t, cashID)
	assertDecimal(t, "qty mirrors value", cash.Quantity, "5250.5")

	require.NoError(t, f.ledger.Delete(ctx, alice, deposit.ID))
	cash = f.asset(t, cashID)
	assertDecimal(t, "qty", cash.Quantity, "5000")
	assertDecimal(t, "book", cash.BookValue, "5000")
}

func TestOwnershipIsolation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	aliceCash := f.newAsset(t, alice, enums.AssetTypeCash, "100", "100")

	_, err := f.ledger.Create(ctx, bob, CreateTransactionInput{
		AssetID: aliceCash,
		Type:    enums.TransactionTypeWithdraw,
		Amount:  dec("-100"),
	})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)

	deposit, err := f.ledger.Create(ctx, alice, CreateTransactionInput{
		AssetID: aliceCash,
		Type:    enums.TransactionTypeDeposit,
		Amount:  dec("50"),
	})
	require.NoError(t, err)

	err = f.ledger.Delete(ctx, bob, deposit.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)

	_, err = f.ledger.ListByAsset(ctx, bob, aliceCash, pagination.Params{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)

	cash := f.asset(t, aliceCash)
	assertDecimal(t, "book", cash.BookValue, "150")
}

func TestCreateValidatesInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cashID := f.newAsset(t, alice, enums.AssetTypeCash, "0", "0")

	_, err := f.ledger.Create(ctx, alice, CreateTransactionInput{AssetID: cashID, Type: "GIFT", Amount: dec("1")})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.ledger.Create(ctx, alice, CreateTransactionInput{
		AssetID:      cashID,
		Type:         enums.TransactionTypeDeposit,
		Amount:       dec("1"),
		ExchangeRate: dec("-2"),
	})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.ledger.Create(ctx, "", CreateTransactionInput{AssetID: cashID, Type: enums.TransactionTypeDeposit})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))

	err = f.ledger.Delete(ctx, alice, 9999)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestListByAssetOrdersAndPaginates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cashID := f.newAsset(t, alice, enums.AssetTypeCash, "0", "0")

	var ids []int64
	for i := 0; i < 5; i++ {
		if i != 2 {
			f.tick(time.Hour)
		}
		created, err := f.ledger.Create(ctx, alice, CreateTransactionInput{
			AssetID: cashID,
			Type:    enums.TransactionTypeDeposit,
			Amount:  decimal.NewFromInt(int64(10 * (i + 1))),
		})
		require.NoError(t, err)
		ids = append(ids, created.ID)
	}
	// ids[1] and ids[2] share a timestamp, so id breaks the tie
	want := []int64{ids[4], ids[3], ids[2], ids[1], ids[0]}

	var got []int64
	cursor := ""
	for page := 0; page < 5; page++ {
		result, err := f.ledger.ListByAsset(ctx, alice, cashID, pagination.Params{Limit: 2, Cursor: cursor})
		require.NoError(t, err)
		for _, item := range result.Items {
			got = append(got, item.ID)
		}
		if result.NextCursor == "" {
			break
		}
		cursor = result.NextCursor
	}
	assert.Equal(t, want, got)

	all, err := f.ledger.ListByAsset(ctx, alice, cashID, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, all.Items, 5)
	assert.Empty(t, all.NextCursor)
	assert.Equal(t, ids[4], all.Items[0].ID)

	_, err = f.ledger.ListByAsset(ctx, alice, cashID, pagination.Params{Cursor: "%%%"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestDeleteRestoresArchivedPositionWithoutSnap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	stockID := f.newAsset(t, alice, enums.AssetTypeStock, "10", "1000")

	sell, err := f.ledger.Create(ctx, alice, CreateTransactionInput{
		AssetID:        stockID,
		Type:           enums.TransactionTypeSell,
		Amount:         dec("1200"),
		QuantityChange: dec("-10"),
	})
	require.NoError(t, err)
	assert.Equal(t, enums.AssetStatusArchived, f.asset(t, stockID).Status)

	require.NoError(t, f.ledger.Delete(ctx, alice, sell.ID))
	stock := f.asset(t, stockID)
	assert.Equal(t, enums.AssetStatusActive, stock.Status)
	assertDecimal(t, "qty", stock.Quantity, "10")
	assertDecimal(t, "book", stock.BookValue, "1000")
}
