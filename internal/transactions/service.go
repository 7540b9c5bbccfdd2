package transactions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mywealth/wealth-backend/internal/assets"
	"github.com/mywealth/wealth-backend/internal/inventory"
	"github.com/mywealth/wealth-backend/pkg/db/models"
	pkgerrors "github.com/mywealth/wealth-backend/pkg/errors"
	"github.com/mywealth/wealth-backend/pkg/logger"
	"github.com/mywealth/wealth-backend/pkg/metrics"
	"github.com/mywealth/wealth-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service applies transactions to assets and reverses them on deletion.
type Service interface {
	Create(ctx context.Context, userID string, input CreateTransactionInput) (*TransactionDTO, error)
	Delete(ctx context.Context, userID string, transactionID int64) error
	ListByAsset(ctx context.Context, userID string, assetID int64, params pagination.Params) (*ListResult, error)
}

type service struct {
	repo    Repository
	assets  assets.Repository
	tx      txRunner
	logg    *logger.Logger
	metrics *metrics.LedgerMetrics
	now     func() time.Time
}

// NewService wires the ledger engine. ledgerMetrics may be nil.
func NewService(repo Repository, assetRepo assets.Repository, tx txRunner, logg *logger.Logger, ledgerMetrics *metrics.LedgerMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("transaction repository required")
	}
	if assetRepo == nil {
		return nil, fmt.Errorf("asset repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:    repo,
		assets:  assetRepo,
		tx:      tx,
		logg:    logg,
		metrics: ledgerMetrics,
		now:     time.Now,
	}, nil
}

// Create locks the asset, applies the movement with the asset's regime and
// records the transaction. Both writes commit together.
func (s *service) Create(ctx context.Context, userID string, input CreateTransactionInput) (*TransactionDTO, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid transaction type %q", input.Type)
	}
	if input.ExchangeRate.IsZero() {
		input.ExchangeRate = decimal.NewFromInt(1)
	}
	if input.ExchangeRate.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "exchange_rate must be positive")
	}
	if input.SourceCurrency != nil {
		code := strings.ToUpper(strings.TrimSpace(*input.SourceCurrency))
		input.SourceCurrency = &code
	}

	var (
		created models.Transaction
		regime  inventory.Regime
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		assetRepo := s.assets.WithTx(tx)
		asset, err := lockAsset(ctx, assetRepo, userID, input.AssetID)
		if err != nil {
			return err
		}

		regime = inventory.RegimeFor(asset.AssetType)
		outcome := regime.Apply(assets.PositionOf(asset), inventory.Movement{
			Amount:         input.Amount,
			QuantityChange: input.QuantityChange,
		})
		assets.ApplyPosition(asset, outcome.Position)
		if err := assetRepo.SavePosition(ctx, asset); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update asset position")
		}

		created = models.Transaction{
			AssetID:              asset.ID,
			UserID:               userID,
			TransactionType:      input.Type,
			Amount:               input.Amount,
			QuantityChange:       input.QuantityChange,
			PriceAtTransaction:   input.PriceAtTransaction,
			ExchangeRate:         input.ExchangeRate,
			SourceAmount:         input.SourceAmount,
			SourceCurrency:       input.SourceCurrency,
			BalanceAfter:         outcome.Position.BookValue,
			RealizedPnL:          outcome.RealizedPnL,
			RelatedTransactionID: input.RelatedTransactionID,
			Note:                 input.Note,
			TransactionDate:      s.now().UTC(),
		}
		if err := s.repo.WithTx(tx).Create(ctx, &created); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert transaction")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncApplied(regime.Name(), created.TransactionType.String())
	if created.RealizedPnL.Valid {
		s.metrics.ObserveRealized(created.RealizedPnL.Decimal)
	}
	return FromModel(&created), nil
}

// Delete undoes the stored effect of a transaction and removes it. The
// reversal is linear: it is exact only when transactions are removed newest
// first.
func (s *service) Delete(ctx context.Context, userID string, transactionID int64) error {
	var (
		removed *models.Transaction
		regime  inventory.Regime
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		txn, err := repo.FindByID(ctx, userID, transactionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load transaction")
		}

		assetRepo := s.assets.WithTx(tx)
		asset, err := lockAsset(ctx, assetRepo, userID, txn.AssetID)
		if err != nil {
			return err
		}

		regime = inventory.RegimeFor(asset.AssetType)
		pos := regime.Reverse(assets.PositionOf(asset), inventory.Recorded{
			Amount:         txn.Amount,
			QuantityChange: txn.QuantityChange,
			RealizedPnL:    txn.RealizedPnL,
		})
		assets.ApplyPosition(asset, pos)
		if err := assetRepo.SavePosition(ctx, asset); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update asset position")
		}
		if err := repo.Delete(ctx, txn.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete transaction")
		}
		removed = txn
		return nil
	})
	if err != nil {
		return err
	}

	s.metrics.IncReversed(regime.Name(), removed.TransactionType.String())
	logCtx := s.logg.WithAssetID(s.logg.WithUserID(ctx, userID), removed.AssetID)
	logCtx = s.logg.WithField(logCtx, "transaction_id", removed.ID)
	s.logg.Info(logCtx, "transaction reversed")
	return nil
}

// ListByAsset pages through an asset's history newest first.
func (s *service) ListByAsset(ctx context.Context, userID string, assetID int64, params pagination.Params) (*ListResult, error) {
	if _, err := s.assets.FindByID(ctx, userID, assetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "asset not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load asset")
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	rows, err := s.repo.ListByAsset(ctx, userID, assetID, limit+1, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list transactions")
	}

	result := &ListResult{Items: make([]TransactionDTO, 0, len(rows))}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{At: last.TransactionDate, ID: last.ID})
	}
	for i := range rows {
		result.Items = append(result.Items, *FromModel(&rows[i]))
	}
	return result, nil
}

func lockAsset(ctx context.Context, repo assets.Repository, userID string, assetID int64) (*models.Asset, error) {
	asset, err := repo.FindForUpdate(ctx, userID, assetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "asset not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: lock asset")
	}
	return asset, nil
}
