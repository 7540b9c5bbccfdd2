package assets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mywealth/wealth-backend/internal/inventory"
	"github.com/mywealth/wealth-backend/pkg/db/models"
	"github.com/mywealth/wealth-backend/pkg/enums"
	pkgerrors "github.com/mywealth/wealth-backend/pkg/errors"
	"github.com/mywealth/wealth-backend/pkg/logger"
	"github.com/mywealth/wealth-backend/pkg/types"
)

const (
	fundingNotePrefix = "Funding: new asset "
	openingNote       = "Opening balance"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages the lifecycle of a user's assets.
type Service interface {
	Create(ctx context.Context, userID string, input CreateAssetInput) (*AssetDTO, error)
	Update(ctx context.Context, userID string, assetID int64, input UpdateAssetInput) (*AssetDTO, error)
	Delete(ctx context.Context, userID string, assetID int64) error
	List(ctx context.Context, userID string) ([]AssetDTO, error)
	Get(ctx context.Context, userID string, assetID int64) (*AssetDTO, error)
}

type service struct {
	repo Repository
	tx   txRunner
	logg *logger.Logger
	now  func() time.Time
}

// NewService wires the asset registry.
func NewService(repo Repository, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("asset repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo: repo,
		tx:   tx,
		logg: logg,
		now:  time.Now,
	}, nil
}

// Create inserts the asset with its opening position. When a source asset is
// given, the cost is withdrawn from it first and the opening transaction is
// linked to that withdrawal. All writes share one transaction.
func (s *service) Create(ctx context.Context, userID string, input CreateAssetInput) (*AssetDTO, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	input, err := normalizeCreate(input)
	if err != nil {
		return nil, err
	}

	txTime := s.now().UTC()
	if input.TransactionTime != nil {
		txTime = input.TransactionTime.UTC()
	}
	opening := inventory.Opening(input.InitialQuantity, input.InitialTotalCost)

	var created models.Asset
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		var relatedID *int64
		if input.SourceAssetID != nil {
			id, err := s.withdrawFromSource(ctx, repo, userID, input, txTime)
			if err != nil {
				return err
			}
			relatedID = id
		}

		created = models.Asset{
			UserID:            userID,
			Name:              input.Name,
			AssetType:         input.AssetType,
			Currency:          input.Currency,
			Symbol:            input.Symbol,
			IncludeInNetWorth: input.IncludeInNetWorth,
			MetaData:          input.MetaData,
		}
		ApplyPosition(&created, opening)
		if err := repo.Create(ctx, &created); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert asset")
		}

		if input.InitialTotalCost.IsZero() && input.InitialQuantity.IsZero() {
			return nil
		}
		note := openingNote
		genesis := &models.Transaction{
			AssetID:              created.ID,
			UserID:               userID,
			TransactionType:      enums.TransactionTypeInitial,
			Amount:               input.InitialTotalCost,
			QuantityChange:       input.InitialQuantity,
			ExchangeRate:         input.ExchangeRate,
			SourceAmount:         input.SourceAmount,
			SourceCurrency:       input.SourceCurrency,
			BalanceAfter:         opening.BookValue,
			RelatedTransactionID: relatedID,
			Note:                 &note,
			TransactionDate:      txTime,
		}
		if err := repo.CreateTransaction(ctx, genesis); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert opening transaction")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithAssetID(s.logg.WithUserID(ctx, userID), created.ID)
	s.logg.Info(logCtx, "asset created")
	return FromModel(&created), nil
}

func (s *service) withdrawFromSource(ctx context.Context, repo Repository, userID string, input CreateAssetInput, txTime time.Time) (*int64, error) {
	source, err := repo.FindForUpdate(ctx, userID, *input.SourceAssetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "source asset not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load source asset")
	}

	deduct := input.InitialTotalCost
	if input.SourceAmount.Valid {
		deduct = input.SourceAmount.Decimal
	}
	if deduct.IsZero() {
		return nil, nil
	}

	note := fundingNotePrefix + input.Name
	transfer := &models.Transaction{
		AssetID:         source.ID,
		UserID:          userID,
		TransactionType: enums.TransactionTypeTransferOut,
		Amount:          deduct.Neg(),
		QuantityChange:  decimal.Zero,
		ExchangeRate:    decimal.NewFromInt(1),
		BalanceAfter:    source.BookValue.Sub(deduct),
		Note:            &note,
		TransactionDate: txTime,
	}
	if err := repo.CreateTransaction(ctx, transfer); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert funding transfer")
	}

	ApplyPosition(source, inventory.Withdraw(PositionOf(source), source.AssetType, deduct))
	if err := repo.SavePosition(ctx, source); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update source asset")
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"source_asset_id": source.ID,
		"amount":          deduct.String(),
	})
	s.logg.Info(logCtx, "asset funded from source")
	return &transfer.ID, nil
}

// Update applies a partial patch of descriptive fields. Inventory fields are
// never touched here.
func (s *service) Update(ctx context.Context, userID string, assetID int64, input UpdateAssetInput) (*AssetDTO, error) {
	fields := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		fields["name"] = name
	}
	if input.Symbol != nil {
		fields["symbol"] = normalizeSymbol(input.Symbol)
	}
	if input.Currency != nil {
		currency, err := normalizeCurrency(*input.Currency)
		if err != nil {
			return nil, err
		}
		fields["currency"] = currency
	}
	if input.IncludeInNetWorth != nil {
		fields["include_in_net_worth"] = *input.IncludeInNetWorth
	}
	if input.MetaData != nil {
		fields["meta_data"] = input.MetaData
	}

	var updated *models.Asset
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		asset, err := s.load(ctx, repo, userID, assetID)
		if err != nil {
			return err
		}
		if err := repo.UpdateFields(ctx, asset, fields); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update asset")
		}
		updated, err = s.load(ctx, repo, userID, assetID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return FromModel(updated), nil
}

func (s *service) Delete(ctx context.Context, userID string, assetID int64) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := s.load(ctx, repo, userID, assetID); err != nil {
			return err
		}
		if err := repo.Delete(ctx, userID, assetID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "asset not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete asset")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logg.Info(s.logg.WithAssetID(s.logg.WithUserID(ctx, userID), assetID), "asset deleted")
	return nil
}

// List returns every asset of the user, archived ones included.
func (s *service) List(ctx context.Context, userID string) ([]AssetDTO, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list assets")
	}
	out := make([]AssetDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, userID string, assetID int64) (*AssetDTO, error) {
	asset, err := s.load(ctx, s.repo, userID, assetID)
	if err != nil {
		return nil, err
	}
	return FromModel(asset), nil
}

func (s *service) load(ctx context.Context, repo Repository, userID string, assetID int64) (*models.Asset, error) {
	asset, err := repo.FindByID(ctx, userID, assetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "asset not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load asset")
	}
	return asset, nil
}

func normalizeCreate(input CreateAssetInput) (CreateAssetInput, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return input, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if !input.AssetType.IsValid() {
		return input, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid asset type %q", input.AssetType)
	}
	if strings.TrimSpace(input.Currency) == "" {
		input.Currency = DefaultCurrency
	}
	currency, err := normalizeCurrency(input.Currency)
	if err != nil {
		return input, err
	}
	input.Currency = currency
	input.Symbol = normalizeSymbol(input.Symbol)
	if input.ExchangeRate.IsZero() {
		input.ExchangeRate = decimal.NewFromInt(1)
	}
	if input.ExchangeRate.IsNegative() {
		return input, pkgerrors.New(pkgerrors.CodeValidation, "exchange_rate must be positive")
	}
	if !input.InitialQuantity.IsZero() && input.InitialTotalCost.Sign()*input.InitialQuantity.Sign() < 0 {
		return input, pkgerrors.New(pkgerrors.CodeValidation, "initial_total_cost and initial_quantity must share a sign")
	}
	if input.SourceCurrency != nil {
		code, err := normalizeCurrency(*input.SourceCurrency)
		if err != nil {
			return input, err
		}
		input.SourceCurrency = &code
	}
	if input.MetaData == nil {
		input.MetaData = types.Metadata{}
	}
	return input, nil
}

func normalizeCurrency(value string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(value))
	if len(code) != 3 {
		return "", pkgerrors.Newf(pkgerrors.CodeValidation, "invalid currency code %q", value)
	}
	return code, nil
}

func normalizeSymbol(symbol *string) *string {
	if symbol == nil {
		return nil
	}
	trimmed := strings.ToUpper(strings.TrimSpace(*symbol))
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
