package assets

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mywealth/wealth-backend/pkg/db/models"
)

// Repository persists assets together with the registry-owned ledger rows
// (funding transfers and opening balances).
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, asset *models.Asset) error
	FindByID(ctx context.Context, userID string, id int64) (*models.Asset, error)
	FindForUpdate(ctx context.Context, userID string, id int64) (*models.Asset, error)
	ListByUser(ctx context.Context, userID string) ([]models.Asset, error)
	SavePosition(ctx context.Context, asset *models.Asset) error
	UpdateFields(ctx context.Context, asset *models.Asset, fields map[string]any) error
	Delete(ctx context.Context, userID string, id int64) error
	CreateTransaction(ctx context.Context, txn *models.Transaction) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an asset repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, asset *models.Asset) error {
	return r.db.WithContext(ctx).Create(asset).Error
}

func (r *repository) FindByID(ctx context.Context, userID string, id int64) (*models.Asset, error) {
	var asset models.Asset
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&asset).Error; err != nil {
		return nil, err
	}
	return &asset, nil
}

// FindForUpdate loads the asset holding a row lock until the surrounding
// transaction ends. Must be called on a repository bound with WithTx.
func (r *repository) FindForUpdate(ctx context.Context, userID string, id int64) (*models.Asset, error) {
	var asset models.Asset
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND user_id = ?", id, userID).
		First(&asset).Error; err != nil {
		return nil, err
	}
	return &asset, nil
}

func (r *repository) ListByUser(ctx context.Context, userID string) ([]models.Asset, error) {
	var rows []models.Asset
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// SavePosition writes the inventory columns, zero values included.
func (r *repository) SavePosition(ctx context.Context, asset *models.Asset) error {
	return r.db.WithContext(ctx).
		Model(asset).
		Select("quantity", "book_value", "average_cost", "status", "updated_at").
		Updates(asset).Error
}

func (r *repository) UpdateFields(ctx context.Context, asset *models.Asset, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(asset).Updates(fields).Error
}

// Delete removes the asset and every transaction recorded against it.
func (r *repository) Delete(ctx context.Context, userID string, id int64) error {
	conn := r.db.WithContext(ctx)
	if err := conn.
		Where("asset_id = ? AND user_id = ?", id, userID).
		Delete(&models.Transaction{}).Error; err != nil {
		return err
	}
	res := conn.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Asset{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) CreateTransaction(ctx context.Context, txn *models.Transaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}
