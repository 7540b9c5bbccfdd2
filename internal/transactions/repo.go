package transactions

import (
	"context"

	"gorm.io/gorm"

	"github.com/mywealth/wealth-backend/pkg/db/models"
	"github.com/mywealth/wealth-backend/pkg/pagination"
)

// Repository manages persistence for ledger transactions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, txn *models.Transaction) error
	FindByID(ctx context.Context, userID string, id int64) (*models.Transaction, error)
	Delete(ctx context.Context, id int64) error
	ListByAsset(ctx context.Context, userID string, assetID int64, limit int, cursor *pagination.Cursor) ([]models.Transaction, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a transaction repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, txn *models.Transaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *repository) FindByID(ctx context.Context, userID string, id int64) (*models.Transaction, error) {
	var txn models.Transaction
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&txn).Error; err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Transaction{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListByAsset returns newest first, ties broken by id. The cursor is the last
// row of the previous page.
func (r *repository) ListByAsset(ctx context.Context, userID string, assetID int64, limit int, cursor *pagination.Cursor) ([]models.Transaction, error) {
	query := r.db.WithContext(ctx).
		Where("asset_id = ? AND user_id = ?", assetID, userID)
	if cursor != nil {
		query = query.Where(
			"(transaction_date < ?) OR (transaction_date = ? AND id < ?)",
			cursor.At, cursor.At, cursor.ID,
		)
	}

	var rows []models.Transaction
	if err := query.
		Order("transaction_date DESC").
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
