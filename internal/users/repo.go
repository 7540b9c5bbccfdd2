package users

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mywealth/wealth-backend/pkg/db/models"
	"github.com/mywealth/wealth-backend/pkg/enums"
)

// Repository exposes user-related persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create inserts a new user.
func (r *Repository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// FindByUID loads a user by the identity provider uid.
func (r *Repository) FindByUID(ctx context.Context, uid string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "uid = ?", uid).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// RecordLogin refreshes last_login_at and, when role is set, the role.
func (r *Repository) RecordLogin(ctx context.Context, uid string, at time.Time, role *enums.UserRole) error {
	updates := map[string]any{"last_login_at": at}
	if role != nil {
		updates["role"] = *role
	}
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("uid = ?", uid).
		UpdateColumns(updates).Error
}

// UpdateRole overwrites the user's role.
func (r *Repository) UpdateRole(ctx context.Context, uid string, role enums.UserRole) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("uid = ?", uid).
		UpdateColumn("role", role)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List applies search, filter and ordering then pages with offset/limit.
func (r *Repository) List(ctx context.Context, params ListParams) ([]models.User, error) {
	query := r.db.WithContext(ctx).Model(&models.User{})
	if q := strings.TrimSpace(params.EmailQuery); q != "" {
		query = query.Where("LOWER(email) LIKE ?", "%"+strings.ToLower(q)+"%")
	}
	if params.Role != nil {
		query = query.Where("role = ?", *params.Role)
	}

	var rows []models.User
	if err := query.
		Order(orderClause(params.SortBy, params.Descending)).
		Offset(params.Offset).
		Limit(params.Limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// DeleteCascade removes the user's transactions, assets and the user row.
// Callers run it inside a transaction.
func (r *Repository) DeleteCascade(ctx context.Context, uid string) error {
	conn := r.db.WithContext(ctx)
	if err := conn.Where("user_id = ?", uid).Delete(&models.Transaction{}).Error; err != nil {
		return fmt.Errorf("delete transactions: %w", err)
	}
	if err := conn.Where("user_id = ?", uid).Delete(&models.Asset{}).Error; err != nil {
		return fmt.Errorf("delete assets: %w", err)
	}
	res := conn.Where("uid = ?", uid).Delete(&models.User{})
	if res.Error != nil {
		return fmt.Errorf("delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func orderClause(sortBy SortField, descending bool) string {
	direction := "ASC"
	if descending {
		direction = "DESC"
	}
	if sortBy == SortByRole {
		return fmt.Sprintf("%s %s, last_login_at DESC", rolePriorityExpr(), direction)
	}
	return fmt.Sprintf("%s %s, uid ASC", sortBy.column(), direction)
}

func rolePriorityExpr() string {
	var b strings.Builder
	b.WriteString("CASE role")
	for _, role := range []enums.UserRole{
		enums.UserRoleOwner,
		enums.UserRoleAdmin,
		enums.UserRoleFriend,
		enums.UserRolePaid,
		enums.UserRoleUser,
	} {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", role, role.Priority())
	}
	b.WriteString(" ELSE 6 END")
	return b.String()
}
