package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mywealth/wealth-backend/pkg/config"
	"github.com/mywealth/wealth-backend/pkg/db"
	"github.com/mywealth/wealth-backend/pkg/db/models"
	"github.com/mywealth/wealth-backend/pkg/enums"
	pkgerrors "github.com/mywealth/wealth-backend/pkg/errors"
	"github.com/mywealth/wealth-backend/pkg/logger"
	"github.com/mywealth/wealth-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service provisions users on sign-in and backs the admin screens.
type Service interface {
	EnsureUser(ctx context.Context, uid, email string) (*UserDTO, error)
	Get(ctx context.Context, uid string) (*UserDTO, error)
	List(ctx context.Context, actor Actor, params ListParams) ([]UserDTO, error)
	UpdateRole(ctx context.Context, actor Actor, uid string, role enums.UserRole) (*UserDTO, error)
	Delete(ctx context.Context, actor Actor, uid string) error
}

type service struct {
	repo        *Repository
	tx          txRunner
	logg        *logger.Logger
	ownerEmails map[string]struct{}
	adminEmails map[string]struct{}
	now         func() time.Time
}

// NewService builds the users service. Role lists come from configuration.
func NewService(repo *Repository, tx txRunner, roles config.RolesConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:        repo,
		tx:          tx,
		logg:        logg,
		ownerEmails: emailSet(roles.OwnerEmails),
		adminEmails: emailSet(roles.AdminEmails),
		now:         time.Now,
	}, nil
}

// EnsureUser creates the user on first sight and records the login
// otherwise. Configured emails are promoted but never demoted.
func (s *service) EnsureUser(ctx context.Context, uid, email string) (*UserDTO, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	email = strings.TrimSpace(email)
	target := s.roleFor(email)
	now := s.now().UTC()

	existing, err := s.repo.FindByUID(ctx, uid)
	switch {
	case err == nil:
		return s.recordLogin(ctx, existing, target, now)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load user")
	}

	user := &models.User{UID: uid, Role: target, LastLoginAt: &now, CreatedAt: now}
	if email != "" {
		user.Email = &email
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if db.IsUniqueViolation(err, "") {
			// a concurrent request provisioned the same uid
			existing, findErr := s.repo.FindByUID(ctx, uid)
			if findErr != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, findErr, "db: load user")
			}
			return s.recordLogin(ctx, existing, target, now)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: create user")
	}

	s.logg.Info(s.logg.WithRole(s.logg.WithUserID(ctx, uid), string(target)), "user provisioned")
	return FromModel(user), nil
}

func (s *service) recordLogin(ctx context.Context, user *models.User, target enums.UserRole, at time.Time) (*UserDTO, error) {
	var promote *enums.UserRole
	if target != enums.UserRoleUser && user.Role != target {
		promote = &target
	}
	if err := s.repo.RecordLogin(ctx, user.UID, at, promote); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: record login")
	}
	user.LastLoginAt = &at
	if promote != nil {
		s.logg.Info(s.logg.WithRole(s.logg.WithUserID(ctx, user.UID), string(target)), "user role promoted from configuration")
		user.Role = target
	}
	return FromModel(user), nil
}

func (s *service) Get(ctx context.Context, uid string) (*UserDTO, error) {
	user, err := s.load(ctx, s.repo, uid)
	if err != nil {
		return nil, err
	}
	return FromModel(user), nil
}

func (s *service) List(ctx context.Context, actor Actor, params ListParams) ([]UserDTO, error) {
	if !actor.Role.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	if params.Offset < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "offset must be non-negative")
	}
	if params.Role != nil && !params.Role.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid role %q", *params.Role)
	}
	if params.SortBy == "" {
		params.SortBy = SortByCreatedAt
	}
	params.Limit = pagination.NormalizeLimit(params.Limit)

	rows, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list users")
	}
	out := make([]UserDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) UpdateRole(ctx context.Context, actor Actor, uid string, role enums.UserRole) (*UserDTO, error) {
	if !actor.Role.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	if actor.UID == uid {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot change your own role")
	}
	if !role.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid role %q", role)
	}

	if err := s.repo.UpdateRole(ctx, uid, role); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update role")
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"actor_uid":  actor.UID,
		"target_uid": uid,
		"new_role":   string(role),
	})
	s.logg.Info(logCtx, "user role changed")
	return s.Get(ctx, uid)
}

// Delete removes a user with all of their assets and transactions.
func (s *service) Delete(ctx context.Context, actor Actor, uid string) error {
	if actor.Role != enums.UserRoleOwner {
		return pkgerrors.New(pkgerrors.CodeForbidden, "owner role required")
	}
	if actor.UID == uid {
		return pkgerrors.New(pkgerrors.CodeForbidden, "cannot delete yourself")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := s.load(ctx, repo, uid); err != nil {
			return err
		}
		if err := repo.DeleteCascade(ctx, uid); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete user")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"actor_uid": actor.UID, "target_uid": uid}), "user deleted")
	return nil
}

func (s *service) load(ctx context.Context, repo *Repository, uid string) (*models.User, error) {
	user, err := repo.FindByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load user")
	}
	return user, nil
}

// roleFor resolves the configured role. The admin list wins over the owner list.
func (s *service) roleFor(email string) enums.UserRole {
	key := strings.ToLower(email)
	if key == "" {
		return enums.UserRoleUser
	}
	if _, ok := s.adminEmails[key]; ok {
		return enums.UserRoleAdmin
	}
	if _, ok := s.ownerEmails[key]; ok {
		return enums.UserRoleOwner
	}
	return enums.UserRoleUser
}

func emailSet(emails []string) map[string]struct{} {
	set := make(map[string]struct{}, len(emails))
	for _, email := range emails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email != "" {
			set[email] = struct{}{}
		}
	}
	return set
}
