package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mywealth/wealth-backend/api/responses"
	"github.com/mywealth/wealth-backend/internal/users"
	pkgAuth "github.com/mywealth/wealth-backend/pkg/auth"
	"github.com/mywealth/wealth-backend/pkg/config"
	pkgerrors "github.com/mywealth/wealth-backend/pkg/errors"
	"github.com/mywealth/wealth-backend/pkg/logger"
)

// UserProvisioner resolves the local user behind a verified token.
type UserProvisioner interface {
	EnsureUser(ctx context.Context, uid, email string) (*users.UserDTO, error)
}

// Auth validates a bearer token, provisions the user and seeds the request context.
func Auth(cfg config.JWTConfig, provisioner UserProvisioner, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			user, err := provisioner.EnsureUser(r.Context(), claims.UID(), claims.Email)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := WithUser(r.Context(), user.UID, user.Role)
			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"user_id":    user.UID,
					"actor_role": string(user.Role),
				})
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
