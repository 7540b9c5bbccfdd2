package middleware

import (
	"net/http"

	"github.com/mywealth/wealth-backend/api/responses"
	"github.com/mywealth/wealth-backend/pkg/enums"
	pkgerrors "github.com/mywealth/wealth-backend/pkg/errors"
	"github.com/mywealth/wealth-backend/pkg/logger"
)

// RequireAdmin admits OWNER and ADMIN callers.
func RequireAdmin(logg *logger.Logger) func(http.Handler) http.Handler {
	return requireRole(logg, "admin role required", func(role enums.UserRole) bool {
		return role.IsAdmin()
	})
}

// RequireOwner admits OWNER callers only.
func RequireOwner(logg *logger.Logger) func(http.Handler) http.Handler {
	return requireRole(logg, "owner role required", func(role enums.UserRole) bool {
		return role == enums.UserRoleOwner
	})
}

func requireRole(logg *logger.Logger, msg string, allowed func(enums.UserRole) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !allowed(RoleFromContext(r.Context())) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, msg))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
