package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mywealth/wealth-backend/api/middleware"
	"github.com/mywealth/wealth-backend/api/responses"
	"github.com/mywealth/wealth-backend/api/validators"
	"github.com/mywealth/wealth-backend/internal/users"
	"github.com/mywealth/wealth-backend/pkg/enums"
	pkgerrors "github.com/mywealth/wealth-backend/pkg/errors"
	"github.com/mywealth/wealth-backend/pkg/logger"
	"github.com/mywealth/wealth-backend/pkg/pagination"
)

// UserMe returns the authenticated caller's profile.
func UserMe(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := svc.Get(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}

// UserList serves the admin user listing.
// Query: skip, limit, email, role, sort_by, desc.
func UserList(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		offset, err := validators.ParseQueryInt(r, "skip", 0, 0, 1_000_000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		descending, err := validators.ParseQueryBool(r, "desc", true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sortBy, err := users.ParseSortField(r.URL.Query().Get("sort_by"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error()))
			return
		}

		params := users.ListParams{
			Offset:     offset,
			Limit:      limit,
			EmailQuery: validators.SanitizeString(r.URL.Query().Get("email"), 320),
			SortBy:     sortBy,
			Descending: descending,
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("role")); raw != "" {
			role, err := enums.ParseUserRole(strings.ToUpper(raw))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role filter"))
				return
			}
			params.Role = &role
		}

		list, err := svc.List(r.Context(), middleware.ActorFromContext(r.Context()), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

type updateRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

func UserUpdateRole(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body updateRoleRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.UpdateRole(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "uid"), enums.UserRole(strings.ToUpper(strings.TrimSpace(body.Role))))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}

func UserDelete(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "uid")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}
