package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mywealth/wealth-backend/api/responses"
	"github.com/mywealth/wealth-backend/internal/market"
	pkgerrors "github.com/mywealth/wealth-backend/pkg/errors"
	"github.com/mywealth/wealth-backend/pkg/logger"
)

// MarketStock looks up the latest price for a ticker. Query: region (US, TW, JP).
func MarketStock(svc market.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		region := strings.TrimSpace(r.URL.Query().Get("region"))
		if region == "" {
			region = market.RegionUS
		}
		quote, err := svc.Price(r.Context(), chi.URLParam(r, "ticker"), region)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}

// MarketRate converts between two supported currencies. Query: from, to.
func MarketRate(svc market.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from := r.URL.Query().Get("from")
		to := r.URL.Query().Get("to")
		if strings.TrimSpace(from) == "" || strings.TrimSpace(to) == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "from and to are required"))
			return
		}
		rate, err := svc.Rate(r.Context(), from, to)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rate)
	}
}
