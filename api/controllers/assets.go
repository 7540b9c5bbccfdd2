package controllers

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mywealth/wealth-backend/api/middleware"
	"github.com/mywealth/wealth-backend/api/responses"
	"github.com/mywealth/wealth-backend/api/validators"
	"github.com/mywealth/wealth-backend/internal/assets"
	"github.com/mywealth/wealth-backend/internal/transactions"
	"github.com/mywealth/wealth-backend/pkg/enums"
	"github.com/mywealth/wealth-backend/pkg/logger"
	"github.com/mywealth/wealth-backend/pkg/pagination"
	"github.com/mywealth/wealth-backend/pkg/types"
)

type createAssetRequest struct {
	Name              string              `json:"name" validate:"required,max=100"`
	AssetType         enums.AssetType     `json:"asset_type" validate:"required"`
	Currency          string              `json:"currency" validate:"omitempty,len=3,alpha"`
	Symbol            *string             `json:"symbol,omitempty" validate:"omitempty,max=32"`
	InitialTotalCost  decimal.Decimal     `json:"initial_total_cost"`
	InitialQuantity   decimal.Decimal     `json:"initial_quantity"`
	IncludeInNetWorth *bool               `json:"include_in_net_worth,omitempty"`
	MetaData          types.Metadata      `json:"meta_data,omitempty"`
	SourceAssetID     *int64              `json:"source_asset_id,omitempty" validate:"omitempty,gt=0"`
	SourceAmount      decimal.NullDecimal `json:"source_amount"`
	SourceCurrency    *string             `json:"source_currency,omitempty" validate:"omitempty,len=3,alpha"`
	ExchangeRate      decimal.Decimal     `json:"exchange_rate"`
	TransactionTime   *time.Time          `json:"transaction_time,omitempty"`
}

func (r createAssetRequest) toInput() assets.CreateAssetInput {
	include := true
	if r.IncludeInNetWorth != nil {
		include = *r.IncludeInNetWorth
	}
	return assets.CreateAssetInput{
		Name:              r.Name,
		AssetType:         r.AssetType,
		Currency:          r.Currency,
		Symbol:            r.Symbol,
		InitialTotalCost:  r.InitialTotalCost,
		InitialQuantity:   r.InitialQuantity,
		IncludeInNetWorth: include,
		MetaData:          r.MetaData,
		SourceAssetID:     r.SourceAssetID,
		SourceAmount:      r.SourceAmount,
		SourceCurrency:    r.SourceCurrency,
		ExchangeRate:      r.ExchangeRate,
		TransactionTime:   r.TransactionTime,
	}
}

type updateAssetRequest struct {
	Name              *string        `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Symbol            *string        `json:"symbol,omitempty" validate:"omitempty,max=32"`
	Currency          *string        `json:"currency,omitempty" validate:"omitempty,len=3,alpha"`
	IncludeInNetWorth *bool          `json:"include_in_net_worth,omitempty"`
	MetaData          types.Metadata `json:"meta_data,omitempty"`
}

func AssetList(svc assets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// AssetCreate registers an asset, optionally funded from another asset.
func AssetCreate(svc assets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createAssetRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		asset, err := svc.Create(r.Context(), middleware.UserIDFromContext(r.Context()), body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, asset)
	}
}

func AssetGet(svc assets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathID(r, "assetId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		asset, err := svc.Get(r.Context(), middleware.UserIDFromContext(r.Context()), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, asset)
	}
}

func AssetUpdate(svc assets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathID(r, "assetId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body updateAssetRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		asset, err := svc.Update(r.Context(), middleware.UserIDFromContext(r.Context()), id, assets.UpdateAssetInput{
			Name:              body.Name,
			Symbol:            body.Symbol,
			Currency:          body.Currency,
			IncludeInNetWorth: body.IncludeInNetWorth,
			MetaData:          body.MetaData,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, asset)
	}
}

func AssetDelete(svc assets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathID(r, "assetId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), middleware.UserIDFromContext(r.Context()), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

// AssetTransactions pages an asset's history, newest first.
func AssetTransactions(svc transactions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathID(r, "assetId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListByAsset(r.Context(), middleware.UserIDFromContext(r.Context()), id, pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}
