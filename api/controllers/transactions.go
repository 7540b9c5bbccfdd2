package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/mywealth/wealth-backend/api/middleware"
	"github.com/mywealth/wealth-backend/api/responses"
	"github.com/mywealth/wealth-backend/api/validators"
	"github.com/mywealth/wealth-backend/internal/transactions"
	"github.com/mywealth/wealth-backend/pkg/enums"
	"github.com/mywealth/wealth-backend/pkg/logger"
)

type createTransactionRequest struct {
	AssetID              int64                 `json:"asset_id" validate:"required,gt=0"`
	TransactionType      enums.TransactionType `json:"transaction_type" validate:"required"`
	Amount               decimal.Decimal       `json:"amount"`
	QuantityChange       decimal.Decimal       `json:"quantity_change"`
	PriceAtTransaction   decimal.NullDecimal   `json:"price_at_transaction"`
	ExchangeRate         decimal.Decimal       `json:"exchange_rate"`
	SourceAmount         decimal.NullDecimal   `json:"source_amount"`
	SourceCurrency       *string               `json:"source_currency,omitempty" validate:"omitempty,len=3,alpha"`
	Note                 *string               `json:"note,omitempty" validate:"omitempty,max=500"`
	RelatedTransactionID *int64                `json:"related_transaction_id,omitempty" validate:"omitempty,gt=0"`
}

// TransactionCreate records a ledger entry and updates the asset position.
func TransactionCreate(svc transactions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createTransactionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if body.Note != nil {
			note := validators.SanitizeString(*body.Note, 500)
			body.Note = &note
		}

		txn, err := svc.Create(r.Context(), middleware.UserIDFromContext(r.Context()), transactions.CreateTransactionInput{
			AssetID:              body.AssetID,
			Type:                 body.TransactionType,
			Amount:               body.Amount,
			QuantityChange:       body.QuantityChange,
			PriceAtTransaction:   body.PriceAtTransaction,
			ExchangeRate:         body.ExchangeRate,
			SourceAmount:         body.SourceAmount,
			SourceCurrency:       body.SourceCurrency,
			Note:                 body.Note,
			RelatedTransactionID: body.RelatedTransactionID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, txn)
	}
}

// TransactionDelete reverses a ledger entry's effect and removes it.
func TransactionDelete(svc transactions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathID(r, "transactionId")
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
