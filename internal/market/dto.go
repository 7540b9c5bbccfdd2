package market

import "time"

// QuoteDTO is the transport shape of a stock lookup.
type QuoteDTO struct {
	Symbol   string  `json:"symbol"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
}

// RateDTO is the transport shape of an exchange rate lookup.
type RateDTO struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	Rate      float64   `json:"rate"`
	UpdatedAt time.Time `json:"updated_at"`
}

func quoteDTO(q Quote) *QuoteDTO {
	return &QuoteDTO{
		Symbol:   q.Symbol,
		Price:    q.Price.InexactFloat64(),
		Currency: q.Currency,
	}
}
