package api

import (
	"errors"
	"net/http"

	"fxquote/internal/currency"
	"fxquote/internal/service"
)

// QuoteResponse represents a successful quote.
type QuoteResponse struct {
	ExchangeRate string `json:"exchange_rate" example:"0.840"`
	CurrencyCode string `json:"currency_code" example:"EUR"`
	Amount       string `json:"amount" example:"84.00000"`
}

// HandleGetQuote godoc
// @Summary Get a currency exchange quote
// @Description Converts an amount from one supported currency to another at the cached reconciled rate, refreshing the rate from the upstream providers when the cache entry has expired.
// @Tags quotes
// @Produce json
// @Param from_currency_code query string true "Source currency code (3 letters)" minlength(3) maxlength(3)
// @Param amount query string true "Amount to convert (positive number)"
// @Param to_currency_code query string true "Target currency code (3 letters)" minlength(3) maxlength(3)
// @Success 200 {object} QuoteResponse "Quote computed"
// @Failure 400 {object} ValidationErrorResponse "Invalid request parameters"
// @Failure 503 {object} ErrorResponse "No usable rate available"
// @Router /quote [get]
func HandleGetQuote(svc service.QuoteServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		req := service.QuoteRequest{
			FromCurrency: q.Get("from_currency_code"),
			ToCurrency:   q.Get("to_currency_code"),
			Amount:       q.Get("amount"),
		}

		quote, err := svc.GetQuote(r.Context(), req)
		if err != nil {
			var vErr *service.ValidationError
			switch {
			case errors.As(err, &vErr):
				writeJSON(w, http.StatusBadRequest, ValidationErrorResponse{Error: vErr.Messages()})
			case errors.Is(err, service.ErrServiceDown):
				writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: currency.ServiceDown().Message})
			default:
				writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal error"})
			}
			return
		}

		writeJSON(w, http.StatusOK, QuoteResponse{
			ExchangeRate: quote.ExchangeRate,
			CurrencyCode: quote.CurrencyCode,
			Amount:       quote.Amount,
		})
	}
}
