// Package service implements the quote engine: validate, obtain a trusted
// rate through the cache, compute the converted amount.
package service

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"fxquote/internal/cache"
	"fxquote/internal/currency"
	"fxquote/internal/metrics"
)

// ErrServiceDown indicates that no usable rate exists for the requested pair
// after a refresh attempt. The transport maps it to the opaque maintenance
// message; upstream failure detail never reaches the caller.
var ErrServiceDown = errors.New("no usable exchange rate available")

// ValidationError carries every problem found in an invalid request.
type ValidationError struct {
	Problems []currency.Problem
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		msgs[i] = p.Message
	}
	return strings.Join(msgs, "; ")
}

// Messages returns the human-readable message of every problem, in order.
func (e *ValidationError) Messages() []string {
	msgs := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		msgs[i] = p.Message
	}
	return msgs
}

// Quote is the successful response payload.
type Quote struct {
	ExchangeRate string // rate at 3 decimal places
	CurrencyCode string // target currency
	Amount       string // converted amount at 5 decimal places
}

// QuoteServiceInterface defines the quote operation exposed to the transport.
type QuoteServiceInterface interface {
	GetQuote(ctx context.Context, req QuoteRequest) (*Quote, error)
}

var _ QuoteServiceInterface = (*QuoteService)(nil)

// QuoteService orchestrates validation, rate lookup, and conversion.
type QuoteService struct {
	rates     cache.RateStore
	validator *Validator
	log       *zap.SugaredLogger
}

// NewQuoteService creates a new QuoteService.
func NewQuoteService(rates cache.RateStore, validator *Validator, log *zap.SugaredLogger) *QuoteService {
	return &QuoteService{
		rates:     rates,
		validator: validator,
		log:       log,
	}
}

// GetQuote validates the request, obtains the rate (from cache, refreshing on
// a miss), and computes the converted amount. It returns a *ValidationError
// for invalid input (before any I/O) or ErrServiceDown when no usable rate
// exists for the pair.
func (s *QuoteService) GetQuote(ctx context.Context, req QuoteRequest) (*Quote, error) {
	if problems := s.validator.CheckRequest(req); len(problems) > 0 {
		metrics.QuotesTotal.WithLabelValues(metrics.OutcomeValidationError).Inc()
		return nil, &ValidationError{Problems: problems}
	}

	// Validation passed, so the amount is known to parse positive.
	amount, _ := currency.CheckAmount(req.Amount)
	from := strings.ToUpper(req.FromCurrency)
	to := strings.ToUpper(req.ToCurrency)

	// Converting a currency to itself needs no upstream rate.
	if from == to {
		metrics.QuotesTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
		return buildQuote(decimal.New(1, 0), to, amount), nil
	}

	rate, err := s.rates.GetOrRefresh(ctx, from, to)
	if err != nil {
		if !errors.Is(err, cache.ErrRateUnavailable) {
			s.log.Errorw("Rate lookup failed", "base", from, "target", to, "error", err)
		}
		metrics.QuotesTotal.WithLabelValues(metrics.OutcomeServiceDown).Inc()
		return nil, ErrServiceDown
	}

	// No rate reaches the arithmetic unless it passes the positive-number check.
	if _, problem := currency.CheckAmount(rate.String()); problem != nil {
		s.log.Errorw("Cached rate failed amount check", "base", from, "target", to, "rate", rate.String())
		metrics.QuotesTotal.WithLabelValues(metrics.OutcomeServiceDown).Inc()
		return nil, ErrServiceDown
	}

	metrics.QuotesTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	s.log.Infow("Quote served", "from", from, "to", to, "rate", rate.String())
	return buildQuote(rate, to, amount), nil
}

func buildQuote(rate decimal.Decimal, target string, amount decimal.Decimal) *Quote {
	return &Quote{
		ExchangeRate: rate.StringFixed(3),
		CurrencyCode: target,
		Amount:       amount.Mul(rate).StringFixed(5),
	}
}
