package service

import (
	"fxquote/internal/currency"
)

// QuoteRequest is the raw inbound request exactly as the transport received
// it. Nothing is trusted until CheckRequest has passed.
type QuoteRequest struct {
	FromCurrency string
	ToCurrency   string
	Amount       string
}

// Validator checks a quote request's shape and values before any I/O occurs.
type Validator struct {
	registry *currency.Registry
}

// NewValidator creates a Validator over the supported-currency registry.
func NewValidator(registry *currency.Registry) *Validator {
	return &Validator{registry: registry}
}

// CheckRequest evaluates every check independently, never short-circuiting,
// so multiple problems can be reported at once. An empty result means the
// request is valid. No side effects.
func (v *Validator) CheckRequest(req QuoteRequest) []currency.Problem {
	var problems []currency.Problem

	if _, p := currency.CheckAmount(req.Amount); p != nil {
		problems = append(problems, *p)
	}
	if !v.registry.IsSupported(req.FromCurrency) {
		problems = append(problems, currency.UnsupportedFrom(req.FromCurrency))
	}
	if !v.registry.IsSupported(req.ToCurrency) {
		problems = append(problems, currency.UnsupportedTo(req.ToCurrency))
	}

	return problems
}
