package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fxquote/internal/currency"
)

func testValidator(t *testing.T) *Validator {
	t.Helper()
	registry, err := currency.NewRegistry([]string{"USD", "EUR", "ILS"})
	require.NoError(t, err)
	return NewValidator(registry)
}

func TestValidator_CheckRequest(t *testing.T) {
	v := testValidator(t)

	tests := []struct {
		name  string
		req   QuoteRequest
		kinds []currency.Kind
	}{
		{"valid", QuoteRequest{"USD", "EUR", "100"}, nil},
		{"valid lowercase codes", QuoteRequest{"usd", "eur", "0.5"}, nil},
		{"non-numeric amount", QuoteRequest{"USD", "EUR", "abc"},
			[]currency.Kind{currency.KindNotANumber}},
		{"zero amount", QuoteRequest{"USD", "EUR", "0"},
			[]currency.Kind{currency.KindNotPositive}},
		{"negative amount", QuoteRequest{"USD", "EUR", "-12"},
			[]currency.Kind{currency.KindNotPositive}},
		{"unsupported from", QuoteRequest{"XXX", "EUR", "100"},
			[]currency.Kind{currency.KindFromCurrency}},
		{"unsupported to", QuoteRequest{"USD", "YYY", "100"},
			[]currency.Kind{currency.KindToCurrency}},
		{"all checks evaluated, not short-circuited", QuoteRequest{"XXX", "YYY", "-1"},
			[]currency.Kind{currency.KindNotPositive, currency.KindFromCurrency, currency.KindToCurrency}},
		{"both currencies bad with good amount", QuoteRequest{"XXX", "YYY", "100"},
			[]currency.Kind{currency.KindFromCurrency, currency.KindToCurrency}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			problems := v.CheckRequest(tc.req)
			if tc.kinds == nil {
				assert.Empty(t, problems)
				return
			}
			got := make([]currency.Kind, len(problems))
			for i, p := range problems {
				got[i] = p.Kind
			}
			assert.Equal(t, tc.kinds, got)
		})
	}
}

func TestValidator_CheckRequest_Messages(t *testing.T) {
	v := testValidator(t)

	problems := v.CheckRequest(QuoteRequest{"XXX", "EUR", "100"})
	require.Len(t, problems, 1)
	assert.Equal(t, "The 'from_currency_code'=XXX is not supported.", problems[0].Message)

	problems = v.CheckRequest(QuoteRequest{"USD", "EUR", "-5"})
	require.Len(t, problems, 1)
	assert.Equal(t, "The specified 'amount'=-5 is not a positive number.", problems[0].Message)
}
