package currency

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Kind identifies one member of the closed set of user-facing problems.
type Kind string

// Problem kinds. Validation kinds are detected before any I/O; ServiceDown
// is raised only after a refresh attempt left no usable rate.
const (
	KindNotANumber      Kind = "NOT_A_NUMBER"
	KindNotPositive     Kind = "NOT_POSITIVE"
	KindFromCurrency    Kind = "FROM_CURRENCY"
	KindToCurrency      Kind = "TO_CURRENCY"
	KindMissingCurrency Kind = "MISSING_CURRENCY"
	KindServiceDown     Kind = "SERVICE_DOWN"
)

// Problem is a user-facing failure: a kind plus its formatted message.
// Problems are values, not errors; multiple may be reported at once.
type Problem struct {
	Kind    Kind
	Message string
}

// NotANumber reports an amount that does not parse as a number.
func NotANumber(amount string) Problem {
	return Problem{
		Kind:    KindNotANumber,
		Message: fmt.Sprintf("The specified 'amount'=%s is not a number. Please specify a positive numeric value.", amount),
	}
}

// NotPositive reports an amount that parsed but is not strictly positive.
func NotPositive(amount string) Problem {
	return Problem{
		Kind:    KindNotPositive,
		Message: fmt.Sprintf("The specified 'amount'=%s is not a positive number.", amount),
	}
}

// UnsupportedFrom reports a from_currency_code outside the registry.
func UnsupportedFrom(code string) Problem {
	return Problem{
		Kind:    KindFromCurrency,
		Message: fmt.Sprintf("The 'from_currency_code'=%s is not supported.", code),
	}
}

// UnsupportedTo reports a to_currency_code outside the registry.
func UnsupportedTo(code string) Problem {
	return Problem{
		Kind:    KindToCurrency,
		Message: fmt.Sprintf("The 'to_currency_code'=%s is not supported.", code),
	}
}

// MissingRate reports an expected target currency absent from an upstream
// response. Logged by the providers; never returned to the caller.
func MissingRate(code string) Problem {
	return Problem{
		Kind:    KindMissingCurrency,
		Message: fmt.Sprintf("The exchange rate for %s is missing.", code),
	}
}

// ServiceDown is the opaque message returned when no usable rate exists
// after a refresh. Upstream failure detail is deliberately not leaked.
func ServiceDown() Problem {
	return Problem{
		Kind:    KindServiceDown,
		Message: "The service is temporarily down for maintenance.",
	}
}

// CheckAmount applies the single positive-number rule shared by the request
// validator, the rate source clients, and the quote engine. It returns the
// parsed value, or the Problem describing why the value is unusable.
func CheckAmount(raw string) (decimal.Decimal, *Problem) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		p := NotANumber(raw)
		return decimal.Decimal{}, &p
	}
	if d.Sign() <= 0 {
		p := NotPositive(raw)
		return decimal.Decimal{}, &p
	}
	return d, nil
}
