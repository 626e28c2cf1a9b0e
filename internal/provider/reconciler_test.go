package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestReconciler_MaxRates(t *testing.T) {
	log := zap.NewNop().Sugar()

	t.Run("takes maximum per target", func(t *testing.T) {
		a := NewMockSource("a")
		b := NewMockSource("b")
		a.On("FetchRates", mock.Anything, "USD").Return(RateMap{"EUR": dec("0.80"), "ILS": dec("3.30")}, nil)
		b.On("FetchRates", mock.Anything, "USD").Return(RateMap{"EUR": dec("0.84"), "ILS": dec("3.32")}, nil)

		merged := NewReconciler(log, a, b).MaxRates(context.Background(), "USD")

		assert.Len(t, merged, 2)
		assert.True(t, merged["EUR"].Equal(dec("0.84")))
		assert.True(t, merged["ILS"].Equal(dec("3.32")))
		a.AssertExpectations(t)
		b.AssertExpectations(t)
	})

	t.Run("merge is commutative", func(t *testing.T) {
		ab := func(first, second RateMap) RateMap {
			a := NewMockSource("a")
			b := NewMockSource("b")
			a.On("FetchRates", mock.Anything, "USD").Return(first, nil)
			b.On("FetchRates", mock.Anything, "USD").Return(second, nil)
			return NewReconciler(log, a, b).MaxRates(context.Background(), "USD")
		}

		x := RateMap{"EUR": dec("0.80"), "ILS": dec("3.32")}
		y := RateMap{"EUR": dec("0.84"), "ILS": dec("3.30")}

		xy := ab(x, y)
		yx := ab(y, x)

		assert.Len(t, xy, len(yx))
		for target, rate := range xy {
			assert.True(t, rate.Equal(yx[target]), "rate for %s differs by source order", target)
		}
	})

	t.Run("failing source contributes nothing", func(t *testing.T) {
		a := NewMockSource("a")
		b := NewMockSource("b")
		a.On("FetchRates", mock.Anything, "USD").Return(nil, errors.New("connection refused"))
		b.On("FetchRates", mock.Anything, "USD").Return(RateMap{"EUR": dec("0.84")}, nil)

		merged := NewReconciler(log, a, b).MaxRates(context.Background(), "USD")

		assert.Len(t, merged, 1)
		assert.True(t, merged["EUR"].Equal(dec("0.84")))
	})

	t.Run("all sources failing yields empty map", func(t *testing.T) {
		a := NewMockSource("a")
		b := NewMockSource("b")
		a.On("FetchRates", mock.Anything, "USD").Return(nil, errors.New("a down"))
		b.On("FetchRates", mock.Anything, "USD").Return(nil, errors.New("b down"))

		merged := NewReconciler(log, a, b).MaxRates(context.Background(), "USD")

		assert.Empty(t, merged)
	})

	t.Run("target known to only one source survives", func(t *testing.T) {
		a := NewMockSource("a")
		b := NewMockSource("b")
		a.On("FetchRates", mock.Anything, "USD").Return(RateMap{"EUR": dec("0.80")}, nil)
		b.On("FetchRates", mock.Anything, "USD").Return(RateMap{"ILS": dec("3.32")}, nil)

		merged := NewReconciler(log, a, b).MaxRates(context.Background(), "USD")

		assert.Len(t, merged, 2)
		assert.True(t, merged["EUR"].Equal(dec("0.80")))
		assert.True(t, merged["ILS"].Equal(dec("3.32")))
	})
}
