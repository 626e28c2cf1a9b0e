package api

import (
	"context"

	"fxquote/internal/service"
)

// mockQuoteService implements service.QuoteServiceInterface for testing.
type mockQuoteService struct {
	getQuoteFunc func(ctx context.Context, req service.QuoteRequest) (*service.Quote, error)
}

func (m *mockQuoteService) GetQuote(ctx context.Context, req service.QuoteRequest) (*service.Quote, error) {
	return m.getQuoteFunc(ctx, req)
}
