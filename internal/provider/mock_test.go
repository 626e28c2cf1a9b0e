package provider

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockSource struct {
	mock.Mock
	name string
}

func NewMockSource(name string) *MockSource {
	return &MockSource{name: name}
}

func (m *MockSource) Name() string { return m.name }

func (m *MockSource) FetchRates(ctx context.Context, base string) (RateMap, error) {
	args := m.Called(ctx, base)
	rates, _ := args.Get(0).(RateMap)
	return rates, args.Error(1)
}
