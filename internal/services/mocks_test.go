package services

import (
	"context"

	"github.com/ruralpay/ledger/internal/models"
	"github.com/stretchr/testify/mock"
)

type MockAccountReader struct {
	mock.Mock
}

func (m *MockAccountReader) GetAccountByID(ctx context.Context, id int64) (*models.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

// accountsWithCurrency knows the given ids in one currency; any other id is not found.
func accountsWithCurrency(currency string, ids ...int64) *MockAccountReader {
	m := &MockAccountReader{}
	for _, id := range ids {
		m.On("GetAccountByID", mock.Anything, id).Return(&models.Account{ID: id, CurrencyCode: currency}, nil)
	}
	m.On("GetAccountByID", mock.Anything, mock.Anything).Return(nil, ErrAccountNotFound)
	return m
}

type MockPlanEventPublisher struct {
	mock.Mock
}

func (m *MockPlanEventPublisher) Publish(ctx context.Context, event PlanEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func acceptingPublisher() *MockPlanEventPublisher {
	m := &MockPlanEventPublisher{}
	m.On("Publish", mock.Anything, mock.Anything).Return(nil)
	return m
}

func publishedEvents(m *MockPlanEventPublisher) []PlanEvent {
	var events []PlanEvent
	for _, call := range m.Calls {
		events = append(events, call.Arguments.Get(1).(PlanEvent))
	}
	return events
}
