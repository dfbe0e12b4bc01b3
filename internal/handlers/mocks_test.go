package handlers

import (
	"context"

	"github.com/ruralpay/ledger/internal/models"
	"github.com/stretchr/testify/mock"
)

type MockPlanService struct {
	mock.Mock
}

func (m *MockPlanService) Hold(ctx context.Context, change models.PostingPlanChange) (models.Clock, error) {
	args := m.Called(ctx, change)
	return args.Get(0).(models.Clock), args.Error(1)
}

func (m *MockPlanService) Commit(ctx context.Context, plan models.PostingPlan) (models.Clock, error) {
	args := m.Called(ctx, plan)
	return args.Get(0).(models.Clock), args.Error(1)
}

func (m *MockPlanService) Rollback(ctx context.Context, plan models.PostingPlan) (models.Clock, error) {
	args := m.Called(ctx, plan)
	return args.Get(0).(models.Clock), args.Error(1)
}

func (m *MockPlanService) GetPlan(ctx context.Context, planID string) (*models.PostingPlan, error) {
	args := m.Called(ctx, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PostingPlan), args.Error(1)
}

type MockBalanceReader struct {
	mock.Mock
}

func (m *MockBalanceReader) GetBalanceByID(ctx context.Context, accountID int64, clock models.Clock) (*models.Balance, error) {
	args := m.Called(ctx, accountID, clock)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Balance), args.Error(1)
}

func (m *MockBalanceReader) LatestClock(ctx context.Context) (models.Clock, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.Clock), args.Error(1)
}

type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) CreateAccount(ctx context.Context, prototype models.AccountPrototype) (int64, error) {
	args := m.Called(ctx, prototype)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountService) GetAccountByID(ctx context.Context, id int64) (*models.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}
