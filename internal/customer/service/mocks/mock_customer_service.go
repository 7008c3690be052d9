package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ridloal/retail-pos/internal/customer/domain"
)

type MockCustomerService struct {
	mock.Mock
}

func (m *MockCustomerService) UpsertCustomer(ctx context.Context, req domain.UpsertCustomerRequest) (*domain.Customer, error) {
	args := m.Called(ctx, req)
	if res := args.Get(0); res != nil {
		return res.(*domain.Customer), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCustomerService) GetByMobile(ctx context.Context, mobile string) (*domain.Customer, error) {
	args := m.Called(ctx, mobile)
	if res := args.Get(0); res != nil {
		return res.(*domain.Customer), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCustomerService) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	args := m.Called(ctx)
	if res := args.Get(0); res != nil {
		return res.([]domain.Customer), args.Error(1)
	}
	return nil, args.Error(1)
}
