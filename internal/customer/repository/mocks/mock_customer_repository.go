package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/ridloal/retail-pos/internal/customer/domain"
)

type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) UpsertCustomer(ctx context.Context, customer *domain.Customer) error {
	args := m.Called(ctx, customer)
	if customer != nil && args.Error(0) == nil {
		if customer.ID == "" {
			customer.ID = "mocked-customer-id"
			customer.CreatedAt = time.Now()
		}
		customer.UpdatedAt = time.Now()
	}
	return args.Error(0)
}

func (m *MockCustomerRepository) GetCustomerByMobile(ctx context.Context, mobile string) (*domain.Customer, error) {
	args := m.Called(ctx, mobile)
	if c := args.Get(0); c != nil {
		return c.(*domain.Customer), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCustomerRepository) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	args := m.Called(ctx)
	if c := args.Get(0); c != nil {
		return c.([]domain.Customer), args.Error(1)
	}
	return nil, args.Error(1)
}
