package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ridloal/retail-pos/internal/invoice/domain"
)

type MockInvoiceService struct {
	mock.Mock
}

func (m *MockInvoiceService) CreateSale(ctx context.Context, req domain.CreateSaleRequest) (*domain.Invoice, error) {
	args := m.Called(ctx, req)
	if inv := args.Get(0); inv != nil {
		return inv.(*domain.Invoice), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockInvoiceService) DeleteSale(ctx context.Context, id string) (*domain.DeleteSaleResponse, error) {
	args := m.Called(ctx, id)
	if resp := args.Get(0); resp != nil {
		return resp.(*domain.DeleteSaleResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockInvoiceService) ListSales(ctx context.Context) ([]domain.Invoice, error) {
	args := m.Called(ctx)
	if invs := args.Get(0); invs != nil {
		return invs.([]domain.Invoice), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockInvoiceService) GetSale(ctx context.Context, id string) (*domain.Invoice, error) {
	args := m.Called(ctx, id)
	if inv := args.Get(0); inv != nil {
		return inv.(*domain.Invoice), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockInvoiceService) GetReceipt(ctx context.Context, id string) (*domain.Receipt, error) {
	args := m.Called(ctx, id)
	if r := args.Get(0); r != nil {
		return r.(*domain.Receipt), args.Error(1)
	}
	return nil, args.Error(1)
}
