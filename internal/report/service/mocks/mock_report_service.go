package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	pDomain "github.com/ridloal/retail-pos/internal/product/domain"
	"github.com/ridloal/retail-pos/internal/report/domain"
)

type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Dashboard(ctx context.Context) (*domain.Dashboard, error) {
	args := m.Called(ctx)
	if d := args.Get(0); d != nil {
		return d.(*domain.Dashboard), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockReportService) RefreshDashboard(ctx context.Context) (*domain.Dashboard, error) {
	args := m.Called(ctx)
	if d := args.Get(0); d != nil {
		return d.(*domain.Dashboard), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockReportService) SalesReport(ctx context.Context, q domain.RangeQuery) (*domain.SalesReport, error) {
	args := m.Called(ctx, q)
	if r := args.Get(0); r != nil {
		return r.(*domain.SalesReport), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockReportService) Transactions(ctx context.Context, f domain.TransactionFilter) (*domain.TransactionsReport, error) {
	args := m.Called(ctx, f)
	if r := args.Get(0); r != nil {
		return r.(*domain.TransactionsReport), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockReportService) RunLowStockScan(ctx context.Context) ([]pDomain.Product, error) {
	args := m.Called(ctx)
	if p := args.Get(0); p != nil {
		return p.([]pDomain.Product), args.Error(1)
	}
	return nil, args.Error(1)
}
