package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/ridloal/retail-pos/internal/invoice/domain"
	"github.com/ridloal/retail-pos/internal/platform/database"
)

type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) BeginTx(ctx context.Context) (database.DBTX, error) {
	args := m.Called(ctx)
	if tx := args.Get(0); tx != nil {
		return tx.(database.DBTX), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockInvoiceRepository) CreateInvoice(ctx context.Context, dbops database.DBTX, invoice *domain.Invoice) error {
	args := m.Called(ctx, dbops, invoice)
	if invoice != nil && args.Error(0) == nil {
		invoice.ID = "mock-invoice-id"
		invoice.CreatedAt = time.Now()
		invoice.UpdatedAt = invoice.CreatedAt
	}
	return args.Error(0)
}

func (m *MockInvoiceRepository) GetInvoiceByID(ctx context.Context, id string) (*domain.Invoice, error) {
	args := m.Called(ctx, id)
	if inv := args.Get(0); inv != nil {
		return inv.(*domain.Invoice), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockInvoiceRepository) ListInvoices(ctx context.Context) ([]domain.Invoice, error) {
	args := m.Called(ctx)
	if invs := args.Get(0); invs != nil {
		return invs.([]domain.Invoice), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockInvoiceRepository) DeleteInvoice(ctx context.Context, dbops database.DBTX, id string) (*domain.Invoice, error) {
	args := m.Called(ctx, dbops, id)
	if inv := args.Get(0); inv != nil {
		return inv.(*domain.Invoice), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockInvoiceRepository) IncrementCounter(ctx context.Context, dbops database.DBTX, name string) (int64, bool, error) {
	args := m.Called(ctx, dbops, name)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

func (m *MockInvoiceRepository) InitCounter(ctx context.Context, dbops database.DBTX, name string, value int64) (int64, error) {
	args := m.Called(ctx, dbops, name, value)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) GetHighestInvoiceNumber(ctx context.Context, dbops database.DBTX) (int64, bool, error) {
	args := m.Called(ctx, dbops)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}
