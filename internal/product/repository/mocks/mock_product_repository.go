package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ridloal/retail-pos/internal/platform/database"
	pDomain "github.com/ridloal/retail-pos/internal/product/domain"
)

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) ListProducts(ctx context.Context) ([]pDomain.Product, error) {
	args := m.Called(ctx)
	if res := args.Get(0); res != nil {
		return res.([]pDomain.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductRepository) GetProductByID(ctx context.Context, id string) (*pDomain.Product, error) {
	args := m.Called(ctx, id)
	if res := args.Get(0); res != nil {
		return res.(*pDomain.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductRepository) FindProductByName(ctx context.Context, name string) (*pDomain.Product, error) {
	args := m.Called(ctx, name)
	if res := args.Get(0); res != nil {
		return res.(*pDomain.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductRepository) FindProductByCode(ctx context.Context, code string) (*pDomain.Product, error) {
	args := m.Called(ctx, code)
	if res := args.Get(0); res != nil {
		return res.(*pDomain.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductRepository) ListLowStock(ctx context.Context, threshold int) ([]pDomain.Product, error) {
	args := m.Called(ctx, threshold)
	if res := args.Get(0); res != nil {
		return res.([]pDomain.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductRepository) CreateProduct(ctx context.Context, product *pDomain.Product) error {
	args := m.Called(ctx, product)
	if product != nil && args.Error(0) == nil {
		product.ID = "mock-product-id"
	}
	return args.Error(0)
}

func (m *MockProductRepository) UpdateProduct(ctx context.Context, product *pDomain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) DeleteProduct(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) BeginTx(ctx context.Context) (database.DBTX, error) {
	args := m.Called(ctx)
	if tx := args.Get(0); tx != nil {
		return tx.(database.DBTX), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductRepository) GetProductForUpdate(ctx context.Context, dbops database.DBTX, id string) (*pDomain.Product, error) {
	args := m.Called(ctx, dbops, id)
	if res := args.Get(0); res != nil {
		return res.(*pDomain.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductRepository) GetProductByNameForUpdate(ctx context.Context, dbops database.DBTX, name string) (*pDomain.Product, error) {
	args := m.Called(ctx, dbops, name)
	if res := args.Get(0); res != nil {
		return res.(*pDomain.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductRepository) LockExistingProducts(ctx context.Context, dbops database.DBTX, ids []string) (map[string]bool, error) {
	args := m.Called(ctx, dbops, ids)
	if res := args.Get(0); res != nil {
		return res.(map[string]bool), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductRepository) DecreaseStock(ctx context.Context, dbops database.DBTX, id string, amount int) error {
	args := m.Called(ctx, dbops, id, amount)
	return args.Error(0)
}

func (m *MockProductRepository) IncreaseStock(ctx context.Context, dbops database.DBTX, id string, amount int) error {
	args := m.Called(ctx, dbops, id, amount)
	return args.Error(0)
}
