package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ridloal/retail-pos/internal/platform/cache"
	"github.com/ridloal/retail-pos/internal/platform/logger"
	"github.com/ridloal/retail-pos/internal/product/domain"
	"github.com/ridloal/retail-pos/internal/product/repository"
)

const productListTTL = 5 * time.Minute

var ErrInvalidProduct = errors.New("invalid product")

type ProductService interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	LookupProduct(ctx context.Context, code string) (*domain.Product, error)
	CreateProduct(ctx context.Context, req domain.ProductRequest) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id string, req domain.ProductRequest) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) (*domain.Product, error)
}

type productServiceImpl struct {
	repo  repository.ProductRepository
	cache cache.Cache
}

func NewProductService(repo repository.ProductRepository, c cache.Cache) ProductService {
	if c == nil {
		c = cache.NewNoop()
	}
	return &productServiceImpl{repo: repo, cache: c}
}

func (s *productServiceImpl) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var cached []domain.Product
	if hit, err := s.cache.Get(ctx, cache.ProductListKey, &cached); err == nil && hit {
		return cached, nil
	} else if err != nil {
		logger.Warn("ListProducts: cache read failed, falling back to database: " + err.Error())
	}

	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, cache.ProductListKey, products, productListTTL); err != nil {
		logger.Warn("ListProducts: cache write failed: " + err.Error())
	}
	return products, nil
}

func (s *productServiceImpl) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.GetProductByID(ctx, id)
}

// LookupProduct resolves a scanned barcode, QR code or tag number.
func (s *productServiceImpl) LookupProduct(ctx context.Context, code string) (*domain.Product, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("%w: lookup code is required", ErrInvalidProduct)
	}
	return s.repo.FindProductByCode(ctx, code)
}

func (s *productServiceImpl) CreateProduct(ctx context.Context, req domain.ProductRequest) (*domain.Product, error) {
	p, err := buildProduct(req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateProduct(ctx, p); err != nil {
		logger.Error("Svc.CreateProduct: repo error", err, nil)
		return nil, err
	}
	s.invalidate(ctx)
	return p, nil
}

// UpdateProduct replaces every editable field, stock included. Direct
// inventory edits are the third way stock changes besides sale and deletion.
func (s *productServiceImpl) UpdateProduct(ctx context.Context, id string, req domain.ProductRequest) (*domain.Product, error) {
	p, err := buildProduct(req)
	if err != nil {
		return nil, err
	}
	p.ID = id
	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		if !errors.Is(err, repository.ErrProductNotFound) {
			logger.Error("Svc.UpdateProduct: repo error", err, map[string]interface{}{"product_id": id})
		}
		return nil, err
	}
	s.invalidate(ctx)
	return p, nil
}

func (s *productServiceImpl) DeleteProduct(ctx context.Context, id string) (*domain.Product, error) {
	p, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return p, nil
}

func (s *productServiceImpl) invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, cache.ProductListKey, cache.DashboardKey); err != nil {
		logger.Warn("product cache invalidation failed: " + err.Error())
	}
}

func buildProduct(req domain.ProductRequest) (*domain.Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	if req.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price cannot be negative", ErrInvalidProduct)
	}
	if req.StockQuantity < 0 {
		return nil, fmt.Errorf("%w: stock quantity cannot be negative", ErrInvalidProduct)
	}
	unit, ok := domain.ParseUnit(req.Unit)
	if !ok {
		return nil, fmt.Errorf("%w: unit must be one of piece, kg, gram, pack, litre", ErrInvalidProduct)
	}
	return &domain.Product{
		Name:          name,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
		Unit:          unit,
		Barcode:       trimmed(req.Barcode),
		QRCode:        trimmed(req.QRCode),
		TagNo:         trimmed(req.TagNo),
	}, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
