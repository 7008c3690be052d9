package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	invRepo "github.com/ridloal/retail-pos/internal/invoice/repository"
	"github.com/ridloal/retail-pos/internal/platform/cache"
	"github.com/ridloal/retail-pos/internal/platform/config"
	"github.com/ridloal/retail-pos/internal/platform/logger"
	pDomain "github.com/ridloal/retail-pos/internal/product/domain"
	pRepo "github.com/ridloal/retail-pos/internal/product/repository"
	"github.com/ridloal/retail-pos/internal/report/domain"
)

const dashboardTTL = time.Minute

var ErrInvalidRange = errors.New("invalid report range")

type ReportService interface {
	Dashboard(ctx context.Context) (*domain.Dashboard, error)
	RefreshDashboard(ctx context.Context) (*domain.Dashboard, error)
	SalesReport(ctx context.Context, q domain.RangeQuery) (*domain.SalesReport, error)
	Transactions(ctx context.Context, f domain.TransactionFilter) (*domain.TransactionsReport, error)
	RunLowStockScan(ctx context.Context) ([]pDomain.Product, error)
}

type reportServiceImpl struct {
	invoiceRepo invRepo.InvoiceRepository
	productRepo pRepo.ProductRepository
	cache       cache.Cache
	threshold   int
	loc         *time.Location
	now         func() time.Time
}

func NewReportService(ir invRepo.InvoiceRepository, pr pRepo.ProductRepository, c cache.Cache, cfg config.SalesConfig) ReportService {
	if c == nil {
		c = cache.NewNoop()
	}
	loc := cfg.ReportLocation
	if loc == nil {
		loc = time.Local
	}
	return &reportServiceImpl{
		invoiceRepo: ir,
		productRepo: pr,
		cache:       c,
		threshold:   cfg.LowStockThreshold,
		loc:         loc,
		now:         time.Now,
	}
}

func (s *reportServiceImpl) Dashboard(ctx context.Context) (*domain.Dashboard, error) {
	var cached domain.Dashboard
	if hit, err := s.cache.Get(ctx, cache.DashboardKey, &cached); err == nil && hit {
		return &cached, nil
	} else if err != nil {
		logger.Warn("Dashboard: cache read failed, falling back to database: " + err.Error())
	}
	return s.RefreshDashboard(ctx)
}

// RefreshDashboard recomputes the dashboard and stores it in the cache.
func (s *reportServiceImpl) RefreshDashboard(ctx context.Context) (*domain.Dashboard, error) {
	products, err := s.productRepo.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	invoices, err := s.invoiceRepo.ListInvoices(ctx)
	if err != nil {
		return nil, err
	}

	d := BuildDashboard(products, invoices, s.threshold, s.now(), s.loc)
	if err := s.cache.Set(ctx, cache.DashboardKey, d, dashboardTTL); err != nil {
		logger.Warn("RefreshDashboard: cache write failed: " + err.Error())
	}
	return &d, nil
}

func (s *reportServiceImpl) SalesReport(ctx context.Context, q domain.RangeQuery) (*domain.SalesReport, error) {
	if err := validateRange(q); err != nil {
		return nil, err
	}
	invoices, err := s.invoiceRepo.ListInvoices(ctx)
	if err != nil {
		return nil, err
	}

	selected := FilterByRange(invoices, q, s.now(), s.loc)
	return &domain.SalesReport{
		Range:          q.Kind,
		Summary:        Summarize(selected),
		PaymentMethods: PaymentDistribution(selected),
		Buckets:        Buckets(q.Kind, selected, s.loc),
		Transactions:   selected,
	}, nil
}

func validateRange(q domain.RangeQuery) error {
	switch q.Kind {
	case domain.RangeDaily, domain.RangeWeekly, domain.RangeMonthly, domain.RangeYearly,
		domain.RangeThisWeek, domain.RangeThisMonth, domain.RangeThisYear, domain.RangeAll:
	default:
		return fmt.Errorf("%w: unknown range %q", ErrInvalidRange, q.Kind)
	}
	if q.Month < 0 || q.Month > 12 {
		return fmt.Errorf("%w: month must be between 1 and 12", ErrInvalidRange)
	}
	if q.Week < 0 || q.Week > 53 {
		return fmt.Errorf("%w: week must be between 1 and 53", ErrInvalidRange)
	}
	if q.Year < 0 {
		return fmt.Errorf("%w: year must be positive", ErrInvalidRange)
	}
	return nil
}

func (s *reportServiceImpl) Transactions(ctx context.Context, f domain.TransactionFilter) (*domain.TransactionsReport, error) {
	invoices, err := s.invoiceRepo.ListInvoices(ctx)
	if err != nil {
		return nil, err
	}
	selected := FilterTransactions(invoices, f, s.loc)
	return &domain.TransactionsReport{
		Summary:        Summarize(selected),
		PaymentMethods: PaymentDistribution(selected),
		Transactions:   selected,
	}, nil
}

// RunLowStockScan logs every product at or below the threshold and
// refreshes the cached dashboard.
func (s *reportServiceImpl) RunLowStockScan(ctx context.Context) ([]pDomain.Product, error) {
	products, err := s.productRepo.ListLowStock(ctx, s.threshold)
	if err != nil {
		logger.Error("RunLowStockScan: failed to list low stock products", err, nil)
		return nil, err
	}

	for _, p := range products {
		if p.StockQuantity <= 0 {
			logger.Warn("Out of stock", map[string]interface{}{"product_id": p.ID, "name": p.Name})
			continue
		}
		logger.Warn("Low stock", map[string]interface{}{"product_id": p.ID, "name": p.Name, "stock": p.StockQuantity})
	}
	logger.Info(fmt.Sprintf("RunLowStockScan: %d products at or below %d", len(products), s.threshold))

	if _, err := s.RefreshDashboard(ctx); err != nil {
		logger.Error("RunLowStockScan: dashboard refresh failed", err, nil)
	}
	return products, nil
}

// StockScheduler runs the low-stock scan on a cron spec with seconds.
type StockScheduler struct {
	cron *cron.Cron
	svc  ReportService
	spec string
}

func NewStockScheduler(svc ReportService, spec string) *StockScheduler {
	return &StockScheduler{
		cron: cron.New(cron.WithSeconds()),
		svc:  svc,
		spec: spec,
	}
}

func (s *StockScheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, func() {
		logger.Info("Scheduler: Running low stock scan...")
		// Background job, no request context.
		_, _ = s.svc.RunLowStockScan(context.Background())
	})
	if err != nil {
		return fmt.Errorf("invalid stock scan spec %q: %w", s.spec, err)
	}
	s.cron.Start()
	logger.Info(fmt.Sprintf("Low stock scheduler started with spec '%s'", s.spec))
	return nil
}

// Stop waits for a running scan to finish.
func (s *StockScheduler) Stop() {
	<-s.cron.Stop().Done()
}
