package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ridloal/retail-pos/internal/invoice/domain"
	"github.com/ridloal/retail-pos/internal/invoice/repository"
	"github.com/ridloal/retail-pos/internal/platform/cache"
	"github.com/ridloal/retail-pos/internal/platform/config"
	"github.com/ridloal/retail-pos/internal/platform/database"
	"github.com/ridloal/retail-pos/internal/platform/logger"
	pDomain "github.com/ridloal/retail-pos/internal/product/domain"
	pRepo "github.com/ridloal/retail-pos/internal/product/repository"
)

const maxSaleAttempts = 3

type InvoiceService interface {
	CreateSale(ctx context.Context, req domain.CreateSaleRequest) (*domain.Invoice, error)
	DeleteSale(ctx context.Context, id string) (*domain.DeleteSaleResponse, error)
	ListSales(ctx context.Context) ([]domain.Invoice, error)
	GetSale(ctx context.Context, id string) (*domain.Invoice, error)
	GetReceipt(ctx context.Context, id string) (*domain.Receipt, error)
}

type invoiceServiceImpl struct {
	invoiceRepo repository.InvoiceRepository
	productRepo pRepo.ProductRepository
	sequencer   *Sequencer
	cache       cache.Cache
	gstRate     decimal.Decimal
	gstin       string
	now         func() time.Time

	mu            sync.Mutex
	lastTxnMillis int64
}

func NewInvoiceService(ir repository.InvoiceRepository, pr pRepo.ProductRepository, c cache.Cache, cfg config.SalesConfig) InvoiceService {
	if c == nil {
		c = cache.NewNoop()
	}
	return &invoiceServiceImpl{
		invoiceRepo: ir,
		productRepo: pr,
		sequencer:   NewSequencer(ir, cfg.InvoiceStart),
		cache:       c,
		gstRate:     cfg.GSTRate,
		gstin:       cfg.GSTIN,
		now:         time.Now,
	}
}

// saleDraft is a validated request. Stock and numbering are settled later,
// inside the transaction.
type saleDraft struct {
	invoice  domain.Invoice
	lines    []domain.CartLine
	override bool
}

// CreateSale stores an invoice and takes its lines out of stock in one
// transaction. Either every line is applied and the invoice exists, or
// nothing changes.
func (s *invoiceServiceImpl) CreateSale(ctx context.Context, req domain.CreateSaleRequest) (*domain.Invoice, error) {
	draft, err := s.buildDraft(req)
	if err != nil {
		return nil, err
	}
	synthesized := draft.invoice.TransactionID == ""

	var lastErr error
	for attempt := 1; attempt <= maxSaleAttempts; attempt++ {
		if synthesized {
			draft.invoice.TransactionID = s.newTransactionID()
		}

		invoice, err := s.createSaleOnce(ctx, draft)
		if err == nil {
			s.invalidate(ctx)
			logger.Info("Sale recorded", map[string]interface{}{
				"invoice_id":     invoice.InvoiceID,
				"transaction_id": invoice.TransactionID,
				"total":          invoice.TotalAmount.String(),
				"lines":          len(invoice.Items),
			})
			return invoice, nil
		}

		switch {
		case errors.Is(err, repository.ErrDuplicateTransactionID) && !synthesized:
			return nil, fmt.Errorf("%w: transaction id %s is already used by another invoice", ErrConflict, draft.invoice.TransactionID)
		case errors.Is(err, repository.ErrDuplicateTransactionID),
			errors.Is(err, repository.ErrInvoiceConflict),
			database.IsTransient(err):
			lastErr = err
			logger.Warn(fmt.Sprintf("CreateSale: attempt %d of %d failed, retrying", attempt, maxSaleAttempts), map[string]interface{}{"reason": err.Error()})
		default:
			return nil, err
		}
	}
	logger.Error("CreateSale: giving up after retries", lastErr)
	return nil, fmt.Errorf("%w: could not record the sale after %d attempts", ErrConflict, maxSaleAttempts)
}

func (s *invoiceServiceImpl) createSaleOnce(ctx context.Context, draft saleDraft) (*domain.Invoice, error) {
	tx, err := s.invoiceRepo.BeginTx(ctx)
	if err != nil {
		logger.Error("Svc.CreateSale: begin tx failed", err)
		return nil, err
	}
	defer tx.Rollback()

	products, err := s.reserveStock(ctx, tx, draft.lines)
	if err != nil {
		return nil, err
	}

	invoice := draft.invoice
	invoice.Items = make([]domain.InvoiceItem, len(draft.lines))
	subtotal := decimal.Zero
	for i, line := range draft.lines {
		invoice.Items[i] = itemFromLine(line, products[i])
		subtotal = subtotal.Add(invoice.Items[i].LineTotal())
	}
	if !draft.override {
		invoice.Subtotal = subtotal
		invoice.TotalAmount = subtotal
	}

	invoice.InvoiceID, err = s.sequencer.Next(ctx, tx)
	if err != nil {
		logger.Error("Svc.CreateSale: invoice number assignment failed", err)
		return nil, err
	}

	if err := s.invoiceRepo.CreateInvoice(ctx, tx, &invoice); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		logger.Error("Svc.CreateSale: commit tx failed", err)
		return nil, err
	}
	return &invoice, nil
}

// reserveStock locks the product of every line and checks all of them
// before the first decrement. A product named on several lines must cover
// their combined quantity.
func (s *invoiceServiceImpl) reserveStock(ctx context.Context, tx database.DBTX, lines []domain.CartLine) ([]*pDomain.Product, error) {
	products := make([]*pDomain.Product, len(lines))
	wanted := make(map[string]int, len(lines))

	for i, line := range lines {
		p, err := s.lockProduct(ctx, tx, line)
		if err != nil {
			if errors.Is(err, pRepo.ErrProductNotFound) {
				return nil, &LineError{Line: i + 1, Ref: lineRef(line), Err: ErrProductNotFound}
			}
			return nil, err
		}
		wanted[p.ID] += line.Quantity
		if wanted[p.ID] > p.StockQuantity {
			return nil, &LineError{Line: i + 1, Ref: p.Name, Requested: wanted[p.ID], Available: p.StockQuantity, Err: ErrInsufficientStock}
		}
		products[i] = p
	}

	for i, line := range lines {
		err := s.productRepo.DecreaseStock(ctx, tx, products[i].ID, line.Quantity)
		if err != nil {
			if errors.Is(err, pRepo.ErrInsufficientStock) {
				return nil, &LineError{Line: i + 1, Ref: products[i].Name, Requested: line.Quantity, Available: products[i].StockQuantity, Err: ErrInsufficientStock}
			}
			return nil, err
		}
	}
	return products, nil
}

func (s *invoiceServiceImpl) lockProduct(ctx context.Context, tx database.DBTX, line domain.CartLine) (*pDomain.Product, error) {
	if line.ProductID != "" {
		if _, err := uuid.Parse(line.ProductID); err != nil {
			return nil, pRepo.ErrProductNotFound
		}
		return s.productRepo.GetProductForUpdate(ctx, tx, line.ProductID)
	}
	return s.productRepo.GetProductByNameForUpdate(ctx, tx, line.Name)
}

func itemFromLine(line domain.CartLine, p *pDomain.Product) domain.InvoiceItem {
	item := domain.InvoiceItem{
		Name:     line.Name,
		Quantity: line.Quantity,
		Price:    p.Price,
		Unit:     line.Unit,
	}
	productID := p.ID
	item.ProductID = &productID
	if line.Price != nil {
		item.Price = *line.Price
	}
	if item.Name == "" {
		item.Name = p.Name
	}
	if item.Unit == "" {
		item.Unit = string(p.Unit)
	}
	return item
}

func lineRef(line domain.CartLine) string {
	if line.ProductID != "" {
		return line.ProductID
	}
	return line.Name
}

func (s *invoiceServiceImpl) buildDraft(req domain.CreateSaleRequest) (saleDraft, error) {
	var draft saleDraft

	mobile := strings.TrimSpace(req.CustomerMobile)
	if mobile == "" {
		return draft, fmt.Errorf("%w: customer mobile number is required", ErrValidation)
	}
	name := strings.TrimSpace(req.CustomerName)
	if name == "" {
		return draft, fmt.Errorf("%w: customer name is required", ErrValidation)
	}
	if len(req.Items) == 0 {
		return draft, fmt.Errorf("%w: a sale needs at least one item", ErrValidation)
	}

	method, ok := domain.ParsePaymentMethod(req.PaymentMethod)
	if !ok {
		return draft, fmt.Errorf("%w: unknown payment method %q", ErrValidation, req.PaymentMethod)
	}
	status, ok := domain.ParseStatus(req.Status)
	if !ok {
		return draft, fmt.Errorf("%w: unknown status %q", ErrValidation, req.Status)
	}

	lines := make([]domain.CartLine, len(req.Items))
	for i, line := range req.Items {
		line.ProductID = strings.TrimSpace(line.ProductID)
		line.Name = strings.TrimSpace(line.Name)
		line.Unit = strings.TrimSpace(line.Unit)
		if line.ProductID == "" && line.Name == "" {
			return draft, fmt.Errorf("%w: line %d needs a product id or name", ErrValidation, i+1)
		}
		if line.Quantity <= 0 {
			return draft, fmt.Errorf("%w: quantity for %s must be a positive whole number (line %d)", ErrValidation, lineRef(line), i+1)
		}
		if line.Price != nil && line.Price.IsNegative() {
			return draft, fmt.Errorf("%w: price for %s cannot be negative (line %d)", ErrValidation, lineRef(line), i+1)
		}
		lines[i] = line
	}

	var details json.RawMessage
	if trimmedDetails := bytes.TrimSpace(req.PaymentDetails); len(trimmedDetails) > 0 && !bytes.Equal(trimmedDetails, []byte("null")) {
		if !json.Valid(trimmedDetails) {
			return draft, fmt.Errorf("%w: payment details must be valid JSON", ErrValidation)
		}
		details = append(json.RawMessage(nil), trimmedDetails...)
	}

	date := s.now()
	if req.Date != nil && !req.Date.IsZero() {
		date = *req.Date
	}

	draft.lines = lines
	draft.invoice = domain.Invoice{
		CustomerName:    name,
		CustomerMobile:  mobile,
		CustomerAddress: trimmedPtr(req.CustomerAddress),
		PaymentMethod:   method,
		PaymentDetails:  details,
		TransactionID:   strings.TrimSpace(req.TransactionID),
		Status:          status,
		Date:            date,
	}

	// Caller totals are taken only as a pair of non-zero amounts.
	if req.Subtotal != nil && req.TotalAmount != nil && !req.Subtotal.IsZero() && !req.TotalAmount.IsZero() {
		if req.Subtotal.IsNegative() || req.TotalAmount.IsNegative() {
			return draft, fmt.Errorf("%w: subtotal and total cannot be negative", ErrValidation)
		}
		draft.override = true
		draft.invoice.Subtotal = *req.Subtotal
		draft.invoice.TotalAmount = *req.TotalAmount
	}
	return draft, nil
}

// newTransactionID returns TXN followed by epoch milliseconds, bumped past
// the previous value so retries in the same millisecond differ.
func (s *invoiceServiceImpl) newTransactionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ms := s.now().UnixMilli()
	if ms <= s.lastTxnMillis {
		ms = s.lastTxnMillis + 1
	}
	s.lastTxnMillis = ms
	return fmt.Sprintf("TXN%d", ms)
}

// DeleteSale removes the invoice and puts its quantities back in stock in
// one transaction. Lines whose product no longer exists are skipped.
func (s *invoiceServiceImpl) DeleteSale(ctx context.Context, id string) (*domain.DeleteSaleResponse, error) {
	tx, err := s.invoiceRepo.BeginTx(ctx)
	if err != nil {
		logger.Error("Svc.DeleteSale: begin tx failed", err)
		return nil, err
	}
	defer tx.Rollback()

	invoice, err := s.invoiceRepo.DeleteInvoice(ctx, tx, id)
	if err != nil {
		if errors.Is(err, repository.ErrInvoiceNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrInvoiceNotFound, id)
		}
		return nil, err
	}

	var ids []string
	seen := make(map[string]bool)
	for _, item := range invoice.Items {
		if item.ProductID != nil && !seen[*item.ProductID] {
			seen[*item.ProductID] = true
			ids = append(ids, *item.ProductID)
		}
	}
	existing, err := s.productRepo.LockExistingProducts(ctx, tx, ids)
	if err != nil {
		return nil, err
	}

	resp := &domain.DeleteSaleResponse{
		Message:  "Invoice deleted successfully",
		Restored: []domain.RestoredStock{},
	}
	for _, item := range invoice.Items {
		if item.ProductID == nil || !existing[*item.ProductID] {
			resp.SkippedItems = append(resp.SkippedItems, item.Name)
			continue
		}
		if err := s.productRepo.IncreaseStock(ctx, tx, *item.ProductID, item.Quantity); err != nil {
			logger.Error("Svc.DeleteSale: stock restore failed", err, map[string]interface{}{"product_id": *item.ProductID})
			return nil, err
		}
		resp.Restored = append(resp.Restored, domain.RestoredStock{ProductID: *item.ProductID, Quantity: item.Quantity})
	}

	if err := tx.Commit(); err != nil {
		logger.Error("Svc.DeleteSale: commit tx failed", err)
		return nil, err
	}
	s.invalidate(ctx)

	if len(resp.SkippedItems) > 0 {
		logger.Info(fmt.Sprintf("DeleteSale: invoice %s removed, %d line(s) had no product to restore", invoice.InvoiceID, len(resp.SkippedItems)))
	}
	resp.DeletedInvoice = *invoice
	return resp, nil
}

func (s *invoiceServiceImpl) ListSales(ctx context.Context) ([]domain.Invoice, error) {
	invoices, err := s.invoiceRepo.ListInvoices(ctx)
	if err != nil {
		return nil, err
	}
	if invoices == nil {
		invoices = []domain.Invoice{}
	}
	return invoices, nil
}

func (s *invoiceServiceImpl) GetSale(ctx context.Context, id string) (*domain.Invoice, error) {
	invoice, err := s.invoiceRepo.GetInvoiceByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrInvoiceNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrInvoiceNotFound, id)
		}
		return nil, err
	}
	return invoice, nil
}

func (s *invoiceServiceImpl) GetReceipt(ctx context.Context, id string) (*domain.Receipt, error) {
	invoice, err := s.GetSale(ctx, id)
	if err != nil {
		return nil, err
	}
	return BuildReceipt(*invoice, s.gstRate, s.gstin, s.now()), nil
}

func (s *invoiceServiceImpl) invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, cache.ProductListKey, cache.DashboardKey); err != nil {
		logger.Warn("invoice cache invalidation failed: " + err.Error())
	}
}

func trimmedPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
