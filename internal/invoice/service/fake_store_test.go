package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/ridloal/retail-pos/internal/invoice/domain"
	"github.com/ridloal/retail-pos/internal/invoice/repository"
	"github.com/ridloal/retail-pos/internal/platform/database"
	pDomain "github.com/ridloal/retail-pos/internal/product/domain"
	pRepo "github.com/ridloal/retail-pos/internal/product/repository"
)

var errNotSupported = errors.New("not supported by fake store")

// fakeStore keeps products, invoices and the counter in memory and backs
// both repositories. A transaction snapshots the state and restores it on
// rollback, which is enough to observe all-or-nothing behaviour.
type fakeStore struct {
	products map[string]pDomain.Product
	invoices []domain.Invoice
	counters map[string]int64
}

func newFakeStore(products ...pDomain.Product) *fakeStore {
	s := &fakeStore{products: map[string]pDomain.Product{}, counters: map[string]int64{}}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

func (s *fakeStore) stock(id string) int { return s.products[id].StockQuantity }

type fakeSnapshot struct {
	products map[string]pDomain.Product
	invoices []domain.Invoice
	counters map[string]int64
}

func (s *fakeStore) snapshot() fakeSnapshot {
	snap := fakeSnapshot{products: map[string]pDomain.Product{}, counters: map[string]int64{}}
	for k, v := range s.products {
		snap.products[k] = v
	}
	for k, v := range s.counters {
		snap.counters[k] = v
	}
	snap.invoices = append([]domain.Invoice(nil), s.invoices...)
	return snap
}

type fakeTx struct {
	store *fakeStore
	snap  fakeSnapshot
	done  bool
}

func (t *fakeTx) ExecContext(context.Context, string, ...interface{}) (sql.Result, error) {
	return nil, errNotSupported
}

func (t *fakeTx) PrepareContext(context.Context, string) (*sql.Stmt, error) {
	return nil, errNotSupported
}

func (t *fakeTx) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, errNotSupported
}

func (t *fakeTx) QueryRowContext(context.Context, string, ...interface{}) *sql.Row { return nil }

func (t *fakeTx) Commit() error {
	t.done = true
	return nil
}

func (t *fakeTx) Rollback() error {
	if t.done {
		return sql.ErrTxDone
	}
	t.done = true
	t.store.products = t.snap.products
	t.store.invoices = t.snap.invoices
	t.store.counters = t.snap.counters
	return nil
}

func (s *fakeStore) BeginTx(context.Context) (database.DBTX, error) {
	return &fakeTx{store: s, snap: s.snapshot()}, nil
}

// --- product side ---

func (s *fakeStore) ListProducts(context.Context) ([]pDomain.Product, error) {
	var out []pDomain.Product
	for _, p := range s.products {
		out = append(out, p)
	}
	return out, nil
}

func (s *fakeStore) GetProductByID(_ context.Context, id string) (*pDomain.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, pRepo.ErrProductNotFound
	}
	return &p, nil
}

func (s *fakeStore) FindProductByName(_ context.Context, name string) (*pDomain.Product, error) {
	for _, p := range s.products {
		if p.Name == name {
			p := p
			return &p, nil
		}
	}
	return nil, pRepo.ErrProductNotFound
}

func (s *fakeStore) FindProductByCode(context.Context, string) (*pDomain.Product, error) {
	return nil, pRepo.ErrProductNotFound
}

func (s *fakeStore) ListLowStock(context.Context, int) ([]pDomain.Product, error) { return nil, nil }

func (s *fakeStore) CreateProduct(context.Context, *pDomain.Product) error { return errNotSupported }

func (s *fakeStore) UpdateProduct(context.Context, *pDomain.Product) error { return errNotSupported }

func (s *fakeStore) DeleteProduct(_ context.Context, id string) error {
	delete(s.products, id)
	return nil
}

func (s *fakeStore) GetProductForUpdate(ctx context.Context, _ database.DBTX, id string) (*pDomain.Product, error) {
	return s.GetProductByID(ctx, id)
}

func (s *fakeStore) GetProductByNameForUpdate(ctx context.Context, _ database.DBTX, name string) (*pDomain.Product, error) {
	return s.FindProductByName(ctx, name)
}

func (s *fakeStore) LockExistingProducts(_ context.Context, _ database.DBTX, ids []string) (map[string]bool, error) {
	out := map[string]bool{}
	for _, id := range ids {
		if _, ok := s.products[id]; ok {
			out[id] = true
		}
	}
	return out, nil
}

func (s *fakeStore) DecreaseStock(_ context.Context, _ database.DBTX, id string, amount int) error {
	p, ok := s.products[id]
	if !ok || p.StockQuantity-amount < 0 {
		return pRepo.ErrInsufficientStock
	}
	p.StockQuantity -= amount
	s.products[id] = p
	return nil
}

func (s *fakeStore) IncreaseStock(_ context.Context, _ database.DBTX, id string, amount int) error {
	p, ok := s.products[id]
	if !ok {
		return pRepo.ErrProductNotFound
	}
	p.StockQuantity += amount
	s.products[id] = p
	return nil
}

// --- invoice side ---

type fakeInvoices struct{ *fakeStore }

func (f fakeInvoices) CreateInvoice(_ context.Context, _ database.DBTX, inv *domain.Invoice) error {
	for _, existing := range f.invoices {
		if existing.TransactionID == inv.TransactionID {
			return repository.ErrDuplicateTransactionID
		}
		if existing.InvoiceID == inv.InvoiceID {
			return repository.ErrInvoiceConflict
		}
	}
	inv.ID = uuid.NewString()
	inv.CreatedAt = time.Now().Add(time.Duration(len(f.invoices)) * time.Millisecond)
	inv.UpdatedAt = inv.CreatedAt
	f.invoices = append(f.invoices, *inv)
	return nil
}

func (f fakeInvoices) GetInvoiceByID(_ context.Context, id string) (*domain.Invoice, error) {
	for _, inv := range f.invoices {
		if inv.ID == id {
			inv := inv
			return &inv, nil
		}
	}
	return nil, repository.ErrInvoiceNotFound
}

func (f fakeInvoices) ListInvoices(context.Context) ([]domain.Invoice, error) {
	out := append([]domain.Invoice(nil), f.invoices...)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f fakeInvoices) DeleteInvoice(_ context.Context, _ database.DBTX, id string) (*domain.Invoice, error) {
	for i, inv := range f.invoices {
		if inv.ID == id {
			f.invoices = append(f.invoices[:i:i], f.invoices[i+1:]...)
			return &inv, nil
		}
	}
	return nil, repository.ErrInvoiceNotFound
}

func (f fakeInvoices) IncrementCounter(_ context.Context, _ database.DBTX, name string) (int64, bool, error) {
	v, ok := f.counters[name]
	if !ok {
		return 0, false, nil
	}
	f.counters[name] = v + 1
	return v + 1, true, nil
}

func (f fakeInvoices) InitCounter(_ context.Context, _ database.DBTX, name string, value int64) (int64, error) {
	if v, ok := f.counters[name]; ok {
		f.counters[name] = v + 1
		return v + 1, nil
	}
	f.counters[name] = value
	return value, nil
}

func (f fakeInvoices) GetHighestInvoiceNumber(context.Context, database.DBTX) (int64, bool, error) {
	var highest int64
	found := false
	for _, inv := range f.invoices {
		n, err := strconv.ParseUint(inv.InvoiceID, 10, 63)
		if err != nil {
			continue
		}
		if !found || int64(n) > highest {
			highest, found = int64(n), true
		}
	}
	return highest, found, nil
}

func parseInvoiceID(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}
