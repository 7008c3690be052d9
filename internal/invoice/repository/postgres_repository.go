package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ridloal/retail-pos/internal/invoice/domain"
	"github.com/ridloal/retail-pos/internal/platform/database"
	"github.com/ridloal/retail-pos/internal/platform/logger"
)

var (
	ErrInvoiceNotFound        = errors.New("invoice not found")
	ErrInvoiceConflict        = errors.New("invoice number already exists")
	ErrDuplicateTransactionID = errors.New("transaction id already exists")
)

type InvoiceRepository interface {
	BeginTx(ctx context.Context) (database.DBTX, error)
	CreateInvoice(ctx context.Context, dbops database.DBTX, invoice *domain.Invoice) error
	GetInvoiceByID(ctx context.Context, id string) (*domain.Invoice, error)
	ListInvoices(ctx context.Context) ([]domain.Invoice, error)
	// DeleteInvoice removes the invoice and its items and returns what was removed.
	DeleteInvoice(ctx context.Context, dbops database.DBTX, id string) (*domain.Invoice, error)

	// Sequencer support. All three run inside the sale transaction.
	IncrementCounter(ctx context.Context, dbops database.DBTX, name string) (int64, bool, error)
	InitCounter(ctx context.Context, dbops database.DBTX, name string, value int64) (int64, error)
	GetHighestInvoiceNumber(ctx context.Context, dbops database.DBTX) (int64, bool, error)
}

type postgresInvoiceRepository struct {
	db *sql.DB
}

func NewPostgresInvoiceRepository(db *sql.DB) InvoiceRepository {
	return &postgresInvoiceRepository{db: db}
}

const invoiceColumns = `id, invoice_id, customer_name, customer_mobile, customer_address, subtotal, total_amount,
       payment_method, payment_details, transaction_id, status, date, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanInvoice(row rowScanner) (*domain.Invoice, error) {
	inv := &domain.Invoice{}
	var address sql.NullString
	var details []byte
	var method, status string
	err := row.Scan(&inv.ID, &inv.InvoiceID, &inv.CustomerName, &inv.CustomerMobile, &address,
		&inv.Subtotal, &inv.TotalAmount, &method, &details, &inv.TransactionID, &status,
		&inv.Date, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if address.Valid {
		inv.CustomerAddress = &address.String
	}
	if len(details) > 0 {
		inv.PaymentDetails = append([]byte(nil), details...)
	}
	inv.PaymentMethod = domain.PaymentMethod(method)
	inv.Status = domain.InvoiceStatus(status)
	inv.Items = []domain.InvoiceItem{}
	return inv, nil
}

func (r *postgresInvoiceRepository) BeginTx(ctx context.Context) (database.DBTX, error) {
	return r.db.BeginTx(ctx, nil)
}

// CreateInvoice inserts the invoice and its items using the caller's
// transaction. Item order is kept through the position column.
func (r *postgresInvoiceRepository) CreateInvoice(ctx context.Context, dbops database.DBTX, invoice *domain.Invoice) error {
	invoiceQuery := `INSERT INTO invoices (id, invoice_id, customer_name, customer_mobile, customer_address, subtotal, total_amount,
                         payment_method, payment_details, transaction_id, status, date, created_at, updated_at)
                     VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
                     RETURNING created_at, updated_at`

	invoice.ID = uuid.NewString()
	invoice.CreatedAt = time.Now()
	invoice.UpdatedAt = invoice.CreatedAt

	var address, details sql.NullString
	if invoice.CustomerAddress != nil {
		address = sql.NullString{String: *invoice.CustomerAddress, Valid: true}
	}
	if len(invoice.PaymentDetails) > 0 {
		details = sql.NullString{String: string(invoice.PaymentDetails), Valid: true}
	}

	err := dbops.QueryRowContext(ctx, invoiceQuery,
		invoice.ID, invoice.InvoiceID, invoice.CustomerName, invoice.CustomerMobile, address,
		invoice.Subtotal, invoice.TotalAmount, string(invoice.PaymentMethod), details,
		invoice.TransactionID, string(invoice.Status), invoice.Date, invoice.CreatedAt, invoice.UpdatedAt,
	).Scan(&invoice.CreatedAt, &invoice.UpdatedAt)
	if err != nil {
		if mapped := uniqueViolation(err); mapped != nil {
			return mapped
		}
		logger.Error("CreateInvoice: failed to insert invoice", err, map[string]interface{}{"invoice_id": invoice.InvoiceID})
		return err
	}

	itemStmt, err := dbops.PrepareContext(ctx, `INSERT INTO invoice_items (id, invoice_ref, position, product_id, name, quantity, price, unit)
                                                VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`)
	if err != nil {
		logger.Error("CreateInvoice: failed to prepare item statement", err)
		return err
	}
	defer itemStmt.Close()

	for i := range invoice.Items {
		item := &invoice.Items[i]
		item.ID = uuid.NewString()
		var productID sql.NullString
		if item.ProductID != nil {
			productID = sql.NullString{String: *item.ProductID, Valid: true}
		}
		_, err = itemStmt.ExecContext(ctx, item.ID, invoice.ID, i, productID, item.Name, item.Quantity, item.Price, item.Unit)
		if err != nil {
			logger.Error("CreateInvoice: failed to insert invoice item", err, map[string]interface{}{"item_name": item.Name})
			return err
		}
	}
	return nil
}

func uniqueViolation(err error) error {
	if database.PgErrorCode(err) != database.CodeUniqueViolation {
		return nil
	}
	if strings.Contains(database.PgConstraint(err), "transaction_id") {
		return ErrDuplicateTransactionID
	}
	return ErrInvoiceConflict
}

func (r *postgresInvoiceRepository) GetInvoiceByID(ctx context.Context, id string) (*domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`
	inv, err := scanInvoice(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvoiceNotFound
		}
		logger.Error("GetInvoiceByID: query failed", err)
		return nil, err
	}
	if err := r.attachItems(ctx, r.db, []*domain.Invoice{inv}); err != nil {
		return nil, err
	}
	return inv, nil
}

// ListInvoices returns every invoice, newest first.
func (r *postgresInvoiceRepository) ListInvoices(ctx context.Context) ([]domain.Invoice, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+invoiceColumns+` FROM invoices ORDER BY created_at DESC`)
	if err != nil {
		logger.Error("ListInvoices: query failed", err)
		return nil, err
	}
	defer rows.Close()

	var refs []*domain.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			logger.Error("ListInvoices: scan failed", err)
			return nil, err
		}
		refs = append(refs, inv)
	}
	if err = rows.Err(); err != nil {
		logger.Error("ListInvoices: rows iteration error", err)
		return nil, err
	}
	rows.Close()

	if err := r.attachItems(ctx, r.db, refs); err != nil {
		return nil, err
	}
	invoices := make([]domain.Invoice, len(refs))
	for i, inv := range refs {
		invoices[i] = *inv
	}
	return invoices, nil
}

type querier interface {
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
}

func (r *postgresInvoiceRepository) attachItems(ctx context.Context, q querier, invoices []*domain.Invoice) error {
	if len(invoices) == 0 {
		return nil
	}
	byID := make(map[string]*domain.Invoice, len(invoices))
	ids := make([]string, 0, len(invoices))
	for _, inv := range invoices {
		byID[inv.ID] = inv
		ids = append(ids, inv.ID)
	}

	query := `SELECT id, invoice_ref, product_id, name, quantity, price, unit
              FROM invoice_items WHERE invoice_ref = ANY($1)
              ORDER BY invoice_ref, position`
	rows, err := q.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		logger.Error("attachItems: query failed", err)
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.InvoiceItem
		var ref string
		var productID, unit sql.NullString
		if err := rows.Scan(&item.ID, &ref, &productID, &item.Name, &item.Quantity, &item.Price, &unit); err != nil {
			logger.Error("attachItems: scan failed", err)
			return err
		}
		if productID.Valid {
			item.ProductID = &productID.String
		}
		item.Unit = unit.String
		if inv, ok := byID[ref]; ok {
			inv.Items = append(inv.Items, item)
		}
	}
	return rows.Err()
}

func (r *postgresInvoiceRepository) DeleteInvoice(ctx context.Context, dbops database.DBTX, id string) (*domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1 FOR UPDATE`
	inv, err := scanInvoice(dbops.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvoiceNotFound
		}
		logger.Error("DeleteInvoice: lookup failed", err, map[string]interface{}{"id": id})
		return nil, err
	}
	if err := r.attachItems(ctx, dbops, []*domain.Invoice{inv}); err != nil {
		return nil, err
	}

	// invoice_items go with the invoice through ON DELETE CASCADE.
	if _, err := dbops.ExecContext(ctx, `DELETE FROM invoices WHERE id = $1`, id); err != nil {
		logger.Error("DeleteInvoice: exec failed", err, map[string]interface{}{"id": id})
		return nil, err
	}
	return inv, nil
}

// IncrementCounter bumps the named counter and returns the new value.
// found is false when the counter row has not been created yet.
func (r *postgresInvoiceRepository) IncrementCounter(ctx context.Context, dbops database.DBTX, name string) (int64, bool, error) {
	var value int64
	err := dbops.QueryRowContext(ctx,
		`UPDATE invoice_counters SET last_value = last_value + 1, updated_at = NOW() WHERE name = $1 RETURNING last_value`,
		name,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		logger.Error("IncrementCounter: exec failed", err, map[string]interface{}{"counter": name})
		return 0, false, err
	}
	return value, true, nil
}

// InitCounter creates the counter at value. If another transaction created
// it first, the existing counter is incremented instead.
func (r *postgresInvoiceRepository) InitCounter(ctx context.Context, dbops database.DBTX, name string, value int64) (int64, error) {
	query := `INSERT INTO invoice_counters (name, last_value, updated_at) VALUES ($1, $2, NOW())
              ON CONFLICT (name) DO UPDATE SET last_value = invoice_counters.last_value + 1, updated_at = NOW()
              RETURNING last_value`
	var stored int64
	if err := dbops.QueryRowContext(ctx, query, name, value).Scan(&stored); err != nil {
		logger.Error("InitCounter: exec failed", err, map[string]interface{}{"counter": name})
		return 0, err
	}
	return stored, nil
}

// GetHighestInvoiceNumber returns the largest purely numeric invoice_id.
// found is false when no invoice has a numeric id.
func (r *postgresInvoiceRepository) GetHighestInvoiceNumber(ctx context.Context, dbops database.DBTX) (int64, bool, error) {
	var highest sql.NullInt64
	err := dbops.QueryRowContext(ctx,
		`SELECT MAX(invoice_id::bigint) FROM invoices WHERE invoice_id ~ '^[0-9]{1,18}$'`,
	).Scan(&highest)
	if err != nil {
		logger.Error("GetHighestInvoiceNumber: query failed", err)
		return 0, false, err
	}
	return highest.Int64, highest.Valid, nil
}
