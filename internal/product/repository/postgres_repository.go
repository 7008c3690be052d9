package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ridloal/retail-pos/internal/platform/database"
	"github.com/ridloal/retail-pos/internal/platform/logger"
	"github.com/ridloal/retail-pos/internal/product/domain"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrStockOutOfBounds  = errors.New("update results in negative stock quantity")
)

type ProductRepository interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProductByID(ctx context.Context, id string) (*domain.Product, error)
	FindProductByName(ctx context.Context, name string) (*domain.Product, error)
	FindProductByCode(ctx context.Context, code string) (*domain.Product, error)
	ListLowStock(ctx context.Context, threshold int) ([]domain.Product, error)
	CreateProduct(ctx context.Context, product *domain.Product) error
	UpdateProduct(ctx context.Context, product *domain.Product) error
	DeleteProduct(ctx context.Context, id string) error

	// Stock methods below run inside a transaction owned by the caller.
	BeginTx(ctx context.Context) (database.DBTX, error)
	GetProductForUpdate(ctx context.Context, dbops database.DBTX, id string) (*domain.Product, error)
	GetProductByNameForUpdate(ctx context.Context, dbops database.DBTX, name string) (*domain.Product, error)
	LockExistingProducts(ctx context.Context, dbops database.DBTX, ids []string) (map[string]bool, error)
	DecreaseStock(ctx context.Context, dbops database.DBTX, id string, amount int) error
	IncreaseStock(ctx context.Context, dbops database.DBTX, id string, amount int) error
}

type postgresProductRepository struct {
	db *sql.DB
}

func NewPostgresProductRepository(db *sql.DB) ProductRepository {
	return &postgresProductRepository{db: db}
}

const productColumns = `id, name, price, stock_quantity, unit, barcode, qr_code, tag_no, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var p domain.Product
	var unit string
	var barcode, qrCode, tagNo sql.NullString
	err := row.Scan(&p.ID, &p.Name, &p.Price, &p.StockQuantity, &unit, &barcode, &qrCode, &tagNo, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Unit = domain.Unit(unit)
	p.Barcode = fromNullString(barcode)
	p.QRCode = fromNullString(qrCode)
	p.TagNo = fromNullString(tagNo)
	return &p, nil
}

func (r *postgresProductRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC`
	return r.queryProducts(ctx, "ListProducts", query)
}

func (r *postgresProductRepository) ListLowStock(ctx context.Context, threshold int) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE stock_quantity <= $1 ORDER BY stock_quantity ASC, name ASC`
	return r.queryProducts(ctx, "ListLowStock", query, threshold)
}

func (r *postgresProductRepository) queryProducts(ctx context.Context, op, query string, args ...interface{}) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.Error(op+": query failed", err)
		return nil, err
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			logger.Error(op+": scan failed", err)
			return nil, err
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		logger.Error(op+": rows iteration error", err)
		return nil, err
	}
	return products, nil
}

func (r *postgresProductRepository) getOne(ctx context.Context, q database.DBTX, op, query string, args ...interface{}) (*domain.Product, error) {
	var row *sql.Row
	if q != nil {
		row = q.QueryRowContext(ctx, query, args...)
	} else {
		row = r.db.QueryRowContext(ctx, query, args...)
	}
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		logger.Error(op+": query failed", err)
		return nil, err
	}
	return p, nil
}

func (r *postgresProductRepository) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	return r.getOne(ctx, nil, "GetProductByID", query, id)
}

// FindProductByName matches the exact name. With duplicates the oldest product wins.
func (r *postgresProductRepository) FindProductByName(ctx context.Context, name string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE name = $1 ORDER BY created_at ASC LIMIT 1`
	return r.getOne(ctx, nil, "FindProductByName", query, name)
}

func (r *postgresProductRepository) FindProductByCode(ctx context.Context, code string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products
              WHERE barcode = $1 OR qr_code = $1 OR tag_no = $1
              ORDER BY created_at ASC LIMIT 1`
	return r.getOne(ctx, nil, "FindProductByCode", query, code)
}

func (r *postgresProductRepository) CreateProduct(ctx context.Context, product *domain.Product) error {
	query := `INSERT INTO products (id, name, price, stock_quantity, unit, barcode, qr_code, tag_no, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING created_at, updated_at`

	product.ID = uuid.NewString()
	product.CreatedAt = time.Now()
	product.UpdatedAt = product.CreatedAt

	err := r.db.QueryRowContext(ctx, query,
		product.ID, product.Name, product.Price, product.StockQuantity, string(product.Unit),
		toNullString(product.Barcode), toNullString(product.QRCode), toNullString(product.TagNo),
		product.CreatedAt, product.UpdatedAt,
	).Scan(&product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		if database.PgErrorCode(err) == database.CodeCheckViolation {
			return ErrStockOutOfBounds
		}
		logger.Error("CreateProduct: failed to insert product", err)
		return err
	}
	return nil
}

func (r *postgresProductRepository) UpdateProduct(ctx context.Context, product *domain.Product) error {
	query := `UPDATE products
              SET name = $1, price = $2, stock_quantity = $3, unit = $4, barcode = $5, qr_code = $6, tag_no = $7, updated_at = NOW()
              WHERE id = $8
              RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		product.Name, product.Price, product.StockQuantity, string(product.Unit),
		toNullString(product.Barcode), toNullString(product.QRCode), toNullString(product.TagNo),
		product.ID,
	).Scan(&product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProductNotFound
		}
		if database.PgErrorCode(err) == database.CodeCheckViolation {
			return ErrStockOutOfBounds
		}
		logger.Error("UpdateProduct: exec failed", err, map[string]interface{}{"product_id": product.ID})
		return err
	}
	return nil
}

// DeleteProduct removes the product only. Invoice items keep their copy of
// name, price and unit, and their product_id simply stops resolving.
func (r *postgresProductRepository) DeleteProduct(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		logger.Error("DeleteProduct: exec failed", err, map[string]interface{}{"product_id": id})
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// --- Transactional Stock Methods ---
func (r *postgresProductRepository) BeginTx(ctx context.Context) (database.DBTX, error) {
	return r.db.BeginTx(ctx, nil)
}

func (r *postgresProductRepository) GetProductForUpdate(ctx context.Context, dbops database.DBTX, id string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 FOR UPDATE`
	return r.getOne(ctx, dbops, "GetProductForUpdate", query, id)
}

func (r *postgresProductRepository) GetProductByNameForUpdate(ctx context.Context, dbops database.DBTX, name string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE name = $1 ORDER BY created_at ASC LIMIT 1 FOR UPDATE`
	return r.getOne(ctx, dbops, "GetProductByNameForUpdate", query, name)
}

// LockExistingProducts locks the rows of ids that still exist, in id order so
// concurrent callers acquire locks in the same sequence.
func (r *postgresProductRepository) LockExistingProducts(ctx context.Context, dbops database.DBTX, ids []string) (map[string]bool, error) {
	existing := make(map[string]bool, len(ids))
	if len(ids) == 0 {
		return existing, nil
	}
	rows, err := dbops.QueryContext(ctx, `SELECT id FROM products WHERE id = ANY($1) ORDER BY id FOR UPDATE`, pq.Array(ids))
	if err != nil {
		logger.Error("LockExistingProducts: query failed", err)
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			logger.Error("LockExistingProducts: scan failed", err)
			return nil, err
		}
		existing[id] = true
	}
	return existing, rows.Err()
}

// DecreaseStock only succeeds when the result stays at or above zero.
func (r *postgresProductRepository) DecreaseStock(ctx context.Context, dbops database.DBTX, id string, amount int) error {
	query := `UPDATE products SET stock_quantity = stock_quantity - $1, updated_at = NOW()
              WHERE id = $2 AND (stock_quantity - $1) >= 0`
	res, err := dbops.ExecContext(ctx, query, amount, id)
	if err != nil {
		if database.PgErrorCode(err) == database.CodeCheckViolation {
			logger.Error("DecreaseStock: check violation", err, nil)
			return ErrInsufficientStock
		}
		logger.Error("DecreaseStock: exec failed", err, nil)
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return ErrInsufficientStock // or the product disappeared, the lock makes that unlikely
	}
	return nil
}

func (r *postgresProductRepository) IncreaseStock(ctx context.Context, dbops database.DBTX, id string, amount int) error {
	query := `UPDATE products SET stock_quantity = stock_quantity + $1, updated_at = NOW() WHERE id = $2`
	res, err := dbops.ExecContext(ctx, query, amount, id)
	if err != nil {
		if database.PgErrorCode(err) == database.CodeCheckViolation {
			logger.Error("IncreaseStock: check violation", err, nil)
			return ErrStockOutOfBounds
		}
		logger.Error("IncreaseStock: exec failed", err, nil)
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func toNullString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
