package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/ridloal/retail-pos/internal/customer/domain"
	"github.com/ridloal/retail-pos/internal/platform/logger"
)

var ErrCustomerNotFound = errors.New("customer not found")

type CustomerRepository interface {
	UpsertCustomer(ctx context.Context, customer *domain.Customer) error
	GetCustomerByMobile(ctx context.Context, mobile string) (*domain.Customer, error)
	ListCustomers(ctx context.Context) ([]domain.Customer, error)
}

type postgresCustomerRepository struct {
	db *sql.DB
}

func NewPostgresCustomerRepository(db *sql.DB) CustomerRepository {
	return &postgresCustomerRepository{db: db}
}

const customerColumns = `id, name, mobile, address, email, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCustomer(row rowScanner) (*domain.Customer, error) {
	c := &domain.Customer{}
	var address, email sql.NullString
	if err := row.Scan(&c.ID, &c.Name, &c.Mobile, &address, &email, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	if address.Valid {
		c.Address = &address.String
	}
	if email.Valid {
		c.Email = &email.String
	}
	return c, nil
}

// UpsertCustomer inserts by mobile or merges into the existing row. Empty or
// missing fields never overwrite stored ones. customer is refreshed from the
// stored row.
func (r *postgresCustomerRepository) UpsertCustomer(ctx context.Context, customer *domain.Customer) error {
	query := `INSERT INTO customers (id, name, mobile, address, email, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
              ON CONFLICT (mobile) DO UPDATE SET
                  name = COALESCE(NULLIF(EXCLUDED.name, ''), customers.name),
                  address = COALESCE(EXCLUDED.address, customers.address),
                  email = COALESCE(EXCLUDED.email, customers.email),
                  updated_at = NOW()
              RETURNING ` + customerColumns

	var address, email sql.NullString
	if customer.Address != nil && *customer.Address != "" {
		address = sql.NullString{String: *customer.Address, Valid: true}
	}
	if customer.Email != nil && *customer.Email != "" {
		email = sql.NullString{String: *customer.Email, Valid: true}
	}

	stored, err := scanCustomer(r.db.QueryRowContext(ctx, query,
		uuid.NewString(), customer.Name, customer.Mobile, address, email))
	if err != nil {
		logger.Error("UpsertCustomer: query failed", err, map[string]interface{}{"mobile": customer.Mobile})
		return err
	}
	*customer = *stored
	return nil
}

func (r *postgresCustomerRepository) GetCustomerByMobile(ctx context.Context, mobile string) (*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE mobile = $1`
	c, err := scanCustomer(r.db.QueryRowContext(ctx, query, mobile))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		logger.Error("GetCustomerByMobile: query failed", err)
		return nil, err
	}
	return c, nil
}

func (r *postgresCustomerRepository) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY created_at DESC`)
	if err != nil {
		logger.Error("ListCustomers: query failed", err)
		return nil, err
	}
	defer rows.Close()

	var customers []domain.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			logger.Error("ListCustomers: scan failed", err)
			return nil, err
		}
		customers = append(customers, *c)
	}
	if err = rows.Err(); err != nil {
		logger.Error("ListCustomers: rows iteration error", err)
		return nil, err
	}
	return customers, nil
}
