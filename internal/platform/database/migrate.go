package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ridloal/retail-pos/internal/platform/logger"
)

// The structs below describe the tables only. Reads and writes go through
// the repositories with database/sql.

type productTable struct {
	ID            string          `gorm:"type:uuid;primaryKey"`
	Name          string          `gorm:"size:255;not null;index"`
	Price         decimal.Decimal `gorm:"type:numeric(12,2);not null;check:chk_products_price,price >= 0"`
	StockQuantity int             `gorm:"not null;default:0;check:chk_products_stock,stock_quantity >= 0"`
	Unit          string          `gorm:"size:16;not null;default:piece"`
	Barcode       *string         `gorm:"size:128;index"`
	QRCode        *string         `gorm:"column:qr_code;size:255;index"`
	TagNo         *string         `gorm:"size:64;index"`
	CreatedAt     time.Time       `gorm:"not null"`
	UpdatedAt     time.Time       `gorm:"not null"`
}

func (productTable) TableName() string { return "products" }

type customerTable struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"size:255;not null"`
	Mobile    string    `gorm:"size:32;not null;uniqueIndex"`
	Address   *string   `gorm:"type:text"`
	Email     *string   `gorm:"size:255"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (customerTable) TableName() string { return "customers" }

type invoiceTable struct {
	ID              string             `gorm:"type:uuid;primaryKey"`
	InvoiceID       string             `gorm:"column:invoice_id;size:32;not null;uniqueIndex"`
	CustomerName    string             `gorm:"size:255;not null"`
	CustomerMobile  string             `gorm:"size:32;not null;index"`
	CustomerAddress *string            `gorm:"type:text"`
	Subtotal        decimal.Decimal    `gorm:"type:numeric(14,2);not null"`
	TotalAmount     decimal.Decimal    `gorm:"type:numeric(14,2);not null"`
	PaymentMethod   string             `gorm:"size:16;not null;index"`
	PaymentDetails  []byte             `gorm:"type:jsonb"`
	TransactionID   string             `gorm:"size:64;not null;uniqueIndex"`
	Status          string             `gorm:"size:16;not null;default:completed"`
	Date            time.Time          `gorm:"not null;index"`
	CreatedAt       time.Time          `gorm:"not null;index"`
	UpdatedAt       time.Time          `gorm:"not null"`
	Items           []invoiceItemTable `gorm:"foreignKey:InvoiceRef;constraint:OnDelete:CASCADE"`
}

func (invoiceTable) TableName() string { return "invoices" }

type invoiceItemTable struct {
	ID         string          `gorm:"type:uuid;primaryKey"`
	InvoiceRef string          `gorm:"column:invoice_ref;type:uuid;not null;index"`
	Position   int             `gorm:"not null"`
	ProductID  *string         `gorm:"type:uuid;index"` // weak reference, no foreign key
	Name       string          `gorm:"size:255;not null"`
	Quantity   int             `gorm:"not null;check:chk_invoice_items_qty,quantity > 0"`
	Price      decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Unit       string          `gorm:"size:16"`
}

func (invoiceItemTable) TableName() string { return "invoice_items" }

type invoiceCounterTable struct {
	Name      string `gorm:"size:32;primaryKey"`
	LastValue int64  `gorm:"not null"`
	UpdatedAt time.Time
}

func (invoiceCounterTable) TableName() string { return "invoice_counters" }

// Migrate creates or updates the POS schema on an already opened connection.
func Migrate(db *sql.DB) error {
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return fmt.Errorf("failed to open gorm on existing connection: %w", err)
	}

	err = gdb.AutoMigrate(
		&productTable{},
		&customerTable{},
		&invoiceTable{},
		&invoiceItemTable{},
		&invoiceCounterTable{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}
	logger.Info("Database schema is up to date")
	return nil
}
