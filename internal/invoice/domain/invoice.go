package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "CASH"
	PaymentCard   PaymentMethod = "CARD"
	PaymentUPI    PaymentMethod = "UPI"
	PaymentWallet PaymentMethod = "WALLET"
)

// PaymentMethods lists every accepted method in display order.
var PaymentMethods = []PaymentMethod{PaymentCash, PaymentCard, PaymentUPI, PaymentWallet}

// ParsePaymentMethod is case-insensitive. An empty value means CASH.
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return PaymentCash, true
	}
	for _, m := range PaymentMethods {
		if string(m) == s {
			return m, true
		}
	}
	return "", false
}

type InvoiceStatus string

const (
	StatusPending   InvoiceStatus = "pending"
	StatusCompleted InvoiceStatus = "completed"
	StatusFailed    InvoiceStatus = "failed"
)

// ParseStatus is case-insensitive. An empty value means completed.
func ParseStatus(s string) (InvoiceStatus, bool) {
	switch InvoiceStatus(strings.ToLower(strings.TrimSpace(s))) {
	case "", StatusCompleted:
		return StatusCompleted, true
	case StatusPending:
		return StatusPending, true
	case StatusFailed:
		return StatusFailed, true
	}
	return "", false
}

// Invoice is a point-in-time record of a sale. Customer and product fields
// are copies, so later edits or deletes of those records do not affect it.
type Invoice struct {
	ID              string          `json:"id"`
	InvoiceID       string          `json:"invoice_id"`
	CustomerName    string          `json:"customer_name"`
	CustomerMobile  string          `json:"customer_mobile"`
	CustomerAddress *string         `json:"customer_address,omitempty"`
	Items           []InvoiceItem   `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	PaymentMethod   PaymentMethod   `json:"payment_method"`
	PaymentDetails  json.RawMessage `json:"payment_details,omitempty"`
	TransactionID   string          `json:"transaction_id"`
	Status          InvoiceStatus   `json:"status"`
	Date            time.Time       `json:"date"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type InvoiceItem struct {
	ID        string          `json:"id"`
	ProductID *string         `json:"product_id,omitempty"` // weak reference, the product may be gone
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Unit      string          `json:"unit,omitempty"`
}

// LineTotal is price times quantity.
func (i InvoiceItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// CartLine names a product by id or, failing that, by exact name.
// A nil Price means the product's current price.
type CartLine struct {
	ProductID string           `json:"product_id"`
	Name      string           `json:"name"`
	Quantity  int              `json:"quantity"`
	Price     *decimal.Decimal `json:"price"`
	Unit      string           `json:"unit"`
}

type CreateSaleRequest struct {
	CustomerName    string           `json:"customer_name"`
	CustomerMobile  string           `json:"customer_mobile"`
	CustomerAddress *string          `json:"customer_address"`
	Items           []CartLine       `json:"items"`
	Subtotal        *decimal.Decimal `json:"subtotal"`
	TotalAmount     *decimal.Decimal `json:"total_amount"`
	PaymentMethod   string           `json:"payment_method"`
	PaymentDetails  json.RawMessage  `json:"payment_details"`
	TransactionID   string           `json:"transaction_id"`
	Status          string           `json:"status"`
	Date            *time.Time       `json:"date"`
}

type RestoredStock struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type DeleteSaleResponse struct {
	Message        string          `json:"message"`
	DeletedInvoice Invoice         `json:"deleted_invoice"`
	Restored       []RestoredStock `json:"restored"`
	SkippedItems   []string        `json:"skipped_items,omitempty"` // names of lines whose product no longer exists
}

// Receipt is a display projection with GST added on top of the stored
// amounts. Nothing in it is persisted.
type Receipt struct {
	Invoice     Invoice         `json:"invoice"`
	GSTIN       string          `json:"gstin,omitempty"`
	GSTRate     decimal.Decimal `json:"gst_rate"`
	Lines       []ReceiptLine   `json:"lines"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	CGST        decimal.Decimal `json:"cgst"`
	SGST        decimal.Decimal `json:"sgst"`
	TotalGST    decimal.Decimal `json:"total_gst"`
	GrandTotal  decimal.Decimal `json:"grand_total"`
	RoundedDue  int64           `json:"rounded_total"`
	GeneratedAt time.Time       `json:"generated_at"`
}

type ReceiptLine struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Unit      string          `json:"unit,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Taxable   decimal.Decimal `json:"taxable"`
	CGST      decimal.Decimal `json:"cgst"`
	SGST      decimal.Decimal `json:"sgst"`
	LineTotal decimal.Decimal `json:"line_total"`
}
