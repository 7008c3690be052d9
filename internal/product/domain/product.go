package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Unit string

const (
	UnitPiece Unit = "piece"
	UnitKg    Unit = "kg"
	UnitGram  Unit = "gram"
	UnitPack  Unit = "pack"
	UnitLitre Unit = "litre"
)

// ParseUnit normalises u. An empty unit means piece.
func ParseUnit(u string) (Unit, bool) {
	switch Unit(strings.ToLower(strings.TrimSpace(u))) {
	case "":
		return UnitPiece, true
	case UnitPiece:
		return UnitPiece, true
	case UnitKg:
		return UnitKg, true
	case UnitGram:
		return UnitGram, true
	case UnitPack:
		return UnitPack, true
	case UnitLitre:
		return UnitLitre, true
	}
	return "", false
}

type Product struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	Unit          Unit            `json:"unit"`
	Barcode       *string         `json:"barcode,omitempty"`
	QRCode        *string         `json:"qr_code,omitempty"`
	TagNo         *string         `json:"tag_no,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Untuk create dan update produk
type ProductRequest struct {
	Name          string          `json:"name" binding:"required"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	Unit          string          `json:"unit"`
	Barcode       *string         `json:"barcode,omitempty"`
	QRCode        *string         `json:"qr_code,omitempty"`
	TagNo         *string         `json:"tag_no,omitempty"`
}
