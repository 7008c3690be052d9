package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	invDomain "github.com/ridloal/retail-pos/internal/invoice/domain"
)

type RangeKind string

const (
	RangeDaily     RangeKind = "daily"
	RangeWeekly    RangeKind = "weekly"
	RangeMonthly   RangeKind = "monthly"
	RangeYearly    RangeKind = "yearly"
	RangeThisWeek  RangeKind = "this_week"
	RangeThisMonth RangeKind = "this_month"
	RangeThisYear  RangeKind = "this_year"
	RangeAll       RangeKind = "all"
)

// ParseRangeKind accepts snake_case and camelCase spellings
// (this_week, thisWeek, ThisWeek). Empty means daily.
func ParseRangeKind(s string) (RangeKind, bool) {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", ""))
	switch key {
	case "", "daily":
		return RangeDaily, true
	case "weekly":
		return RangeWeekly, true
	case "monthly":
		return RangeMonthly, true
	case "yearly":
		return RangeYearly, true
	case "thisweek":
		return RangeThisWeek, true
	case "thismonth":
		return RangeThisMonth, true
	case "thisyear":
		return RangeThisYear, true
	case "all":
		return RangeAll, true
	}
	return "", false
}

// RangeQuery selects invoices by their sale date. Zero fields default to
// the current day, week, month or year.
type RangeQuery struct {
	Kind  RangeKind
	Date  time.Time // daily
	Year  int       // weekly, monthly, yearly
	Month int       // monthly, 1-12
	Week  int       // weekly, 1-53, Sunday to Saturday
}

type Bucket struct {
	Label string          `json:"label"`
	Value decimal.Decimal `json:"value"`
	Count int             `json:"count"`
}

type Summary struct {
	TotalSales       decimal.Decimal `json:"total_sales"`
	TransactionCount int             `json:"transaction_count"`
	AverageSale      decimal.Decimal `json:"average_sale"`
}

type SalesReport struct {
	Range          RangeKind           `json:"range"`
	Summary                            // flattened
	PaymentMethods map[string]int      `json:"payment_methods"`
	Buckets        []Bucket            `json:"buckets"`
	Transactions   []invDomain.Invoice `json:"transactions"`
}

// TransactionFilter mirrors the sales history screen. An empty or "ALL"
// payment method matches every method.
type TransactionFilter struct {
	Date          *time.Time
	PaymentMethod string
}

type TransactionsReport struct {
	Summary
	PaymentMethods map[string]int      `json:"payment_methods"`
	Transactions   []invDomain.Invoice `json:"transactions"`
}

type Dashboard struct {
	TotalProducts int             `json:"total_products"`
	OutOfStock    int             `json:"out_of_stock"`
	LowStock      int             `json:"low_stock"`
	TodayRevenue  decimal.Decimal `json:"today_revenue"`
	TotalSales    decimal.Decimal `json:"total_sales"`
	TotalInvoices int             `json:"total_invoices"`
	GeneratedAt   time.Time       `json:"generated_at"`
}
