package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	invDomain "github.com/ridloal/retail-pos/internal/invoice/domain"
	pDomain "github.com/ridloal/retail-pos/internal/product/domain"
	"github.com/ridloal/retail-pos/internal/report/domain"
)

// Thursday.
var reportNow = time.Date(2024, time.March, 14, 10, 30, 0, 0, time.UTC)

func sale(id string, at time.Time, amount int64, method invDomain.PaymentMethod) invDomain.Invoice {
	return invDomain.Invoice{
		ID:            id,
		InvoiceID:     id,
		TotalAmount:   decimal.NewFromInt(amount),
		Subtotal:      decimal.NewFromInt(amount),
		PaymentMethod: method,
		Date:          at,
	}
}

func sampleSales() []invDomain.Invoice {
	return []invDomain.Invoice{
		sale("a", time.Date(2024, 3, 14, 9, 15, 0, 0, time.UTC), 100, invDomain.PaymentCash),
		sale("b", time.Date(2024, 3, 14, 10, 5, 0, 0, time.UTC), 50, invDomain.PaymentUPI),
		sale("c", time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC), 30, invDomain.PaymentCard),
		sale("d", time.Date(2024, 3, 9, 20, 0, 0, 0, time.UTC), 20, invDomain.PaymentCash),
		sale("e", time.Date(2024, 2, 29, 8, 0, 0, 0, time.UTC), 40, invDomain.PaymentWallet),
		sale("f", time.Date(2023, 12, 31, 8, 0, 0, 0, time.UTC), 10, invDomain.PaymentCash),
	}
}

func ids(invoices []invDomain.Invoice) []string {
	out := make([]string, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, inv.ID)
	}
	return out
}

func TestWeekOfYear(t *testing.T) {
	tests := []struct {
		day      time.Time
		wantYear int
		wantWeek int
	}{
		{time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 2024, 1},
		{time.Date(2024, 1, 6, 23, 0, 0, 0, time.UTC), 2024, 1},
		{time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC), 2024, 2},
		{time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), 2024, 10},
		{time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), 2024, 11},
		{time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC), 2024, 11},
		// 2023 starts on a Sunday.
		{time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), 2023, 1},
		{time.Date(2023, 1, 8, 0, 0, 0, 0, time.UTC), 2023, 2},
		{time.Date(2023, 12, 30, 0, 0, 0, 0, time.UTC), 2023, 52},
		// Sunday whose Saturday is in 2024.
		{time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), 2024, 1},
		// 2022 ends on a Saturday, so its last week stays in 2022.
		{time.Date(2022, 12, 31, 0, 0, 0, 0, time.UTC), 2022, 53},
	}
	for _, tt := range tests {
		t.Run(tt.day.Format("2006-01-02"), func(t *testing.T) {
			year, week := WeekOfYear(tt.day)
			assert.Equal(t, tt.wantYear, year)
			assert.Equal(t, tt.wantWeek, week)
		})
	}
}

func TestFilterByRange_WeekAcrossNewYear(t *testing.T) {
	// Wednesday 2024-01-03; its week started on Sunday 2023-12-31.
	now := time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)
	sales := []invDomain.Invoice{
		sale("sat", time.Date(2023, 12, 30, 18, 0, 0, 0, time.UTC), 5, invDomain.PaymentCash),
		sale("sun", time.Date(2023, 12, 31, 10, 0, 0, 0, time.UTC), 10, invDomain.PaymentCash),
		sale("wed", time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC), 20, invDomain.PaymentCard),
	}

	thisWeek := FilterByRange(sales, domain.RangeQuery{Kind: domain.RangeThisWeek}, now, time.UTC)
	weekOne := FilterByRange(sales, domain.RangeQuery{Kind: domain.RangeWeekly, Year: 2024, Week: 1}, now, time.UTC)
	defaulted := FilterByRange(sales, domain.RangeQuery{Kind: domain.RangeWeekly}, now, time.UTC)

	assert.Equal(t, []string{"sun", "wed"}, ids(thisWeek))
	assert.Equal(t, ids(thisWeek), ids(weekOne))
	assert.Equal(t, ids(thisWeek), ids(defaulted))

	lastOf2023 := FilterByRange(sales, domain.RangeQuery{Kind: domain.RangeWeekly, Year: 2023, Week: 52}, now, time.UTC)
	assert.Equal(t, []string{"sat"}, ids(lastOf2023))
}

func TestStartOfWeek(t *testing.T) {
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), StartOfWeek(reportNow))
	sunday := time.Date(2024, 3, 10, 18, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), StartOfWeek(sunday))
}

func TestFilterByRange(t *testing.T) {
	tests := []struct {
		name  string
		query domain.RangeQuery
		want  []string
	}{
		{"daily defaults to today", domain.RangeQuery{Kind: domain.RangeDaily}, []string{"a", "b"}},
		{"daily with date", domain.RangeQuery{Kind: domain.RangeDaily, Date: time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)}, []string{"d"}},
		{"weekly defaults to current week", domain.RangeQuery{Kind: domain.RangeWeekly}, []string{"a", "b", "c"}},
		{"weekly previous week", domain.RangeQuery{Kind: domain.RangeWeekly, Year: 2024, Week: 10}, []string{"d"}},
		{"monthly current", domain.RangeQuery{Kind: domain.RangeMonthly}, []string{"a", "b", "c", "d"}},
		{"monthly leap february", domain.RangeQuery{Kind: domain.RangeMonthly, Year: 2024, Month: 2}, []string{"e"}},
		{"yearly current", domain.RangeQuery{Kind: domain.RangeYearly}, []string{"a", "b", "c", "d", "e"}},
		{"yearly previous", domain.RangeQuery{Kind: domain.RangeYearly, Year: 2023}, []string{"f"}},
		{"this week starts on sunday", domain.RangeQuery{Kind: domain.RangeThisWeek}, []string{"a", "b", "c"}},
		{"this month", domain.RangeQuery{Kind: domain.RangeThisMonth}, []string{"a", "b", "c", "d"}},
		{"this year", domain.RangeQuery{Kind: domain.RangeThisYear}, []string{"a", "b", "c", "d", "e"}},
		{"all", domain.RangeQuery{Kind: domain.RangeAll}, []string{"a", "b", "c", "d", "e", "f"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterByRange(sampleSales(), tt.query, reportNow, time.UTC)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestFilterByRange_UsesReportLocation(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	// 20:00 UTC on the 13th is already the 14th in IST.
	late := sale("late", time.Date(2024, 3, 13, 20, 0, 0, 0, time.UTC), 10, invDomain.PaymentCash)

	got := FilterByRange([]invDomain.Invoice{late}, domain.RangeQuery{Kind: domain.RangeDaily}, reportNow, ist)
	assert.Equal(t, []string{"late"}, ids(got))

	got = FilterByRange([]invDomain.Invoice{late}, domain.RangeQuery{Kind: domain.RangeDaily}, reportNow, time.UTC)
	assert.Empty(t, got)
}

func TestSummarize(t *testing.T) {
	t.Run("Empty set", func(t *testing.T) {
		s := Summarize(nil)
		assert.True(t, s.TotalSales.IsZero())
		assert.Equal(t, 0, s.TransactionCount)
		assert.True(t, s.AverageSale.IsZero())
	})

	t.Run("Totals use stored amounts", func(t *testing.T) {
		s := Summarize(sampleSales()[:2])
		assert.Equal(t, "150", s.TotalSales.String())
		assert.Equal(t, 2, s.TransactionCount)
		assert.Equal(t, "75", s.AverageSale.String())
	})

	t.Run("Average is rounded to cents", func(t *testing.T) {
		s := Summarize(sampleSales()[1:4])
		assert.Equal(t, "100", s.TotalSales.String())
		assert.Equal(t, "33.33", s.AverageSale.String())
	})
}

func TestPaymentDistribution(t *testing.T) {
	assert.Equal(t, map[string]int{"CASH": 0, "CARD": 0, "UPI": 0, "WALLET": 0}, PaymentDistribution(nil))
	assert.Equal(t, map[string]int{"CASH": 3, "CARD": 1, "UPI": 1, "WALLET": 1}, PaymentDistribution(sampleSales()))
}

func TestBuckets(t *testing.T) {
	sales := sampleSales()

	t.Run("Daily two hour slots", func(t *testing.T) {
		b := Buckets(domain.RangeDaily, sales[:2], time.UTC)
		require.Len(t, b, 12)
		assert.Equal(t, "0:00-2:00", b[0].Label)
		assert.Equal(t, "22:00-24:00", b[11].Label)
		assert.Equal(t, "8:00-10:00", b[4].Label)
		assert.Equal(t, "100", b[4].Value.String())
		assert.Equal(t, "50", b[5].Value.String())
		assert.Equal(t, 1, b[5].Count)
		assert.True(t, b[0].Value.IsZero())
	})

	t.Run("Weekly by weekday", func(t *testing.T) {
		b := Buckets(domain.RangeThisWeek, sales[:3], time.UTC)
		require.Len(t, b, 7)
		assert.Equal(t, "Sun", b[0].Label)
		assert.Equal(t, "30", b[0].Value.String())
		assert.Equal(t, "Thu", b[4].Label)
		assert.Equal(t, "150", b[4].Value.String())
		assert.Equal(t, 2, b[4].Count)
	})

	t.Run("Monthly by week of month", func(t *testing.T) {
		month := []invDomain.Invoice{
			sale("x", time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), 5, invDomain.PaymentCash),
			sale("y", time.Date(2024, 3, 28, 9, 0, 0, 0, time.UTC), 7, invDomain.PaymentCash),
			sale("z", time.Date(2024, 3, 31, 9, 0, 0, 0, time.UTC), 11, invDomain.PaymentCash),
		}
		b := Buckets(domain.RangeMonthly, month, time.UTC)
		require.Len(t, b, 5)
		assert.Equal(t, "Week 1", b[0].Label)
		assert.Equal(t, "5", b[0].Value.String())
		assert.Equal(t, "7", b[3].Value.String())
		assert.Equal(t, "Week 5", b[4].Label)
		assert.Equal(t, "11", b[4].Value.String())
	})

	t.Run("Yearly by month", func(t *testing.T) {
		b := Buckets(domain.RangeYearly, sales[:5], time.UTC)
		require.Len(t, b, 12)
		assert.Equal(t, "Feb", b[1].Label)
		assert.Equal(t, "40", b[1].Value.String())
		assert.Equal(t, "200", b[2].Value.String())
		assert.Equal(t, 4, b[2].Count)
	})

	t.Run("All has no buckets", func(t *testing.T) {
		assert.Empty(t, Buckets(domain.RangeAll, sales, time.UTC))
	})
}

func TestFilterTransactions(t *testing.T) {
	day := time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		filter domain.TransactionFilter
		want   []string
	}{
		{"no filter", domain.TransactionFilter{}, []string{"a", "b", "c", "d", "e", "f"}},
		{"date only", domain.TransactionFilter{Date: &day}, []string{"a", "b"}},
		{"date and ALL", domain.TransactionFilter{Date: &day, PaymentMethod: "ALL"}, []string{"a", "b"}},
		{"date and method", domain.TransactionFilter{Date: &day, PaymentMethod: "cash"}, []string{"a"}},
		{"method only", domain.TransactionFilter{PaymentMethod: "CASH"}, []string{"a", "d", "f"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(FilterTransactions(sampleSales(), tt.filter, time.UTC)))
		})
	}
}

func TestBuildDashboard(t *testing.T) {
	products := []pDomain.Product{
		{ID: "p0", StockQuantity: 0},
		{ID: "p3", StockQuantity: 3},
		{ID: "p5", StockQuantity: 5},
		{ID: "p6", StockQuantity: 6},
		{ID: "p10", StockQuantity: 10},
	}

	d := BuildDashboard(products, sampleSales(), 5, reportNow, time.UTC)
	assert.Equal(t, 5, d.TotalProducts)
	assert.Equal(t, 1, d.OutOfStock)
	assert.Equal(t, 2, d.LowStock)
	assert.Equal(t, "150", d.TodayRevenue.String())
	assert.Equal(t, "250", d.TotalSales.String())
	assert.Equal(t, 6, d.TotalInvoices)
	assert.Equal(t, reportNow, d.GeneratedAt)
}
