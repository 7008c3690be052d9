package service

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	invDomain "github.com/ridloal/retail-pos/internal/invoice/domain"
	pDomain "github.com/ridloal/retail-pos/internal/product/domain"
	"github.com/ridloal/retail-pos/internal/report/domain"
)

var (
	weekdayLabels = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	monthLabels   = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
)

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// StartOfWeek returns the Sunday that begins t's week.
func StartOfWeek(t time.Time) time.Time {
	day := startOfDay(t)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// WeekOfYear returns the week-numbering year and week of t. Weeks run
// Sunday to Saturday and belong to the year their Saturday falls in, so
// week 1 is the week containing January 1st and may start in December.
// Every day of one week gets the same pair.
func WeekOfYear(t time.Time) (year, week int) {
	start := StartOfWeek(t)
	year = start.AddDate(0, 0, 6).Year()
	first := StartOfWeek(time.Date(year, time.January, 1, 0, 0, 0, 0, t.Location()))
	days := int(math.Round(start.Sub(first).Hours() / 24))
	return year, days/7 + 1
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// FilterByRange keeps invoices whose date falls in q. Dates are compared
// in loc.
func FilterByRange(invoices []invDomain.Invoice, q domain.RangeQuery, now time.Time, loc *time.Location) []invDomain.Invoice {
	now = now.In(loc)
	year := q.Year
	if year == 0 {
		year = now.Year()
	}
	month := q.Month
	if month == 0 {
		month = int(now.Month())
	}
	weekYear, week := WeekOfYear(now)
	if q.Year != 0 {
		weekYear = q.Year
	}
	if q.Week != 0 {
		week = q.Week
	}
	day := now
	if !q.Date.IsZero() {
		y, m, d := q.Date.Date()
		day = time.Date(y, m, d, 0, 0, 0, 0, loc)
	}

	var match func(d time.Time) bool
	switch q.Kind {
	case domain.RangeDaily:
		match = func(d time.Time) bool { return sameDay(d, day) }
	case domain.RangeWeekly:
		match = func(d time.Time) bool {
			y, w := WeekOfYear(d)
			return y == weekYear && w == week
		}
	case domain.RangeMonthly:
		match = func(d time.Time) bool { return d.Year() == year && int(d.Month()) == month }
	case domain.RangeYearly:
		match = func(d time.Time) bool { return d.Year() == year }
	case domain.RangeThisWeek:
		from := StartOfWeek(now)
		to := from.AddDate(0, 0, 7)
		match = func(d time.Time) bool { return !d.Before(from) && d.Before(to) }
	case domain.RangeThisMonth:
		match = func(d time.Time) bool { return d.Year() == now.Year() && d.Month() == now.Month() }
	case domain.RangeThisYear:
		match = func(d time.Time) bool { return d.Year() == now.Year() }
	default:
		match = func(time.Time) bool { return true }
	}

	out := make([]invDomain.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if match(inv.Date.In(loc)) {
			out = append(out, inv)
		}
	}
	return out
}

// Summarize totals the stored invoice amounts. The average is rounded to
// two places and is zero for an empty set.
func Summarize(invoices []invDomain.Invoice) domain.Summary {
	total := decimal.Zero
	for _, inv := range invoices {
		total = total.Add(inv.TotalAmount)
	}
	s := domain.Summary{TotalSales: total, TransactionCount: len(invoices), AverageSale: decimal.Zero}
	if len(invoices) > 0 {
		s.AverageSale = total.Div(decimal.NewFromInt(int64(len(invoices)))).Round(2)
	}
	return s
}

// PaymentDistribution counts invoices per method. Every known method is
// present even with a zero count.
func PaymentDistribution(invoices []invDomain.Invoice) map[string]int {
	counts := make(map[string]int, len(invDomain.PaymentMethods))
	for _, m := range invDomain.PaymentMethods {
		counts[string(m)] = 0
	}
	for _, inv := range invoices {
		counts[string(inv.PaymentMethod)]++
	}
	return counts
}

// Buckets splits invoices for charting: two-hour slots for a day, weekdays
// for a week, 7-day blocks for a month and months for a year. The "all"
// range has no buckets.
func Buckets(kind domain.RangeKind, invoices []invDomain.Invoice, loc *time.Location) []domain.Bucket {
	var buckets []domain.Bucket
	var index func(d time.Time) int

	switch kind {
	case domain.RangeDaily:
		for h := 0; h < 24; h += 2 {
			buckets = append(buckets, domain.Bucket{Label: fmt.Sprintf("%d:00-%d:00", h, h+2)})
		}
		index = func(d time.Time) int { return d.Hour() / 2 }
	case domain.RangeWeekly, domain.RangeThisWeek:
		for _, l := range weekdayLabels {
			buckets = append(buckets, domain.Bucket{Label: l})
		}
		index = func(d time.Time) int { return int(d.Weekday()) }
	case domain.RangeMonthly, domain.RangeThisMonth:
		for w := 1; w <= 5; w++ {
			buckets = append(buckets, domain.Bucket{Label: fmt.Sprintf("Week %d", w)})
		}
		index = func(d time.Time) int { return (d.Day() - 1) / 7 }
	case domain.RangeYearly, domain.RangeThisYear:
		for _, l := range monthLabels {
			buckets = append(buckets, domain.Bucket{Label: l})
		}
		index = func(d time.Time) int { return int(d.Month()) - 1 }
	default:
		return []domain.Bucket{}
	}

	for i := range buckets {
		buckets[i].Value = decimal.Zero
	}
	for _, inv := range invoices {
		i := index(inv.Date.In(loc))
		buckets[i].Value = buckets[i].Value.Add(inv.TotalAmount)
		buckets[i].Count++
	}
	return buckets
}

// FilterTransactions applies the sales history filters.
func FilterTransactions(invoices []invDomain.Invoice, f domain.TransactionFilter, loc *time.Location) []invDomain.Invoice {
	method := strings.ToUpper(strings.TrimSpace(f.PaymentMethod))
	var day time.Time
	if f.Date != nil {
		y, m, d := f.Date.Date()
		day = time.Date(y, m, d, 0, 0, 0, 0, loc)
	}

	out := make([]invDomain.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if f.Date != nil && !sameDay(inv.Date.In(loc), day) {
			continue
		}
		if method != "" && method != "ALL" && string(inv.PaymentMethod) != method {
			continue
		}
		out = append(out, inv)
	}
	return out
}

// BuildDashboard computes the home screen figures. A product is low on
// stock when 0 < quantity <= threshold.
func BuildDashboard(products []pDomain.Product, invoices []invDomain.Invoice, threshold int, now time.Time, loc *time.Location) domain.Dashboard {
	now = now.In(loc)
	d := domain.Dashboard{
		TotalProducts: len(products),
		TodayRevenue:  decimal.Zero,
		TotalSales:    decimal.Zero,
		TotalInvoices: len(invoices),
		GeneratedAt:   now,
	}
	for _, p := range products {
		switch {
		case p.StockQuantity <= 0:
			d.OutOfStock++
		case p.StockQuantity <= threshold:
			d.LowStock++
		}
	}
	for _, inv := range invoices {
		d.TotalSales = d.TotalSales.Add(inv.TotalAmount)
		if sameDay(inv.Date.In(loc), now) {
			d.TodayRevenue = d.TodayRevenue.Add(inv.TotalAmount)
		}
	}
	return d
}
