package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ridloal/retail-pos/internal/invoice/domain"
)

var two = decimal.NewFromInt(2)

// BuildReceipt adds GST at rate on top of each line and splits it evenly
// into CGST and SGST. The stored invoice totals are left as they are.
func BuildReceipt(invoice domain.Invoice, rate decimal.Decimal, gstin string, now time.Time) *domain.Receipt {
	r := &domain.Receipt{
		Invoice:     invoice,
		GSTIN:       gstin,
		GSTRate:     rate,
		Lines:       make([]domain.ReceiptLine, 0, len(invoice.Items)),
		GeneratedAt: now,
	}

	subtotal, gstTotal := decimal.Zero, decimal.Zero
	for _, item := range invoice.Items {
		taxable := item.LineTotal()
		gst := taxable.Mul(rate)
		half := gst.Div(two)
		r.Lines = append(r.Lines, domain.ReceiptLine{
			Name:      item.Name,
			Quantity:  item.Quantity,
			Unit:      item.Unit,
			Price:     item.Price,
			Taxable:   taxable.Round(2),
			CGST:      half.Round(2),
			SGST:      half.Round(2),
			LineTotal: taxable.Add(gst).Round(2),
		})
		subtotal = subtotal.Add(taxable)
		gstTotal = gstTotal.Add(gst)
	}

	half := gstTotal.Div(two).Round(2)
	r.Subtotal = subtotal.Round(2)
	r.CGST = half
	r.SGST = half
	r.TotalGST = half.Add(half)
	r.GrandTotal = r.Subtotal.Add(r.TotalGST)
	r.RoundedDue = r.GrandTotal.Round(0).IntPart()
	return r
}
