package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/ridloal/retail-pos/internal/invoice/repository"
	"github.com/ridloal/retail-pos/internal/platform/database"
)

const invoiceCounterName = "invoice"

// NextInvoiceID is the numbering rule: one past last, or start when last
// is empty or not a number.
func NextInvoiceID(last string, start int64) string {
	n, err := strconv.ParseInt(strings.TrimSpace(last), 10, 64)
	if err != nil {
		return strconv.FormatInt(start, 10)
	}
	return strconv.FormatInt(n+1, 10)
}

// Sequencer hands out invoice numbers from a counter row. The row lock
// taken by the increment is held until the sale transaction ends, so two
// sales never see the same value.
type Sequencer struct {
	repo  repository.InvoiceRepository
	start int64
}

func NewSequencer(repo repository.InvoiceRepository, start int64) *Sequencer {
	return &Sequencer{repo: repo, start: start}
}

// Next must run inside the transaction that stores the invoice. A rollback
// gives the number back.
func (s *Sequencer) Next(ctx context.Context, dbops database.DBTX) (string, error) {
	value, found, err := s.repo.IncrementCounter(ctx, dbops, invoiceCounterName)
	if err != nil {
		return "", err
	}
	if found {
		return strconv.FormatInt(value, 10), nil
	}

	// First sale since the counter was introduced. Continue after the
	// highest numeric invoice id so the seed never collides with an
	// existing number, whatever ids were created most recently.
	highest, found, err := s.repo.GetHighestInvoiceNumber(ctx, dbops)
	if err != nil {
		return "", err
	}
	last := ""
	if found {
		last = strconv.FormatInt(highest, 10)
	}
	seed, err := strconv.ParseInt(NextInvoiceID(last, s.start), 10, 64)
	if err != nil {
		seed = s.start
	}
	value, err = s.repo.InitCounter(ctx, dbops, invoiceCounterName, seed)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(value, 10), nil
}
