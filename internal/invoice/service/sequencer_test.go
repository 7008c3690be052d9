package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ridloal/retail-pos/internal/invoice/repository/mocks"
	dbMocks "github.com/ridloal/retail-pos/internal/platform/database/mocks"
)

func TestNextInvoiceID(t *testing.T) {
	tests := []struct {
		name string
		last string
		want string
	}{
		{"First invoice", "", "10000"},
		{"Follows last", "10000", "10001"},
		{"Grows past five digits", "99999", "100000"},
		{"Unparseable falls back to start", "INV-7", "10000"},
		{"Whitespace is ignored", " 10009 ", "10010"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextInvoiceID(tt.last, 10000))
		})
	}
}

func TestSequencer_Next(t *testing.T) {
	ctx := context.TODO()
	mockTx := new(dbMocks.MockDBTX)

	t.Run("Existing counter", func(t *testing.T) {
		repo := new(mocks.MockInvoiceRepository)
		seq := NewSequencer(repo, 10000)
		repo.On("IncrementCounter", ctx, mockTx, "invoice").Return(int64(10012), true, nil).Once()

		id, err := seq.Next(ctx, mockTx)
		assert.NoError(t, err)
		assert.Equal(t, "10012", id)
		repo.AssertNotCalled(t, "GetHighestInvoiceNumber", ctx, mockTx)
	})

	t.Run("Seeds after the highest invoice number", func(t *testing.T) {
		repo := new(mocks.MockInvoiceRepository)
		seq := NewSequencer(repo, 10000)
		repo.On("IncrementCounter", ctx, mockTx, "invoice").Return(int64(0), false, nil).Once()
		repo.On("GetHighestInvoiceNumber", ctx, mockTx).Return(int64(10230), true, nil).Once()
		repo.On("InitCounter", ctx, mockTx, "invoice", int64(10231)).Return(int64(10231), nil).Once()

		id, err := seq.Next(ctx, mockTx)
		assert.NoError(t, err)
		assert.Equal(t, "10231", id)
		repo.AssertExpectations(t)
	})

	t.Run("Concurrent seeding takes the next value", func(t *testing.T) {
		repo := new(mocks.MockInvoiceRepository)
		seq := NewSequencer(repo, 500)
		repo.On("IncrementCounter", ctx, mockTx, "invoice").Return(int64(0), false, nil).Once()
		repo.On("GetHighestInvoiceNumber", ctx, mockTx).Return(int64(0), false, nil).Once()
		repo.On("InitCounter", ctx, mockTx, "invoice", int64(500)).Return(int64(501), nil).Once()

		id, err := seq.Next(ctx, mockTx)
		assert.NoError(t, err)
		assert.Equal(t, "501", id)
	})

	t.Run("Lookup error", func(t *testing.T) {
		repo := new(mocks.MockInvoiceRepository)
		seq := NewSequencer(repo, 10000)
		repo.On("IncrementCounter", ctx, mockTx, "invoice").Return(int64(0), false, nil).Once()
		repo.On("GetHighestInvoiceNumber", ctx, mockTx).Return(int64(0), false, errors.New("db down")).Once()

		_, err := seq.Next(ctx, mockTx)
		assert.Error(t, err)
		repo.AssertNotCalled(t, "InitCounter", ctx, mockTx, "invoice", mock.Anything)
	})

	t.Run("Counter error", func(t *testing.T) {
		repo := new(mocks.MockInvoiceRepository)
		seq := NewSequencer(repo, 10000)
		repo.On("IncrementCounter", ctx, mockTx, "invoice").Return(int64(0), false, errors.New("db down")).Once()

		_, err := seq.Next(ctx, mockTx)
		assert.Error(t, err)
	})
}
