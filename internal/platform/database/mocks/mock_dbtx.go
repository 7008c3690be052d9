package mocks

import (
	"context"
	"database/sql"

	"github.com/stretchr/testify/mock"
)

// MockDBTX records every statement it receives. Expectations are written
// as On(method, ctx, query, args...) with the statement arguments spread.
type MockDBTX struct {
	mock.Mock
}

// RowsAffected is a sql.Result for Exec expectations.
type RowsAffected int64

func (r RowsAffected) LastInsertId() (int64, error) { return 0, nil }
func (r RowsAffected) RowsAffected() (int64, error) { return int64(r), nil }

func (m *MockDBTX) statement(method string, ctx context.Context, query string, args []interface{}) mock.Arguments {
	return m.MethodCalled(method, append([]interface{}{ctx, query}, args...)...)
}

func (m *MockDBTX) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	ret := m.statement("ExecContext", ctx, query, args)
	res, _ := ret.Get(0).(sql.Result)
	return res, ret.Error(1)
}

func (m *MockDBTX) PrepareContext(ctx context.Context, query string) (*sql.Stmt, error) {
	ret := m.Called(ctx, query)
	stmt, _ := ret.Get(0).(*sql.Stmt)
	return stmt, ret.Error(1)
}

func (m *MockDBTX) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	ret := m.statement("QueryContext", ctx, query, args)
	rows, _ := ret.Get(0).(*sql.Rows)
	return rows, ret.Error(1)
}

// QueryRowContext returns the *sql.Row given to Return, or nil.
func (m *MockDBTX) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	row, _ := m.statement("QueryRowContext", ctx, query, args).Get(0).(*sql.Row)
	return row
}

func (m *MockDBTX) Commit() error {
	return m.Called().Error(0)
}

func (m *MockDBTX) Rollback() error {
	return m.Called().Error(0)
}
