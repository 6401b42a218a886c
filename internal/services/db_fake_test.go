package services

import (
	"context"
	"fmt"
	"reflect"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func uniqueViolationErr(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
}

// fakeDB implements DB with per-call hooks. Unset hooks fall back to benign
// defaults so tests only wire the queries they care about.
type fakeDB struct {
	QueryRowFunc func(query string, args []any) Row
	QueryFunc    func(query string, args []any) (Rows, error)
	ExecFunc     func(query string, args []any) (CommandTag, error)
	BeginFunc    func() (Tx, error)

	queries []string
	execs   []string
}

func (f *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) Row {
	f.queries = append(f.queries, sql)
	if f.QueryRowFunc != nil {
		return f.QueryRowFunc(sql, args)
	}
	return errRow{pgx.ErrNoRows}
}

func (f *fakeDB) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	f.queries = append(f.queries, sql)
	if f.QueryFunc != nil {
		return f.QueryFunc(sql, args)
	}
	return &fakeRows{}, nil
}

func (f *fakeDB) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	f.execs = append(f.execs, sql)
	if f.ExecFunc != nil {
		return f.ExecFunc(sql, args)
	}
	return fakeCommandTag{1}, nil
}

func (f *fakeDB) Begin(ctx context.Context) (Tx, error) {
	if f.BeginFunc != nil {
		return f.BeginFunc()
	}
	return &fakeTx{db: f}, nil
}

// fakeTx delegates to the parent fakeDB and records the outcome.
type fakeTx struct {
	db         *fakeDB
	committed  bool
	rolledBack bool
}

func (t *fakeTx) QueryRow(ctx context.Context, sql string, args ...any) Row {
	return t.db.QueryRow(ctx, sql, args...)
}

func (t *fakeTx) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	return t.db.Query(ctx, sql, args...)
}

func (t *fakeTx) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	return t.db.Exec(ctx, sql, args...)
}

func (t *fakeTx) Commit(ctx context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

type fakeCommandTag struct {
	rows int64
}

func (t fakeCommandTag) RowsAffected() int64 { return t.rows }

// errRow fails every scan with the given error.
type errRow struct {
	err error
}

func (r errRow) Scan(dest ...any) error { return r.err }

// valueRow copies its values into scan destinations in order.
type valueRow struct {
	values []any
}

func rowFromValues(values ...any) valueRow {
	return valueRow{values: values}
}

func (r valueRow) Scan(dest ...any) error {
	if len(dest) != len(r.values) {
		return fmt.Errorf("scan: %d destinations for %d values", len(dest), len(r.values))
	}
	for i, v := range r.values {
		if err := assignValue(dest[i], v); err != nil {
			return fmt.Errorf("scan dest %d: %w", i, err)
		}
	}
	return nil
}

func assignValue(dest, value any) error {
	dv := reflect.ValueOf(dest)
	if dv.Kind() != reflect.Pointer || dv.IsNil() {
		return fmt.Errorf("destination is not a pointer")
	}
	elem := dv.Elem()

	if value == nil {
		elem.Set(reflect.Zero(elem.Type()))
		return nil
	}

	sv := reflect.ValueOf(value)
	switch {
	case sv.Type().AssignableTo(elem.Type()):
		elem.Set(sv)
	case sv.Type().ConvertibleTo(elem.Type()):
		elem.Set(sv.Convert(elem.Type()))
	case elem.Kind() == reflect.Pointer && sv.Type().AssignableTo(elem.Type().Elem()):
		p := reflect.New(elem.Type().Elem())
		p.Elem().Set(sv)
		elem.Set(p)
	default:
		return fmt.Errorf("cannot assign %T to %s", value, elem.Type())
	}
	return nil
}

// fakeRows iterates over pre-built value rows.
type fakeRows struct {
	rows [][]any
	idx  int
	err  error
}

func (r *fakeRows) Next() bool {
	if r.idx >= len(r.rows) {
		return false
	}
	r.idx++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	return rowFromValues(r.rows[r.idx-1]...).Scan(dest...)
}

func (r *fakeRows) Close() {}

func (r *fakeRows) Err() error { return r.err }
