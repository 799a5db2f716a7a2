package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

func (db *DB) logStatement(op, query string, params Params, elapsed time.Duration, err error) {
	evt := db.log.Debug()
	switch {
	case err != nil:
		evt = db.log.Warn().Err(err)
	case db.slow > 0 && elapsed >= db.slow:
		evt = db.log.Warn().Bool("slow", true)
	}

	// Bound values can carry credentials or personal data; only the names
	// are logged.
	evt.Str("op", op).
		Str("sql", query).
		Strs("params", sortedKeys(params)).
		Dur("duration", elapsed).
		Msg("statement executed")
}

// prepare compiles the `:name` placeholders of query for the connection's
// driver, see compileNamed.
func (db *DB) prepare(query string, params Params) (string, []any, error) {
	return compileNamed(query, sqlx.BindType(db.conn.DriverName()), params)
}

// each substitutes tables in symbolic, binds params by name and calls fn
// for every row in result order.
func (db *DB) each(ctx context.Context, op, symbolic string, params Params, fn func(Record) error) (err error) {
	query := db.SubstituteTables(symbolic)

	start := time.Now()
	defer func() {
		db.logStatement(op, query, params, time.Since(start), err)
	}()

	bound, args, err := db.prepare(query, params)
	if err != nil {
		return execError(op, query, err)
	}

	rows, err := db.conn.QueryxContext(ctx, bound, args...)
	if err != nil {
		return execError(op, query, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return execError(op, query, err)
	}

	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return execError(op, query, err)
		}
		if err := fn(NewRecord(columns, values)); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return execError(op, query, err)
	}

	return nil
}

func (db *DB) list(ctx context.Context, op, symbolic string, params Params) ([]Record, error) {
	var records []Record
	err := db.each(ctx, op, symbolic, params, func(rec Record) error {
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (db *DB) byID(ctx context.Context, op, symbolic string, params Params) (*IDIndex, error) {
	index := newIDIndex()
	err := db.each(ctx, op, symbolic, params, func(rec Record) error {
		id, ok := rec.ID()
		if !ok {
			return &Error{
				Op:   op,
				SQL:  db.SubstituteTables(symbolic),
				Kind: KindMissingID,
				Err:  fmt.Errorf("row %d has no id column", index.Len()+1),
			}
		}
		index.put(id, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return index, nil
}

// GetRecordsSQL runs a symbolic SQL statement with `:name` bind params and
// returns every row in result order.
func (db *DB) GetRecordsSQL(ctx context.Context, query string, params Params) ([]Record, error) {
	return db.list(ctx, "get_records_sql", query, params)
}

// QueryList is GetRecordsSQL for callers that want the list shape spelled out.
func (db *DB) QueryList(ctx context.Context, query string, params Params) ([]Record, error) {
	return db.list(ctx, "query_list", query, params)
}

// QueryByID runs query and keys the rows by their id column. Every row must
// have an id; on duplicates the last row wins.
func (db *DB) QueryByID(ctx context.Context, query string, params Params) (*IDIndex, error) {
	return db.byID(ctx, "query_by_id", query, params)
}

func buildSelect(op, table string, params Params, fields []string) (string, error) {
	query, err := BuildSelect(table, params, fields...)
	if err != nil {
		if dalErr, ok := err.(*Error); ok {
			dalErr.Op = op
		}
		return "", err
	}
	return query, nil
}

// GetRecords reads table filtered by equality on every params key.
// Without fields all columns are selected.
func (db *DB) GetRecords(ctx context.Context, table string, params Params, fields ...string) ([]Record, error) {
	const op = "get_records"

	query, err := buildSelect(op, table, params, fields)
	if err != nil {
		return nil, err
	}
	return db.list(ctx, op, query, params)
}

// GetRecordsByID is GetRecords keyed by id, see QueryByID.
func (db *DB) GetRecordsByID(ctx context.Context, table string, params Params, fields ...string) (*IDIndex, error) {
	const op = "get_records_by_id"

	query, err := buildSelect(op, table, params, fields)
	if err != nil {
		return nil, err
	}
	return db.byID(ctx, op, query, params)
}

// checkSingle enforces the single-lookup cardinality: more than one row is
// an ErrAmbiguous error.
func checkSingle(op, query string, n int) error {
	if n > 1 {
		return &Error{
			Op:   op,
			SQL:  query,
			Kind: KindAmbiguous,
			Err:  fmt.Errorf("%d rows matched, expected at most one", n),
		}
	}
	return nil
}

// GetRecord returns the only row matching params.
//
// Output:
//   - no row: nil, nil
//   - one row: the record
//   - more rows: ErrAmbiguous
func (db *DB) GetRecord(ctx context.Context, table string, params Params, fields ...string) (*Record, error) {
	const op = "get_record"

	query, err := buildSelect(op, table, params, fields)
	if err != nil {
		return nil, err
	}

	records, err := db.list(ctx, op, query, params)
	if err != nil {
		return nil, err
	}
	if err := checkSingle(op, db.SubstituteTables(query), len(records)); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

// GetFieldset returns the values of one field for every matching row, in
// result order.
func (db *DB) GetFieldset(ctx context.Context, table, field string, params Params) ([]any, error) {
	const op = "get_fieldset"

	if field == "*" || !validIdent(field) {
		return nil, argError(op, "invalid field name %q", field)
	}

	query, err := buildSelect(op, table, params, []string{field})
	if err != nil {
		return nil, err
	}

	// The driver may fold the column label (PostgreSQL lowercases unquoted
	// names), so read the single projected column by position.
	values := []any{}
	err = db.each(ctx, op, query, params, func(rec Record) error {
		values = append(values, rec.At(0))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return values, nil
}

// DeleteRecord deletes the rows of table matching every key of values and
// returns the number of rows removed. An empty filter is rejected before
// any statement is sent.
func (db *DB) DeleteRecord(ctx context.Context, table string, values Params) (int64, error) {
	const op = "delete_record"

	query, err := db.buildDelete(table, values)
	if err != nil {
		return 0, err
	}
	return db.exec(ctx, op, query, values)
}

// Execute runs a symbolic statement that returns no rows (INSERT, UPDATE,
// DDL) and reports the affected row count.
func (db *DB) Execute(ctx context.Context, query string, params Params) (int64, error) {
	return db.exec(ctx, "execute", db.SubstituteTables(query), params)
}

func (db *DB) exec(ctx context.Context, op, query string, params Params) (affected int64, err error) {
	start := time.Now()
	defer func() {
		db.logStatement(op, query, params, time.Since(start), err)
	}()

	bound, args, err := db.prepare(query, params)
	if err != nil {
		return 0, execError(op, query, err)
	}

	res, err := db.conn.ExecContext(ctx, bound, args...)
	if err != nil {
		return 0, execError(op, query, err)
	}

	affected, err = res.RowsAffected()
	if err != nil {
		return 0, execError(op, query, err)
	}
	return affected, nil
}
