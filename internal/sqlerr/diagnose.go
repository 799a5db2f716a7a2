package sqlerr

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	mssql "github.com/microsoft/go-mssqldb"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Diagnose returns the normalized diagnostic for the first driver error in
// err's chain, or nil when the chain holds no known driver error.
func Diagnose(err error) *Error {
	if err == nil {
		return nil
	}

	var sqlErr *Error
	if errors.As(err, &sqlErr) {
		return sqlErr
	}

	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		return ConvertPgError(pgerr)
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return ConvertSQLiteError(liteErr)
	}

	var msErr mssql.Error
	if errors.As(err, &msErr) {
		return ConvertMSSQLError(msErr)
	}

	return nil
}

// ConvertPgError converts a pgconn.PgError (raw Postgres error) into Error.
func ConvertPgError(src *pgconn.PgError) *Error {
	return &Error{
		Engine:         EnginePostgres,
		Code:           MapCode(src.Code),
		Severity:       MapSeverity(src.Severity),
		DatabaseCode:   src.Code,
		Message:        src.Message,
		SchemaName:     src.SchemaName,
		TableName:      src.TableName,
		ColumnName:     src.ColumnName,
		DataTypeName:   src.DataTypeName,
		ConstraintName: src.ConstraintName,
		driverErr:      src,
	}
}

// "UNIQUE constraint failed: cla_users.email"
var sqliteConstraintRe = regexp.MustCompile(`constraint failed: ([A-Za-z0-9_]+)\.([A-Za-z0-9_]+)`)

// "no such table: cla_users", "no such column: extra"
var sqliteMissingRe = regexp.MustCompile(`no such (table|column): ([A-Za-z0-9_.]+)`)

// ConvertSQLiteError converts a modernc sqlite error into Error.
// SQLite has no structured table/column fields, they are recovered from the
// message where the engine puts them.
func ConvertSQLiteError(src *sqlite.Error) *Error {
	code := src.Code()
	msg := src.Error()

	out := &Error{
		Engine:       EngineSQLite,
		Code:         mapSQLiteCode(code, msg),
		Severity:     SeverityError,
		DatabaseCode: strconv.Itoa(code),
		Message:      msg,
		driverErr:    src,
	}

	if m := sqliteConstraintRe.FindStringSubmatch(msg); m != nil {
		out.TableName = m[1]
		out.ColumnName = m[2]
	}
	if m := sqliteMissingRe.FindStringSubmatch(msg); m != nil {
		if m[1] == "table" {
			out.TableName = m[2]
		} else {
			out.ColumnName = m[2]
		}
	}

	return out
}

func mapSQLiteCode(code int, msg string) Code {
	switch code {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return UniqueViolation
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return ForeignKeyViolation
	case sqlite3.SQLITE_CONSTRAINT_NOTNULL:
		return NotNullViolation
	case sqlite3.SQLITE_CONSTRAINT_CHECK:
		return CheckViolation
	case sqlite3.SQLITE_INTERRUPT:
		return QueryCanceled
	case sqlite3.SQLITE_CANTOPEN:
		return ConnectionFailure
	}

	// Primary result code SQLITE_ERROR carries the detail only in the text.
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return UniqueViolation
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return ForeignKeyViolation
	case strings.Contains(msg, "NOT NULL constraint failed"):
		return NotNullViolation
	case strings.Contains(msg, "CHECK constraint failed"):
		return CheckViolation
	case strings.Contains(msg, "no such table"):
		return UndefinedTable
	case strings.Contains(msg, "no such column"), strings.Contains(msg, "has no column named"):
		return UndefinedColumn
	case strings.Contains(msg, "syntax error"):
		return SyntaxError
	}
	return Other
}

// ConvertMSSQLError converts a go-mssqldb error into Error.
func ConvertMSSQLError(src mssql.Error) *Error {
	return &Error{
		Engine:       EngineSQLServer,
		Code:         mapMSSQLCode(src.Number, src.Message),
		Severity:     mapMSSQLSeverity(src.Class),
		DatabaseCode: strconv.Itoa(int(src.Number)),
		Message:      src.Message,
		driverErr:    src,
	}
}

func mapMSSQLCode(number int32, msg string) Code {
	switch number {
	case 2627, 2601:
		return UniqueViolation
	case 515:
		return NotNullViolation
	case 547:
		// 547 covers both FOREIGN KEY and CHECK conflicts.
		if strings.Contains(msg, "FOREIGN KEY") || strings.Contains(msg, "REFERENCE") {
			return ForeignKeyViolation
		}
		return CheckViolation
	case 208:
		return UndefinedTable
	case 207:
		return UndefinedColumn
	case 102, 156:
		return SyntaxError
	case 1205:
		return DeadlockDetected
	}
	return Other
}

func mapMSSQLSeverity(class uint8) Severity {
	switch {
	case class >= 20:
		return SeverityFatal
	case class >= 11:
		return SeverityError
	default:
		return SeverityInfo
	}
}
