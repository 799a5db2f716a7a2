package sqlerr

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/deppfellow/cla-admin/internal/errs"
)

// ErrCode reports the mapped Code for err.
//
// Behavior:
//   - err (or anything it wraps) is a driver error Diagnose understands:
//     its Code
//   - otherwise Other
//
// Handy for branching on the category without building an HTTP error,
// e.g. ErrCode(err) == UniqueViolation.
func ErrCode(err error) Code {
	if d := Diagnose(err); d != nil {
		return d.Code
	}
	return Other
}

// generateErrorCode creates application codes of the form
//
//	<DOMAIN>_<ACTION>
//
// Examples:
//
//	users     + UniqueViolation     => USER_ALREADY_EXISTS
//	extracts  + ForeignKeyViolation => EXTRACT_NOT_FOUND
//	""        + CheckViolation      => RECORD_INVALID
//
// DOMAIN is the upper-cased table name with one trailing S dropped. The
// codes are for clients to branch on; messages are built separately.
func generateErrorCode(tableName string, errType Code) string {
	if tableName == "" {
		tableName = "RECORD"
	}

	domain := strings.ToUpper(tableName)

	// Naive singularization: "USERS" -> "USER".
	if strings.HasSuffix(domain, "S") && len(domain) > 1 {
		domain = domain[:len(domain)-1]
	}

	action := "ERROR"
	switch errType {
	case ForeignKeyViolation:
		action = "NOT_FOUND"
	case UniqueViolation:
		action = "ALREADY_EXISTS"
	case NotNullViolation:
		action = "REQUIRED"
	case CheckViolation:
		action = "INVALID"
	}

	return fmt.Sprintf("%s_%s", domain, action)
}

// formatUserFriendlyMessage produces a client-facing message from the
// table/column metadata of the diagnostic.
func formatUserFriendlyMessage(sqlErr *Error) string {
	entityName := getEntityName(sqlErr.TableName, sqlErr.ColumnName)

	switch sqlErr.Code {
	case ForeignKeyViolation:
		// "The referenced User does not exist"
		return fmt.Sprintf("The referenced %s does not exist", entityName)

	case UniqueViolation:
		// "identifier" is replaced later when the column can be inferred:
		// "A User with this Email already exists".
		return fmt.Sprintf("A %s with this identifier already exists", entityName)

	case NotNullViolation:
		fieldName := humanizeText(sqlErr.ColumnName)
		if fieldName == "" {
			fieldName = "field"
		}
		return fmt.Sprintf("The %s is required", fieldName)

	case CheckViolation:
		// "The Status value does not meet required conditions"
		fieldName := humanizeText(sqlErr.ColumnName)
		if fieldName != "" {
			return fmt.Sprintf("The %s value does not meet required conditions", fieldName)
		}
		return "One or more values do not meet required conditions"

	default:
		return "An error occurred while processing your request"
	}
}

// getEntityName infers the entity a message talks about.
//
// Priority:
//  1. a "<x>_id" column names its target: "user_id" -> "User"
//  2. the singularized table name: "extracts" -> "Extract"
//  3. "record"
func getEntityName(tableName, columnName string) string {
	if columnName != "" && strings.HasSuffix(strings.ToLower(columnName), "_id") {
		entity := strings.TrimSuffix(strings.ToLower(columnName), "_id")
		return humanizeText(entity)
	}

	if tableName != "" {
		entity := tableName
		if strings.HasSuffix(entity, "s") && len(entity) > 1 {
			entity = entity[:len(entity)-1]
		}
		return humanizeText(entity)
	}

	return "record"
}

// humanizeText converts snake_case into Title Case: "first_name" -> "First Name".
func humanizeText(text string) string {
	if text == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(text, "_", " "))
}

var uniqueKeyRe = regexp.MustCompile(`_([^_]+)_(?:key|ukey)$`)

// extractColumnForUniqueViolation infers the column from a constraint name.
// Drivers other than PostgreSQL rarely report the column itself, so the
// usual naming conventions are tried:
//
//	unique_users_email => email
//	users_email_key    => email
//	users_email_ukey   => email
//
// Anything else yields "".
func extractColumnForUniqueViolation(constraintName string) string {
	if constraintName == "" {
		return ""
	}

	if strings.HasPrefix(constraintName, "unique_") {
		parts := strings.Split(constraintName, "_")
		if len(parts) >= 3 {
			return parts[len(parts)-1]
		}
	}

	matches := uniqueKeyRe.FindStringSubmatch(constraintName)
	if len(matches) > 1 {
		return matches[1]
	}

	return ""
}

// HandleError converts a low-level database error into an application-level
// HTTP error. tablePrefix is stripped from physical table names so messages
// speak about "user" rather than "cla_user".
//
// Output:
//   - *errs.HTTPError: returned unchanged
//   - driver error: a 400 for constraint violations and unknown
//     tables or columns, 500 otherwise
//   - ErrNoRows: 404
//   - anything else: 500
//
// Example, a duplicate email on cla_users:
//
//	{ "code": "USER_ALREADY_EXISTS", "message": "A User with this Email already exists", "status": 400 }
func HandleError(err error, tablePrefix string) error {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	if sqlErr := Diagnose(err); sqlErr != nil {
		table := strings.TrimPrefix(sqlErr.TableName, tablePrefix)
		named := *sqlErr
		named.TableName = table

		errorCode := generateErrorCode(table, sqlErr.Code)
		userMessage := formatUserFriendlyMessage(&named)

		switch sqlErr.Code {
		case ForeignKeyViolation:
			return errs.NewBadRequestError(userMessage, false, &errorCode, nil, nil)

		case UniqueViolation:
			columnName := sqlErr.ColumnName
			if columnName == "" {
				columnName = extractColumnForUniqueViolation(sqlErr.ConstraintName)
			}
			if columnName != "" {
				userMessage = strings.ReplaceAll(userMessage, "identifier", humanizeText(columnName))
			}
			return errs.NewBadRequestError(userMessage, true, &errorCode, nil, nil)

		case NotNullViolation:
			// The column doubles as the field the client has to fill.
			fieldErrors := []errs.FieldError{
				{
					Field: strings.ToLower(sqlErr.ColumnName),
					Error: "is required",
				},
			}
			return errs.NewBadRequestError(userMessage, true, &errorCode, fieldErrors, nil)

		case CheckViolation:
			return errs.NewBadRequestError(userMessage, true, &errorCode, nil, nil)

		case UndefinedTable, UndefinedColumn:
			// Usually a typo in a table or filter name of an admin query.
			return errs.NewBadRequestError("The requested table or column does not exist", false, nil, nil, nil)

		default:
			return errs.NewInternalServerError()
		}
	}

	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
		return errs.NewNotFoundError("Resource not found", false, nil)
	}

	return errs.NewInternalServerError()
}
