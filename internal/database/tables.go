package database

import (
	"regexp"
	"sort"
	"strings"
)

// tableRe matches symbolic table references. The match is textual: a
// `{name}` inside a string literal or comment is rewritten as well.
var tableRe = regexp.MustCompile(`\{(.*?)\}`)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SubstituteTables replaces every `{name}` in query with prefix+name.
func (db *DB) SubstituteTables(query string) string {
	return substituteTables(db.prefix, query)
}

func substituteTables(prefix, query string) string {
	return tableRe.ReplaceAllString(query, prefix+"${1}")
}

// Table returns the physical name of a symbolic table.
func (db *DB) Table(name string) string {
	return db.prefix + name
}

func validIdent(name string) bool {
	return identRe.MatchString(name)
}

// sortedKeys returns the params keys in ascending lexical order so the
// generated SQL does not depend on map iteration.
func sortedKeys(params Params) []string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// whereClause renders "k1 = :k1 AND k2 = :k2" for the given keys.
func whereClause(keys []string) string {
	conds := make([]string, len(keys))
	for i, k := range keys {
		conds[i] = k + " = :" + k
	}
	return strings.Join(conds, " AND ")
}

// BuildSelect returns the symbolic SQL of a filtered read:
//
//	SELECT <fields> FROM {table} [WHERE k = :k AND ...]
//
// No fields selects "*". Table, fields and filter keys must be plain
// identifiers; values are only ever bound.
func BuildSelect(table string, params Params, fields ...string) (string, error) {
	const op = "build_select"

	if !validIdent(table) {
		return "", argError(op, "invalid table name %q", table)
	}

	projection := "*"
	if len(fields) > 0 {
		for _, f := range fields {
			if f != "*" && !validIdent(f) {
				return "", argError(op, "invalid field name %q", f)
			}
		}
		projection = strings.Join(fields, ", ")
	}

	query := "SELECT " + projection + " FROM {" + table + "}"

	if len(params) > 0 {
		keys := sortedKeys(params)
		for _, k := range keys {
			if !validIdent(k) {
				return "", argError(op, "invalid filter key %q", k)
			}
		}
		query += " WHERE " + whereClause(keys)
	}

	return query, nil
}

// buildDelete returns the physical DELETE statement for a non-empty filter.
func (db *DB) buildDelete(table string, values Params) (string, error) {
	const op = "delete_record"

	if !validIdent(table) {
		return "", argError(op, "invalid table name %q", table)
	}
	if len(values) == 0 {
		return "", argError(op, "refusing to delete from %s without a filter", table)
	}

	keys := sortedKeys(values)
	for _, k := range keys {
		if !validIdent(k) {
			return "", argError(op, "invalid filter key %q", k)
		}
	}

	return "DELETE FROM " + db.Table(table) + " WHERE " + whereClause(keys), nil
}
