package database

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
)

// compileNamed rewrites the `:name` placeholders of query into the bindvar
// style of bindType and returns the arguments in placeholder order.
//
// Only placeholders outside quoted text are rewritten:
//   - '...' string literals ('' escapes a quote)
//   - "..." and `...` quoted identifiers
//   - -- line and /* block */ comments
//
// A double colon is a cast (x::int) and passes through unchanged. A name
// used twice is bound twice.
func compileNamed(query string, bindType int, params Params) (string, []any, error) {
	var (
		out  strings.Builder
		args []any
	)
	out.Grow(len(query))

	for i := 0; i < len(query); {
		c := query[i]

		switch {
		case c == '\'' || c == '"' || c == '`':
			end := closingQuote(query, i+1, c)
			out.WriteString(query[i:end])
			i = end

		case c == '-' && i+1 < len(query) && query[i+1] == '-':
			end := strings.IndexByte(query[i:], '\n')
			if end < 0 {
				end = len(query) - i
			}
			out.WriteString(query[i : i+end])
			i += end

		case c == '/' && i+1 < len(query) && query[i+1] == '*':
			end := strings.Index(query[i+2:], "*/")
			if end < 0 {
				end = len(query)
			} else {
				end = i + 2 + end + 2
			}
			out.WriteString(query[i:end])
			i = end

		case c == ':' && i+1 < len(query) && query[i+1] == ':':
			out.WriteString("::")
			i += 2

		case c == ':' && i+1 < len(query) && isNameStart(query[i+1]):
			j := i + 1
			for j < len(query) && isNameChar(query[j]) {
				j++
			}
			name := query[i+1 : j]

			v, ok := params[name]
			if !ok {
				return "", nil, fmt.Errorf("could not find name %s in params", name)
			}
			args = append(args, v)
			out.WriteString(bindvar(bindType, name, len(args)))
			i = j

		default:
			out.WriteByte(c)
			i++
		}
	}

	return out.String(), args, nil
}

// closingQuote returns the index just past the quote that closes the quoted
// text starting at from. A doubled quote is an escaped one. Unterminated
// text runs to the end of the query.
func closingQuote(query string, from int, quote byte) int {
	for i := from; i < len(query); i++ {
		if query[i] != quote {
			continue
		}
		if i+1 < len(query) && query[i+1] == quote {
			i++
			continue
		}
		return i + 1
	}
	return len(query)
}

func bindvar(bindType int, name string, n int) string {
	switch bindType {
	case sqlx.DOLLAR:
		return "$" + strconv.Itoa(n)
	case sqlx.AT:
		return "@p" + strconv.Itoa(n)
	case sqlx.NAMED:
		return ":" + name
	default:
		return "?"
	}
}

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameChar(c byte) bool {
	return isNameStart(c) || (c >= '0' && c <= '9')
}
