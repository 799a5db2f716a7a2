package database

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/jmoiron/sqlx/reflectx"
	"github.com/spf13/cast"
)

// Model is a typed row. TableName is the symbolic (unprefixed) table and
// SetData populates the model from a record; in strict mode a column the
// model does not declare is an ErrUnknownField error.
type Model interface {
	TableName() string
	SetData(rec Record, strict bool) error
}

// GetModels reads the table of T filtered by params and hydrates one fresh
// T per row in strict mode.
//
//	users, err := database.GetModels[model.User](ctx, db, database.Params{"active": 1})
func GetModels[T any, PT interface {
	*T
	Model
}](ctx context.Context, db *DB, params Params) ([]PT, error) {
	models, _, err := getModels[T, PT](ctx, db, "get_models", params)
	return models, err
}

// GetModel is GetModels with the GetRecord cardinality: nil, nil when no
// row matches and ErrAmbiguous when more than one does.
func GetModel[T any, PT interface {
	*T
	Model
}](ctx context.Context, db *DB, params Params) (PT, error) {
	const op = "get_model"

	models, query, err := getModels[T, PT](ctx, db, op, params)
	if err != nil {
		return nil, err
	}
	if err := checkSingle(op, query, len(models)); err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	return models[0], nil
}

func getModels[T any, PT interface {
	*T
	Model
}](ctx context.Context, db *DB, op string, params Params) ([]PT, string, error) {
	table := PT(new(T)).TableName()

	query, err := buildSelect(op, table, params, nil)
	if err != nil {
		return nil, "", err
	}

	models := []PT{}
	err = db.each(ctx, op, query, params, func(rec Record) error {
		m := PT(new(T))
		if err := m.SetData(rec, true); err != nil {
			return hydrationError(op, table, err)
		}
		models = append(models, m)
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return models, db.SubstituteTables(query), nil
}

func hydrationError(op, table string, err error) error {
	if dalErr, ok := err.(*Error); ok {
		cp := *dalErr
		cp.Op = op
		return &cp
	}
	return &Error{
		Op:   op,
		Kind: KindHydration,
		Err:  fmt.Errorf("hydrate %s: %w", table, err),
	}
}

// fieldMapper maps columns onto struct fields through `db` tags; untagged
// fields use their lower-cased name, as sqlx does.
var fieldMapper = reflectx.NewMapperFunc("db", strings.ToLower)

var (
	scannerType = reflect.TypeOf((*sql.Scanner)(nil)).Elem()
	timeType    = reflect.TypeOf(time.Time{})
)

// SetFields populates the struct pointed to by dst from rec. Values are
// coerced to the field type (int64 to int, string to time.Time, ...);
// sql.Scanner fields scan the raw value. A column matches a field by its
// exact name first, then by its lower-cased name, so a `UserID` column
// fills a field tagged `db:"userid"`. Without strict, columns with no
// matching field are skipped.
func SetFields(dst any, rec Record, strict bool) error {
	const op = "set_data"

	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return argError(op, "destination must be a non-nil struct pointer, got %T", dst)
	}
	v = v.Elem()

	fields := fieldMapper.TypeMap(v.Type())
	for _, col := range rec.Columns() {
		fi := fields.GetByPath(col)
		if fi == nil {
			fi = fields.GetByPath(strings.ToLower(col))
		}
		if fi == nil {
			if strict {
				return &Error{
					Op:   op,
					Kind: KindUnknownField,
					Err:  fmt.Errorf("column %q is not a field of %s", col, v.Type()),
				}
			}
			continue
		}

		field := reflectx.FieldByIndexes(v, fi.Index)
		if err := assign(field, rec.Value(col)); err != nil {
			return &Error{
				Op:   op,
				Kind: KindHydration,
				Err:  fmt.Errorf("column %q: %w", col, err),
			}
		}
	}
	return nil
}

func assign(field reflect.Value, value any) error {
	if field.CanAddr() && field.Addr().Type().Implements(scannerType) {
		return field.Addr().Interface().(sql.Scanner).Scan(value)
	}

	if value == nil {
		field.Set(reflect.Zero(field.Type()))
		return nil
	}

	if field.Kind() == reflect.Pointer {
		ptr := reflect.New(field.Type().Elem())
		if err := assign(ptr.Elem(), value); err != nil {
			return err
		}
		field.Set(ptr)
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		s, err := cast.ToStringE(value)
		if err != nil {
			return err
		}
		field.SetString(s)

	case reflect.Bool:
		b, err := cast.ToBoolE(value)
		if err != nil {
			return err
		}
		field.SetBool(b)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := cast.ToInt64E(value)
		if err != nil {
			return err
		}
		if field.OverflowInt(n) {
			return fmt.Errorf("value %d overflows %s", n, field.Type())
		}
		field.SetInt(n)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := cast.ToUint64E(value)
		if err != nil {
			return err
		}
		if field.OverflowUint(n) {
			return fmt.Errorf("value %d overflows %s", n, field.Type())
		}
		field.SetUint(n)

	case reflect.Float32, reflect.Float64:
		f, err := cast.ToFloat64E(value)
		if err != nil {
			return err
		}
		field.SetFloat(f)

	default:
		if field.Type() == timeType {
			t, err := cast.ToTimeE(value)
			if err != nil {
				return err
			}
			field.Set(reflect.ValueOf(t))
			return nil
		}

		rv := reflect.ValueOf(value)
		switch {
		case rv.Type().AssignableTo(field.Type()):
			field.Set(rv)
		case rv.Type().ConvertibleTo(field.Type()):
			field.Set(rv.Convert(field.Type()))
		default:
			return fmt.Errorf("cannot assign %T to %s", value, field.Type())
		}
	}
	return nil
}
