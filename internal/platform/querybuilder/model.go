package querybuilder

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

type dbField struct {
	index  int
	column string
}

// fieldCache maps a struct type to its db-tagged fields.
var fieldCache sync.Map

// InsertModel builds a one-row INSERT from the exported db-tagged fields of model.
// A tag of "-" or an empty name skips the field.
func InsertModel(table string, model any, suffix string) (string, []any, error) {
	value := reflect.Indirect(reflect.ValueOf(model))
	if !value.IsValid() || value.Kind() != reflect.Struct {
		return "", nil, fmt.Errorf("insert %s: model must be a non-nil struct, got %T", table, model)
	}

	fields := dbFields(value.Type())
	if len(fields) == 0 {
		return "", nil, fmt.Errorf("insert %s: %s has no db columns", table, value.Type())
	}

	cols := make([]string, len(fields))
	vals := make([]any, len(fields))
	for i, f := range fields {
		cols[i] = f.column
		vals[i] = value.Field(f.index).Interface()
	}
	return InsertInto(table).Columns(cols...).Values(vals...).Suffix(suffix).ToSQL()
}

func dbFields(typ reflect.Type) []dbField {
	if cached, ok := fieldCache.Load(typ); ok {
		return cached.([]dbField)
	}

	var fields []dbField
	for i := range typ.NumField() {
		sf := typ.Field(i)
		if !sf.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(sf.Tag.Get("db"), ",")
		if name = strings.TrimSpace(name); name == "" || name == "-" {
			continue
		}
		fields = append(fields, dbField{index: i, column: name})
	}
	fieldCache.Store(typ, fields)
	return fields
}
