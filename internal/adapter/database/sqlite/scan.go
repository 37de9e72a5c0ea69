package sqlite

import (
	"database/sql"
	"fmt"
	"reflect"
	"strings"
	"time"
)

var timeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Scanner maps result columns onto struct fields by their `db` tag, falling
// back to the CamelCase form of the column name.
type Scanner struct{}

func NewScanner() *Scanner {
	return &Scanner{}
}

// ScanOne advances rows once and scans that row into dest. It returns
// sql.ErrNoRows when the result is empty.
func (s *Scanner) ScanOne(rows *sql.Rows, dest interface{}) error {
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return err
		}
		return sql.ErrNoRows
	}

	return s.ScanRowToStruct(rows, dest)
}

// ScanRowToStruct scans the current row. The caller owns rows.Next.
func (s *Scanner) ScanRowToStruct(rows *sql.Rows, dest interface{}) error {
	destValue := reflect.ValueOf(dest)

	if destValue.Kind() != reflect.Ptr || destValue.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("dest must be a pointer to struct")
	}

	destElem := destValue.Elem()
	destType := destElem.Type()

	columns, err := rows.Columns()
	if err != nil {
		return err
	}

	scanArgs := make([]interface{}, len(columns))
	for i := range scanArgs {
		scanArgs[i] = new(interface{})
	}

	if err := rows.Scan(scanArgs...); err != nil {
		return err
	}

	for i, colName := range columns {
		val := *(scanArgs[i].(*interface{}))

		field, found := s.findStructField(destType, colName)
		if !found {
			continue
		}

		if err := s.setFieldValue(destElem.FieldByIndex(field.Index), val); err != nil {
			return fmt.Errorf("column %s: %w", colName, err)
		}
	}

	return nil
}

func (s *Scanner) ScanRowsToSlice(rows *sql.Rows, dest interface{}) error {
	destValue := reflect.ValueOf(dest)

	if destValue.Kind() != reflect.Ptr || destValue.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("dest must be a pointer to slice")
	}

	sliceValue := destValue.Elem()
	elemType := sliceValue.Type().Elem()
	isPointer := elemType.Kind() == reflect.Ptr

	if isPointer {
		elemType = elemType.Elem()
	}

	if elemType.Kind() != reflect.Struct {
		return fmt.Errorf("slice elements must be structs or pointers to structs")
	}

	for rows.Next() {
		elemValue := reflect.New(elemType)

		if err := s.ScanRowToStruct(rows, elemValue.Interface()); err != nil {
			return err
		}

		if isPointer {
			sliceValue.Set(reflect.Append(sliceValue, elemValue))
		} else {
			sliceValue.Set(reflect.Append(sliceValue, elemValue.Elem()))
		}
	}

	return rows.Err()
}

func (s *Scanner) findStructField(structType reflect.Type, colName string) (reflect.StructField, bool) {
	colNameLower := strings.ToLower(colName)

	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		if tag := field.Tag.Get("db"); tag != "" && strings.ToLower(tag) == colNameLower {
			return field, true
		}
	}

	return structType.FieldByName(s.snakeToCamel(colName))
}

func (s *Scanner) snakeToCamel(snake string) string {
	parts := strings.Split(snake, "_")
	for i := range parts {
		if len(parts[i]) > 0 {
			parts[i] = strings.ToUpper(parts[i][:1]) + strings.ToLower(parts[i][1:])
		}
	}
	return strings.Join(parts, "")
}

func (s *Scanner) setFieldValue(field reflect.Value, val interface{}) error {
	if !field.CanSet() {
		return fmt.Errorf("field cannot be set")
	}

	if val == nil {
		return nil
	}

	if b, ok := val.([]byte); ok {
		val = string(b)
	}

	fieldType := field.Type()

	if fieldType == reflect.TypeOf(time.Time{}) {
		parsed, err := s.toTime(val)
		if err != nil {
			return err
		}
		field.Set(reflect.ValueOf(parsed))
		return nil
	}

	switch fieldType.Kind() {
	case reflect.String:
		field.SetString(fmt.Sprintf("%v", val))
	case reflect.Int, reflect.Int64, reflect.Int32:
		switch v := val.(type) {
		case int64:
			field.SetInt(v)
		case int:
			field.SetInt(int64(v))
		default:
			return fmt.Errorf("cannot assign %T to %s", val, fieldType)
		}
	case reflect.Bool:
		switch v := val.(type) {
		case bool:
			field.SetBool(v)
		case int64:
			field.SetBool(v != 0)
		default:
			return fmt.Errorf("cannot assign %T to %s", val, fieldType)
		}
	case reflect.Float64, reflect.Float32:
		if f, ok := val.(float64); ok {
			field.SetFloat(f)
		}
	default:
		valValue := reflect.ValueOf(val)
		if !valValue.Type().AssignableTo(fieldType) {
			return fmt.Errorf("cannot assign %T to %s", val, fieldType)
		}
		field.Set(valValue)
	}

	return nil
}

func (s *Scanner) toTime(val interface{}) (time.Time, error) {
	switch v := val.(type) {
	case time.Time:
		return v.UTC(), nil
	case string:
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, v); err == nil {
				return parsed.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("unparseable time %q", v)
	case int64:
		return time.Unix(v, 0).UTC(), nil
	}

	return time.Time{}, fmt.Errorf("cannot assign %T to time.Time", val)
}
