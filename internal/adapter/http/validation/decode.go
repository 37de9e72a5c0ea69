package validation

import (
	"encoding/json"
	"errors"
	"reflect"
	"strconv"
	"strings"

	"tasksapi/internal/core/domain"
)

var errNotStructPointer = errors.New("validation: destination must be a pointer to a struct")

func decode(params map[string]any, dst any) (domain.FieldErrors, error) {
	target := reflect.ValueOf(dst)
	if target.Kind() != reflect.Pointer || target.Elem().Kind() != reflect.Struct {
		return nil, errNotStructPointer
	}

	target = target.Elem()
	targetType := target.Type()
	fieldErrors := domain.FieldErrors{}

	for i := 0; i < targetType.NumField(); i++ {
		field := targetType.Field(i)
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]

		if name == "" || name == "-" || !field.IsExported() {
			continue
		}

		raw, exists := params[name]
		if !exists || raw == nil {
			continue
		}

		switch field.Type.Kind() {
		case reflect.String:
			value, ok := asString(raw)
			if !ok {
				fieldErrors.Add(name, getFieldName(name)+" debe ser un texto válido")
				continue
			}

			target.Field(i).SetString(value)
		case reflect.Bool:
			value, ok := asBool(raw)
			if !ok {
				fieldErrors.Add(name, getFieldName(name)+" debe ser un booleano válido")
				continue
			}

			target.Field(i).SetBool(value)
		}
	}

	return fieldErrors, nil
}

func asString(raw any) (string, bool) {
	switch value := raw.(type) {
	case string:
		return value, true
	case json.Number:
		return value.String(), true
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64), true
	case int:
		return strconv.Itoa(value), true
	}

	return "", false
}

func asBool(raw any) (bool, bool) {
	switch value := raw.(type) {
	case bool:
		return value, true
	case json.Number:
		return parseBool(value.String())
	case string:
		return parseBool(value)
	}

	return false, false
}

func parseBool(value string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "on", "yes":
		return true, true
	case "false", "0", "off", "no", "":
		return false, true
	}

	return false, false
}
