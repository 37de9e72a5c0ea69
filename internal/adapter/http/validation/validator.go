package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"tasksapi/internal/core/domain"
	"tasksapi/internal/core/util"

	"github.com/go-playground/locales/es"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	es_translations "github.com/go-playground/validator/v10/translations/es"
)

var (
	Validator  *validator.Validate
	Translator ut.Translator

	usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)
)

func init() {
	Validator = validator.New(validator.WithRequiredStructEnabled())

	Validator.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}

		return name
	})

	mustRegister("iso_datetime", func(fl validator.FieldLevel) bool {
		return util.IsDatetime(fl.Field().String())
	})

	mustRegister("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})

	// max counts runes; max_bytes bounds the encoded length
	mustRegister("max_bytes", func(fl validator.FieldLevel) bool {
		limit, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}

		return len(fl.Field().String()) <= limit
	})

	spanish := es.New()
	uni := ut.New(spanish, spanish)

	var found bool
	Translator, found = uni.GetTranslator("es")

	if !found {
		panic("translator es not found")
	}

	if err := es_translations.RegisterDefaultTranslations(Validator, Translator); err != nil {
		panic(err)
	}

	addCustomTranslations()
}

func mustRegister(tag string, fn validator.Func) {
	if err := Validator.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

func addCustomTranslations() {
	Validator.RegisterTranslation("required", Translator, func(ut ut.Translator) error {
		return ut.Add("required", "{0} es obligatorio", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("required", getFieldName(fe.Field()))
		return t
	})

	Validator.RegisterTranslation("max", Translator, func(ut ut.Translator) error {
		return ut.Add("max", "{0} debe tener como máximo {1} caracteres", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("max", getFieldName(fe.Field()), fe.Param())
		return t
	})

	Validator.RegisterTranslation("max_bytes", Translator, func(ut ut.Translator) error {
		return ut.Add("max_bytes", "{0} debe ocupar como máximo {1} bytes", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("max_bytes", getFieldName(fe.Field()), fe.Param())
		return t
	})

	Validator.RegisterTranslation("email", Translator, func(ut ut.Translator) error {
		return ut.Add("email", "{0} debe ser un email válido", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("email", getFieldName(fe.Field()))
		return t
	})

	Validator.RegisterTranslation("numeric", Translator, func(ut ut.Translator) error {
		return ut.Add("numeric", "{0} debe ser un identificador numérico", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("numeric", getFieldName(fe.Field()))
		return t
	})

	Validator.RegisterTranslation("iso_datetime", Translator, func(ut ut.Translator) error {
		return ut.Add("iso_datetime", "{0} debe tener el formato AAAA-MM-DDThh:mm[:ss[.uuuuuu]][+HH:MM|-HH:MM|Z]", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("iso_datetime", getFieldName(fe.Field()))
		return t
	})

	Validator.RegisterTranslation("username", Translator, func(ut ut.Translator) error {
		return ut.Add("username", "{0} solo puede contener letras, números y los caracteres @/./+/-/_", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("username", getFieldName(fe.Field()))
		return t
	})
}

func getFieldName(field string) string {
	fieldNames := map[string]string{
		"title":       "Título",
		"description": "Descripción",
		"datetime":    "Fecha y hora",
		"done":        "Finalizada",
		"user":        "Usuario",
		"username":    "Nombre de usuario",
		"email":       "Email",
		"password":    "Contraseña",
		"name":        "Nombre",
		"last_name":   "Apellido",
	}

	if name, exists := fieldNames[field]; exists {
		return name
	}

	return field
}

// FormatValidationErrors turns validator errors into field errors keyed by
// the payload name of each field.
func FormatValidationErrors(err error) domain.FieldErrors {
	fieldErrors := domain.FieldErrors{}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, fieldError := range validationErrors {
			fieldErrors.Add(fieldError.Field(), fieldError.Translate(Translator))
		}
	}

	return fieldErrors
}

// Bind fills dst, a pointer to a request struct, from a decoded payload and
// validates it. Type mismatches and failed rules come back together as
// domain.FieldErrors.
func Bind(params map[string]any, dst any) error {
	fieldErrors, err := decode(params, dst)
	if err != nil {
		return err
	}

	if err := Validator.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return err
		}

		for field, messages := range FormatValidationErrors(err) {
			// a field that could not be decoded already carries its error
			if _, exists := fieldErrors[field]; exists {
				continue
			}

			fieldErrors[field] = messages
		}
	}

	return fieldErrors.Err()
}
