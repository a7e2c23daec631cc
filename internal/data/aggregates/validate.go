package aggregates

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	domainagg "github.com/yungbote/lore-backend/internal/domain/aggregates"
)

// NewValidator returns a validator that reports fields by their JSON name.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return f.Name
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// validateInput runs struct validation and converts failures into a
// field-level validation error.
func validateInput(v *validator.Validate, op string, in any) error {
	err := v.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domainagg.NewError(domainagg.CodeInternal, op, "input validation failed", err)
	}
	fields := domainagg.FieldErrors{}
	for _, fe := range verrs {
		fields.Add(fieldKey(fe), fieldMessage(fe))
	}
	return domainagg.NewValidationError(op, fields)
}

// fieldKey drops the struct name and a trailing slice index:
// "CreateVocabularyInput.learning_resource_types[1]" -> "learning_resource_types".
func fieldKey(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		ns = rest
	}
	if strings.HasSuffix(ns, "]") {
		if i := strings.LastIndex(ns, "["); i > 0 {
			ns = ns[:i]
		}
	}
	return ns
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		if fe.Kind() == reflect.String && isElement(fe) {
			return "This field may not be blank."
		}
		return "This field is required."
	case "oneof":
		return fmt.Sprintf("%q is not a valid choice.", fmt.Sprint(derefValue(fe.Value())))
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "min":
		if fe.Param() == "1" {
			return "This field may not be blank."
		}
		return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
	default:
		return fmt.Sprintf("Failed the %q check.", fe.Tag())
	}
}

func isElement(fe validator.FieldError) bool {
	return strings.HasSuffix(fe.Field(), "]")
}

func derefValue(v any) any {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return ""
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return ""
	}
	return rv.Interface()
}
