package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ErrInvalid wraps every validation failure
var ErrInvalid = errors.New("validation failed")

// Validator checks `validate` struct tags. Supported rules are required,
// min=N and max=N; bounds apply to integer values and string rune counts.
type Validator struct{}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{}
}

// Validate validates a struct
func (v *Validator) Validate(s interface{}) error {
	val := reflect.ValueOf(s)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	if val.Kind() != reflect.Struct {
		return fmt.Errorf("validate expects a struct, got %s", val.Kind())
	}

	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)
		tag := fieldType.Tag.Get("validate")

		if tag == "" {
			continue
		}

		if err := v.validateField(field, tag); err != nil {
			return fmt.Errorf("%w: %s %v", ErrInvalid, fieldName(fieldType), err)
		}
	}

	return nil
}

// validateField validates a single field
func (v *Validator) validateField(field reflect.Value, tag string) error {
	for _, rule := range strings.Split(tag, ",") {
		name, arg, _ := strings.Cut(strings.TrimSpace(rule), "=")

		switch name {
		case "required":
			if field.IsZero() {
				return errors.New("is required")
			}

		case "min", "max":
			bound, err := strconv.ParseInt(arg, 10, 64)
			if err != nil {
				return fmt.Errorf("bad %s rule %q", name, arg)
			}
			n, ok := measure(field)
			if !ok {
				return fmt.Errorf("%s does not apply to %s", name, field.Kind())
			}
			if name == "min" && n < bound {
				return fmt.Errorf("must be at least %d", bound)
			}
			if name == "max" && n > bound {
				return fmt.Errorf("must be at most %d", bound)
			}

		case "":
		default:
			return fmt.Errorf("unknown rule %q", name)
		}
	}

	return nil
}

func measure(field reflect.Value) (int64, bool) {
	switch field.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return field.Int(), true
	case reflect.String:
		return int64(utf8.RuneCountInString(field.String())), true
	default:
		return 0, false
	}
}

// fieldName prefers the query/json name so messages match what the caller sent
func fieldName(f reflect.StructField) string {
	for _, key := range []string{"query", "json"} {
		if name, _, _ := strings.Cut(f.Tag.Get(key), ","); name != "" && name != "-" {
			return name
		}
	}
	return f.Name
}
