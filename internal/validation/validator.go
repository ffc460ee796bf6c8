// Package validation wraps go-playground/validator with the field naming
// and messages used in API responses.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/qs-lzh/movie-watchlist/internal/service"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Messages maps a field name (json or form tag, list elements as
// "field[]") to the message reported when it fails validation. A
// "field:tag" entry overrides the field message for one rule.
type Messages map[string]string

// Validator returns the shared validator instance.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		Register(validate)
	})
	return validate
}

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// Register installs tag naming and the custom rules on v. It is applied to
// the shared instance and to gin's binding engine.
func Register(v *validator.Validate) {
	v.RegisterTagNameFunc(fieldName)
	_ = v.RegisterValidation("releaseyear", func(fl validator.FieldLevel) bool {
		year := fl.Field().Int()
		return year >= 1900 && year <= int64(time.Now().Year()+5)
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}

func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form", "uri"} {
		name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

// Struct validates s and reports the first failure as a
// *service.ValidationError.
func Struct(s any, messages Messages) error {
	if err := Validator().Struct(s); err != nil {
		return Translate(err, messages)
	}
	return nil
}

// Translate converts validator errors into a *service.ValidationError.
// Other errors are returned unchanged.
func Translate(err error, messages Messages) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	return FieldErrors(verrs, messages)[0]
}

// FieldErrors converts every validator error, in order.
func FieldErrors(verrs validator.ValidationErrors, messages Messages) []*service.ValidationError {
	out := make([]*service.ValidationError, len(verrs))
	for i, fe := range verrs {
		key := fieldKey(fe.Field())
		msg, ok := messages[key+":"+fe.Tag()]
		if !ok {
			msg, ok = messages[key]
		}
		if !ok {
			msg = defaultMessage(key, fe)
		}
		out[i] = &service.ValidationError{Field: key, Message: msg}
	}
	return out
}

// fieldKey folds "genre[3]" into "genre[]".
func fieldKey(field string) string {
	if i := strings.IndexByte(field, '['); i >= 0 {
		return field[:i] + "[]"
	}
	return field
}

func defaultMessage(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
