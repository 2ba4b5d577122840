package manual

import (
	"errors"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"movie2manual/internal/textutil"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate

	indexPattern = regexp.MustCompile(`\[(\d+)\]`)
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		// Use JSON tag names in error messages
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := fld.Tag.Get("json")
			if name == "" {
				return fld.Name
			}
			if idx := strings.Index(name, ","); idx >= 0 {
				name = name[:idx]
			}
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("localpath", func(fl validator.FieldLevel) bool {
			return textutil.IsLocalPath(fl.Field().String())
		})
		validate = v
	})
	return validate
}

// Validate checks the struct-level invariants of a Specification. Normalize
// calls it last; callers that build a Specification by hand should call it
// before extraction.
func (s Specification) Validate() error {
	if err := structValidator().Struct(s); err != nil {
		return formatValidationError(err)
	}
	return nil
}

func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return fieldError("specification", err.Error())
	}
	fe := validationErrs[0]
	index := -1
	if match := indexPattern.FindStringSubmatch(fe.Namespace()); match != nil {
		if parsed, convErr := strconv.Atoi(match[1]); convErr == nil {
			index = parsed
		}
	}
	return &ValidationError{Field: fe.Field(), Index: index, Reason: friendlyMessage(fe)}
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "localpath":
		return "must be a relative path inside the output directory"
	default:
		return "is invalid"
	}
}
