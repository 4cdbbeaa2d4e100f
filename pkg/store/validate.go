package store

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report json names ("fromNodeId") rather than Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateEntity runs the struct tags of v and translates the first failure into a
// domain sentinel: "required" becomes ErrMissingRequiredField, anything else
// ErrInvalidValue.
func validateEntity(kind string, v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %s: %v", domain.ErrInvalidValue, kind, err)
	}

	fe := verrs[0]
	if fe.Tag() == "required" {
		return fmt.Errorf("%w: %s.%s", domain.ErrMissingRequiredField, kind, fe.Field())
	}
	if fe.Param() != "" {
		return fmt.Errorf("%w: %s.%s=%v (%s=%s)", domain.ErrInvalidValue, kind, fe.Field(), fe.Value(), fe.Tag(), fe.Param())
	}
	return fmt.Errorf("%w: %s.%s=%v (%s)", domain.ErrInvalidValue, kind, fe.Field(), fe.Value(), fe.Tag())
}
