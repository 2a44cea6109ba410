package validator

import (
	"errors"
	"reflect"
	"strings"

	val "github.com/go-playground/validator/v10"
)

var messages = map[string]string{
	"required": "{field} is required",
	"url":      "{field} must be a valid URL",
	"gte":      "{field} must be greater than or equal to {param}",
	"lte":      "{field} must be less than or equal to {param}",
}

// fieldName labels a field by the name an operator sets it with: the envconfig
// variable for settings and the JSON key for request bodies.
func fieldName(field reflect.StructField) string {
	for _, tag := range []string{"envconfig", "json"} {
		name, _, _ := strings.Cut(field.Tag.Get(tag), ",")
		if name != "" && name != "-" {
			return name
		}
	}

	return field.Name
}

// message renders one sentence per failed field, joined in field order.
func message(err error) string {
	var valErrors val.ValidationErrors
	if !errors.As(err, &valErrors) {
		return err.Error()
	}

	parts := make([]string, 0, len(valErrors))

	for _, valErr := range valErrors {
		msg, ok := messages[valErr.Tag()]
		if !ok {
			parts = append(parts, valErr.Field()+" failed the "+valErr.Tag()+" rule")

			continue
		}

		msg = strings.ReplaceAll(msg, "{field}", valErr.Field())
		msg = strings.ReplaceAll(msg, "{param}", valErr.Param())
		parts = append(parts, msg)
	}

	return strings.Join(parts, "; ")
}
