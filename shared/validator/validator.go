package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	val "github.com/go-playground/validator/v10"

	"tasktracker/shared/failure"
)

var validate = newValidate()

func newValidate() *val.Validate {
	v := val.New(val.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(fieldName)

	return v
}

// Decode reads a JSON document from r into data without applying any
// validation rules. An empty body leaves data untouched.
func Decode[T any](r io.Reader, data *T) error {
	if r == nil {
		return nil
	}

	decoder := json.NewDecoder(r)

	err := decoder.Decode(data)
	if errors.Is(err, io.EOF) {
		return nil
	}

	if err != nil {
		return failure.BadRequest(fmt.Errorf("failed to decode request body: %w", err)) //nolint:wrapcheck
	}

	return nil
}

func ValidateStruct[T any](data *T) error {
	err := validate.Struct(data)

	if err != nil {
		msg := message(err)

		return failure.BadRequestFromString(msg) //nolint:wrapcheck
	}

	return nil
}
