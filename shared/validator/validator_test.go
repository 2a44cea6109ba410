package validator_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasktracker/shared/failure"
	"tasktracker/shared/validator"
)

type endpointSettings struct {
	Name    string `validate:"required"     json:"name"`
	BaseURL string `validate:"required,url" json:"base_url"`
	Retries int    `validate:"gte=0,lte=10" json:"retries"`
}

type mongoSettings struct {
	URI      string `envconfig:"URI" validate:"required"`
	Database string `validate:"required"`
	Limit    int    `validate:"oneof=1 2"`
}

type taskBody struct {
	Title     *string `json:"title"`
	Completed *bool   `json:"completed"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name        string
		data        endpointSettings
		expectError string
	}{
		{
			name: "valid struct",
			data: endpointSettings{Name: "api", BaseURL: "http://localhost:5001", Retries: 3},
		},
		{
			name:        "missing required field",
			data:        endpointSettings{BaseURL: "http://localhost:5001"},
			expectError: "name is required",
		},
		{
			name:        "invalid url",
			data:        endpointSettings{Name: "api", BaseURL: "localhost"},
			expectError: "base_url must be a valid URL",
		},
		{
			name:        "out of range",
			data:        endpointSettings{Name: "api", BaseURL: "http://localhost", Retries: 11},
			expectError: "retries must be less than or equal to 10",
		},
		{
			name:        "every failed field is reported",
			data:        endpointSettings{BaseURL: "localhost", Retries: -1},
			expectError: "name is required; base_url must be a valid URL; retries must be greater than or equal to 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateStruct(&tt.data)

			if tt.expectError == "" {
				assert.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.Equal(t, tt.expectError, err.Error())
			assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
		})
	}
}

func TestValidateStruct_FieldNames(t *testing.T) {
	err := validator.ValidateStruct(&mongoSettings{})
	require.Error(t, err)
	assert.Equal(t, "URI is required; Database is required; Limit failed the oneof rule", err.Error())
}

func TestDecode(t *testing.T) {
	t.Run("partial body", func(t *testing.T) {
		body := taskBody{}

		err := validator.Decode(strings.NewReader(`{"completed": true}`), &body)
		require.NoError(t, err)

		assert.Nil(t, body.Title)
		require.NotNil(t, body.Completed)
		assert.True(t, *body.Completed)
	})

	t.Run("empty body", func(t *testing.T) {
		body := taskBody{}

		err := validator.Decode(strings.NewReader(""), &body)
		require.NoError(t, err)
		assert.Nil(t, body.Title)
	})

	t.Run("unknown fields are ignored", func(t *testing.T) {
		body := taskBody{}

		err := validator.Decode(strings.NewReader(`{"title": "Buy milk", "uid": "someone-else"}`), &body)
		require.NoError(t, err)
		require.NotNil(t, body.Title)
		assert.Equal(t, "Buy milk", *body.Title)
	})

	t.Run("malformed body", func(t *testing.T) {
		body := taskBody{}

		err := validator.Decode(strings.NewReader(`{"title":`), &body)
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})
}
