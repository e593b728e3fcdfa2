package middleware

import (
	"errors"
	"reflect"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationMessageFallback(t *testing.T) {
	msg := ValidationMessage(errors.New("unexpected EOF"), "Malformed request.")
	assert.Equal(t, "Malformed request.", msg)
}

func TestValidationMessageNamesField(t *testing.T) {
	type payload struct {
		Link string `json:"link" validate:"required"`
	}

	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("json")
	})

	err := v.Struct(payload{})
	require.Error(t, err)

	msg := ValidationMessage(err, "Malformed request.")
	assert.Equal(t, "Missing or invalid field: link.", msg)
}
