package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{"AUTHENTICATION_REQUIRED", http.StatusForbidden},
		{"FORBIDDEN", http.StatusForbidden},
		{"CONCURRENT_MODIFICATION", http.StatusForbidden},
		{"VALIDATION_ERROR", http.StatusBadRequest},
		{"INVALID_STATE", http.StatusBadRequest},
		{"NOT_FOUND", http.StatusNotFound},
		{"UPSTREAM_ERROR", http.StatusInternalServerError},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.code))
		})
	}
}

func TestNewAlert(t *testing.T) {
	alert := NewAlert("You need to login before submitting contracts.")
	assert.Equal(t, "You need to login before submitting contracts.", alert.Alert)
}
