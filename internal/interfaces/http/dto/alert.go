package dto

import "net/http"

// Alert is the user-facing message payload. Every error and most
// confirmations go out as {"alert": "..."}.
type Alert struct {
	Alert string `json:"alert"`
}

// NewAlert creates an alert payload
func NewAlert(message string) Alert {
	return Alert{Alert: message}
}

// HTTPStatus maps a domain error code to its canonical HTTP status.
// Session and authorization failures share 403: the frontend treats both
// as redirect-to-login territory.
func HTTPStatus(code string) int {
	switch code {
	case "AUTHENTICATION_REQUIRED", "FORBIDDEN", "CONCURRENT_MODIFICATION":
		return http.StatusForbidden
	case "VALIDATION_ERROR", "INVALID_STATE":
		return http.StatusBadRequest
	case "NOT_FOUND":
		return http.StatusNotFound
	case "UPSTREAM_ERROR":
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
