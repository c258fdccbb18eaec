// Package usererr turns the heterogeneous errors raised across the ordering
// flow into a single user-facing string. It is the only place that decides
// what a failure looks like to the user.
package usererr

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/mohamedwael201193/octaneshift-api-sub000/pkg/sideshift"
)

// Fallback is shown when nothing usable can be extracted from an error.
const Fallback = "Something went wrong. Please try again or contact support."

// Messages some runtimes produce when an error object was stringified badly.
// They carry no information and are never shown to users.
var placeholders = map[string]bool{
	"[object Object]": true,
	"Error":           true,
}

// Normalize converts any error into a non-empty user-facing string. It never
// returns an empty string and never leaks an empty serialized body.
func Normalize(err error) string {
	if err == nil {
		return Fallback
	}

	var apiErr *sideshift.APIError
	if errors.As(err, &apiErr) {
		if msg := fromAPIError(apiErr); msg != "" {
			return msg
		}
		return Fallback
	}

	msg := strings.TrimSpace(err.Error())
	if msg == "" || placeholders[msg] {
		return Fallback
	}
	return msg
}

// fromAPIError prefers the provider's own message, then the error field,
// then a serialized body, mirroring the shapes the provider actually sends.
func fromAPIError(apiErr *sideshift.APIError) string {
	if msg := strings.TrimSpace(apiErr.Message); msg != "" && !placeholders[msg] {
		return msg
	}

	if len(apiErr.Body) > 0 {
		if msg, ok := apiErr.Body["message"].(string); ok && strings.TrimSpace(msg) != "" {
			return strings.TrimSpace(msg)
		}
		if msg, ok := apiErr.Body["error"].(string); ok && strings.TrimSpace(msg) != "" {
			return strings.TrimSpace(msg)
		}
		if raw, err := json.Marshal(apiErr.Body); err == nil {
			serialized := strings.TrimSpace(string(raw))
			if serialized != "" && serialized != "{}" {
				return serialized
			}
		}
	}

	return ""
}
