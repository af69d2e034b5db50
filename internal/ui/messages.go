package ui

import (
	"errors"
	"fmt"

	"github.com/five82/booktracker/internal/api"
)

const (
	sessionExpiredText  = "Session expired. Please log in again."
	sessionNotSavedText = "Could not save session. Please try again."
)

// loginErrorText turns a login failure into the line shown under the form.
// Errors outside the api taxonomy come from saving the session locally, not
// from the network.
func loginErrorText(err error) string {
	kind, ok := api.KindOf(err)
	if errors.Is(err, api.ErrSessionNotSaved) || !ok {
		return sessionNotSavedText
	}
	switch kind {
	case api.KindUnauthorized:
		return "Invalid email or password"
	case api.KindServer:
		return fmt.Sprintf("Server error (%d)", api.StatusCode(err))
	default:
		return "Connection failed. Please try again."
	}
}

// loadErrorText turns a failure loading thing ("shelves", "shelf",
// "book details") into a short message with a retry hint.
func loadErrorText(err error, thing string) string {
	kind, ok := api.KindOf(err)
	if !ok {
		return "An unexpected error occurred."
	}
	switch kind {
	case api.KindUnauthorized:
		return sessionExpiredText
	case api.KindServer:
		return fmt.Sprintf("Server error (%d). Please try again.", api.StatusCode(err))
	case api.KindInvalidRequest, api.KindInvalidResponse, api.KindDecoding:
		return fmt.Sprintf("Failed to load %s. Please try again.", thing)
	default:
		return "An unexpected error occurred."
	}
}

func isUnauthorized(err error) bool {
	return errors.Is(err, api.ErrUnauthorized)
}

func pluralBooks(n int) string {
	if n == 1 {
		return "1 book"
	}
	return fmt.Sprintf("%d books", n)
}
