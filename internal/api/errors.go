package api

import (
	"errors"
	"fmt"
	"strings"
)

const (
	unauthorizedMessage = "Unauthorized (401) — connecte-toi d'abord."
	badLoginMessage     = "Email ou mot de passe incorrect."
)

// Error is a non-2xx response from the API. Message is meant for display.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(status int, body, msg401 string) *Error {
	if status == 401 {
		return &Error{Status: status, Message: msg401}
	}
	msg := strings.TrimSpace(body)
	if msg == "" {
		msg = fmt.Sprintf("HTTP %d", status)
	}
	return &Error{Status: status, Message: msg}
}

// IsUnauthorized reports whether err is a 401 from the API.
func IsUnauthorized(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Status == 401
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}

// Message returns the text to show for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
