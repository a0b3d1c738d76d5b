package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnauthorized matches any NetworkError carrying a 401 status
var ErrUnauthorized = errors.New("unauthorized")

// NetworkError wraps transport failures and non-2xx responses
type NetworkError struct {
	Op     string // e.g. "fetch table columns"
	Status int    // 0 for transport failures
	Detail string // server supplied detail, if any
	Err    error
}

func (e *NetworkError) Error() string {
	switch {
	case e.Status != 0 && e.Detail != "":
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Detail)
	case e.Status != 0:
		return fmt.Sprintf("%s: status %d", e.Op, e.Status)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrUnauthorized) match 401 responses
func (e *NetworkError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// UserMessage is the single line shown to the user in place of results
func (e *NetworkError) UserMessage() string {
	if e.Op == opLogin {
		return "Login failed. Please check your credentials."
	}
	if e.Detail != "" {
		return fmt.Sprintf("Failed to %s: %s.", e.Op, e.Detail)
	}
	return fmt.Sprintf("Failed to %s. Please try again later.", e.Op)
}

// UserMessage extracts a displayable message from any error
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var ne *NetworkError
	if errors.As(err, &ne) {
		return ne.UserMessage()
	}
	return err.Error()
}

func wrapTransport(op string, err error) error {
	return &NetworkError{Op: op, Err: err}
}
