package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation    = errors.New("validation error")
	ErrEncode        = errors.New("encode error")
	ErrRemote        = errors.New("remote error")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrNotFound      = errors.New("not found")
	ErrConfiguration = errors.New("configuration error")
	ErrBlocked       = errors.New("account blocked")
)

// Wrap builds an error message that includes submission context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, kind, operation, message string, err error) error {
	detail := buildDetail(kind, operation, message)
	if marker == nil {
		marker = ErrRemote
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsValidation reports whether err was raised before any network activity.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsRemote reports whether err came back from the platform API.
func IsRemote(err error) bool {
	return errors.Is(err, ErrRemote) || errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrNotFound)
}

func buildDetail(kind, operation, message string) string {
	parts := make([]string, 0, 3)
	if kind = strings.TrimSpace(kind); kind != "" {
		parts = append(parts, kind)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
