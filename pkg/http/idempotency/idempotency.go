package idempotency

import (
	"errors"
	"net/http"
	"strings"
)

const Header = "Idempotency-Key"

// MaxLength is the longest key accepted from clients.
const MaxLength = 255

var ErrTooLong = errors.New("idempotency key is too long")

// Key returns the trimmed Idempotency-Key header; "" when absent.
func Key(r *http.Request) (string, error) {
	key := strings.TrimSpace(r.Header.Get(Header))
	if len(key) > MaxLength {
		return "", ErrTooLong
	}

	return key, nil
}
