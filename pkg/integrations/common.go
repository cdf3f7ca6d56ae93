package integrations

import (
	"net/http"
	"strconv"
	"time"

	"github.com/partstack/partstack/pkg/errors"
	"github.com/partstack/partstack/pkg/httputil"
)

const httpTimeout = 30 * time.Second

var (
	// ErrNotFound is returned when a part or resource doesn't exist at
	// the distributor. Not found is a normal outcome, never retried.
	ErrNotFound = errors.New(errors.ErrCodeNotFound, "resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection
	// errors, 5xx responses).
	ErrNetwork = errors.New(errors.ErrCodeNetwork, "network error")
)

func checkStatus(code int, retryAfter string) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusUnauthorized:
		return errors.New(errors.ErrCodeUnauthorized, "unauthorized")
	case code == http.StatusTooManyRequests:
		wait, _ := strconv.Atoi(retryAfter)
		return httputil.Retryable(errors.Wrap(errors.ErrCodeRateLimited,
			&errors.RateLimitedError{RetryAfter: wait}, "distributor rate limit"))
	case code >= 500:
		return httputil.Retryable(errors.New(errors.ErrCodeNetwork, "status %d", code))
	default:
		return errors.New(errors.ErrCodeAPIError, "status %d", code)
	}
}

// ParseCommaInt parses an integer that may contain comma grouping, e.g.
// "1,234". Returns (0, false) on malformed input.
func ParseCommaInt(s string) (int, bool) {
	n := 0
	digits := 0
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
			n = n*10 + int(c-'0')
			digits++
		case c == ',':
		default:
			return 0, false
		}
	}
	if digits == 0 {
		return 0, false
	}
	return n, true
}
