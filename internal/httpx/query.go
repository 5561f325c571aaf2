package httpx

import (
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Query helpers return nil for absent or blank parameters so the value can
// be passed to a stored function as SQL NULL.

func QueryString(r *http.Request, name string) *string {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return nil
	}
	return &v
}

func QueryInt(r *http.Request, name string) (*int, error) {
	s := QueryString(r, name)
	if s == nil {
		return nil, nil
	}
	n, err := strconv.Atoi(*s)
	if err != nil {
		return nil, BadRequest(fmt.Sprintf("%s must be an integer", name))
	}
	return &n, nil
}

func QueryInt64(r *http.Request, name string) (*int64, error) {
	s := QueryString(r, name)
	if s == nil {
		return nil, nil
	}
	n, err := strconv.ParseInt(*s, 10, 64)
	if err != nil {
		return nil, BadRequest(fmt.Sprintf("%s must be an integer", name))
	}
	return &n, nil
}

// QueryEnum upper-cases the value before matching it against allowed.
func QueryEnum(r *http.Request, name string, allowed ...string) (*string, error) {
	s := QueryString(r, name)
	if s == nil {
		return nil, nil
	}
	v := strings.ToUpper(*s)
	if !slices.Contains(allowed, v) {
		return nil, BadRequest(fmt.Sprintf("%s must be one of [%s]", name, strings.Join(allowed, " ")))
	}
	return &v, nil
}

// QueryTime accepts a date (2006-01-02) or an RFC 3339 timestamp.
func QueryTime(r *http.Request, name string) (*time.Time, error) {
	s := QueryString(r, name)
	if s == nil {
		return nil, nil
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339Nano} {
		if t, err := time.Parse(layout, *s); err == nil {
			return &t, nil
		}
	}
	return nil, BadRequest(fmt.Sprintf("%s must be an ISO 8601 date", name))
}

func PathInt64(r *http.Request, name string) (int64, error) {
	n, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || n <= 0 {
		return 0, BadRequest(fmt.Sprintf("%s must be a positive integer", name))
	}
	return n, nil
}
