// Package http provides the JSON API server and its handlers.
//
// This file implements utilities for decoding request bodies and query strings.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"spendscan/internal/core"
)

// maxBodyBytes bounds request bodies; OCR text of a long receipt fits easily.
const maxBodyBytes = 1 << 20

var errEmptyBody = errors.New("request body is empty")

// decodeJSON reads a single JSON value from the body into dst, rejecting
// unknown fields and trailing data.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return errEmptyBody
		case errors.As(err, &maxErr):
			return fmt.Errorf("request body larger than %d bytes", maxErr.Limit)
		default:
			return fmt.Errorf("invalid JSON: %w", err)
		}
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON value")
	}
	return nil
}

// parseDateParam parses an optional YYYY-MM-DD query parameter.
func parseDateParam(q url.Values, key string) (core.Date, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return core.Date{}, nil
	}
	d, err := core.ParseDate(v)
	if err != nil {
		return core.Date{}, fmt.Errorf("%s: expected YYYY-MM-DD, got %q", key, v)
	}
	return d, nil
}

// ParseExpenseFilter reads category, from, to and search from a query string.
func ParseExpenseFilter(q url.Values) (core.ExpenseFilter, error) {
	from, err := parseDateParam(q, "from")
	if err != nil {
		return core.ExpenseFilter{}, err
	}
	to, err := parseDateParam(q, "to")
	if err != nil {
		return core.ExpenseFilter{}, err
	}
	return core.ExpenseFilter{
		Category: core.Category(sanitizeInput(q.Get("category"))),
		From:     from,
		To:       to,
		Search:   sanitizeInput(q.Get("search")),
	}, nil
}

// sanitizeInput removes control characters except tab, newline and carriage
// return, and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}
