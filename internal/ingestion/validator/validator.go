// Package validator checks an upload before it is stored: the name, the
// body size, and that the body parses as a catalog document.
package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/userdef-search/internal/catalog"
)

const maxNameLength = 255

// ValidationError holds per-field validation failure messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		keys = append(keys, field)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, field := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", field, e.Fields[field]))
	}
	return strings.Join(parts, "; ")
}

// ValidateUpload returns the parsed snapshot of body, or a ValidationError.
func ValidateUpload(name string, body []byte, maxBytes int64) (*catalog.Snapshot, error) {
	errs := make(map[string]string)

	if len(name) > maxNameLength {
		errs["name"] = fmt.Sprintf("name must be at most %d characters", maxNameLength)
	}
	switch {
	case len(strings.TrimSpace(string(body))) == 0:
		errs["document"] = "document is required"
	case maxBytes > 0 && int64(len(body)) > maxBytes:
		errs["document"] = fmt.Sprintf("document must be at most %d bytes", maxBytes)
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	snap, err := catalog.Parse(body)
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{"document": err.Error()}}
	}
	if categories, definitions, _ := snap.Len(); categories == 0 && definitions == 0 {
		return nil, &ValidationError{Fields: map[string]string{
			"document": "document has no categories or definitions",
		}}
	}
	return snap, nil
}
