package catalog

import (
	"errors"
	"fmt"
)

// ErrInvalidCatalog is matched by every catalog validation failure.
var ErrInvalidCatalog = errors.New("catalog: invalid catalog")

// InvalidCatalogError reports the first offending entry found while
// constructing a catalog.
type InvalidCatalogError struct {
	Body   string
	Field  string
	Reason string
}

func (e *InvalidCatalogError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("catalog: %s %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("catalog: body %q: %s %s", e.Body, e.Field, e.Reason)
}

func (e *InvalidCatalogError) Unwrap() error {
	return ErrInvalidCatalog
}

func invalid(body, field, reason string) error {
	return &InvalidCatalogError{Body: body, Field: field, Reason: reason}
}
