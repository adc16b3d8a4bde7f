package domain

import (
	"sort"
	"strings"
)

// FieldErrors maps form field names to a validation message.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+f[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// OrNil returns nil when there are no field errors.
func (f FieldErrors) OrNil() error {
	if len(f) == 0 {
		return nil
	}
	return f
}

// require records a "required" error for an empty value and reports whether
// the value was present.
func (f FieldErrors) require(field, value string) bool {
	if value == "" {
		f[field] = "is required"
		return false
	}
	return true
}
