package utils

import "strings"

func Ptr[T any](v T) *T {
	return &v
}

// OrDefault returns *v, or fallback when v is nil.
func OrDefault[T any](v *T, fallback T) T {
	if v == nil {
		return fallback
	}
	return *v
}

// StringOrNil returns nil on an empty or all-whitespace string, so optional
// text fields land as NULL instead of "".
func StringOrNil(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
