package utils

import "github.com/aarondl/null/v8"

func SafeDeref[T any](ptr *T) T {
	if ptr == nil {
		var zero T
		return zero
	}
	return *ptr
}

func DiffPtr[T comparable](oldVal, newVal *T) bool {
	if oldVal == nil && newVal == nil {
		return false
	}
	if oldVal == nil || newVal == nil {
		return true
	}
	return *oldVal != *newVal
}

func ToPtr[T any](v T) *T {
	return &v
}

// StrPtrOrNil maps "" to nil.
func StrPtrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func NullStringPtr(s null.String) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

func NullIntPtr(i null.Int) *int {
	if !i.Valid {
		return nil
	}
	return &i.Int
}

func NullFloatPtr(f null.Float64) *float64 {
	if !f.Valid {
		return nil
	}
	return &f.Float64
}
