// Package assert provides the small test assertion helpers used across the
// repository's tests.
package assert

import (
	"cmp"
	"reflect"
	"strings"
	"testing"
)

// Equal fails the test when expected != actual.
func Equal[T comparable](t *testing.T, expected, actual T, msg string) {
	t.Helper()
	if expected != actual {
		t.Errorf("%s: expected %v, got %v", msg, expected, actual)
	}
}

// NotEqual fails the test when expected == actual.
func NotEqual[T comparable](t *testing.T, expected, actual T, msg string) {
	t.Helper()
	if expected == actual {
		t.Errorf("%s: expected values to differ, both %v", msg, actual)
	}
}

// DeepEqual fails the test when the values are not reflect.DeepEqual.
func DeepEqual(t *testing.T, expected, actual any, msg string) {
	t.Helper()
	if !reflect.DeepEqual(expected, actual) {
		t.Errorf("%s: expected %#v, got %#v", msg, expected, actual)
	}
}

// True fails the test when cond is false.
func True(t *testing.T, cond bool, msg string) {
	t.Helper()
	if !cond {
		t.Errorf("%s: expected true", msg)
	}
}

// False fails the test when cond is true.
func False(t *testing.T, cond bool, msg string) {
	t.Helper()
	if cond {
		t.Errorf("%s: expected false", msg)
	}
}

// Nil fails the test when v is a non-nil value.
func Nil(t *testing.T, v any, msg string) {
	t.Helper()
	if !isNil(v) {
		t.Errorf("%s: expected nil, got %v", msg, v)
	}
}

// NotNil fails the test when v is nil.
func NotNil(t *testing.T, v any, msg string) {
	t.Helper()
	if isNil(v) {
		t.Errorf("%s: expected non-nil", msg)
	}
}

// NoError fails the test when err is non-nil.
func NoError(t *testing.T, err error, msg string) {
	t.Helper()
	if err != nil {
		t.Errorf("%s: unexpected error: %v", msg, err)
	}
}

// Error fails the test when err is nil.
func Error(t *testing.T, err error, msg string) {
	t.Helper()
	if err == nil {
		t.Errorf("%s: expected an error", msg)
	}
}

// Len fails the test when the slice length differs from expected.
func Len[T any](t *testing.T, v []T, expected int, msg string) {
	t.Helper()
	if len(v) != expected {
		t.Errorf("%s: expected length %d, got %d", msg, expected, len(v))
	}
}

// Contains fails the test when substr is not within s.
func Contains(t *testing.T, s, substr string, msg string) {
	t.Helper()
	if !strings.Contains(s, substr) {
		t.Errorf("%s: %q does not contain %q", msg, s, substr)
	}
}

// Greater fails the test when a <= b.
func Greater[T cmp.Ordered](t *testing.T, a, b T, msg string) {
	t.Helper()
	if a <= b {
		t.Errorf("%s: expected %v > %v", msg, a, b)
	}
}

// GreaterOrEqual fails the test when a < b.
func GreaterOrEqual[T cmp.Ordered](t *testing.T, a, b T, msg string) {
	t.Helper()
	if a < b {
		t.Errorf("%s: expected %v >= %v", msg, a, b)
	}
}

// Less fails the test when a >= b.
func Less[T cmp.Ordered](t *testing.T, a, b T, msg string) {
	t.Helper()
	if a >= b {
		t.Errorf("%s: expected %v < %v", msg, a, b)
	}
}

// LessOrEqual fails the test when a > b.
func LessOrEqual[T cmp.Ordered](t *testing.T, a, b T, msg string) {
	t.Helper()
	if a > b {
		t.Errorf("%s: expected %v <= %v", msg, a, b)
	}
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
		return rv.IsNil()
	default:
		return false
	}
}
