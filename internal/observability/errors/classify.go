// Package errors normalizes error values into low-cardinality names for
// metric and log tagging.
package errors

import (
	goerrors "errors"
	"reflect"
	"strings"
)

// Classify returns a normalized name for the innermost error type, suitable
// as a metric tag value. The chain is unwrapped fully because wrapper types
// like fmt errors carry no signal.
func Classify(err error) string {
	if err == nil {
		return ""
	}

	for {
		inner := goerrors.Unwrap(err)
		if inner == nil {
			break
		}
		err = inner
	}

	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "unknown"
	}

	name := strings.ToLower(t.String())
	name = strings.ReplaceAll(name, "*", "")
	name = strings.ReplaceAll(name, ".", "_")
	if name == "" {
		return "unknown"
	}
	return name
}
