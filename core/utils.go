package core

import (
	"reflect"
	"strings"
	"time"

	"github.com/kat-co/vala"
)

var NowFunc = time.Now // mockable

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// JoinNonEmpty joins the non-blank parts of `parts` with `sep`.
func JoinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

// NotNil is vala.IsNotNil for dependencies: struct values satisfying an interface
// are set, where vala.IsNotNil panics on them.
func NotNil(obtained interface{}, paramName string) vala.Checker {
	return func() (bool, string) {
		isNotNil := obtained != nil
		if isNotNil {
			switch v := reflect.ValueOf(obtained); v.Kind() {
			case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice:
				isNotNil = !v.IsNil()
			}
		}
		return isNotNil, "Parameter was nil: " + paramName
	}
}
