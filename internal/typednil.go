// Package internal holds helpers shared by jobwatch packages.
package internal

import "reflect"

// IsTypedNil reports whether x is nil, including an interface holding a nil
// pointer, map, slice, func or channel. Observers and sinks passed as options
// are filtered with it so a (*T)(nil) never gets called.
func IsTypedNil(x any) bool {
	if x == nil {
		return true
	}
	switch v := reflect.ValueOf(x); v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return v.IsNil()
	}
	return false
}
