package fielddef

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Get returns the member key of a record value. Maps are indexed by key;
// structs are searched by json tag, then by field name. Pointers and
// interfaces are followed. Anything else yields nil.
func Get(value any, key string) any {
	if m, ok := value.(map[string]any); ok {
		return m[key]
	}

	v := indirect(reflect.ValueOf(value))
	if !v.IsValid() {
		return nil
	}

	switch v.Kind() {
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return nil
		}
		item := v.MapIndex(reflect.ValueOf(key).Convert(v.Type().Key()))
		if !item.IsValid() {
			return nil
		}
		return item.Interface()
	case reflect.Struct:
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			if !sf.IsExported() {
				continue
			}
			name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
			if name == key || (name == "" && sf.Name == key) {
				return v.Field(i).Interface()
			}
		}
	}
	return nil
}

// String renders a value the way it is written into a text field. nil and
// nil pointers render as "".
func String(value any) string {
	v := indirect(reflect.ValueOf(value))
	if !v.IsValid() {
		return ""
	}

	if s, ok := v.Interface().(fmt.Stringer); ok {
		return s.String()
	}

	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64)
	}
	return fmt.Sprint(v.Interface())
}

// Truthy reports whether a value counts as present: nil, nil pointers, "",
// false, zero and NaN do not; records and lists always do.
func Truthy(value any) bool {
	v := indirect(reflect.ValueOf(value))
	if !v.IsValid() {
		return false
	}

	switch v.Kind() {
	case reflect.String:
		return v.Len() > 0
	case reflect.Bool:
		return v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() != 0
	case reflect.Float32, reflect.Float64:
		f := v.Float()
		return f != 0 && !math.IsNaN(f)
	case reflect.Map, reflect.Slice:
		return !v.IsNil()
	}
	return true
}

func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}
