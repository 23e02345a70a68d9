package utils

import (
	"reflect"
	"sort"
)

func InString(hay []string, needle string) bool {
	for _, x := range hay {
		if x == needle {
			return true
		}
	}

	return false
}

// We need to do this stupid check because Go does not allow
// comparison to nil with interfaces.
func IsNil(v interface{}) bool {
	if v == nil {
		return true
	}

	switch reflect.ValueOf(v).Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface:
		return reflect.ValueOf(v).IsNil()
	}
	return false
}

func Sort(in []string) []string {
	sort.Strings(in)
	return in
}

func Keys(in map[string][]string) []string {
	result := make([]string, 0, len(in))
	for k := range in {
		result = append(result, k)
	}
	return result
}
