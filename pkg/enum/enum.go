// Package enum registers the valid values of string types, so a value read
// from configuration can be checked against them.
package enum

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

var (
	mutex       sync.RWMutex
	enumManager = map[reflect.Type]map[string]any{}
)

// New registers value as a valid value of its type and returns it.
func New[T ~string](value T) T {
	mutex.Lock()
	defer mutex.Unlock()

	t := reflect.TypeOf(value)
	if _, ok := enumManager[t]; !ok {
		enumManager[t] = map[string]any{}
	}

	enumManager[t][string(value)] = value
	return value
}

// ToEnum returns the registered value of T equal to s.
func ToEnum[T ~string](s string) (T, error) {
	mutex.RLock()
	defer mutex.RUnlock()

	var defaultT T
	values, ok := enumManager[reflect.TypeOf(defaultT)]
	if !ok {
		return defaultT, fmt.Errorf("not found enum type %T", defaultT)
	}

	v, ok := values[s]
	if !ok {
		return defaultT, fmt.Errorf("invalid value %q of %T", s, defaultT)
	}

	return v.(T), nil
}

// Values returns the registered values of T in lexical order.
func Values[T ~string]() []T {
	mutex.RLock()
	defer mutex.RUnlock()

	var defaultT T
	result := []T{}
	for _, v := range enumManager[reflect.TypeOf(defaultT)] {
		result = append(result, v.(T))
	}

	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}
