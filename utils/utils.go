package utils

import (
	"reflect"

	"github.com/segmentio/ksuid"
)

func KSUID() string {
	return ksuid.New().String()
}

func Pointer[T any](v T) *T {
	return &v
}

func PointerValue[T any](v *T) T {
	if v == nil {
		return *new(T)
	}
	return *v
}

func DefaultIfZero[T any](v T, fallback T) T {
	if reflect.ValueOf(v).IsZero() {
		return fallback
	}
	return v
}
