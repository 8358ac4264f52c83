package domain

import (
	"bytes"
	"encoding/json"
)

// Optional distinguishes an absent JSON field from an explicit null.
// Set is true whenever the key was present; Value is nil for null.
type Optional[T any] struct {
	Set   bool
	Value *T
}

// Some returns a present, non-null Optional.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: &v}
}

// Null returns a present Optional holding null.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

// UnmarshalJSON records presence and decodes the value unless it is null.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// MarshalJSON writes the value or null.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Value)
}

// Or returns the optional's value when set, otherwise current.
func (o Optional[T]) Or(current *T) *T {
	if !o.Set {
		return current
	}
	return o.Value
}
