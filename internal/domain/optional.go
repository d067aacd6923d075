package domain

import (
	"bytes"
	"encoding/json"
)

// Optional marks whether a field was supplied in a partial update, and whether it
// was supplied as an explicit null. The zero value means "leave unchanged".
//
//	{}                 -> Set=false
//	{"field": null}    -> Set=true, Null=true
//	{"field": "value"} -> Set=true, Value="value"
type Optional[T any] struct {
	Value T
	Set   bool
	Null  bool
}

// Some returns a set, non-null Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// Null returns a set Optional that clears the field.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

// Ptr returns nil for an unset or null Optional, otherwise a pointer to a copy of the value.
func (o Optional[T]) Ptr() *T {
	if !o.Set || o.Null {
		return nil
	}
	v := o.Value
	return &v
}

// UnmarshalJSON records that the field was present. encoding/json calls it for
// explicit nulls as well, which is what distinguishes clearing from omission.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		var zero T
		o.Value = zero
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Null {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}
