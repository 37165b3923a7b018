package gltf

import (
	"bytes"
	"encoding/json"

	"cogentcore.org/core/base/keylist"
)

// Object is a JSON object that keeps its keys in insertion order.
// The zero value is ready to use.
type Object struct {
	fields keylist.List[string, any]
}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{}
}

// Set stores v under key and returns o. An existing key keeps its position.
func (o *Object) Set(key string, v any) *Object {
	o.fields.Set(key, v)
	return o
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (any, bool) {
	return o.fields.AtTry(key)
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	return o.fields.Keys
}

// Len returns the number of keys.
func (o *Object) Len() int {
	return o.fields.Len()
}

// MarshalJSON implements json.Marshaler.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range o.fields.Keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(o.fields.Values[i])
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
