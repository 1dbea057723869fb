package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Normalize converts a tagged Go value into the generic form accepted by
// MarshalCanonical. Numbers must be integral.
func Normalize(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}
	return integers(generic)
}

func integers(v any) (any, error) {
	switch val := v.(type) {
	case json.Number:
		n, err := val.Int64()
		if err != nil {
			return nil, fmt.Errorf("non-integer number %s", val)
		}
		return n, nil
	case []any:
		for i, elem := range val {
			conv, err := integers(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			val[i] = conv
		}
		return val, nil
	case map[string]any:
		for k, elem := range val {
			conv, err := integers(elem)
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", k, err)
			}
			val[k] = conv
		}
		return val, nil
	}
	return v, nil
}

// Canonical normalizes v and marshals it canonically.
func Canonical(v any) ([]byte, error) {
	generic, err := Normalize(v)
	if err != nil {
		return nil, err
	}
	return MarshalCanonical(generic)
}
