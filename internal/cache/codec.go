package cache

import "encoding/json"

// marshalValue encodes a payload to the wire form stored by all backends.
// Raw bytes and strings pass through untouched; everything else is JSON.
func marshalValue(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case json.RawMessage:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, NewSerializationError("failed to marshal value", err)
		}
		return data, nil
	}
}

// unmarshalValue decodes stored bytes into dest.
func unmarshalValue(data []byte, dest interface{}) error {
	if err := json.Unmarshal(data, dest); err != nil {
		return NewSerializationError("failed to unmarshal value", err)
	}
	return nil
}
