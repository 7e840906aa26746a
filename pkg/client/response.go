package client

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Entity is a single decoded API object.
type Entity map[string]any

// String returns the value at key when it is a string.
func (e Entity) String(key string) string {
	s, _ := e[key].(string)
	return s
}

// EntityList is a decoded list of objects plus the envelope fields that came with it.
type EntityList struct {
	Items []Entity
	Meta  map[string]any
}

// Response is a decoded API response. At most one of Entity and List is set;
// both are nil for an empty or null body.
type Response struct {
	StatusCode int
	Entity     Entity
	List       *EntityList
}

// Records returns the response as a slice: the list items, or the single entity.
func (r *Response) Records() []Entity {
	switch {
	case r.List != nil:
		return r.List.Items
	case r.Entity != nil:
		return []Entity{r.Entity}
	default:
		return nil
	}
}

// decodeResponse accepts either a JSON array of objects or a JSON object.
// An object holding a "results" array is unwrapped into a list whose
// remaining keys become Meta.
func decodeResponse(status int, body []byte) (*Response, error) {
	trimmed := bytes.TrimSpace(body)
	resp := &Response{StatusCode: status}

	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return resp, nil
	}

	switch trimmed[0] {
	case '[':
		var items []Entity
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		resp.List = &EntityList{Items: items, Meta: map[string]any{}}
		return resp, nil

	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}

		raw, ok := obj["results"]
		if ok && len(bytes.TrimSpace(raw)) > 0 && bytes.TrimSpace(raw)[0] == '[' {
			var items []Entity
			if err := json.Unmarshal(raw, &items); err != nil {
				return nil, fmt.Errorf("%w: results: %v", ErrDecode, err)
			}
			delete(obj, "results")

			meta, err := decodeMeta(obj)
			if err != nil {
				return nil, err
			}
			resp.List = &EntityList{Items: items, Meta: meta}
			return resp, nil
		}

		var entity Entity
		if err := json.Unmarshal(trimmed, &entity); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		resp.Entity = entity
		return resp, nil

	default:
		return nil, fmt.Errorf("%w: unexpected body starting with %q", ErrDecode, trimmed[0])
	}
}

func decodeMeta(obj map[string]json.RawMessage) (map[string]any, error) {
	meta := make(map[string]any, len(obj))
	for key, raw := range obj {
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrDecode, key, err)
		}
		meta[key] = v
	}
	return meta, nil
}
