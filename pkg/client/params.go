package client

import "net/url"

// With returns a copy of params with the given key/value pairs set.
// A trailing key without a value is ignored.
func With(params url.Values, kv ...string) url.Values {
	out := make(url.Values, len(params)+len(kv)/2)
	for key, vals := range params {
		out[key] = append([]string(nil), vals...)
	}
	for i := 0; i+1 < len(kv); i += 2 {
		out.Set(kv[i], kv[i+1])
	}
	return out
}
