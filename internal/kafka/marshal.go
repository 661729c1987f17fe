package kafka

import "encoding/json"

// MustMarshal encodes event values built from our own types; a failure is a
// programming error.
func MustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
