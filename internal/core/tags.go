package core

import "encoding/json"

// Tags are persisted as a JSON-encoded scalar column. A row written by an
// older client (or corrupted by hand) must never break a read, so decoding
// failures degrade to an empty set.

// EncodeTags renders tags for storage. An empty set encodes to the empty
// string rather than "[]" so the column stays NULL-ish for tagless rows.
func EncodeTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return ""
	}
	return string(b)
}

// DecodeTags parses a stored tag scalar. The result is never nil.
func DecodeTags(raw string) []string {
	if raw == "" {
		return []string{}
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return []string{}
	}
	if tags == nil {
		return []string{}
	}
	return tags
}
