package api

import (
	"encoding/json"
	"fmt"

	jmespath "github.com/jmespath-community/go-jmespath"
)

// The commerce API wraps most responses in {succeeded, data, message},
// but the payload under data is inconsistently nested: collections arrive
// as a bare array, as data, as items, or as data.items depending on the
// endpoint. All of that inconsistency is absorbed here, at the boundary,
// so the rest of the system sees one canonical shape.

// Envelope is the common response wrapper.
type Envelope struct {
	Succeeded bool
	Data      any
	Message   string
}

// EnvelopeOf extracts the response envelope from a decoded document, or
// nil when the document is not envelope-shaped.
func EnvelopeOf(doc any) *Envelope {
	obj, ok := doc.(map[string]any)
	if !ok {
		return nil
	}
	succeeded, ok := obj["succeeded"].(bool)
	if !ok {
		return nil
	}
	env := &Envelope{Succeeded: succeeded, Data: obj["data"]}
	if msg, ok := obj["message"].(string); ok {
		env.Message = msg
	}
	return env
}

// collectionExprs are probed in order; the first expression yielding an
// array wins. The order mirrors the shapes the backend has been seen to
// emit: items, data.items, a bare array, then data.
var collectionExprs = []string{"items", "data.items", "@", "data"}

// countExprs locate the server-reported total for paginated collections.
var countExprs = []string{"totalCount", "data.totalCount", "count", "data.count"}

// Items extracts the collection payload from a decoded document,
// whichever of the known server shapes it arrived in. Returns nil when no
// shape matches.
func Items(doc any) []any {
	for _, expr := range collectionExprs {
		found, err := jmespath.Search(expr, doc)
		if err != nil || found == nil {
			continue
		}
		if arr, ok := found.([]any); ok {
			return arr
		}
	}
	return nil
}

// Object extracts a single-object payload: the envelope's data when
// present, otherwise the document itself.
func Object(doc any) any {
	found, err := jmespath.Search("data", doc)
	if err == nil {
		if _, ok := found.(map[string]any); ok {
			return found
		}
	}
	if _, ok := doc.(map[string]any); ok {
		return doc
	}
	return nil
}

// Count returns the server-reported total item count for a paginated
// collection, or 0 when the response does not carry one.
func Count(doc any) int {
	for _, expr := range countExprs {
		found, err := jmespath.Search(expr, doc)
		if err != nil || found == nil {
			continue
		}
		if n, ok := found.(float64); ok && n >= 0 {
			return int(n)
		}
	}
	return 0
}

// Message returns the envelope's status message, or "".
func Message(doc any) string {
	if env := EnvelopeOf(doc); env != nil {
		return env.Message
	}
	if obj, ok := doc.(map[string]any); ok {
		if msg, ok := obj["message"].(string); ok {
			return msg
		}
	}
	return ""
}

// DecodeInto converts a dynamically decoded JSON value into a typed
// destination by round-tripping through encoding/json.
func DecodeInto(v any, dst any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode intermediate value: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode into %T: %w", dst, err)
	}
	return nil
}
