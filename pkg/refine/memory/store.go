// Package memory provides whole-document persistence for session snapshots.
package memory

import "errors"

// Snapshot is the persisted session memory: a flat mapping of string keys
// to JSON-round-trippable values (strings, lists of strings, numbers).
// There is no schema versioning; the document is replaced wholesale on save.
type Snapshot map[string]any

// Store persists one snapshot with whole-document semantics.
//
// Load followed by Save with no intervening changes is a structural no-op.
// Stores do not merge: Save replaces whatever was persisted before.
// Concurrent runs against one store are unsafe by design; callers must
// serialize runs that share a store.
type Store interface {
	// Load retrieves the current snapshot.
	// A store that has never been saved returns an empty snapshot, not an error.
	Load() (Snapshot, error)

	// Save replaces the persisted snapshot wholesale.
	Save(Snapshot) error

	// Close releases any resources (connections, files).
	Close() error
}

// ErrStoreClosed indicates the store has been closed.
var ErrStoreClosed = errors.New("memory store closed")

// clone deep-copies a snapshot so callers and the store cannot alias
// each other's maps and slices.
func clone(s Snapshot) Snapshot {
	if s == nil {
		return Snapshot{}
	}
	out := make(Snapshot, len(s))
	for k, v := range s {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case []string:
		return append([]string(nil), val...)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = cloneValue(item)
		}
		return out
	default:
		// Scalars (string, bool, numbers) are copied by value.
		return v
	}
}
