package persistence

import "context"

// Keys of the three documents the store keeps in its key-value backend.
const (
	KeyFaculty         = "faculty"
	KeyVisitorRequests = "visitorRequests"
	KeyChats           = "chats"
)

// Keys lists every document key in initialization order.
func Keys() []string {
	return []string{KeyFaculty, KeyVisitorRequests, KeyChats}
}

// KeyValueStore is the raw document storage behind Store. Values are opaque
// serialized documents; drivers never interpret them.
type KeyValueStore interface {
	// Get returns the value stored under key or ErrNotFound when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put replaces the value stored under key.
	Put(ctx context.Context, key string, value []byte) error
	// Close releases driver resources.
	Close() error
}
