// Package kv provides the durable key-value surface backing the offline
// invoice queue: a whole JSON blob per key, nothing fancier.
package kv

import "context"

// Store persists opaque string values under string keys. GetItem returns
// ("", false, nil) when the key has never been written.
type Store interface {
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}
