// Package prefs defines flat persistent key-value namespaces.
package prefs

import "context"

// Namespaces used by the bot.
const (
	NamespaceCoordinates = "coc_coordinates"
	NamespaceSettings    = "coc_bot_settings"
)

// Repository persists string values by namespace and key.
// Every write of a single key must be atomic.
type Repository interface {
	// Get returns the value and whether the key exists.
	Get(ctx context.Context, namespace, key string) (string, bool, error)

	// Put creates or overwrites a single key.
	Put(ctx context.Context, namespace, key, value string) error

	// PutAll writes several keys of one namespace.
	PutAll(ctx context.Context, namespace string, values map[string]string) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, namespace, key string) error

	// List returns every key and value in a namespace.
	List(ctx context.Context, namespace string) (map[string]string, error)
}
