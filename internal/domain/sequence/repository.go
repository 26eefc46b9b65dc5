package sequence

import "context"

// Repository is the counter store. Increment must be atomic on the server
// side, never a client read followed by a write.
type Repository interface {
	// Read returns the current value or an ErrNotFound marked error
	Read(ctx context.Context, name string) (int64, error)
	// Init creates the counter at value unless it exists. It reports whether it created it.
	Init(ctx context.Context, name string, value int64) (bool, error)
	// Increment adds delta and returns the new value, creating the counter at 0 first if absent
	Increment(ctx context.Context, name string, delta int64) (int64, error)
}
