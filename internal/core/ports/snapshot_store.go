package ports

import "context"

// SnapshotStore is the consumed contract of the local persistence layer: an
// asynchronous byte store holding the serialized session projection under one
// fixed key.
type SnapshotStore interface {
	// Load returns the persisted snapshot bytes, or
	// domain.ErrSnapshotNotFound when nothing has been saved yet.
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}
