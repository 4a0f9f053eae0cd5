package driven

import "context"

// SeenStore records content hashes that have already been ingested.
// Implementations may be scoped to one run or durable across runs.
type SeenStore interface {
	// Seen reports whether the hash has been marked.
	Seen(ctx context.Context, hash string) (bool, error)

	// MarkSeen records the hash. Marking twice is not an error.
	MarkSeen(ctx context.Context, hash string) error
}
