// Package ledger tracks issued payment intents awaiting an approval event.
package ledger

import "context"

// Ledger is the pending-order store shared by the orchestrator and the
// webhook reconciler. Implementations must be safe for concurrent use and
// PopIfPresent must be a single atomic check-and-remove so a duplicate
// approval delivery is a no-op on the second pop.
type Ledger interface {
	// Put registers contact under reference. An existing entry for the same
	// reference is silently replaced (last writer wins).
	Put(ctx context.Context, reference, contact string) error

	// PopIfPresent atomically removes and returns the contact mapped to
	// reference, reporting whether an entry existed.
	PopIfPresent(ctx context.Context, reference string) (string, bool, error)
}
