package competition

import "context"

// Repository describes competition persistence needs from use cases.
//
// GetByPin returns a point-in-time snapshot; callers must tolerate the state
// changing after the read. TransitionState is a compare-and-set: it succeeds
// only when the competition is still in the expected "from" state, so stale
// transitions report updated=false instead of clobbering a newer state.
type Repository interface {
	Create(ctx context.Context, c Competition) error
	GetByPin(ctx context.Context, pin string) (Competition, bool, error)
	TransitionState(ctx context.Context, id string, from, to State) (updated bool, err error)
}
