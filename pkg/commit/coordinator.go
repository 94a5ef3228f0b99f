package commit

import (
	"context"
	"fmt"
	"sync"

	"tablestore/pkg/tserrors"
)

// Coordinator serializes snapshot id allocation and publication across
// writers. Lock blocks until the caller holds the commit lock (or ctx is
// cancelled) and returns a release function the caller must call exactly
// once, whether or not the commit that followed succeeded.
type Coordinator interface {
	Lock(ctx context.Context) (release func(), err error)
}

// localCoordinator serializes writers within a single process. It is the
// default coordinator, sufficient whenever a table has exactly one writer
// process.
type localCoordinator struct {
	mu sync.Mutex
}

// NewLocalCoordinator returns a Coordinator backed by an in-process mutex.
func NewLocalCoordinator() Coordinator {
	return &localCoordinator{}
}

func (l *localCoordinator) Lock(ctx context.Context) (func(), error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("commit: acquire local lock: %w", tserrors.ErrCancelled)
	default:
	}
	l.mu.Lock()
	return l.mu.Unlock, nil
}
