// Package lock provides domain.GroupLocker implementations: an in-process one for a single
// instance and a Redis one for several instances sharing a database.
package lock

import (
	"context"

	"github.com/puzpuzpuz/xsync"

	"secretsanta/internal/domain"
)

// Local serializes draws per group inside one process.
type Local struct {
	slots *xsync.MapOf[string, chan struct{}]
}

var _ domain.GroupLocker = (*Local)(nil)

func NewLocal() *Local {
	return &Local{slots: xsync.NewMapOf[chan struct{}]()}
}

// Lock waits for the group's slot or until ctx is done.
func (l *Local) Lock(ctx context.Context, groupID string) (func(), error) {
	slot, _ := l.slots.LoadOrStore(groupID, make(chan struct{}, 1))
	select {
	case slot <- struct{}{}:
		return func() { <-slot }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
