package lock

import (
	"context"
	"time"

	"certifier/pkg/platform/sync"
	"certifier/pkg/requestcontext"
)

// MemoryLocker holds leases in process. Used when Redis is not configured,
// which is only safe with a single server instance.
type MemoryLocker struct {
	leases *sync.KeyedLeases
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{leases: sync.NewKeyedLeases()}
}

func (l *MemoryLocker) TryAcquire(ctx context.Context, key string, ttl time.Duration) (*Lease, bool, error) {
	lease := newLease(key, ttl)
	if !l.leases.TryAcquire(key, lease.Token, ttl, requestcontext.Now(ctx)) {
		return nil, false, nil
	}
	return lease, true, nil
}

func (l *MemoryLocker) Release(_ context.Context, lease *Lease) error {
	if lease == nil {
		return nil
	}
	l.leases.Release(lease.Key, lease.Token)
	return nil
}
