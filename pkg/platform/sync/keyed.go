package sync

import (
	"sync"
	"time"
)

const shardCount = 32

// KeyedLeases hands out exclusive, expiring leases per key. It is the
// in-process counterpart of a Redis SET NX lock: acquiring never blocks and
// a holder that forgets to release loses the key once its lease expires.
//
// Keys are spread over sharded maps so unrelated keys rarely contend.
type KeyedLeases struct {
	shards [shardCount]leaseShard
}

type leaseShard struct {
	mu   sync.Mutex
	held map[string]lease
}

type lease struct {
	token    string
	deadline time.Time
}

func NewKeyedLeases() *KeyedLeases {
	k := &KeyedLeases{}
	for i := range k.shards {
		k.shards[i].held = make(map[string]lease)
	}
	return k
}

// TryAcquire takes key for token until now+ttl. It fails while another
// unexpired lease holds the key.
func (k *KeyedLeases) TryAcquire(key, token string, ttl time.Duration, now time.Time) bool {
	s := k.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if cur, ok := s.held[key]; ok && now.Before(cur.deadline) {
		return false
	}
	s.held[key] = lease{token: token, deadline: now.Add(ttl)}
	return true
}

// Release frees key only if token still holds it. Returns false when the
// lease expired and was taken over, or was never held.
func (k *KeyedLeases) Release(key, token string) bool {
	s := k.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.held[key]
	if !ok || cur.token != token {
		return false
	}
	delete(s.held, key)
	return true
}

func (k *KeyedLeases) shardFor(key string) *leaseShard {
	return &k.shards[hashString(key)%shardCount]
}

// hashString is a djb2-style hash for shard selection.
func hashString(s string) uint32 {
	var h uint32
	for i := 0; i < len(s); i++ {
		h = h*31 + uint32(s[i])
	}
	return h
}
