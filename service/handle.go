package service

import (
	"sync"

	"github.com/google/uuid"
)

// Handle identifies one subscription. Releasing it disconnects the
// subscriber; Release is idempotent and safe to call concurrently.
type Handle struct {
	id      uuid.UUID
	once    sync.Once
	release func()
}

func newHandle(id uuid.UUID, release func()) *Handle {
	return &Handle{id: id, release: release}
}

// ID returns the unique identity of the subscription.
func (h *Handle) ID() uuid.UUID {
	return h.id
}

// Release disconnects the subscriber.
func (h *Handle) Release() {
	h.once.Do(h.release)
}

// ReleaseAll releases every handle in hs. Convenience for teardown paths
// that collected handles from Subscribe.
func ReleaseAll(hs []*Handle) {
	for _, h := range hs {
		if h != nil {
			h.Release()
		}
	}
}
