package core

import "sync/atomic"

// claim is a process-wide hardware ownership token. The first acquire wins;
// every later one fails until the process exits.
type claim struct {
	held uint32 // atomic bool
}

var (
	gpioClaim  claim
	timerClaim claim
)

func (c *claim) taken() bool {
	return atomic.LoadUint32(&c.held) != 0
}

func (c *claim) acquire() bool {
	return atomic.CompareAndSwapUint32(&c.held, 0, 1)
}

// release is only used by tests; firmware never tears a peripheral down.
func (c *claim) release() {
	atomic.StoreUint32(&c.held, 0)
}
