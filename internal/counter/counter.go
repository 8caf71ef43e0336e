// Package counter holds the single shared counter that the producer loop
// advances and the sampler loop reads.
package counter

import "sync"

// Guard serializes every access to the shared counter. All Increment and Read
// calls are totally ordered by the mutex, whatever the number of callers.
// The zero value is ready to use and starts at 0.
type Guard struct {
	mu    sync.Mutex
	value uint64
}

// NewGuard returns a guard starting at 0.
func NewGuard() *Guard {
	return &Guard{}
}

// NewGuardAt returns a guard whose counter starts at v.
func NewGuardAt(v uint64) *Guard {
	return &Guard{value: v}
}

// Increment adds one to the counter. It wraps to 0 after math.MaxUint64.
func (g *Guard) Increment() {
	g.mu.Lock()
	g.value++
	g.mu.Unlock()
}

// Read returns the current counter value.
func (g *Guard) Read() uint64 {
	g.mu.Lock()
	v := g.value
	g.mu.Unlock()
	return v
}
