// Package quota enforces the free-tier question limit for guest sessions.
// The counter is persisted locally and is monotonic within a guest session:
// it only ever returns to zero through Reset, which the auth gate calls on
// login and logout.
package quota

import (
	"context"
	"fmt"
	"strconv"

	"github.com/askgita/askgita/internal/client/store"
)

// Key is the cache key holding the guest question counter.
const Key = "question_count"

// DefaultLimit is the number of questions a guest may ask before the
// controller substitutes the quota-exceeded advisory for a real answer.
const DefaultLimit = 10

// Limiter counts guest questions. It has no notion of identity; the
// controller consults the auth gate and bypasses the limiter entirely for
// authenticated users.
type Limiter struct {
	kv    store.Store
	limit int
}

func New(kv store.Store) *Limiter {
	return &Limiter{kv: kv, limit: DefaultLimit}
}

// Limit returns the configured question limit.
func (l *Limiter) Limit() int { return l.limit }

// Count returns the persisted counter value. Missing or unreadable state
// counts as zero.
func (l *Limiter) Count(ctx context.Context) int {
	raw, err := l.kv.Get(ctx, Key)
	if err != nil || len(raw) == 0 {
		return 0
	}
	n, err := strconv.Atoi(string(raw))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Increment bumps the counter, persists it, and returns the new value.
func (l *Limiter) Increment(ctx context.Context) (int, error) {
	n := l.Count(ctx) + 1
	if err := l.kv.Set(ctx, Key, []byte(strconv.Itoa(n))); err != nil {
		return n, fmt.Errorf("failed to persist question count: %w", err)
	}
	return n, nil
}

// Exceeded reports whether count is past the limit.
func (l *Limiter) Exceeded(count int) bool {
	return count > l.limit
}

// Reset zeroes the counter and persists it.
func (l *Limiter) Reset(ctx context.Context) error {
	return l.kv.Set(ctx, Key, []byte("0"))
}

// ResetIn zeroes the counter against the given store view. Used to include
// the reset in a multi-key transaction (logout).
func ResetIn(ctx context.Context, kv store.Store) error {
	return kv.Set(ctx, Key, []byte("0"))
}
