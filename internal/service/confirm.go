package service

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/msomdec/photolog/internal/domain"
)

// PendingDecision describes one destructive action awaiting an external
// answer.
type PendingDecision struct {
	Token     string
	EntryID   string
	Prompt    string
	CreatedAt time.Time
}

type pendingDecision struct {
	PendingDecision
	resolved chan bool // buffered; receives at most one resolution
}

// ConfirmBroker implements domain.DecisionProvider for callers that live on
// the far side of an external boundary. ConfirmDelete parks the deletion as
// a pending decision; Resolve supplies the answer. Anything other than an
// explicit affirmative — cancel, expiry, context timeout, shutdown —
// resolves as cancelled. Stale decisions are cancelled in the background.
type ConfirmBroker struct {
	mu      sync.Mutex
	pending map[string]*pendingDecision
	signal  chan struct{} // closed and replaced on every registration
	ttl     time.Duration

	done      chan struct{}
	closeOnce sync.Once
}

var _ domain.DecisionProvider = (*ConfirmBroker)(nil)

// NewConfirmBroker creates a broker whose unanswered decisions expire after
// ttl. It starts a background goroutine that cancels stale decisions; call
// Close to stop it.
func NewConfirmBroker(ttl time.Duration) *ConfirmBroker {
	b := &ConfirmBroker{
		pending: make(map[string]*pendingDecision),
		signal:  make(chan struct{}),
		ttl:     ttl,
		done:    make(chan struct{}),
	}
	go b.expire()
	return b
}

// ConfirmDelete registers a pending decision for the entry and blocks until
// it is resolved, expires, or ctx ends. Only an explicit affirmative
// resolution returns true.
func (b *ConfirmBroker) ConfirmDelete(ctx context.Context, entry domain.CatalogEntry) (bool, error) {
	p := &pendingDecision{
		PendingDecision: PendingDecision{
			Token:     uuid.NewString(),
			EntryID:   entry.ID,
			Prompt:    fmt.Sprintf("Are you sure you want to delete %q?", entry.Title),
			CreatedAt: time.Now(),
		},
		resolved: make(chan bool, 1),
	}

	b.mu.Lock()
	b.pending[p.Token] = p
	close(b.signal)
	b.signal = make(chan struct{})
	b.mu.Unlock()

	select {
	case confirmed := <-p.resolved:
		return confirmed, nil
	case <-ctx.Done():
		b.remove(p.Token)
		return false, ctx.Err()
	case <-b.done:
		b.remove(p.Token)
		return false, nil
	}
}

// Resolve answers the pending decision with the given token. Unknown or
// already-resolved tokens return domain.ErrNotFound.
func (b *ConfirmBroker) Resolve(token string, confirmed bool) error {
	b.mu.Lock()
	p, ok := b.pending[token]
	if ok {
		delete(b.pending, token)
	}
	b.mu.Unlock()

	if !ok {
		return domain.ErrNotFound
	}
	p.resolved <- confirmed
	return nil
}

// Pending returns the decisions currently awaiting an answer, oldest first.
func (b *ConfirmBroker) Pending() []PendingDecision {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]PendingDecision, 0, len(b.pending))
	for _, p := range b.pending {
		out = append(out, p.PendingDecision)
	}
	slices.SortFunc(out, func(a, b PendingDecision) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out
}

// PendingFor returns the newest pending decision for the given entry id.
func (b *ConfirmBroker) PendingFor(entryID string) (PendingDecision, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var found *pendingDecision
	for _, p := range b.pending {
		if p.EntryID == entryID && (found == nil || p.CreatedAt.After(found.CreatedAt)) {
			found = p
		}
	}
	if found == nil {
		return PendingDecision{}, false
	}
	return found.PendingDecision, true
}

// WaitForPending blocks until a pending decision exists for the given entry
// id or the timeout elapses. It bridges the gap between spawning a delete
// and the decision registration becoming visible.
func (b *ConfirmBroker) WaitForPending(entryID string, timeout time.Duration) (PendingDecision, bool) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		b.mu.Lock()
		sig := b.signal
		b.mu.Unlock()

		if p, ok := b.PendingFor(entryID); ok {
			return p, true
		}

		select {
		case <-sig:
		case <-deadline.C:
			return PendingDecision{}, false
		case <-b.done:
			return PendingDecision{}, false
		}
	}
}

// Close cancels every outstanding decision and stops the expiry goroutine.
// Safe to call more than once.
func (b *ConfirmBroker) Close() {
	b.closeOnce.Do(func() { close(b.done) })
}

func (b *ConfirmBroker) remove(token string) {
	b.mu.Lock()
	delete(b.pending, token)
	b.mu.Unlock()
}

// expire runs periodically and cancels decisions older than the TTL.
func (b *ConfirmBroker) expire() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-b.done:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-b.ttl)
			b.mu.Lock()
			for token, p := range b.pending {
				if p.CreatedAt.Before(cutoff) {
					delete(b.pending, token)
					p.resolved <- false
				}
			}
			b.mu.Unlock()
		}
	}
}

// StaticDecision is a DecisionProvider that always answers the same way.
// Useful for headless operation and tests.
type StaticDecision bool

func (d StaticDecision) ConfirmDelete(context.Context, domain.CatalogEntry) (bool, error) {
	return bool(d), nil
}
