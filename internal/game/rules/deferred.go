package rules

import (
	"sync"

	"go.uber.org/zap"

	"github.com/openmars/mars-server-go/internal/game/inputs"
)

// DeferredAction is a queued unit of effect execution bound to the player who
// owns it. Execute may mutate state, enqueue further actions, and return an
// input request when a player decision is needed before the effect can finish.
type DeferredAction struct {
	ID          string
	PlayerID    string
	Description string
	Execute     func() (*inputs.Request, error)
}

// DeferredQueue sequences multi-step card effects. Entries run in FIFO order,
// except that entries enqueued while an earlier entry is executing are
// inserted at the front of the remaining queue: nested consequences resolve
// before sibling consequences that existed prior to the enqueue.
type DeferredQueue struct {
	mu     sync.Mutex
	items  []*DeferredAction
	logger *zap.Logger

	// draining marks an execution in progress; insertAt is the front-insert
	// cursor that keeps a batch of nested enqueues in spawn order.
	draining bool
	insertAt int
}

// NewDeferredQueue creates an empty queue.
func NewDeferredQueue(logger *zap.Logger) *DeferredQueue {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeferredQueue{
		items:  make([]*DeferredAction, 0, 8),
		logger: logger,
	}
}

// Enqueue adds an action. Outside a drain it appends; during a drain it
// inserts at the front of the remaining queue, after any sibling already
// inserted by the same execution.
func (q *DeferredQueue) Enqueue(action *DeferredAction) {
	if action == nil {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.draining {
		q.items = append(q.items, action)
		return
	}

	q.items = append(q.items, nil)
	copy(q.items[q.insertAt+1:], q.items[q.insertAt:])
	q.items[q.insertAt] = action
	q.insertAt++
}

// PeekNext returns the front entry without removing it.
func (q *DeferredQueue) PeekNext() (*DeferredAction, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil, false
	}
	return q.items[0], true
}

// Len returns the number of queued entries.
func (q *DeferredQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// IsEmpty reports whether the queue has no entries.
func (q *DeferredQueue) IsEmpty() bool {
	return q.Len() == 0
}

// Descriptions returns the descriptions of all queued entries, front first.
func (q *DeferredQueue) Descriptions() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]string, len(q.items))
	for i, item := range q.items {
		out[i] = item.Description
	}
	return out
}

// Drain executes entries from the front until the queue is empty or an entry
// yields an input request. An entry is removed at the moment its execution
// begins and is never re-queued: a yielded request's commit callback owns any
// follow-up work. An entry returning a domain error is logged and dropped;
// draining continues with the rest. Draining an empty queue is a no-op.
func (q *DeferredQueue) Drain() *inputs.Request {
	for {
		q.mu.Lock()
		if q.draining {
			// An entry's Execute called back into Drain; the outer drain
			// loop already owns the queue.
			q.mu.Unlock()
			return nil
		}
		if len(q.items) == 0 {
			q.mu.Unlock()
			return nil
		}
		action := q.items[0]
		q.items = q.items[1:]
		q.draining = true
		q.insertAt = 0
		q.mu.Unlock()

		request, err := action.Execute()

		q.mu.Lock()
		q.draining = false
		q.mu.Unlock()

		if err != nil {
			q.logger.Warn("deferred action failed, dropping entry",
				zap.String("action_id", action.ID),
				zap.String("player_id", action.PlayerID),
				zap.String("description", action.Description),
				zap.Error(err),
			)
			continue
		}
		if request != nil {
			if request.PlayerID == "" {
				request.PlayerID = action.PlayerID
			}
			return request
		}
	}
}
