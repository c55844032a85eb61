package postcommit

import "context"

// Queue collects side effects that must only run after a successful commit.
// Failed transactions discard the queue untouched; the effects themselves are
// best effort and must not fail the request.
type Queue struct {
	effects []func(ctx context.Context)
}

// New returns an empty queue.
func New() *Queue {
	return &Queue{}
}

// Add registers a side effect to run after commit.
func (q *Queue) Add(fn func(ctx context.Context)) {
	if q == nil || fn == nil {
		return
	}
	q.effects = append(q.effects, fn)
}

// Len reports how many effects are pending.
func (q *Queue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.effects)
}

// Drain runs every queued effect in order and empties the queue.
func (q *Queue) Drain(ctx context.Context) {
	if q == nil {
		return
	}
	for _, fn := range q.effects {
		fn(ctx)
	}
	q.effects = nil
}

// Discard drops the queued effects without running them.
func (q *Queue) Discard() {
	if q == nil {
		return
	}
	q.effects = nil
}
