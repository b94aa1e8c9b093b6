package monitoring

import (
	"sync"
	"time"
)

// A ProgressBar tracks a piece of work. Items move from in progress to
// finished. It is safe to update from the simulation while the server reads
// it.
type ProgressBar struct {
	id        string
	name      string
	startTime time.Time

	lock       sync.Mutex
	total      uint64
	finished   uint64
	inProgress uint64
}

// ProgressSnapshot is the state of a ProgressBar at one instant.
type ProgressSnapshot struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StartTime  time.Time `json:"start_time"`
	Total      uint64    `json:"total"`
	Finished   uint64    `json:"finished"`
	InProgress uint64    `json:"in_progress"`
}

// Name returns the name of the bar.
func (b *ProgressBar) Name() string {
	return b.name
}

// IncrementTotal adds items to the total, for work whose size is only known
// as it goes.
func (b *ProgressBar) IncrementTotal(amount uint64) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.total += amount
}

// IncrementInProgress marks items as started.
func (b *ProgressBar) IncrementInProgress(amount uint64) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.inProgress += amount
}

// IncrementFinished marks items as done without having started them.
func (b *ProgressBar) IncrementFinished(amount uint64) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.finished += amount
}

// MoveInProgressToFinished marks started items as done. It never moves more
// items than are in progress.
func (b *ProgressBar) MoveInProgressToFinished(amount uint64) {
	b.lock.Lock()
	defer b.lock.Unlock()

	amount = min(amount, b.inProgress)
	b.inProgress -= amount
	b.finished += amount
}

// Snapshot returns a consistent copy of the bar.
func (b *ProgressBar) Snapshot() ProgressSnapshot {
	b.lock.Lock()
	defer b.lock.Unlock()

	return ProgressSnapshot{
		ID:         b.id,
		Name:       b.name,
		StartTime:  b.startTime,
		Total:      b.total,
		Finished:   b.finished,
		InProgress: b.inProgress,
	}
}
