package nn

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/baldhumanity/alife-neat/neat"
)

// ErrRebuilderClosed is returned by Submit after Close.
var ErrRebuilderClosed = errors.New("rebuilder closed")

// RebuildResult reports the outcome of one submitted rebuild.
type RebuildResult struct {
	BrainID uuid.UUID
	Network *Network
	// Stale is set when a newer rebuild of the same brain landed first and
	// this one was discarded.
	Stale bool
	Err   error
}

type rebuildJob struct {
	brain  *Brain
	genome *neat.Genome
	seq    uint64
	done   chan RebuildResult
}

// Rebuilder compiles networks on a fixed pool of workers and swaps them into
// their brains. Rebuilds of one brain land in submission order; an older
// result finishing after a newer one is dropped.
type Rebuilder struct {
	jobs   chan rebuildJob
	wg     sync.WaitGroup
	logger *slog.Logger

	closeMu sync.RWMutex
	closed  bool

	seqMu     sync.Mutex
	submitted map[uuid.UUID]uint64
	applied   map[uuid.UUID]uint64
}

// NewRebuilder starts a pool with the given number of workers (at least one).
func NewRebuilder(workers int, logger *slog.Logger) *Rebuilder {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	r := &Rebuilder{
		jobs:      make(chan rebuildJob, workers*4),
		logger:    logger,
		submitted: make(map[uuid.UUID]uint64),
		applied:   make(map[uuid.UUID]uint64),
	}
	for i := 0; i < workers; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}
	return r
}

// Submit queues a rebuild of b from g. The genome is copied, so the caller
// may keep using g. The returned channel receives exactly one result.
func (r *Rebuilder) Submit(b *Brain, g *neat.Genome) (<-chan RebuildResult, error) {
	r.closeMu.RLock()
	defer r.closeMu.RUnlock()
	if r.closed {
		return nil, ErrRebuilderClosed
	}

	r.seqMu.Lock()
	r.submitted[b.ID]++
	seq := r.submitted[b.ID]
	r.seqMu.Unlock()

	done := make(chan RebuildResult, 1)
	r.jobs <- rebuildJob{brain: b, genome: g.Copy(), seq: seq, done: done}
	return done, nil
}

func (r *Rebuilder) worker(id int) {
	defer r.wg.Done()
	for job := range r.jobs {
		res := RebuildResult{BrainID: job.brain.ID}
		net, err := Build(job.genome, job.brain.opts...)
		if err != nil {
			res.Err = err
			r.logger.Warn("rebuild failed", "worker", id, "brain", job.brain.ID, "error", err)
		} else if r.apply(job, net) {
			res.Network = net
		} else {
			res.Stale = true
			r.logger.Debug("dropped stale rebuild", "worker", id, "brain", job.brain.ID, "seq", job.seq)
		}
		job.done <- res
		close(job.done)
	}
}

// apply swaps net into the brain unless a newer rebuild already landed.
func (r *Rebuilder) apply(job rebuildJob, net *Network) bool {
	r.seqMu.Lock()
	defer r.seqMu.Unlock()
	if job.seq <= r.applied[job.brain.ID] {
		return false
	}
	r.applied[job.brain.ID] = job.seq
	job.brain.swap(job.genome, net)
	return true
}

// Close stops accepting work, finishes queued rebuilds and waits for the
// workers to exit.
func (r *Rebuilder) Close() {
	r.closeMu.Lock()
	if r.closed {
		r.closeMu.Unlock()
		return
	}
	r.closed = true
	close(r.jobs)
	r.closeMu.Unlock()
	r.wg.Wait()
}
