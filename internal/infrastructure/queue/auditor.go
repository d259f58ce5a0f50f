package queue

import (
	"context"
	"hash/fnv"
	"time"

	"github.com/rs/zerolog"

	"github.com/nutritrack/calorie-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	insertTimeout  = 5 * time.Second
)

// Auditor writes audit entries asynchronously so lifecycle requests never
// wait on the audit trail. Entries are routed to a fixed set of workers by
// consistent hashing on the target user name, keeping per-account ordering.
type Auditor struct {
	workers []chan ports.AuditEntry
	repo    ports.AuditRepository
	log     zerolog.Logger
}

// NewAuditor creates an Auditor with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewAuditor(numWorkers int, repo ports.AuditRepository, log zerolog.Logger) *Auditor {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	a := &Auditor{
		workers: make([]chan ports.AuditEntry, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range a.workers {
		a.workers[i] = make(chan ports.AuditEntry, channelBuffer)
	}
	return a
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (a *Auditor) Start(ctx context.Context) {
	for i, ch := range a.workers {
		go a.runWorker(ctx, i, ch)
	}
}

// Record enqueues an entry for the worker responsible for its target.
// When the worker's buffer is full the entry is dropped with a warning:
// the audit trail is best-effort and must never block a request.
func (a *Auditor) Record(entry ports.AuditEntry) {
	select {
	case a.workers[a.shardIndex(entry.Target)] <- entry:
	default:
		a.log.Warn().Str("action", entry.Action).Str("target", entry.Target).Msg("audit buffer full, entry dropped")
	}
}

// shardIndex maps a target user name deterministically to a worker index.
func (a *Auditor) shardIndex(target string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(target))
	return int(h.Sum32()) % len(a.workers)
}

func (a *Auditor) runWorker(ctx context.Context, id int, ch <-chan ports.AuditEntry) {
	for {
		select {
		case <-ctx.Done():
			return
		case entry, ok := <-ch:
			if !ok {
				return
			}
			insertCtx, cancel := context.WithTimeout(context.Background(), insertTimeout)
			if err := a.repo.Insert(insertCtx, &entry); err != nil {
				a.log.Warn().Err(err).Int("worker", id).Str("action", entry.Action).Msg("failed to persist audit entry")
			}
			cancel()
		}
	}
}
