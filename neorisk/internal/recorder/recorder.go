// Package recorder persists history entries off the request path.
package recorder

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Krimson/neorisk-monitor/neorisk/internal/models"
)

var recordedEntries = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "neorisk",
		Subsystem: "recorder",
		Name:      "entries_total",
		Help:      "History entries handled by the recorder, by result",
	},
	[]string{"result"},
)

const defaultWriteTimeout = 5 * time.Second

// Recorder queues history writes on a buffered channel and drains them on a
// single worker. Record never blocks the caller.
type Recorder struct {
	writer       Writer
	sinks        []Sink
	writeTimeout time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan models.HistoryEntry
	done   chan struct{}

	stats struct {
		mu      sync.RWMutex
		queued  int64
		written int64
		failed  int64
		dropped int64
	}
}

// New starts the worker. A non-positive writeTimeout uses five seconds.
func New(writer Writer, queueSize int, writeTimeout time.Duration, sinks ...Sink) *Recorder {
	if queueSize < 1 {
		queueSize = 1
	}
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}

	r := &Recorder{
		writer:       writer,
		sinks:        sinks,
		writeTimeout: writeTimeout,
		queue:        make(chan models.HistoryEntry, queueSize),
		done:         make(chan struct{}),
	}

	go r.writeWorker()

	return r
}

// Record enqueues entry and reports whether it was accepted. A full queue or
// a stopped recorder drops the entry.
func (r *Recorder) Record(entry models.HistoryEntry) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		log.Printf("[WARN] [RECORDER] Recorder stopped, entry dropped")
		r.incrementDropped()
		return false
	}

	select {
	case r.queue <- entry:
		r.incrementQueued()
		return true
	default:
		log.Printf("[WARN] [RECORDER] Queue full, entry dropped: consensus=%s", entry.Consensus)
		r.incrementDropped()
		return false
	}
}

func (r *Recorder) writeWorker() {
	defer close(r.done)

	for entry := range r.queue {
		r.write(entry)
	}
}

func (r *Recorder) write(entry models.HistoryEntry) {
	ctx, cancel := context.WithTimeout(context.Background(), r.writeTimeout)
	defer cancel()

	id, err := r.writer.Create(ctx, entry)
	if err != nil {
		log.Printf("[ERROR] [RECORDER] Failed to persist history entry: %v", err)
		r.incrementFailed()
		return
	}
	entry.ID = id
	r.incrementWritten()

	for _, sink := range r.sinks {
		if err := sink.Consume(ctx, entry); err != nil {
			log.Printf("[WARN] [RECORDER] Sink failed for entry %s: %v", id, err)
		}
	}
}

// Stop rejects new entries, waits for queued ones to be written and logs
// the final counters. It is safe to call more than once.
func (r *Recorder) Stop() {
	log.Printf("[INFO] [RECORDER] Stopping recorder...")

	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()

	<-r.done

	r.logStats()
}

func (r *Recorder) incrementQueued() {
	r.stats.mu.Lock()
	r.stats.queued++
	r.stats.mu.Unlock()
	recordedEntries.WithLabelValues("queued").Inc()
}

func (r *Recorder) incrementWritten() {
	r.stats.mu.Lock()
	r.stats.written++
	r.stats.mu.Unlock()
	recordedEntries.WithLabelValues("written").Inc()
}

func (r *Recorder) incrementFailed() {
	r.stats.mu.Lock()
	r.stats.failed++
	r.stats.mu.Unlock()
	recordedEntries.WithLabelValues("failed").Inc()
}

func (r *Recorder) incrementDropped() {
	r.stats.mu.Lock()
	r.stats.dropped++
	r.stats.mu.Unlock()
	recordedEntries.WithLabelValues("dropped").Inc()
}

func (r *Recorder) logStats() {
	s := r.Stats()
	log.Printf("[STATS] [RECORDER] queued=%d written=%d failed=%d dropped=%d",
		s.Queued, s.Written, s.Failed, s.Dropped)
}

// Stats returns a snapshot of the counters.
func (r *Recorder) Stats() Stats {
	r.stats.mu.RLock()
	defer r.stats.mu.RUnlock()

	return Stats{
		Queued:  r.stats.queued,
		Written: r.stats.written,
		Failed:  r.stats.failed,
		Dropped: r.stats.dropped,
	}
}
