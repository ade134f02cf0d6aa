// Package audit writes admin changelog entries off the request path.
// Recording never blocks or fails the mutation that produced the entry.
package audit

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"pinot/internal/model"
)

const writeTimeout = 5 * time.Second

// Sink persists changelog entries
type Sink interface {
	Insert(ctx context.Context, entry *model.AdminLog) error
}

// Recorder queues entries and writes them from a single background goroutine
type Recorder struct {
	sink    Sink
	entries chan *model.AdminLog
	done    chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewRecorder starts a recorder with the given queue size
func NewRecorder(sink Sink, buffer int) *Recorder {
	if buffer <= 0 {
		buffer = 256
	}
	r := &Recorder{
		sink:    sink,
		entries: make(chan *model.AdminLog, buffer),
		done:    make(chan struct{}),
	}
	go r.run()
	return r
}

func (r *Recorder) run() {
	defer close(r.done)
	for entry := range r.entries {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		if err := r.sink.Insert(ctx, entry); err != nil {
			log.Printf("audit: failed to write %s %s/%s: %v", entry.Action, entry.Collection, entry.DocumentID, err)
		}
		cancel()
	}
}

// Record enqueues an entry. A full queue or a closed recorder drops it.
func (r *Recorder) Record(entry *model.AdminLog) {
	if entry == nil {
		return
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		log.Printf("audit: recorder closed, dropping %s %s/%s", entry.Action, entry.Collection, entry.DocumentID)
		return
	}
	select {
	case r.entries <- entry:
	default:
		log.Printf("audit: queue full, dropping %s %s/%s", entry.Action, entry.Collection, entry.DocumentID)
	}
}

// Close stops accepting entries and waits for the queue to drain
func (r *Recorder) Close() {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.entries)
	}
	r.mu.Unlock()
	<-r.done
}
