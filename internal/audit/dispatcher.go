package audit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Token lifecycle event types.
const (
	EventTokenIssued      = "token_issued"
	EventTokenSigned      = "token_signed"
	EventTokenVerified    = "token_verified"
	EventTokenRejected    = "token_rejected"
	EventTokenRevoked     = "token_revoked"
	EventRateLimitTripped = "rate_limit_triggered"
)

// Config controls dispatcher buffering behavior.
type Config struct {
	Enabled    bool
	BufferSize int
	// DropIfFull discards events when the buffer is full instead of
	// blocking the caller. Revocation events are never discarded this way.
	DropIfFull bool
}

// Dispatcher relays token events to a sink on its own goroutine. Issue and
// Verify hand events over without waiting on the sink.
type Dispatcher struct {
	cfg       Config
	sink      Sink
	queue     chan Event
	done      chan struct{}
	wg        sync.WaitGroup
	emitted   atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once

	mu          sync.Mutex
	droppedByID map[string]uint64
	dropped     atomic.Uint64
}

// NewDispatcher starts a dispatcher. It returns nil when cfg is disabled;
// every method is safe on a nil Dispatcher.
func NewDispatcher(cfg Config, sink Sink) *Dispatcher {
	if !cfg.Enabled {
		return nil
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	d := &Dispatcher{
		cfg:         cfg,
		sink:        sink,
		queue:       make(chan Event, cfg.BufferSize),
		done:        make(chan struct{}),
		droppedByID: make(map[string]uint64),
	}

	d.wg.Add(1)
	go d.run()

	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case event := <-d.queue:
			d.deliver(event)
		case <-d.done:
			for {
				select {
				case event := <-d.queue:
					d.deliver(event)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) deliver(event Event) {
	d.sink.Emit(context.Background(), event)
	d.emitted.Add(1)
}

// mustDeliver reports whether losing event would hide a security action.
func mustDeliver(event Event) bool {
	return event.EventType == EventTokenRevoked
}

// Emit queues event, stamping a zero Timestamp with the current UTC time.
// Revocation events wait for buffer space until ctx is done even when
// DropIfFull is set.
func (d *Dispatcher) Emit(ctx context.Context, event Event) {
	if d == nil || d.closed.Load() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	if d.cfg.DropIfFull && !mustDeliver(event) {
		select {
		case d.queue <- event:
		case <-d.done:
		default:
			d.drop(event)
		}
		return
	}

	select {
	case d.queue <- event:
	case <-ctx.Done():
		d.drop(event)
	case <-d.done:
	}
}

func (d *Dispatcher) drop(event Event) {
	d.dropped.Add(1)
	d.mu.Lock()
	d.droppedByID[event.EventType]++
	d.mu.Unlock()
}

// Close stops accepting events, flushes the queue and waits for the sink.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.done)
		d.wg.Wait()
	})
}

// Dropped returns how many events were discarded.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}

// DroppedByType returns discarded events keyed by event type.
func (d *Dispatcher) DroppedByType() map[string]uint64 {
	if d == nil {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[string]uint64, len(d.droppedByID))
	for k, v := range d.droppedByID {
		out[k] = v
	}
	return out
}

// Emitted returns how many events reached the sink.
func (d *Dispatcher) Emitted() uint64 {
	if d == nil {
		return 0
	}
	return d.emitted.Load()
}
