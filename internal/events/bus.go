package events

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

const (
	// DefaultBufferSize is the default per-subscriber channel capacity.
	DefaultBufferSize = 64

	// EventTypeSessionOpened is published when a fresh session is mounted.
	EventTypeSessionOpened = "SessionOpened"
	// EventTypeCommandProcessed is published for every accepted submission.
	EventTypeCommandProcessed = "CommandProcessed"
	// EventTypeTranscriptCleared is published when clear wipes the transcript.
	EventTypeTranscriptCleared = "TranscriptCleared"
	// EventTypeVisibilityChanged is published when the window is shown or hidden.
	EventTypeVisibilityChanged = "VisibilityChanged"
	// EventTypeRenderCompleted is published when a typed render finishes.
	EventTypeRenderCompleted = "RenderCompleted"
)

// Event is the normalized message delivered through the in-process event bus.
type Event struct {
	Type      string
	Timestamp time.Time
	SessionID string
	Payload   any
}

// CommandProcessed describes one accepted submission.
type CommandProcessed struct {
	Command   string
	Name      string
	LineCount int
}

// VisibilityChanged describes a show or hide of the terminal window.
type VisibilityChanged struct {
	Visible bool
	Reason  string
}

// RenderCompleted describes a finished typed render.
type RenderCompleted struct {
	RenderID  int
	LineCount int
	Duration  time.Duration
}

// Handler consumes a published event.
type Handler func(Event)

// Logger captures warning logs for dropped events.
type Logger interface {
	Printf(format string, args ...any)
}

// Bus defines event subscription and publish behavior.
type Bus interface {
	Subscribe(eventType string, handler Handler)
	SubscribeAll(handler Handler)
	Publish(event Event)
}

// Option customizes bus construction.
type Option func(*InMemoryBus)

// WithBufferSize configures per-subscriber channel capacity.
func WithBufferSize(size int) Option {
	return func(bus *InMemoryBus) {
		if size > 0 {
			bus.bufferSize = size
		}
	}
}

// WithLogger configures log sink used for dropped-event warnings.
func WithLogger(logger Logger) Option {
	return func(bus *InMemoryBus) {
		if logger != nil {
			bus.logger = logger
		}
	}
}

// InMemoryBus is a thread-safe in-process pub/sub bus backed by buffered
// channels. Handlers run on one goroutine per subscriber.
type InMemoryBus struct {
	mu           sync.RWMutex
	bufferSize   int
	logger       Logger
	typedSubs    map[string][]*subscriber
	wildcardSubs []*subscriber
	nextID       uint64
	closed       bool
	consumers    sync.WaitGroup
}

type subscriber struct {
	id uint64
	ch chan Event
}

// New creates an in-memory event bus with optional configuration.
func New(options ...Option) *InMemoryBus {
	bus := &InMemoryBus{
		bufferSize: DefaultBufferSize,
		logger:     log.NewWithOptions(os.Stderr, log.Options{Prefix: "events"}),
		typedSubs:  make(map[string][]*subscriber),
	}
	for _, option := range options {
		option(bus)
	}
	return bus
}

// Subscribe registers a handler for a specific event type.
func (b *InMemoryBus) Subscribe(eventType string, handler Handler) {
	normalizedType := strings.TrimSpace(eventType)
	if normalizedType == "" || handler == nil {
		return
	}
	b.register(handler, func(sub *subscriber) {
		b.typedSubs[normalizedType] = append(b.typedSubs[normalizedType], sub)
	})
}

// SubscribeAll registers a handler that receives every published event.
func (b *InMemoryBus) SubscribeAll(handler Handler) {
	if handler == nil {
		return
	}
	b.register(handler, func(sub *subscriber) {
		b.wildcardSubs = append(b.wildcardSubs, sub)
	})
}

// Publish delivers an event to typed subscribers and wildcard subscribers.
// Events published after Close are discarded.
func (b *InMemoryBus) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, sub := range b.typedSubs[strings.TrimSpace(event.Type)] {
		b.deliver(sub, event)
	}
	for _, sub := range b.wildcardSubs {
		b.deliver(sub, event)
	}
}

// Close stops accepting events and waits until every subscriber has handled
// what was already queued.
func (b *InMemoryBus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	for _, subs := range b.typedSubs {
		for _, sub := range subs {
			close(sub.ch)
		}
	}
	for _, sub := range b.wildcardSubs {
		close(sub.ch)
	}
	b.mu.Unlock()

	b.consumers.Wait()
}

func (b *InMemoryBus) register(handler Handler, add func(*subscriber)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}

	b.nextID++
	sub := &subscriber{id: b.nextID, ch: make(chan Event, b.bufferSize)}
	add(sub)

	b.consumers.Add(1)
	go b.consume(sub, handler)
}

func (b *InMemoryBus) deliver(sub *subscriber, event Event) {
	select {
	case sub.ch <- event:
	default:
		b.logger.Printf(
			"events: dropping event for subscriber=%d type=%s session=%s",
			sub.id,
			event.Type,
			event.SessionID,
		)
	}
}

func (b *InMemoryBus) consume(sub *subscriber, handler Handler) {
	defer b.consumers.Done()
	for event := range sub.ch {
		handler(event)
	}
}
