package broadcast

import (
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/game-lobby/internal/platform/logging"
)

const (
	// DefaultBufferSize is the per-subscriber channel capacity. A subscriber
	// whose buffer is full when an event arrives is disconnected instead of
	// stalling the publisher.
	DefaultBufferSize = 16

	defaultPoolSize = 256
)

// Broadcaster fans out events to subscribers grouped by topic. Topics are
// created lazily on first subscribe and removed when their last subscriber
// leaves, so idle topics hold no memory. Publish never blocks: delivery uses
// the subscriber's buffered channel, and slow-consumer disconnects are handed
// off to a worker pool.
type Broadcaster[T any] struct {
	mu     sync.RWMutex
	topics map[string]map[uint64]*Subscription[T]
	nextID uint64
	closed bool

	buffer int
	pool   *ants.Pool
	logger *logging.Logger
}

func New[T any](bufferSize int, logger *logging.Logger) (*Broadcaster[T], error) {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	if logger == nil {
		logger = logging.Default()
	}

	pool, err := ants.NewPool(defaultPoolSize, ants.WithNonblocking(true))
	if err != nil {
		return nil, err
	}

	return &Broadcaster[T]{
		topics: make(map[string]map[uint64]*Subscription[T]),
		buffer: bufferSize,
		pool:   pool,
		logger: logger,
	}, nil
}

// Subscription is one subscriber's independent delivery channel for a topic.
// Close is idempotent and releases the subscriber's slot deterministically.
type Subscription[T any] struct {
	id    uint64
	topic string
	ch    chan T
	once  sync.Once
	owner *Broadcaster[T]
}

// Events yields delivered events in publish order. The channel is closed when
// the subscription ends, whether by Close, slow-consumer disconnect, or
// broadcaster shutdown.
func (s *Subscription[T]) Events() <-chan T {
	return s.ch
}

func (s *Subscription[T]) Topic() string {
	return s.topic
}

func (s *Subscription[T]) Close() {
	s.once.Do(func() {
		s.owner.remove(s)
		close(s.ch)
	})
}

func (b *Broadcaster[T]) Subscribe(topic string) *Subscription[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &Subscription[T]{
		id:    b.nextID,
		topic: topic,
		ch:    make(chan T, b.buffer),
		owner: b,
	}

	if b.closed {
		// Hand back an already-closed subscription so shutdown races are
		// observable as a normal end of stream.
		close(sub.ch)
		sub.once.Do(func() {})
		return sub
	}

	subs, ok := b.topics[topic]
	if !ok {
		subs = make(map[uint64]*Subscription[T])
		b.topics[topic] = subs
	}
	subs[sub.id] = sub

	return sub
}

// Publish delivers the event to every subscriber currently watching the
// topic. Subscribers whose buffers cannot accept the event are scheduled for
// disconnect; neither case blocks the caller.
func (b *Broadcaster[T]) Publish(topic string, event T) {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return
	}

	var stalled []*Subscription[T]
	for _, sub := range b.topics[topic] {
		select {
		case sub.ch <- event:
		default:
			stalled = append(stalled, sub)
		}
	}
	b.mu.RUnlock()

	for _, sub := range stalled {
		b.disconnectSlow(sub)
	}
}

// SubscriberCount reports the number of live subscriptions for a topic.
func (b *Broadcaster[T]) SubscriberCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.topics[topic])
}

// Shutdown closes every subscription and stops accepting new ones.
func (b *Broadcaster[T]) Shutdown() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	topics := b.topics
	b.topics = make(map[string]map[uint64]*Subscription[T])
	b.mu.Unlock()

	for _, subs := range topics {
		for _, sub := range subs {
			sub.once.Do(func() {
				close(sub.ch)
			})
		}
	}

	b.pool.Release()
}

func (b *Broadcaster[T]) disconnectSlow(sub *Subscription[T]) {
	b.logger.Warn("disconnecting slow subscriber",
		"topic", sub.topic,
		"subscriber_id", sub.id,
	)
	if err := b.pool.Submit(sub.Close); err != nil {
		// Pool saturated or released; close inline rather than leak the slot.
		sub.Close()
	}
}

func (b *Broadcaster[T]) remove(sub *Subscription[T]) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs, ok := b.topics[sub.topic]
	if !ok {
		return
	}
	delete(subs, sub.id)
	if len(subs) == 0 {
		delete(b.topics, sub.topic)
	}
}
