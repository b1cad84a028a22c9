package analytics

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Adithya-Monish-Kumar-K/userdef-search/pkg/kafka"
)

// Publisher delivers one event. *kafka.Producer satisfies it.
type Publisher interface {
	Publish(ctx context.Context, event kafka.Event) error
}

// Collector buffers events and publishes them from a single goroutine so
// that request handlers never wait on the broker.
type Collector struct {
	publisher Publisher
	eventCh   chan any
	logger    *slog.Logger
	done      chan struct{}
	startOnce sync.Once
	closeOnce sync.Once

	mu     sync.RWMutex
	closed bool
}

func NewCollector(publisher Publisher, bufferSize int) *Collector {
	if bufferSize <= 0 {
		bufferSize = 10000
	}
	return &Collector{
		publisher: publisher,
		eventCh:   make(chan any, bufferSize),
		logger:    slog.Default().With("component", "analytics-collector"),
		done:      make(chan struct{}),
	}
}

func (c *Collector) Start(ctx context.Context) {
	c.startOnce.Do(func() {
		go c.run(ctx)
		c.logger.Info("analytics collector started", "buffer_size", cap(c.eventCh))
	})
}

// Track queues event, dropping it when the buffer is full. Events tracked
// after Close are discarded.
func (c *Collector) Track(event any) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		c.logger.Debug("analytics event dropped (collector closed)")
		return
	}
	select {
	case c.eventCh <- event:
	default:
		c.logger.Warn("analytics event dropped (buffer full)")
	}
}

// Close stops accepting events and waits for the queued ones to be published.
func (c *Collector) Close() {
	c.closeOnce.Do(func() {
		c.Start(context.Background())
		c.mu.Lock()
		c.closed = true
		close(c.eventCh)
		c.mu.Unlock()
		<-c.done
	})
}

func (c *Collector) run(ctx context.Context) {
	defer close(c.done)
	for {
		select {
		case event, ok := <-c.eventCh:
			if !ok {
				return
			}
			c.publish(ctx, event)
		case <-ctx.Done():
			c.drain()
			return
		}
	}
}

func (c *Collector) drain() {
	for {
		select {
		case event, ok := <-c.eventCh:
			if !ok {
				return
			}
			c.publish(context.Background(), event)
		default:
			return
		}
	}
}

func (c *Collector) publish(ctx context.Context, event any) {
	key := "analytics"
	switch e := event.(type) {
	case SearchEvent:
		key = string(e.Type)
	case SelectEvent:
		key = string(e.Type)
	}
	if err := c.publisher.Publish(ctx, kafka.Event{Key: key, Value: event}); err != nil {
		c.logger.Error("failed to publish analytics event", "key", key, "error", err)
	}
}
