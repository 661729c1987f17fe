package kafka

import (
	"context"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const writeTimeout = 10 * time.Second

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer buffers messages in an inbox and writes them from one goroutine, so
// publishing never blocks request handling on the broker.
type Producer struct {
	w       messageWriter
	log     *zap.Logger
	mu      sync.RWMutex
	closed  bool
	inbox   chan kafka.Message
	closeCh chan struct{}
}

func NewProducer(brokers []string, topic string, buf int, log *zap.Logger) *Producer {
	return newProducer(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
	}, buf, log.With(zap.String("topic", topic)))
}

func newProducer(w messageWriter, buf int, log *zap.Logger) *Producer {
	return &Producer{
		w:       w,
		log:     log,
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
	}
}

// Start runs the write loop until Close is called or ctx is done. Messages
// already in the inbox are flushed before the writer closes.
func (p *Producer) Start(ctx context.Context) {
	go func() {
		select {
		case <-ctx.Done():
			p.Close()
		case <-p.closeCh:
		}
	}()
	go func() {
		defer close(p.closeCh)
		for m := range p.inbox {
			p.write(m)
		}
		if err := p.w.Close(); err != nil {
			p.log.Warn("kafka writer close", zap.Error(err))
		}
	}()
}

func (p *Producer) write(m kafka.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := p.w.WriteMessages(ctx, m); err != nil {
		p.log.Error("kafka write failed", zap.ByteString("key", m.Key), zap.Error(err))
	}
}

// Publish enqueues a message. It reports false when the producer is closed or
// the inbox is full; the message is dropped in that case.
func (p *Producer) Publish(key, value []byte, headers ...kafka.Header) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}
	select {
	case p.inbox <- kafka.Message{Key: key, Value: value, Time: time.Now(), Headers: headers}:
		return true
	default:
		p.log.Warn("kafka inbox full, dropping message", zap.ByteString("key", key))
		return false
	}
}

// Close stops accepting messages; the loop flushes what is queued and exits.
func (p *Producer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		close(p.inbox)
	}
}

// WaitClosed blocks until the write loop has drained and the writer is closed.
func (p *Producer) WaitClosed() { <-p.closeCh }
