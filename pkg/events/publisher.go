package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publisher delivers domain events to a named queue.
type Publisher interface {
	Publish(ctx context.Context, queue string, event interface{}) error
	Close() error
}

const (
	dialTimeout      = 2 * time.Second
	redialBackoff    = 30 * time.Second
	defaultHeartbeat = 10 * time.Second
)

// ErrBrokerUnavailable is returned while a failed dial is backing off.
var ErrBrokerUnavailable = errors.New("amqp broker unavailable")

type dialFunc func(url string) (*amqp.Connection, error)

func dialBroker(url string) (*amqp.Connection, error) {
	return amqp.DialConfig(url, amqp.Config{
		Dial:      amqp.DefaultDial(dialTimeout),
		Heartbeat: defaultHeartbeat,
		Locale:    "en_US",
	})
}

// AMQPPublisher publishes JSON events on the default exchange with the queue
// name as routing key. Queues are declared durable on first use.
//
// A failed dial suppresses further dials for redialBackoff so an unreachable
// broker costs callers one short timeout rather than one per request.
type AMQPPublisher struct {
	url    string
	logger *zap.Logger
	dial   dialFunc
	now    func() time.Time

	mu          sync.Mutex
	conn        *amqp.Connection
	ch          *amqp.Channel
	declared    map[string]struct{}
	redialAfter time.Time
}

// NewAMQPPublisher dials the broker lazily on the first Publish.
func NewAMQPPublisher(url string, logger *zap.Logger) *AMQPPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AMQPPublisher{
		url:      url,
		logger:   logger,
		dial:     dialBroker,
		now:      time.Now,
		declared: make(map[string]struct{}),
	}
}

// Publish marshals event and sends it as a persistent message.
func (p *AMQPPublisher) Publish(ctx context.Context, queue string, event interface{}) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		return err
	}
	if _, ok := p.declared[queue]; !ok {
		if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			p.reset()
			return fmt.Errorf("declare queue %s: %w", queue, err)
		}
		p.declared[queue] = struct{}{}
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue, false, false, msg); err != nil {
		p.reset()
		return fmt.Errorf("publish to %s: %w", queue, err)
	}
	return nil
}

// Close releases the channel and connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var err error
	if p.ch != nil {
		err = p.ch.Close()
	}
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	p.ch, p.conn = nil, nil
	return err
}

func (p *AMQPPublisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	if p.conn == nil || p.conn.IsClosed() {
		if p.now().Before(p.redialAfter) {
			return nil, ErrBrokerUnavailable
		}
		conn, err := p.dial(p.url)
		if err != nil {
			p.redialAfter = p.now().Add(redialBackoff)
			p.logger.Warn("amqp dial failed, backing off", zap.Duration("backoff", redialBackoff), zap.Error(err))
			return nil, fmt.Errorf("dial amqp: %w", err)
		}
		p.conn = conn
		p.redialAfter = time.Time{}
	}
	ch, err := p.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open amqp channel: %w", err)
	}
	p.ch = ch
	p.declared = make(map[string]struct{})
	return ch, nil
}

func (p *AMQPPublisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	p.ch = nil
	p.logger.Warn("amqp channel reset")
}

// NopPublisher drops every event. It backs deployments without a broker.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, string, interface{}) error { return nil }

// Close implements Publisher.
func (NopPublisher) Close() error { return nil }
