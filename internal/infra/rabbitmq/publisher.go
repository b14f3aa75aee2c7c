package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/tharunkumardeveloper/truthlensai/internal/domain/entity"
)

// Publisher owns one channel. amqp channels are not safe for concurrent publishing, so
// every publish holds mu.
type Publisher struct {
	mu       sync.Mutex
	channel  *amqp.Channel
	exchange string
}

func NewPublisher(conn *amqp.Connection, exchange string) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open publisher channel: %w", err)
	}
	return &Publisher{channel: ch, exchange: exchange}, nil
}

func (p *Publisher) publish(ctx context.Context, exchange, key string, msg amqp.Publishing) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.channel.PublishWithContext(ctx, exchange, key, false, false, msg)
}

func (p *Publisher) Close() error {
	return p.channel.Close()
}

type StatusPublisher struct {
	pub        *Publisher
	routingKey string
}

func NewStatusPublisher(pub *Publisher) *StatusPublisher {
	return &StatusPublisher{pub: pub, routingKey: StatusRoutingKey}
}

func (sp *StatusPublisher) PublishStatus(ctx context.Context, msg entity.AnalysisStatusMessage) error {
	publishing, err := statusPublishing(msg)
	if err != nil {
		return err
	}
	if err := sp.pub.publish(ctx, sp.pub.exchange, sp.routingKey, publishing); err != nil {
		return fmt.Errorf("publish status: %w", err)
	}
	return nil
}

// statusPublishing carries the run ID as the correlation ID so consumers can
// follow a run without decoding the body.
func statusPublishing(msg entity.AnalysisStatusMessage) (amqp.Publishing, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal status: %w", err)
	}
	return amqp.Publishing{
		ContentType:   "application/json",
		CorrelationId: msg.RunID.String(),
		Body:          body,
		DeliveryMode:  amqp.Persistent,
		Timestamp:     time.Now().UTC(),
	}, nil
}

type DLQPublisher struct {
	pub   *Publisher
	queue string
}

func NewDLQPublisher(pub *Publisher, dlqQueue string) *DLQPublisher {
	return &DLQPublisher{pub: pub, queue: dlqQueue}
}

func (dp *DLQPublisher) PublishToDLQ(ctx context.Context, rawRequest []byte, reason string) error {
	err := dp.pub.publish(ctx, "", dp.queue, amqp.Publishing{
		ContentType:  "application/json",
		Body:         rawRequest,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Headers: amqp.Table{
			"x-dlq-reason": reason,
		},
	})
	if err != nil {
		return fmt.Errorf("publish to dlq: %w", err)
	}
	return nil
}
