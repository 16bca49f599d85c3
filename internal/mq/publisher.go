package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shaiso/Plankit/internal/domain"
)

// MessageType — тип сообщения.
type MessageType string

// Типы сообщений.
const (
	MessageTypeRunStarted  MessageType = "run.started"
	MessageTypeRunFinished MessageType = "run.finished"
	MessageTypeNodeEvent   MessageType = "node.event"
	MessageTypeDescription MessageType = "description"
)

// Message — конверт сообщения.
type Message struct {
	// ID — уникальный идентификатор сообщения.
	ID string `json:"id"`

	// Type — тип сообщения.
	Type MessageType `json:"type"`

	// Payload — полезная нагрузка (domain.RunEvent, domain.NodeEvent
	// или DescriptionPayload).
	Payload any `json:"payload"`

	// Timestamp — время создания.
	Timestamp time.Time `json:"timestamp"`
}

// DescriptionPayload — дерево плана, отрисованное pipeline.Describe.
type DescriptionPayload struct {
	RunID    uuid.UUID `json:"run_id"`
	Pipeline string    `json:"pipeline"`
	Tree     string    `json:"tree"`
}

// NewMessage создаёт сообщение с новым ID.
func NewMessage(t MessageType, payload any) *Message {
	return &Message{
		ID:        uuid.New().String(),
		Type:      t,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// Publisher публикует сообщения в RabbitMQ.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		conn:   conn,
		logger: logger,
	}
}

// Publish публикует сообщение в exchange с routing key.
func (p *Publisher) Publish(ctx context.Context, exchange Exchange, routingKey RoutingKey, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			string(exchange),
			string(routingKey),
			false, // mandatory
			false, // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				MessageId:    msg.ID,
				Type:         string(msg.Type),
				Timestamp:    msg.Timestamp,
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", exchange, routingKey, err)
		}

		p.logger.Debug("published message",
			"exchange", exchange,
			"routing_key", routingKey,
			"message_id", msg.ID,
			"type", msg.Type,
		)

		return nil
	})
}

// PublishRunStarted публикует начало run.
func (p *Publisher) PublishRunStarted(ctx context.Context, run *domain.Run) error {
	msg := NewMessage(MessageTypeRunStarted, domain.RunEvent{Run: run})
	return p.Publish(ctx, ExchangePipelines, RoutingKeyRunStarted, msg)
}

// PublishRunFinished публикует завершение run.
func (p *Publisher) PublishRunFinished(ctx context.Context, run *domain.Run) error {
	msg := NewMessage(MessageTypeRunFinished, domain.RunEvent{Run: run})
	return p.Publish(ctx, ExchangePipelines, RoutingKeyRunFinished, msg)
}

// PublishNodeEvent публикует событие узла с ключом node.<phase>.
func (p *Publisher) PublishNodeEvent(ctx context.Context, ev domain.NodeEvent) error {
	msg := NewMessage(MessageTypeNodeEvent, ev)
	return p.Publish(ctx, ExchangePipelines, NodeRoutingKey(ev.Phase), msg)
}

// PublishDescription публикует дерево плана.
func (p *Publisher) PublishDescription(ctx context.Context, payload DescriptionPayload) error {
	msg := NewMessage(MessageTypeDescription, payload)
	return p.Publish(ctx, ExchangePipelines, RoutingKeyDescription, msg)
}
