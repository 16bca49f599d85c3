package mq

import (
	"context"
	"fmt"
	"strings"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shaiso/Plankit/internal/domain"
	"github.com/shaiso/Plankit/internal/tree"
)

// Exchange — имя обменника.
type Exchange string

// Queue — имя очереди.
type Queue string

// RoutingKey — ключ маршрутизации.
type RoutingKey string

// Exchanges.
const (
	ExchangePipelines Exchange = "plankit.pipelines"
	ExchangeDLQ       Exchange = "plankit.dlq"
)

// Queues.
const (
	QueueEvents       Queue = "pipelines.events"
	QueueDescriptions Queue = "pipelines.descriptions"
	QueueDLQEvents    Queue = "dlq.events"
)

// Routing keys.
//
// События узлов публикуются с ключом "node.<phase>", например node.failed.
const (
	RoutingKeyRunStarted  RoutingKey = "run.started"
	RoutingKeyRunFinished RoutingKey = "run.finished"
	RoutingKeyDescription RoutingKey = "description"
	RoutingKeyDLQEvents   RoutingKey = "events"

	routingKeyNodePrefix = "node."
)

// NodeRoutingKey возвращает ключ маршрутизации события узла.
func NodeRoutingKey(phase domain.NodePhase) RoutingKey {
	return RoutingKey(routingKeyNodePrefix + strings.ToLower(string(phase)))
}

type exchangeDecl struct {
	name Exchange
	kind string
}

type queueDecl struct {
	name Queue
	args amqp.Table
}

type bindingDecl struct {
	queue    Queue
	pattern  RoutingKey
	exchange Exchange
}

// topology — полное описание exchanges, queues и bindings.
type topology struct {
	exchanges []exchangeDecl
	queues    []queueDecl
	bindings  []bindingDecl
}

func defaultTopology() topology {
	dlqArgs := amqp.Table{
		"x-dead-letter-exchange":    string(ExchangeDLQ),
		"x-dead-letter-routing-key": string(RoutingKeyDLQEvents),
	}

	return topology{
		exchanges: []exchangeDecl{
			{ExchangePipelines, amqp.ExchangeTopic},
			{ExchangeDLQ, amqp.ExchangeDirect},
		},
		queues: []queueDecl{
			// события run и узлов, битые сообщения уходят в DLQ
			{QueueEvents, dlqArgs},
			{QueueDescriptions, nil},
			{QueueDLQEvents, nil},
		},
		bindings: []bindingDecl{
			{QueueEvents, "run.*", ExchangePipelines},
			{QueueEvents, "node.*", ExchangePipelines},
			{QueueDescriptions, RoutingKeyDescription, ExchangePipelines},
			{QueueDLQEvents, RoutingKeyDLQEvents, ExchangeDLQ},
		},
	}
}

// SetupTopology объявляет exchanges, queues и bindings. Идемпотентна.
func SetupTopology(ctx context.Context, conn *Connection) error {
	t := defaultTopology()

	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		for _, ex := range t.exchanges {
			if err := ch.ExchangeDeclare(
				string(ex.name), // name
				ex.kind,         // type
				true,            // durable
				false,           // auto-deleted
				false,           // internal
				false,           // no-wait
				nil,             // arguments
			); err != nil {
				return fmt.Errorf("declare exchange %s: %w", ex.name, err)
			}
		}

		for _, q := range t.queues {
			if _, err := ch.QueueDeclare(
				string(q.name), // name
				true,           // durable
				false,          // delete when unused
				false,          // exclusive
				false,          // no-wait
				q.args,         // arguments
			); err != nil {
				return fmt.Errorf("declare queue %s: %w", q.name, err)
			}
		}

		for _, b := range t.bindings {
			if err := ch.QueueBind(
				string(b.queue),
				string(b.pattern),
				string(b.exchange),
				false,
				nil,
			); err != nil {
				return fmt.Errorf("bind queue %s to %s: %w", b.queue, b.exchange, err)
			}
		}

		return nil
	})
}

// TopologyInfo возвращает схему топологии для вывода в лог или CLI.
//
//	┬ RabbitMQ
//	├─┬ plankit.pipelines (topic)
//	│ ├── pipelines.events [run.*, node.*] dlx=plankit.dlq
//	│ └── pipelines.descriptions [description]
//	└─┬ plankit.dlq (direct)
//	  └── dlq.events [events]
func TopologyInfo() string {
	t := defaultTopology()

	exchanges := make([]tree.Node, 0, len(t.exchanges))
	for _, ex := range t.exchanges {
		var queues []tree.Node
		for _, q := range t.queues {
			patterns := t.patterns(q.name, ex.name)
			if len(patterns) == 0 {
				continue
			}

			label := fmt.Sprintf("%s [%s]", q.name, strings.Join(patterns, ", "))
			if dlx, ok := q.args["x-dead-letter-exchange"]; ok {
				label += fmt.Sprintf(" dlx=%v", dlx)
			}
			queues = append(queues, tree.Leaf(label))
		}

		exchanges = append(exchanges, tree.Branch(fmt.Sprintf("%s (%s)", ex.name, ex.kind), queues...))
	}

	return tree.Render(tree.Branch("RabbitMQ", exchanges...))
}

func (t topology) patterns(q Queue, ex Exchange) []string {
	var out []string
	for _, b := range t.bindings {
		if b.queue == q && b.exchange == ex {
			out = append(out, string(b.pattern))
		}
	}
	return out
}
