// Package mq публикует события выполнения планов в RabbitMQ.
//
// Структура:
//   - connection.go — соединение с reconnect
//   - topology.go   — exchanges, queues, bindings
//   - publisher.go  — сообщения run.started, run.finished, node.event, description
//   - sink.go       — EventSink, реализация pipeline.Observer
//   - consumer.go   — чтение очередей (plankit-monitor)
//
// Все события идут в topic exchange plankit.pipelines:
//   - run.started, run.finished, node.<phase> → pipelines.events
//   - description                              → pipelines.descriptions
package mq
