// Package monitor собирает события из RabbitMQ в live-view запусков.
//
// Board — mq.Handler: plankit-monitor подписывает его на очереди
// pipelines.events и pipelines.descriptions, а HTTP API (internal/api)
// отдаёт содержимое доски.
package monitor
