// Package cli реализует инструмент командной строки plankit.
//
// # Команды
//
//   - describe, validate — чтение YAML плана (plandef) и вывод дерева
//   - run                — однократное выполнение, --publish отправляет события в RabbitMQ
//   - schedule           — предпросмотр (--next N) или запуск по cron
//   - triage             — разметка обращений правилами filter
//   - fake               — генерация случайных данных
//   - topology           — схема RabbitMQ
//
// Каждая команда создаётся фабрикой (NewRunCmd и т.д.), принимающей
// appFn и outputFn — замыкания для ленивого создания App и Output
// после разбора PersistentFlags.
//
// # Output
//
// Таблицы (text/tabwriter) по умолчанию, JSON с флагом --json.
// Данные идут в stdout, сообщения и логи — в stderr:
//
//	plankit run -f deploy.yaml --json | jq .status
package cli
