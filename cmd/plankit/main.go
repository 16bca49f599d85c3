// plankit — описание, проверка и запуск pipeline планов.
//
// Использование:
//
//	plankit [--json] [--verbose] <command> [flags]
//
// Команды:
//
//	describe  Дерево плана
//	validate  Проверка определения
//	run       Однократный запуск
//	schedule  Запуск по cron
//	triage    Разметка обращений
//	fake      Случайные данные
//	topology  Схема RabbitMQ
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/shaiso/Plankit/internal/cli"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rootCmd := cli.NewRootCmd(cli.Options{
		Version: version,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	})

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		cancel()
		os.Exit(1)
	}
}
