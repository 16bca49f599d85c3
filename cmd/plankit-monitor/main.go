// plankit-monitor читает события запусков из RabbitMQ, пишет их в лог
// и отдаёт live-view через HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/shaiso/Plankit/internal/api"
	"github.com/shaiso/Plankit/internal/config"
	"github.com/shaiso/Plankit/internal/monitor"
	"github.com/shaiso/Plankit/internal/mq"
	"github.com/shaiso/Plankit/internal/telemetry"
)

func main() {
	settings, err := config.FromEnviron()
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}

	logger := telemetry.SetupLogger(os.Stderr, settings.LogLevel, settings.LogFormat)
	logger.Info("starting plankit-monitor")

	if err := run(settings, logger); err != nil {
		logger.Error("monitor failed", "error", err)
		os.Exit(1)
	}

	logger.Info("stopped")
}

func run(settings config.Settings, logger *slog.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	conn, err := mq.NewConnection(settings.RabbitMQURL, logger)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := mq.SetupTopology(ctx, conn); err != nil {
		return fmt.Errorf("setup topology: %w", err)
	}
	logger.Debug("topology\n" + mq.TopologyInfo())

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	board := monitor.NewBoard(monitor.BoardConfig{Logger: logger, Registerer: reg})

	handler := api.NewHandler(api.Config{
		Board:     board,
		Gatherer:  reg,
		Connected: conn.IsConnected,
		Logger:    logger,
	})
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	addr := fmt.Sprintf(":%d", settings.MonitorPort)
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	for _, queue := range []mq.Queue{mq.QueueEvents, mq.QueueDescriptions} {
		consumer := mq.NewConsumer(conn, logger, mq.ConsumerConfig{
			Queue:    queue,
			Handler:  board.Handle,
			Prefetch: 10,
		})
		g.Go(func() error {
			if err := consumer.Start(gctx); !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		logger.Info("listening", "addr", addr)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
