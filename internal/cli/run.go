package cli

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/shaiso/Plankit/internal/domain"
	"github.com/shaiso/Plankit/internal/mq"
	"github.com/shaiso/Plankit/internal/pipeline"
	"github.com/shaiso/Plankit/internal/telemetry"
)

// execFlags — флаги выполнения плана.
type execFlags struct {
	publish        bool
	sequentialMode string
	maxParallel    int
}

func (f *execFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.publish, "publish", false, "Publish run events to RabbitMQ")
	cmd.Flags().StringVar(&f.sequentialMode, "sequential-mode", "", "Sequential mode: strict or concurrent (default from PLANKIT_SEQUENTIAL_MODE)")
	cmd.Flags().IntVar(&f.maxParallel, "max-parallel", -1, "Parallel children limit, 0 = unlimited (default from PLANKIT_MAX_PARALLEL)")
}

// executor собирает Executor из настроек и флагов.
// Если reg не nil, в нём регистрируются метрики выполнения.
// Возвращает функцию освобождения ресурсов (соединение с RabbitMQ).
func (f *execFlags) executor(ctx context.Context, app *App, reg prometheus.Registerer) (*pipeline.Executor, func(), error) {
	modeStr := app.Settings.SequentialMode
	if f.sequentialMode != "" {
		modeStr = f.sequentialMode
	}
	mode, err := pipeline.ParseSequentialMode(modeStr)
	if err != nil {
		return nil, nil, err
	}

	maxParallel := app.Settings.MaxParallel
	if f.maxParallel >= 0 {
		maxParallel = f.maxParallel
	}

	cfg := pipeline.Config{
		Logger:         app.Logger,
		SequentialMode: mode,
		MaxParallel:    maxParallel,
	}
	if reg != nil {
		cfg.Metrics = telemetry.NewMetrics(reg)
	}

	cleanup := func() {}
	if f.publish {
		sink, closeFn, err := connectEvents(ctx, app)
		if err != nil {
			return nil, nil, err
		}
		cfg.Observer = sink
		cleanup = closeFn
	}

	return pipeline.NewExecutor(cfg), cleanup, nil
}

// connectEvents подключается к RabbitMQ и возвращает EventSink.
func connectEvents(ctx context.Context, app *App) (*mq.EventSink, func(), error) {
	conn, err := mq.NewConnection(app.Settings.RabbitMQURL, app.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to RabbitMQ: %w", err)
	}

	if err := mq.SetupTopology(ctx, conn); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("setup topology: %w", err)
	}

	publisher := mq.NewPublisher(conn, app.Logger)
	closeFn := func() {
		if err := conn.Close(); err != nil {
			app.Logger.Warn("failed to close RabbitMQ connection", "error", err)
		}
	}

	return mq.NewEventSink(publisher, app.Logger), closeFn, nil
}

var runHeaders = []string{"ID", "PIPELINE", "STATUS", "DURATION", "ERROR"}

func runRow(run *domain.Run) []string {
	return []string{
		run.ID.String(),
		run.Pipeline,
		string(run.Status),
		run.Duration().String(),
		run.Error,
	}
}

// NewRunCmd создаёт команду run.
func NewRunCmd(appFn func() *App, outputFn func() *Output) *cobra.Command {
	var plan planFlags
	var exec execFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute a plan once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFn()
			out := outputFn()
			ctx := cmd.Context()

			def, p, err := plan.load(app)
			if err != nil {
				return err
			}

			executor, cleanup, err := exec.executor(ctx, app, nil)
			if err != nil {
				return err
			}
			defer cleanup()

			run, err := executor.Execute(ctx, planName(def, plan.file), p)
			out.Print(runHeaders, [][]string{runRow(run)}, run)
			if err != nil {
				return fmt.Errorf("run %s: %w", run.Status, err)
			}

			return nil
		},
	}

	plan.register(cmd)
	exec.register(cmd)
	return cmd
}

// NewTopologyCmd создаёт команду topology.
func NewTopologyCmd(appFn func() *App, outputFn func() *Output) *cobra.Command {
	var setup bool

	cmd := &cobra.Command{
		Use:   "topology",
		Short: "Show (or declare) the RabbitMQ topology",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			if setup {
				_, cleanup, err := connectEvents(cmd.Context(), appFn())
				if err != nil {
					return err
				}
				cleanup()
				out.Success("Topology declared")
			}

			out.Text(mq.TopologyInfo())
			return nil
		},
	}

	cmd.Flags().BoolVar(&setup, "setup", false, "Declare exchanges and queues in RabbitMQ")
	return cmd
}
