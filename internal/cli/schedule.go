package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/shaiso/Plankit/internal/domain"
	"github.com/shaiso/Plankit/internal/scheduler"
)

// ErrNoSchedule — у плана нет расписания и не задан --cron.
var ErrNoSchedule = errors.New("no schedule: set --cron or `schedule` in the plan")

// NewScheduleCmd создаёт команду schedule.
func NewScheduleCmd(appFn func() *App, outputFn func() *Output) *cobra.Command {
	var plan planFlags
	var exec execFlags
	var cronExpr string
	var next int
	var tz string
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Preview or run a plan on a cron schedule",
		Long: "With --next N prints the next N fire times and exits.\n" +
			"Otherwise runs the plan on schedule until interrupted.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFn()
			out := outputFn()
			ctx := cmd.Context()

			def, p, err := plan.load(app)
			if err != nil {
				return err
			}

			expr := cronExpr
			if expr == "" {
				expr = def.Schedule
			}
			if expr == "" {
				return ErrNoSchedule
			}

			loc := scheduler.LoadLocation(tz)

			if next > 0 {
				times, err := scheduler.NextRuns(expr, time.Now().In(loc), next)
				if err != nil {
					return err
				}

				rows := make([][]string, len(times))
				for i, t := range times {
					rows[i] = []string{strconv.Itoa(i + 1), t.Format(time.RFC3339)}
				}
				out.Print([]string{"#", "TIME"}, rows, times)
				return nil
			}

			var reg *prometheus.Registry
			if metricsAddr != "" {
				reg = prometheus.NewRegistry()
				stop := serveMetrics(metricsAddr, reg, app.Logger)
				defer stop()
			}

			executor, cleanup, err := exec.executor(ctx, app, registerer(reg))
			if err != nil {
				return err
			}
			defer cleanup()

			sched := scheduler.New(scheduler.Config{
				Executor: executor,
				Logger:   app.Logger,
				Location: loc,
				OnRun: func(run *domain.Run, err error) {
					out.Print(runHeaders, [][]string{runRow(run)}, run)
				},
			})

			name := planName(def, plan.file)
			if err := sched.Add(scheduler.Job{Name: name, Cron: expr, Plan: p}); err != nil {
				return err
			}

			out.Success("Scheduled " + name + " (" + expr + "), press Ctrl+C to stop")
			return sched.Start(ctx)
		},
	}

	plan.register(cmd)
	exec.register(cmd)
	cmd.Flags().StringVar(&cronExpr, "cron", "", "Cron expression (default: plan schedule)")
	cmd.Flags().IntVar(&next, "next", 0, "Print the next N fire times and exit")
	cmd.Flags().StringVar(&tz, "tz", "UTC", "Time zone of the schedule")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")

	return cmd
}

// registerer избегает typed nil в интерфейсе prometheus.Registerer.
func registerer(reg *prometheus.Registry) prometheus.Registerer {
	if reg == nil {
		return nil
	}
	return reg
}

// serveMetrics отдаёт метрики reg на addr. Возвращает функцию остановки.
func serveMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("serving metrics", "addr", addr)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}
}
