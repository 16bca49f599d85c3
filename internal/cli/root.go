package cli

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/shaiso/Plankit/internal/config"
	"github.com/shaiso/Plankit/internal/telemetry"
)

// App — общие зависимости команд.
// Создаётся в PersistentPreRunE, после разбора флагов.
type App struct {
	Settings config.Settings
	Logger   *slog.Logger

	// Environ — окружение для {{ .Env.X }} в планах.
	Environ config.Env
}

// Options — параметры корневой команды.
type Options struct {
	Version string
	Stdout  io.Writer
	Stderr  io.Writer

	// Environ (если nil — окружение процесса).
	Environ config.Env
}

// NewRootCmd собирает корневую команду plankit.
func NewRootCmd(opts Options) *cobra.Command {
	var jsonOutput bool
	var verbose bool
	var app *App

	environ := opts.Environ
	if environ == nil {
		environ = config.Environ()
	}

	rootCmd := &cobra.Command{
		Use:           "plankit",
		Short:         "Plankit — describe and run pipeline plans",
		Version:       opts.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.Load(environ)
			if err != nil {
				return err
			}

			level := settings.LogLevel
			if verbose {
				level = "DEBUG"
			}

			app = &App{
				Settings: settings,
				Logger:   telemetry.NewLogger(cmd.ErrOrStderr(), level, settings.LogFormat),
				Environ:  environ,
			}
			return nil
		},
	}

	rootCmd.SetOut(opts.Stdout)
	rootCmd.SetErr(opts.Stderr)

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")

	appFn := func() *App { return app }
	outputFn := func() *Output {
		return NewOutput(jsonOutput, rootCmd.OutOrStdout(), rootCmd.ErrOrStderr())
	}

	rootCmd.AddCommand(
		NewDescribeCmd(appFn, outputFn),
		NewValidateCmd(appFn, outputFn),
		NewRunCmd(appFn, outputFn),
		NewScheduleCmd(appFn, outputFn),
		NewTriageCmd(appFn, outputFn),
		NewFakeCmd(appFn, outputFn),
		NewTopologyCmd(appFn, outputFn),
	)

	return rootCmd
}
