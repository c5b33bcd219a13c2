package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/marmos91/corectl/internal/adminhttp"
	"github.com/marmos91/corectl/internal/config"
	"github.com/marmos91/corectl/internal/corelog"
	"github.com/marmos91/corectl/internal/telemetry"
	"github.com/marmos91/corectl/internal/telemetry/metrics"
	"github.com/marmos91/corectl/pkg/fsmctl"
	"github.com/marmos91/corectl/pkg/handle"
	"github.com/marmos91/corectl/pkg/loan"
	"github.com/prometheus/client_golang/prometheus"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start corectld in the foreground",
	Long: `Start the handle server, loan pipeline and FSM control loop, along
with the admin HTTP surface, and run until an interrupt or termination
signal is received.`,
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	if err := corelog.Init(corelog.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "corectld",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(ctx); err != nil {
			corelog.Error("telemetry shutdown error", corelog.Err(err))
		}
	}()

	profilingShutdown, err := telemetry.InitProfiling(telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    "corectld",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize profiling: %w", err)
	}
	defer func() {
		if err := profilingShutdown(); err != nil {
			corelog.Error("profiling shutdown error", corelog.Err(err))
		}
	}()

	corelog.Info("configuration loaded", "source", configSource(GetConfigFile()))
	if telemetry.IsEnabled() {
		corelog.Info("telemetry enabled", "endpoint", cfg.Telemetry.Endpoint)
	}
	if telemetry.IsProfilingEnabled() {
		corelog.Info("profiling enabled", "endpoint", cfg.Telemetry.Profiling.Endpoint)
	}

	handles := handle.NewServer()

	control := fsmctl.ControlCreate()
	if err := control.ControlStart(cfg.FSMControl.WorkerName); err != nil {
		return fmt.Errorf("failed to start FSM control: %w", err)
	}
	defer control.ControlStop()

	loans := loan.NewRegistry()

	if cfg.Metrics.Enabled {
		metrics.Register(prometheus.DefaultRegisterer, handles, control, loans)
		corelog.Info("metrics registered")
	}

	adminServer := adminhttp.NewServer(adminhttp.Config{Port: cfg.AdminHTTP.Port}, handles, control)

	group, groupCtx := errgroup.WithContext(ctx)
	if cfg.AdminHTTP.Enabled {
		group.Go(func() error {
			return adminServer.Start(groupCtx)
		})
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	corelog.Info("corectld is running", "admin_port", cfg.AdminHTTP.Port)

	select {
	case sig := <-sigChan:
		signal.Stop(sigChan)
		corelog.Info("shutdown signal received", "signal", sig.String())
		cancel()
	case <-groupCtx.Done():
		corelog.Warn("admin HTTP server exited unexpectedly")
	}

	if err := group.Wait(); err != nil {
		corelog.Error("shutdown error", corelog.Err(err))
		return err
	}

	corelog.Info("corectld stopped gracefully")
	return nil
}

func configSource(configFile string) string {
	if configFile != "" {
		return configFile
	}
	if config.DefaultConfigExists() {
		return config.GetDefaultConfigPath()
	}
	return "defaults"
}
