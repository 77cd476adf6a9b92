package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"

	"github.com/rafflechain/settler/cmd/settler/services"
	"github.com/rafflechain/settler/config"
	settlerLogger "github.com/rafflechain/settler/internal/logger"
	"github.com/rafflechain/settler/pkg/tracing"
)

func main() {
	err := run()
	if err != nil {
		log.Fatalf("failed to run settler: %v", err)
	}

	os.Exit(0)
}

func run() error {
	configDir, dumpConfigFile := parseFlags()

	settlerConfig, err := config.Load(configDir)
	if err != nil {
		return fmt.Errorf("failed to load app config: %w", err)
	}

	if dumpConfigFile != "" {
		return config.DumpConfig(settlerConfig, dumpConfigFile)
	}

	logger, err := settlerLogger.NewLogger(settlerConfig.LogLevel, settlerConfig.LogFormat)
	if err != nil {
		return fmt.Errorf("failed to create logger: %v", err)
	}

	hostname, err := os.Hostname()
	if err != nil {
		return fmt.Errorf("failed to get host name: %v", err)
	}

	logger = logger.With(slog.String("host", hostname))
	logger.Info("Starting settler")

	shutdownFns := make([]func(), 0)
	defer func() {
		appCleanup(logger, shutdownFns)
	}()

	go func() {
		if settlerConfig.ProfilerAddr != "" {
			logger.Info(fmt.Sprintf("Starting profiler on http://%s/debug/pprof", settlerConfig.ProfilerAddr))

			err := http.ListenAndServe(settlerConfig.ProfilerAddr, nil)
			if err != nil {
				logger.Error("failed to start profiler server", slog.String("err", err.Error()))
			}
		}
	}()

	go func() {
		if settlerConfig.Prometheus.IsEnabled() {
			logger.Info("Starting prometheus", slog.String("endpoint", settlerConfig.Prometheus.Endpoint))
			mux := http.NewServeMux()
			mux.Handle(settlerConfig.Prometheus.Endpoint, promhttp.Handler())
			err := http.ListenAndServe(settlerConfig.Prometheus.Addr, mux)
			if err != nil {
				logger.Error("failed to start prometheus server", slog.String("err", err.Error()))
			}
		}
	}()

	var tracingAttributes []attribute.KeyValue
	if settlerConfig.IsTracingEnabled() {
		cleanup, err := tracing.Init(context.Background(), logger, "settler", settlerConfig.Tracing.DialAddr, settlerConfig.Tracing.Sample)
		if err != nil {
			logger.Error("failed to enable tracing", slog.String("err", err.Error()))
		} else {
			shutdownFns = append(shutdownFns, cleanup)
			tracingAttributes = []attribute.KeyValue{attribute.String("hostname", hostname)}
		}
	}

	cacheStore, err := services.NewCacheStore(settlerConfig.Cache, settlerConfig.Verifier)
	if err != nil {
		return fmt.Errorf("failed to create cache store: %v", err)
	}

	raffleStore, err := services.NewRaffleStore(settlerConfig.Db, tracingAttributes)
	if err != nil {
		return fmt.Errorf("failed to create raffle store: %v", err)
	}
	shutdownFns = append(shutdownFns, func() {
		err := raffleStore.Close()
		if err != nil {
			logger.Error("Could not close the store", slog.String("err", err.Error()))
		}
	})

	eng, stopEngine, err := services.StartEngine(logger, settlerConfig, cacheStore, raffleStore, tracingAttributes)
	if err != nil {
		return fmt.Errorf("failed to start engine: %v", err)
	}

	stopAPI, err := services.StartAPIServer(logger, settlerConfig, eng, raffleStore, tracingAttributes)
	if err != nil {
		stopEngine()
		return fmt.Errorf("failed to start api: %v", err)
	}

	// the api stops first, so that no request reaches a stopped engine
	shutdownFns = append(shutdownFns, stopEngine, stopAPI)

	// setup signal catching
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-signalChan
	logger.Info("Received shutdown signal", slog.String("reason", sig.String()))

	return nil
}

// appCleanup runs the shutdown functions in reverse order of their registration.
func appCleanup(logger *slog.Logger, shutdownFns []func()) {
	logger.Info("cleaning up")
	for i := len(shutdownFns) - 1; i >= 0; i-- {
		shutdownFns[i]()
	}
}

func parseFlags() (string, string) {
	help := flag.Bool("help", false, "Show help")
	dumpConfigFile := flag.String("dump_config", "", "dump config to specified file and exit")
	configDir := flag.String("config", "", "path to configuration file")

	flag.Parse()

	if *help {
		fmt.Println("usage: settler [options]")
		fmt.Println("where options are:")
		fmt.Println("")
		fmt.Println("    -config=/location")
		fmt.Println("          directory to look for config (default='')")
		fmt.Println("")
		fmt.Println("    -dump_config=/file.yaml")
		fmt.Println("          dump config to specified file and exit (default='config/dumped_config.yaml')")
		fmt.Println("")
		os.Exit(0)
	}

	return *configDir, *dumpConfigFile
}
