// Package main implements a small demonstration pipeline on top of the
// service-broker runtime: a provider worker feeds a multi-threaded
// transform worker through the broker, and a collector subscription
// drains the transformed results.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/blazbratanic/service-broker/config"
	"github.com/blazbratanic/service-broker/metric"
	"github.com/blazbratanic/service-broker/pkg/exec"
	"github.com/blazbratanic/service-broker/service"
	"github.com/blazbratanic/service-broker/worker"
)

// Build information constants
const (
	Version = "0.1.0"
	appName = "flowpipe"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Pipeline failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cliCfg := parseFlags()
	if cliCfg.ShowVersion {
		fmt.Printf("%s %s\n", appName, Version)
		return nil
	}

	logger := setupLogger(cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	doc := config.New()
	if cliCfg.ConfigPath != "" {
		data, err := os.ReadFile(cliCfg.ConfigPath)
		if err != nil {
			return fmt.Errorf("reading configuration: %w", err)
		}
		doc, err = config.ParseYAML(data)
		if err != nil {
			return err
		}
	}
	items := doc.Int("pipeline.items", cliCfg.Items)

	broker := service.NewBroker()
	metrics := metric.NewRegistry()

	// Provider: turns sequence numbers into payload strings.
	provider, err := worker.NewSingleThreaded("provider", broker,
		func(i int) (string, error) { return strconv.Itoa(i), nil },
		worker.Hooks[config.Document]{},
		worker.WithLogger(logger), worker.WithMetrics(metrics))
	if err != nil {
		return err
	}
	defer provider.Close()

	// Transform: prefixes payloads with "item-" on a context pool.
	contexts := exec.NewContextPool(cliCfg.Concurrency,
		func() exec.Context[string, string, config.Document] {
			return exec.NewBase(func(s string) (string, error) {
				return fmt.Sprintf("item-%s", s), nil
			}, exec.Hooks[config.Document]{})
		})

	transform, err := worker.NewMultiThreaded("transform", broker, contexts,
		func(task string, schedule func(string) error) error { return schedule(task) },
		func(s string) (string, error) { return s, nil },
		worker.Hooks[config.Document]{},
		worker.WithConcurrency(cliCfg.Concurrency),
		worker.WithBaseOptions(worker.WithLogger(logger), worker.WithMetrics(metrics)))
	if err != nil {
		return err
	}
	defer transform.Close()

	if err := transform.SubscribeNamed("provider"); err != nil {
		return err
	}

	// Collector: counts what comes out the far end.
	var collected atomic.Int64
	if _, err := service.Subscribe(broker, "transform.result",
		func(s string) (service.Void, error) {
			collected.Add(1)
			return service.Void{}, nil
		}); err != nil {
		return err
	}

	// Surface every worker error stream through the logger.
	if _, err := service.Subscribe(broker, "error",
		func(e error) (service.Void, error) {
			logger.Error("worker error", "error", e)
			return service.Void{}, nil
		}); err != nil {
		return err
	}

	logger.Info("Pipeline started",
		"services", broker.List(""),
		"items", items)

	for i := 0; i < items; i++ {
		if err := provider.Push(i); err != nil {
			return err
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	deadline := time.NewTimer(cliCfg.ShutdownTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case sig := <-sigCh:
			logger.Info("Signal received, shutting down", "signal", sig.String())
			return nil
		case <-deadline.C:
			return fmt.Errorf("pipeline incomplete after %s: %d/%d results",
				cliCfg.ShutdownTimeout, collected.Load(), items)
		case <-ticker.C:
			if collected.Load() == int64(items) {
				summary := transform.PerformanceStatistics()
				logger.Info("Pipeline complete",
					"results", collected.Load(),
					"tasks", summary.Count,
					"min", summary.Min,
					"max", summary.Max,
					"avg", summary.Avg)
				return nil
			}
		}
	}
}
