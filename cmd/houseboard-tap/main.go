// Command houseboard-tap attaches the full sync pipeline to a live
// Houseboard push endpoint and prints everything that flows through it.
//
// It wires connection manager -> debounce coalescer -> event bus, logs
// every dispatched notification and cache invalidation, and feeds
// points-updated totals through the milestone engine so celebrations can
// be observed end to end. With -record, all traffic is captured to a
// CBOR file readable with -read.
//
// Usage:
//
//	houseboard-tap [flags]
//
// Flags:
//
//	-origin string    Page origin to derive the push URL from (e.g. https://app.example)
//	-config string    Path to a YAML config file
//	-record string    Capture traffic to this file (CBOR format)
//	-read string      Dump a capture file and exit
//	-verbose          Enable debug logging
//
// Examples:
//
//	# Tap a local development server
//	houseboard-tap -origin http://localhost:8080
//
//	# Capture a session for diagnostics
//	houseboard-tap -origin https://app.example -record session.hbrec
//
//	# Inspect the capture afterwards
//	houseboard-tap -read session.hbrec
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/houseboard/realtime-go/pkg/bus"
	"github.com/houseboard/realtime-go/pkg/cache"
	"github.com/houseboard/realtime-go/pkg/celebrate"
	"github.com/houseboard/realtime-go/pkg/config"
	"github.com/houseboard/realtime-go/pkg/connection"
	"github.com/houseboard/realtime-go/pkg/debounce"
	"github.com/houseboard/realtime-go/pkg/milestone"
	"github.com/houseboard/realtime-go/pkg/record"
	"github.com/houseboard/realtime-go/pkg/wire"
)

var (
	origin     = flag.String("origin", "", "Page origin to derive the push URL from")
	configPath = flag.String("config", "", "Path to a YAML config file")
	recordPath = flag.String("record", "", "Capture traffic to this file (CBOR format)")
	readPath   = flag.String("read", "", "Dump a capture file and exit")
	verbose    = flag.Bool("verbose", false, "Enable debug logging")
)

func main() {
	flag.Parse()

	if *readPath != "" {
		if err := dumpCapture(*readPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *origin != "" {
		cfg.Origin = *origin
	}
	if *recordPath != "" {
		cfg.RecordPath = *recordPath
	}
	if cfg.Origin == "" {
		return fmt.Errorf("origin is required (-origin or config file)")
	}

	logger, err := newLogger(*verbose)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	var recorder record.Recorder = record.Noop{}
	if cfg.RecordPath != "" {
		fileRec, err := record.NewFileRecorder(cfg.RecordPath)
		if err != nil {
			return fmt.Errorf("open capture file: %w", err)
		}
		defer fileRec.Close()
		recorder = fileRec
		logger.Info("recording traffic", zap.String("path", cfg.RecordPath))
	}

	engine := newEngine(cfg)
	presenter := &consolePresenter{logger: logger}
	scheduler := celebrate.NewScheduler(celebrate.Config{
		Presenter:  presenter,
		RetryDelay: cfg.CelebrationRetryDelay,
		Logger:     logger,
	})
	defer scheduler.Stop()
	// The console has no dismiss gesture; free the slot after a beat.
	presenter.done = scheduler.Complete

	hub := bus.New(bus.Config{
		Invalidator: &loggingInvalidator{logger: logger},
		Logger:      logger,
	})

	for _, kind := range []string{
		wire.KindConnected,
		wire.KindPointsUpdated,
		wire.KindPodUpdated,
		wire.KindHouseUpdated,
		wire.KindClassUpdated,
	} {
		kind := kind
		hub.Subscribe(kind, func(payload any) {
			logger.Info("notification", zap.String("kind", kind), zap.Any("payload", payload))
		})
	}

	hub.Subscribe(wire.KindPointsUpdated, func(payload any) {
		fields, ok := payload.(map[string]any)
		if !ok {
			return
		}
		id, ok := wire.StudentID(fields)
		if !ok {
			return
		}
		total, ok := fields["total"].(float64)
		if !ok {
			return
		}
		if award := engine.Evaluate(int(total), id, "student", milestone.CategoryPoints); award != nil {
			scheduler.Trigger(celebrate.Request{Kind: award.Kind, Message: award.Message})
		}
	})

	coalescer := debounce.New(debounce.Config{
		Window:  cfg.DebounceWindow,
		Publish: hub.Publish,
		Logger:  logger,
	})
	defer coalescer.Stop()

	manager, err := connection.NewManager(connection.Config{
		Origin:          cfg.Origin,
		Path:            cfg.LivePath,
		Sink:            coalescer,
		CloseRetryDelay: cfg.CloseRetryDelay,
		ErrorRetryDelay: cfg.ErrorRetryDelay,
		Logger:          logger,
		Recorder:        recorder,
	})
	if err != nil {
		return err
	}
	defer manager.Shutdown()

	logger.Info("tapping push endpoint", zap.String("url", manager.URL()))
	manager.GetOrCreate()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	logger.Info("shutting down")
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	return cfg.Build()
}

// newEngine builds the milestone engine, applying configured threshold
// overrides on top of the built-in table.
func newEngine(cfg config.Config) *milestone.Engine {
	defs := milestone.DefaultDefinitions()
	for category, thresholds := range cfg.Milestones {
		def, ok := defs[milestone.Category(category)]
		if !ok {
			continue
		}
		def.Thresholds = thresholds
		defs[milestone.Category(category)] = def
	}
	return milestone.NewEngineWithDefinitions(defs)
}

// consolePresenter prints celebrations and frees the slot shortly after,
// standing in for a toast surface with a dismiss callback.
type consolePresenter struct {
	logger *zap.Logger
	done   func()
}

func (p *consolePresenter) Show(req celebrate.Request) {
	p.logger.Info("celebration",
		zap.String("kind", req.Kind),
		zap.String("message", req.Message))
	if p.done != nil {
		time.AfterFunc(2*time.Second, p.done)
	}
}

// loggingInvalidator logs invalidations instead of touching a cache.
type loggingInvalidator struct {
	logger *zap.Logger
}

func (l *loggingInvalidator) Invalidate(res cache.Resource) {
	l.logger.Info("cache invalidated", zap.String("resource", string(res)))
}

func dumpCapture(path string) error {
	events, err := record.ReadFile(path, nil)
	if err != nil {
		return err
	}
	for _, e := range events {
		line := fmt.Sprintf("%s  %-5s  conn=%s",
			e.Timestamp.Format(time.RFC3339Nano), e.Direction, shortID(e.ConnectionID))
		if e.Kind != "" {
			line += "  kind=" + e.Kind
		}
		if e.Note != "" {
			line += "  " + e.Note
		}
		if len(e.Raw) > 0 {
			line += "  " + string(e.Raw)
		}
		fmt.Println(line)
	}
	fmt.Printf("%d events\n", len(events))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
