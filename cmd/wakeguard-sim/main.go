// Command wakeguard-sim is an interactive simulator for the recovery
// coordinator.
//
// It wires the coordinator to a manually driven visibility source and a
// scriptable in-memory session client, so suspend/resume cycles, the
// escalation tiers, watchdog firings and recovery runs can all be
// exercised from a shell without a real host environment.
//
// Usage:
//
//	wakeguard-sim [flags]
//
// Flags:
//
//	-config string     YAML configuration file path
//	-log-file string   Append CBOR diagnostic events to this file
//	-snapshot string   Encrypted session snapshot path (enables the
//	                   last-resort local restore)
//	-verbose           Echo diagnostic events to the console via slog
//
// Examples:
//
//	# Defaults, no persistence
//	wakeguard-sim
//
//	# Custom thresholds plus an event log
//	wakeguard-sim -config wakeguard.yaml -log-file events.cborlog
package main

import (
	"context"
	"crypto/sha256"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/wakeguard/wakeguard-go/cmd/wakeguard-sim/interactive"
	"github.com/wakeguard/wakeguard-go/pkg/log"
	"github.com/wakeguard/wakeguard-go/pkg/notify"
	"github.com/wakeguard/wakeguard-go/pkg/recovery"
	"github.com/wakeguard/wakeguard-go/pkg/session"
	"github.com/wakeguard/wakeguard-go/pkg/session/sessiontest"
	"github.com/wakeguard/wakeguard-go/pkg/visibility"
)

// Config holds the simulator configuration.
type Config struct {
	ConfigFile   string
	LogFile      string
	SnapshotFile string
	Verbose      bool
}

var config Config

func init() {
	flag.StringVar(&config.ConfigFile, "config", "", "YAML configuration file path")
	flag.StringVar(&config.LogFile, "log-file", "", "Append CBOR diagnostic events to this file")
	flag.StringVar(&config.SnapshotFile, "snapshot", "", "Encrypted session snapshot path")
	flag.BoolVar(&config.Verbose, "verbose", false, "Echo diagnostic events to the console")
}

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "wakeguard-sim: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := recovery.Config{}
	if config.ConfigFile != "" {
		loaded, err := recovery.LoadConfig(config.ConfigFile)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	logger, closeLogger, err := buildLogger()
	if err != nil {
		return err
	}
	defer closeLogger()

	source := visibility.NewSimulatedSource()
	client := sessiontest.NewClient()

	// Notifications go to the shell's stdout once it exists; until then
	// they fall back to the process stdout.
	var out io.Writer = os.Stdout
	notifier := notify.Funcs{
		ErrorFn: func(message string, actions ...string) {
			if len(actions) > 0 {
				fmt.Fprintf(out, "[NOTIFY] %s (actions: %v)\n", message, actions)
				return
			}
			fmt.Fprintf(out, "[NOTIFY] %s\n", message)
		},
		InfoFn: func(message string) {
			fmt.Fprintf(out, "[NOTIFY] %s\n", message)
		},
	}

	coord, err := recovery.NewCoordinatorWithConfig(cfg, recovery.Deps{
		Source:   source,
		Notifier: notifier,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	defer coord.Close()

	// A probe representative of normal read traffic: the current session
	// must be retrievable after a refresh.
	probe := session.Probe{
		Name: "get-session",
		Run: func(ctx context.Context) error {
			sess, err := client.GetSession(ctx)
			if err != nil {
				return err
			}
			if sess == nil {
				return session.ErrNoSession
			}
			return nil
		},
	}
	coord.RegisterSessionClient(client, probe)

	if config.SnapshotFile != "" {
		key := sha256.Sum256([]byte("wakeguard-sim"))
		store, err := session.NewStore(config.SnapshotFile, key[:])
		if err != nil {
			return err
		}
		if err := store.Save(client.Current()); err != nil {
			return fmt.Errorf("failed to seed snapshot: %w", err)
		}
		coord.SetSnapshotStore(store)
	}

	shell, err := interactive.New(coord, source, client)
	if err != nil {
		return err
	}
	out = shell.Stdout()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fmt.Println("Wakeguard Simulator")
	fmt.Println("===================")
	fmt.Printf("Thresholds: log-only %v, clear-loading %v, full-recovery %v\n",
		orDefault(cfg.LogOnlyThreshold, recovery.DefaultLogOnlyThreshold),
		orDefault(cfg.ClearLoadingThreshold, recovery.DefaultClearLoadingThreshold),
		orDefault(cfg.FullRecoveryThreshold, recovery.DefaultFullRecoveryThreshold))

	shell.Run(ctx, cancel)
	return nil
}

// buildLogger assembles the diagnostic event sink from the flags.
func buildLogger() (log.Logger, func(), error) {
	var sinks []log.Logger
	closer := func() {}

	if config.LogFile != "" {
		fl, err := log.NewFileLogger(config.LogFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		sinks = append(sinks, fl)
		closer = func() { _ = fl.Close() }
	}
	if config.Verbose {
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
		sinks = append(sinks, log.NewSlogAdapter(slog.New(handler)))
	}

	switch len(sinks) {
	case 0:
		return log.NoopLogger{}, closer, nil
	case 1:
		return sinks[0], closer, nil
	default:
		return log.NewMultiLogger(sinks...), closer, nil
	}
}

func orDefault[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}
