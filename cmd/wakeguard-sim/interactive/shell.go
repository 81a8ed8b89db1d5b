// Package interactive provides the interactive command-line interface
// for the wakeguard simulator.
package interactive

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/wakeguard/wakeguard-go/pkg/events"
	"github.com/wakeguard/wakeguard-go/pkg/recovery"
	"github.com/wakeguard/wakeguard-go/pkg/session/sessiontest"
	"github.com/wakeguard/wakeguard-go/pkg/visibility"
)

// Shell handles interactive mode for wakeguard-sim.
type Shell struct {
	coord  *recovery.Coordinator
	source *visibility.SimulatedSource
	client *sessiontest.Client
	rl     *readline.Instance

	sub          *visibility.Subscription
	unsubOutcome func()
	unsubFailure func()
}

// New creates a new interactive shell around the coordinator and its
// simulated environment.
func New(coord *recovery.Coordinator, source *visibility.SimulatedSource, client *sessiontest.Client) (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "wakeguard> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	s := &Shell{
		coord:  coord,
		source: source,
		client: client,
		rl:     rl,
	}

	// Hold the upstream visibility subscription open for the shell's
	// lifetime and echo recovery signals to the console.
	s.sub = coord.Attach("wakeguard-sim")
	s.unsubOutcome = coord.Bus().SubscribeOutcome(s.handleOutcome)
	s.unsubFailure = coord.Bus().SubscribeFailure(s.handleFailure)

	return s, nil
}

// Stdout returns a writer that properly coordinates with the readline input.
// Use this for log output to avoid interfering with the command prompt.
func (s *Shell) Stdout() io.Writer {
	return s.rl.Stdout()
}

// Run starts the interactive command loop.
func (s *Shell) Run(ctx context.Context, cancel context.CancelFunc) {
	defer s.close()

	s.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(s.rl.Stdout(), "Exiting...")
			cancel()
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			s.printHelp()

		case "suspend", "s":
			s.cmdSuspend()

		case "resume", "r":
			s.cmdResume(args)

		case "busy", "b":
			s.cmdBusy(args)

		case "idle":
			s.cmdIdle(args)

		case "loading", "l":
			s.cmdLoading()

		case "refresh":
			s.cmdRefresh(ctx)

		case "fail", "f":
			s.cmdFail(args)

		case "status":
			s.cmdStatus()

		case "quit", "exit", "q":
			fmt.Fprintln(s.rl.Stdout(), "Exiting...")
			cancel()
			return

		default:
			fmt.Fprintf(s.rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func (s *Shell) close() {
	s.unsubOutcome()
	s.unsubFailure()
	s.sub.Release()
	s.rl.Close()
}

func (s *Shell) printHelp() {
	fmt.Fprintln(s.rl.Stdout(), `
Wakeguard Simulator Commands:
  Visibility:
    suspend            - Suspend the simulated host
    resume [duration]  - Resume; duration backdates the suspend (e.g. resume 3m)

  Loading State:
    busy <id>          - Mark a loading indicator busy
    idle <id>          - Mark a loading indicator not busy
    loading            - List registered loading entries

  Session:
    refresh            - Trigger a manual recovery cycle (forceRefresh)
    fail <n>           - Make the next n session refreshes fail

  General:
    status             - Show coordinator status
    help               - Show this help
    quit               - Exit simulator`)
}

// cmdSuspend handles the suspend command.
func (s *Shell) cmdSuspend() {
	if s.coord.Monitor().State() == visibility.StateSuspended {
		fmt.Fprintln(s.rl.Stdout(), "Already suspended")
		return
	}
	s.source.Set(visibility.StateSuspended)
	fmt.Fprintln(s.rl.Stdout(), "Host suspended")
}

// cmdResume handles the resume command. An optional duration argument
// backdates the suspend so escalation tiers can be exercised without
// waiting.
func (s *Shell) cmdResume(args []string) {
	if s.coord.Monitor().State() == visibility.StateActive {
		fmt.Fprintln(s.rl.Stdout(), "Already active")
		return
	}

	if len(args) > 0 {
		d, err := time.ParseDuration(args[0])
		if err != nil {
			fmt.Fprintf(s.rl.Stdout(), "Invalid duration %q: %v\n", args[0], err)
			return
		}
		s.coord.Monitor().BackdateSuspend(d)
	}

	s.source.Set(visibility.StateActive)
	hidden := s.coord.Monitor().HiddenFor(time.Now())
	fmt.Fprintf(s.rl.Stdout(), "Host resumed (hidden for %v)\n", hidden.Round(time.Millisecond))
}

// cmdBusy handles the busy command.
func (s *Shell) cmdBusy(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: busy <id>")
		return
	}
	s.coord.RegisterLoadingState(args[0], true)
	fmt.Fprintf(s.rl.Stdout(), "Loading %q is now busy\n", args[0])
}

// cmdIdle handles the idle command.
func (s *Shell) cmdIdle(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: idle <id>")
		return
	}
	s.coord.RegisterLoadingState(args[0], false)
	fmt.Fprintf(s.rl.Stdout(), "Loading %q is now idle\n", args[0])
}

// cmdLoading lists registered loading entries.
func (s *Shell) cmdLoading() {
	entries := s.coord.Loading().Snapshot()
	if len(entries) == 0 {
		fmt.Fprintln(s.rl.Stdout(), "No loading entries registered")
		return
	}
	for _, e := range entries {
		state := "idle"
		if e.Busy {
			state = fmt.Sprintf("busy for %v", time.Since(e.RegisteredAt).Round(time.Second))
		}
		fmt.Fprintf(s.rl.Stdout(), "  %-20s %s\n", e.ID, state)
	}
}

// cmdRefresh triggers a manual recovery cycle.
func (s *Shell) cmdRefresh(ctx context.Context) {
	fmt.Fprintln(s.rl.Stdout(), "Running manual recovery...")
	if !s.coord.ForceRefresh(ctx) {
		if s.coord.Recovering() {
			fmt.Fprintln(s.rl.Stdout(), "A recovery run is already in flight")
		} else {
			fmt.Fprintln(s.rl.Stdout(), "Recovery did not restore a session")
		}
	}
}

// cmdFail scripts upcoming refresh failures.
func (s *Shell) cmdFail(args []string) {
	n := 1
	if len(args) > 0 {
		if _, err := fmt.Sscanf(args[0], "%d", &n); err != nil || n < 0 {
			fmt.Fprintf(s.rl.Stdout(), "Invalid count %q\n", args[0])
			return
		}
	}
	s.client.FailNextRefreshes(n, nil)
	fmt.Fprintf(s.rl.Stdout(), "Next %d session refresh(es) will fail\n", n)
}

// cmdStatus shows coordinator status.
func (s *Shell) cmdStatus() {
	out := s.rl.Stdout()
	fmt.Fprintf(out, "Visibility:      %s\n", s.coord.Monitor().State())
	fmt.Fprintf(out, "Attachments:     %d\n", s.coord.Monitor().RefCount())
	fmt.Fprintf(out, "Stale:           %t\n", s.coord.Stale())
	fmt.Fprintf(out, "Recovering:      %t\n", s.coord.Recovering())
	fmt.Fprintf(out, "Suppressing:     %t\n", s.coord.Gate().WindowActive())
	fmt.Fprintf(out, "Refresh calls:   %d\n", s.client.RefreshCalls())

	if busy := s.coord.Loading().BusyIDs(); len(busy) > 0 {
		fmt.Fprintf(out, "Busy loading:    %s\n", strings.Join(busy, ", "))
	}
	if sess := s.client.Current(); sess != nil {
		fmt.Fprintf(out, "Session:         %s (expires %s)\n",
			sess.ID, sess.ExpiresAt.Format(time.TimeOnly))
	} else {
		fmt.Fprintln(out, "Session:         signed out")
	}
}

func (s *Shell) handleOutcome(o events.RecoveryOutcome) {
	fmt.Fprintf(s.rl.Stdout(), "[EVENT] Recovery succeeded: type=%s refreshed=%t hidden=%v (run %s)\n",
		o.Type, o.SessionRefreshed, o.TimeHidden.Round(time.Millisecond), o.RunID)
}

func (s *Shell) handleFailure(f events.SessionFailed) {
	fmt.Fprintf(s.rl.Stdout(), "[EVENT] Session FAILED: %s (severity=%s action=%s run %s)\n",
		f.Reason, f.Severity, f.Action, f.RunID)
}
