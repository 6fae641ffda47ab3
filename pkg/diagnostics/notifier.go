// Package diagnostics holds the diagnostics state notifier: speed tests,
// step-wise connectivity checks and the exported diagnostic log.
package diagnostics

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"vpn-client/pkg/logbuf"
	"vpn-client/pkg/model"
	"vpn-client/pkg/speedtest"
)

// SpeedTester runs speed measurements and serves persisted history.
type SpeedTester interface {
	Run(ctx context.Context, vpnActive bool, serverName string, progress speedtest.Progress) (model.SpeedTestResult, error)
	History(ctx context.Context) ([]model.SpeedTestResult, error)
}

// Prober produces the ordered diagnostic step sequence. The channel closes
// when all probes finished, or early when ctx is canceled; each invocation
// performs fresh probes.
type Prober interface {
	Run(ctx context.Context, serverTarget string) <-chan model.DiagnosticStep
}

// Listener observes snapshot replacements.
type Listener func(State)

// Notifier owns the diagnostics snapshot.
type Notifier struct {
	mu        sync.Mutex
	state     State
	listeners []Listener

	// in-flight guards; checked and set atomically so a racing second call
	// never starts a second run. Mirrored into the published state flags.
	speedInFlight bool
	diagInFlight  bool

	speed  SpeedTester
	prober Prober
	log    *logbuf.Buffer
}

// NewNotifier builds a diagnostics notifier.
func NewNotifier(speed SpeedTester, prober Prober, log *logbuf.Buffer) *Notifier {
	return &Notifier{speed: speed, prober: prober, log: log}
}

// Subscribe registers a listener for snapshot replacements.
func (n *Notifier) Subscribe(l Listener) {
	if l == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listeners = append(n.listeners, l)
}

// State returns a copy of the current snapshot.
func (n *Notifier) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state.clone()
}

func (n *Notifier) setState(mutate func(*State)) {
	n.mu.Lock()
	next := n.state.clone()
	mutate(&next)
	n.state = next
	listeners := append([]Listener(nil), n.listeners...)
	snapshot := next.clone()
	n.mu.Unlock()
	for _, l := range listeners {
		l(snapshot)
	}
}

// RunSpeedTest runs one speed measurement. A call while a test is already in
// flight is a no-op; the running flag is cleared on success and failure alike.
func (n *Notifier) RunSpeedTest(ctx context.Context, vpnActive bool, serverName string, progress speedtest.Progress) {
	if !n.begin(&n.speedInFlight) {
		return
	}
	n.setState(func(s *State) { s.IsRunningSpeedTest = true })
	defer func() {
		n.setState(func(s *State) { s.IsRunningSpeedTest = false })
		n.end(&n.speedInFlight)
	}()

	n.log.Info("speed test started", map[string]any{"server": serverName, "vpnActive": vpnActive})
	result, err := n.speed.Run(ctx, vpnActive, serverName, progress)
	if err != nil {
		n.log.Error("speed test failed", map[string]any{"error": err.Error()})
		return
	}
	n.log.Info("speed test finished", map[string]any{
		"downloadMbps": result.DownloadMbps,
		"uploadMbps":   result.UploadMbps,
		"pingMs":       result.PingMs,
	})
	n.setState(func(s *State) {
		r := result
		s.SpeedTestResult = &r
		s.SpeedHistory = append([]model.SpeedTestResult{result}, s.SpeedHistory...)
	})
}

// RunDiagnostics consumes the probe step sequence, appending and logging each
// step in arrival order before the next one is awaited. A stream error (early
// cancellation) terminates the run without rolling back received steps.
func (n *Notifier) RunDiagnostics(ctx context.Context, serverTarget string) {
	if !n.begin(&n.diagInFlight) {
		return
	}
	run := model.DiagnosticResult{
		RunID:      uuid.NewString(),
		ServerName: serverTarget,
		StartedAt:  time.Now(),
	}
	n.setState(func(s *State) {
		s.IsRunningDiagnostics = true
		r := run
		s.DiagnosticResult = &r
	})
	defer func() {
		n.setState(func(s *State) { s.IsRunningDiagnostics = false })
		n.end(&n.diagInFlight)
	}()

	n.log.Info("diagnostics started", map[string]any{"runId": run.RunID, "target": serverTarget})
	for step := range n.prober.Run(ctx, serverTarget) {
		step := step
		n.setState(func(s *State) {
			s.DiagnosticResult.Steps = append(s.DiagnosticResult.Steps, step)
		})
		data := map[string]any{"step": string(step.Name), "status": string(step.Status)}
		if step.Message != "" {
			data["message"] = step.Message
		}
		if step.Status == model.StepFailed {
			n.log.Warning("diagnostic step failed", data)
		} else {
			n.log.Info("diagnostic step finished", data)
		}
	}
	if err := ctx.Err(); err != nil {
		n.log.Error("diagnostics run aborted", map[string]any{"runId": run.RunID, "error": err.Error()})
		return
	}
	n.setState(func(s *State) {
		s.DiagnosticResult.FinishedAt = time.Now()
	})
	n.log.Info("diagnostics finished", map[string]any{"runId": run.RunID})
}

// History returns the persisted speed-test history sorted newest first.
// Sorting happens at read time; the store's order is not assumed.
func (n *Notifier) History(ctx context.Context) ([]model.SpeedTestResult, error) {
	results, err := n.speed.History(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].TestedAt.After(results[j].TestedAt)
	})
	n.setState(func(s *State) {
		s.SpeedHistory = append([]model.SpeedTestResult(nil), results...)
	})
	return results, nil
}

// ExportLogs serializes the diagnostic log as a JSON array.
func (n *Notifier) ExportLogs() ([]byte, error) {
	return n.log.ExportJSON()
}

// ClearLogs empties the diagnostic log.
func (n *Notifier) ClearLogs() {
	n.log.Clear()
}

func (n *Notifier) begin(flag *bool) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if *flag {
		return false
	}
	*flag = true
	return true
}

func (n *Notifier) end(flag *bool) {
	n.mu.Lock()
	*flag = false
	n.mu.Unlock()
}
