package diagnostics

import "vpn-client/pkg/model"

// State is the diagnostics snapshot, replaced wholesale on every update.
// At most one speed test and one diagnostics run are active at a time.
type State struct {
	SpeedTestResult      *model.SpeedTestResult
	IsRunningSpeedTest   bool
	DiagnosticResult     *model.DiagnosticResult
	IsRunningDiagnostics bool
	SpeedHistory         []model.SpeedTestResult // newest first
}

func (s State) clone() State {
	out := s
	if s.SpeedTestResult != nil {
		r := *s.SpeedTestResult
		out.SpeedTestResult = &r
	}
	if s.DiagnosticResult != nil {
		d := *s.DiagnosticResult
		d.Steps = append([]model.DiagnosticStep(nil), s.DiagnosticResult.Steps...)
		out.DiagnosticResult = &d
	}
	out.SpeedHistory = append([]model.SpeedTestResult(nil), s.SpeedHistory...)
	return out
}
