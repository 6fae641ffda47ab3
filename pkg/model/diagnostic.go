package model

import "time"

// StepName identifies a diagnostic probe.
type StepName string

const (
	StepConnectivity StepName = "connectivity"
	StepDNS          StepName = "dns"
	StepAPIReach     StepName = "api_reachability"
	StepTunnel       StepName = "tunnel"
	StepLatency      StepName = "latency"
)

// StepStatus is the outcome of a single diagnostic step.
type StepStatus string

const (
	StepPending StepStatus = "pending"
	StepSuccess StepStatus = "success"
	StepFailed  StepStatus = "failed"
)

// DiagnosticStep captures a single probe outcome. Steps arrive in probe order
// and are appended as they arrive.
type DiagnosticStep struct {
	Name       StepName   `json:"name"`
	Status     StepStatus `json:"status"`
	Message    string     `json:"message,omitempty"`
	Suggestion string     `json:"suggestion,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
}

// DiagnosticResult is the accumulated outcome of one diagnostics run.
type DiagnosticResult struct {
	RunID      string           `json:"runId"`
	ServerName string           `json:"serverName,omitempty"`
	Steps      []DiagnosticStep `json:"steps"`
	StartedAt  time.Time        `json:"startedAt"`
	FinishedAt time.Time        `json:"finishedAt,omitempty"`
}

// Failed reports whether any step in the run failed.
func (r DiagnosticResult) Failed() bool {
	for _, s := range r.Steps {
		if s.Status == StepFailed {
			return true
		}
	}
	return false
}
