// Package probe runs the client-side diagnostic checks. Each run produces a
// finite, ordered sequence of steps over a channel; every invocation performs
// fresh probes and the sequence is not restartable.
package probe

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"vpn-client/pkg/model"
)

const probeTimeout = 5 * time.Second

// defaultConnectivityAddr is a well-known reachable endpoint used to
// distinguish "offline" from "backend down".
const defaultConnectivityAddr = "1.1.1.1:443"

// Service performs the diagnostic probes.
type Service struct {
	APIHealthURL     string // GET endpoint of the backend, e.g. {base}/api/v1/healthz
	DNSHost          string // hostname resolved during the DNS step
	WGInterface      string // WireGuard interface inspected by the tunnel step
	PingAddr         string // host:port sampled for latency
	ConnectivityAddr string // host:port dialed by the connectivity step

	httpClient *http.Client
	dialer     net.Dialer
}

// NewService builds a probe service against the given API base URL.
func NewService(apiBaseURL, dnsHost, wgInterface, pingAddr string) *Service {
	return &Service{
		APIHealthURL:     apiBaseURL + "/api/v1/healthz",
		DNSHost:          dnsHost,
		WGInterface:      wgInterface,
		PingAddr:         pingAddr,
		ConnectivityAddr: defaultConnectivityAddr,
		httpClient:       &http.Client{Timeout: probeTimeout},
		dialer:           net.Dialer{Timeout: probeTimeout},
	}
}

// Run starts a diagnostics run against the given server target and returns
// the step channel. The channel is closed once all probes finished or the
// context is canceled.
func (s *Service) Run(ctx context.Context, serverTarget string) <-chan model.DiagnosticStep {
	steps := make(chan model.DiagnosticStep)
	go func() {
		defer close(steps)
		probes := []func(context.Context, string) model.DiagnosticStep{
			s.checkConnectivity,
			s.checkDNS,
			s.checkAPIReachability,
			s.checkTunnel,
			s.checkLatency,
		}
		for _, p := range probes {
			step := p(ctx, serverTarget)
			select {
			case steps <- step:
			case <-ctx.Done():
				return
			}
		}
	}()
	return steps
}

func (s *Service) checkConnectivity(ctx context.Context, _ string) model.DiagnosticStep {
	conn, err := s.dialer.DialContext(ctx, "tcp", s.ConnectivityAddr)
	if err != nil {
		return failed(model.StepConnectivity,
			"no route to the internet",
			"Check your network connection and try again.")
	}
	_ = conn.Close()
	return succeeded(model.StepConnectivity, "internet reachable")
}

func (s *Service) checkDNS(ctx context.Context, _ string) model.DiagnosticStep {
	cctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	addrs, err := net.DefaultResolver.LookupHost(cctx, s.DNSHost)
	if err != nil || len(addrs) == 0 {
		return failed(model.StepDNS,
			fmt.Sprintf("failed to resolve %s", s.DNSHost),
			"Your DNS resolver may be blocked or misconfigured.")
	}
	return succeeded(model.StepDNS, fmt.Sprintf("resolved %s to %d address(es)", s.DNSHost, len(addrs)))
}

func (s *Service) checkAPIReachability(ctx context.Context, _ string) model.DiagnosticStep {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.APIHealthURL, nil)
	if err != nil {
		return failed(model.StepAPIReach, "invalid API endpoint", "")
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return failed(model.StepAPIReach,
			"API unreachable",
			"The service may be down or blocked on your network.")
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 500 {
		return failed(model.StepAPIReach,
			fmt.Sprintf("API returned %s", resp.Status),
			"The service is having trouble; try again later.")
	}
	return succeeded(model.StepAPIReach, fmt.Sprintf("API responded with %s", resp.Status))
}

func (s *Service) checkLatency(ctx context.Context, serverTarget string) model.DiagnosticStep {
	addr := s.PingAddr
	if serverTarget != "" {
		addr = serverTarget
	}
	// TCP connect latency, three samples, best-effort.
	var total time.Duration
	samples := 0
	for i := 0; i < 3; i++ {
		start := time.Now()
		conn, err := s.dialer.DialContext(ctx, "tcp", addr)
		if err != nil {
			continue
		}
		total += time.Since(start)
		samples++
		_ = conn.Close()
	}
	if samples == 0 {
		return failed(model.StepLatency,
			fmt.Sprintf("no response from %s", addr),
			"The selected server may be unreachable; try another location.")
	}
	avg := total / time.Duration(samples)
	return succeeded(model.StepLatency, fmt.Sprintf("avg connect latency %dms to %s", avg.Milliseconds(), addr))
}

func succeeded(name model.StepName, msg string) model.DiagnosticStep {
	return model.DiagnosticStep{
		Name:      name,
		Status:    model.StepSuccess,
		Message:   msg,
		Timestamp: time.Now(),
	}
}

func failed(name model.StepName, msg, suggestion string) model.DiagnosticStep {
	return model.DiagnosticStep{
		Name:       name,
		Status:     model.StepFailed,
		Message:    msg,
		Suggestion: suggestion,
		Timestamp:  time.Now(),
	}
}
