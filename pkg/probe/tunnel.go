package probe

import (
	"context"
	"fmt"
	"time"

	"golang.zx2c4.com/wireguard/wgctrl"

	"vpn-client/pkg/model"
)

// handshakeStale is the age beyond which the last WireGuard handshake is
// considered dead (kernel rekeys well before this).
const handshakeStale = 3 * time.Minute

func (s *Service) checkTunnel(_ context.Context, _ string) model.DiagnosticStep {
	if s.WGInterface == "" {
		return model.DiagnosticStep{
			Name:      model.StepTunnel,
			Status:    model.StepSuccess,
			Message:   "no tunnel interface configured, skipping",
			Timestamp: time.Now(),
		}
	}
	client, err := wgctrl.New()
	if err != nil {
		return failed(model.StepTunnel,
			"cannot inspect WireGuard devices: "+err.Error(),
			"The VPN driver may not be installed.")
	}
	defer client.Close()

	dev, err := client.Device(s.WGInterface)
	if err != nil {
		return failed(model.StepTunnel,
			fmt.Sprintf("interface %s not found", s.WGInterface),
			"The VPN is not connected.")
	}
	if len(dev.Peers) == 0 {
		return failed(model.StepTunnel,
			fmt.Sprintf("interface %s has no peers", s.WGInterface),
			"Reconnect to a server.")
	}
	var latest time.Time
	for _, p := range dev.Peers {
		if p.LastHandshakeTime.After(latest) {
			latest = p.LastHandshakeTime
		}
	}
	if latest.IsZero() {
		return failed(model.StepTunnel,
			"no handshake with any peer yet",
			"The tunnel may be blocked by a firewall; try another protocol or server.")
	}
	age := time.Since(latest)
	if age > handshakeStale {
		return failed(model.StepTunnel,
			fmt.Sprintf("last handshake %s ago", age.Round(time.Second)),
			"The tunnel looks stale; reconnect to the VPN.")
	}
	return succeeded(model.StepTunnel, fmt.Sprintf("handshake %s ago", age.Round(time.Second)))
}
