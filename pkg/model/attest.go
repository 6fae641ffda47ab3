package model

// AttestationResult is the outcome of a device attestation request.
// Attestation is best-effort telemetry; a failed result never blocks the
// operation that triggered it.
type AttestationResult struct {
	Status                    string `json:"status"` // verified/unverified/unsupported/error
	Platform                  string `json:"platform,omitempty"`
	Token                     string `json:"token,omitempty"`
	DeviceSupportsAttestation bool   `json:"deviceSupportsAttestation"`
}
