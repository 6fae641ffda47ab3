// Package speedtest measures throughput and latency against the configured
// test endpoints and persists results to the local store.
package speedtest

import (
	"bytes"
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"

	"vpn-client/pkg/logbuf"
	"vpn-client/pkg/model"
	"vpn-client/pkg/store"
)

const (
	uploadBytes   = 5 << 20  // 5 MiB payload
	downloadLimit = 25 << 20 // stop reading after 25 MiB
	pingTimeout   = 3 * time.Second
)

// Progress reports measurement progress. phase is one of ping/download/upload;
// fraction is in [0,1]. Used by frontends for progress bars; may be nil.
type Progress func(phase string, fraction float64)

// Service runs speed tests.
type Service struct {
	DownloadURL string
	UploadURL   string
	PingAddr    string
	PingSamples int

	store store.Store
	http  *http.Client
	log   *logbuf.Buffer
}

// NewService builds a speed-test service. store may be nil, in which case
// results are not persisted.
func NewService(downloadURL, uploadURL, pingAddr string, pingSamples int, st store.Store, log *logbuf.Buffer) *Service {
	if pingSamples <= 0 {
		pingSamples = 5
	}
	return &Service{
		DownloadURL: downloadURL,
		UploadURL:   uploadURL,
		PingAddr:    pingAddr,
		PingSamples: pingSamples,
		store:       st,
		http:        &http.Client{Timeout: 90 * time.Second},
		log:         log,
	}
}

// Run performs one full measurement: latency/jitter, download, upload.
func (s *Service) Run(ctx context.Context, vpnActive bool, serverName string, progress Progress) (model.SpeedTestResult, error) {
	if progress == nil {
		progress = func(string, float64) {}
	}
	pingMs, jitterMs, err := s.measurePing(ctx, progress)
	if err != nil {
		return model.SpeedTestResult{}, fmt.Errorf("latency measurement: %w", err)
	}
	downloadMbps, err := s.measureDownload(ctx, progress)
	if err != nil {
		return model.SpeedTestResult{}, fmt.Errorf("download measurement: %w", err)
	}
	uploadMbps, err := s.measureUpload(ctx, progress)
	if err != nil {
		return model.SpeedTestResult{}, fmt.Errorf("upload measurement: %w", err)
	}
	result := model.SpeedTestResult{
		ID:           uuid.NewString(),
		ServerName:   serverName,
		DownloadMbps: downloadMbps,
		UploadMbps:   uploadMbps,
		PingMs:       pingMs,
		JitterMs:     jitterMs,
		VPNActive:    vpnActive,
		TestedAt:     time.Now(),
	}
	if s.store != nil {
		if err := s.store.AppendSpeedTest(ctx, result); err != nil {
			s.log.Warning("speed test result not persisted", map[string]any{"error": err.Error()})
		}
	}
	return result, nil
}

// History returns persisted results in insertion order.
func (s *Service) History(ctx context.Context) ([]model.SpeedTestResult, error) {
	if s.store == nil {
		return nil, nil
	}
	return s.store.ListSpeedTests(ctx, 0)
}

// measurePing samples TCP connect latency and derives avg and jitter
// (mean absolute deviation).
func (s *Service) measurePing(ctx context.Context, progress Progress) (float64, float64, error) {
	dialer := net.Dialer{Timeout: pingTimeout}
	samples := make([]float64, 0, s.PingSamples)
	for i := 0; i < s.PingSamples; i++ {
		start := time.Now()
		conn, err := dialer.DialContext(ctx, "tcp", s.PingAddr)
		if err != nil {
			continue
		}
		samples = append(samples, float64(time.Since(start).Microseconds())/1000)
		_ = conn.Close()
		progress("ping", float64(i+1)/float64(s.PingSamples))
	}
	if len(samples) == 0 {
		return 0, 0, fmt.Errorf("no response from %s", s.PingAddr)
	}
	var sum float64
	for _, v := range samples {
		sum += v
	}
	avg := sum / float64(len(samples))
	var dev float64
	for _, v := range samples {
		dev += math.Abs(v - avg)
	}
	jitter := dev / float64(len(samples))
	return avg, jitter, nil
}

func (s *Service) measureDownload(ctx context.Context, progress Progress) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.DownloadURL, nil)
	if err != nil {
		return 0, err
	}
	start := time.Now()
	resp, err := s.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return 0, fmt.Errorf("download endpoint returned %s", resp.Status)
	}
	var read int64
	buf := make([]byte, 128<<10)
	for read < downloadLimit {
		n, err := resp.Body.Read(buf)
		read += int64(n)
		progress("download", math.Min(float64(read)/float64(downloadLimit), 1))
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
	}
	elapsed := time.Since(start).Seconds()
	if elapsed <= 0 || read == 0 {
		return 0, fmt.Errorf("empty download")
	}
	return mbps(read, elapsed), nil
}

func (s *Service) measureUpload(ctx context.Context, progress Progress) (float64, error) {
	payload := make([]byte, uploadBytes)
	if _, err := rand.Read(payload); err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.UploadURL, bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	start := time.Now()
	resp, err := s.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= 300 {
		return 0, fmt.Errorf("upload endpoint returned %s", resp.Status)
	}
	progress("upload", 1)
	elapsed := time.Since(start).Seconds()
	if elapsed <= 0 {
		return 0, fmt.Errorf("upload too fast to measure")
	}
	return mbps(uploadBytes, elapsed), nil
}

func mbps(nbytes int64, seconds float64) float64 {
	return float64(nbytes) * 8 / seconds / 1e6
}
