package model

import "time"

// SpeedTestResult captures one completed speed measurement.
type SpeedTestResult struct {
	ID           string    `json:"id"`
	ServerName   string    `json:"serverName"`
	DownloadMbps float64   `json:"downloadMbps"`
	UploadMbps   float64   `json:"uploadMbps"`
	PingMs       float64   `json:"pingMs"`
	JitterMs     float64   `json:"jitterMs"`
	VPNActive    bool      `json:"vpnActive"`
	TestedAt     time.Time `json:"testedAt"`
}
