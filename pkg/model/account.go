package model

import "time"

// AntiphishingCode is the user's personal code echoed in legitimate emails.
type AntiphishingCode struct {
	Code      string    `json:"code"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TwoFactorSetup carries the provisioning data for enabling TOTP 2FA.
// The QR rendering itself is the frontend's job.
type TwoFactorSetup struct {
	Secret      string   `json:"secret"`
	OTPAuthURL  string   `json:"otpauthUrl"`
	BackupCodes []string `json:"backupCodes,omitempty"`
}

// TelegramLink is the state of the Telegram account binding.
type TelegramLink struct {
	Linked   bool   `json:"linked"`
	Username string `json:"username,omitempty"`
	LinkCode string `json:"linkCode,omitempty"` // one-time code when not yet linked
}
