package model

import (
	"encoding/json"
	"errors"
	"time"
)

// Push event types emitted by the realtime channel.
const (
	EventSubscriptionUpdated = "subscription_updated"
	EventNotification        = "notification"
)

// SubscriptionUpdated announces a change to a subscription. The client treats
// it purely as a refresh trigger and re-fetches the subscription from the API
// rather than trusting the payload.
type SubscriptionUpdated struct {
	SubscriptionID string             `json:"subscriptionId"`
	Status         SubscriptionStatus `json:"status"`
}

// NotificationEvent is a user-facing message pushed by the backend.
type NotificationEvent struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	Category  string    `json:"category,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

var (
	ErrEmptyPayload   = errors.New("empty event payload")
	ErrInvalidPayload = errors.New("invalid event payload")
)

// DecodeSubscriptionUpdated validates and decodes a subscription_updated
// payload. Unknown shapes are rejected here rather than propagated.
func DecodeSubscriptionUpdated(raw json.RawMessage) (SubscriptionUpdated, error) {
	if len(raw) == 0 {
		return SubscriptionUpdated{}, ErrEmptyPayload
	}
	var ev SubscriptionUpdated
	if err := json.Unmarshal(raw, &ev); err != nil {
		return SubscriptionUpdated{}, ErrInvalidPayload
	}
	if ev.SubscriptionID == "" {
		return SubscriptionUpdated{}, ErrInvalidPayload
	}
	return ev, nil
}

// DecodeNotification validates and decodes a notification payload.
func DecodeNotification(raw json.RawMessage) (NotificationEvent, error) {
	if len(raw) == 0 {
		return NotificationEvent{}, ErrEmptyPayload
	}
	var ev NotificationEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return NotificationEvent{}, ErrInvalidPayload
	}
	if ev.ID == "" || ev.Title == "" {
		return NotificationEvent{}, ErrInvalidPayload
	}
	return ev, nil
}
