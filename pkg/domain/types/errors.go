package types

import "errors"

var (
	// ErrInvalidConfig is returned when configuration is missing or malformed
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrMissingWebhookURL is returned when no webhook URL could be resolved
	ErrMissingWebhookURL = errors.New("webhook URL is not configured")

	// ErrInvalidArgument is returned when a caller violates an operation contract
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotificationFailed is returned when the webhook rejects or fails to receive a notification
	ErrNotificationFailed = errors.New("notification delivery failed")
)
