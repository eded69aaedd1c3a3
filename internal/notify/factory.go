package notify

import (
	"context"
	"errors"
	"fmt"

	"letterbox/internal/config"
	"letterbox/internal/lb"
)

// ErrDisabled is reported for every send when notifications are turned off.
var ErrDisabled = errors.New("notifications are disabled")

// DisabledNotifier is used when no push provider is configured.
type DisabledNotifier struct{}

func (DisabledNotifier) Send(context.Context, []string, lb.Notification) (*lb.Delivery, error) {
	return nil, ErrDisabled
}

// NewNotifierFromConfig creates a Notifier implementation based on the notifications config type.
// A onesignal config without credentials degrades to DisabledNotifier with a warning.
func NewNotifierFromConfig(cfg config.NotificationsConfig, logger lb.Logger) (lb.Notifier, error) {
	switch cfg.Type {
	case "", "none":
		return DisabledNotifier{}, nil
	case "memory":
		return NewMemoryNotifier(), nil
	case "onesignal":
		n, err := NewOneSignalNotifier(cfg.OneSignalAppID, cfg.OneSignalAPIKey, cfg.OneSignalURL, logger)
		if errors.Is(err, ErrMissingCredentials) {
			logger.Warn("onesignal credentials missing, notifications disabled")
			return DisabledNotifier{}, nil
		}
		if err != nil {
			return nil, err
		}
		return n, nil
	default:
		return nil, fmt.Errorf("unknown notifications type: %s", cfg.Type)
	}
}
