package lb

import (
	"context"
	"fmt"
	"time"
)

// unknownSender names the sender when their device is not registered.
const unknownSender = "Someone"

// dispatchTimeout bounds a background fan-out started by a write.
const dispatchTimeout = 30 * time.Second

// FanoutResult is the structured outcome of NotifyOtherDevices.
// Delivery problems are reported here, never as an error.
type FanoutResult struct {
	Success    bool   `json:"success"`
	Sent       int    `json:"sent"`
	SenderName string `json:"senderName,omitempty"`
	ProviderID string `json:"providerId,omitempty"`
	Error      string `json:"error,omitempty"`
}

// NotifyOtherDevices sends n to every active device except the sender's.
// The title is prefixed with the sender's owner name.
func (s *LBService) NotifyOtherDevices(ctx context.Context, senderDeviceID string, n Notification) *FanoutResult {
	senderName := unknownSender
	if senderDeviceID != "" {
		sender, err := s.database.FindDeviceByExternalID(ctx, senderDeviceID)
		if err != nil {
			s.logger.Warn("failed to resolve sender device", "device", senderDeviceID, "error", err)
		} else if sender != nil && sender.OwnerName != "" {
			senderName = sender.OwnerName
		}
	}

	devices, err := s.database.ListActiveDevicesExcept(ctx, senderDeviceID)
	if err != nil {
		s.logger.Error("failed to list devices for notification", "error", err)
		return &FanoutResult{Success: false, SenderName: senderName, Error: fmt.Sprintf("listing devices: %v", err)}
	}

	recipients := make([]string, 0, len(devices))
	for _, d := range devices {
		if d.ExternalID == senderDeviceID {
			continue
		}
		recipients = append(recipients, d.ExternalID)
	}
	if len(recipients) == 0 {
		s.logger.Debug("no other devices to notify", "sender", senderName)
		return &FanoutResult{Success: true, Sent: 0, SenderName: senderName}
	}

	n.Title = senderName + " " + n.Title
	delivery, err := s.notifier.Send(ctx, recipients, n)
	if err != nil {
		s.logger.Warn("notification dispatch failed", "recipients", len(recipients), "error", err)
		return &FanoutResult{Success: false, SenderName: senderName, Error: err.Error()}
	}

	s.logger.Info("notification sent", "recipients", delivery.Recipients, "provider_id", delivery.ID)
	return &FanoutResult{
		Success:    true,
		Sent:       delivery.Recipients,
		SenderName: senderName,
		ProviderID: delivery.ID,
	}
}

// dispatch runs a fan-out in the background. The triggering write has
// already been committed, so the outcome is only logged.
func (s *LBService) dispatch(senderDeviceID string, n Notification) {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()

		result := s.NotifyOtherDevices(ctx, senderDeviceID, n)
		if !result.Success {
			s.logger.Warn("letter notification not delivered", "error", result.Error)
		}
	}()
}

// letterNotification builds the push payload announcing a new letter.
func letterNotification(c *Capsule) Notification {
	return Notification{
		Title: "wrote you a new love letter 💌",
		Body:  fmt.Sprintf("%s - can be opened on %s", c.Title, c.OpenAt.Format("2006-01-02")),
		Data: map[string]string{
			"type":     "letter",
			"letterId": c.ID,
		},
	}
}
