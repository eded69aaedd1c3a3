package lb

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	// PlatformAndroid is the default device platform.
	PlatformAndroid = "android"
	// PlatformIOS identifies Apple devices.
	PlatformIOS = "ios"

	defaultDeviceName = "Unknown Device"
)

// Device is a phone registered to receive push notifications.
type Device struct {
	ExternalID string    `json:"externalId"`
	OwnerName  string    `json:"ownerName"`
	DeviceName string    `json:"deviceName"`
	Platform   string    `json:"platform"`
	Active     bool      `json:"active"`
	LastSeen   time.Time `json:"lastSeen"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// RegisterDeviceParams holds the input for RegisterDevice.
type RegisterDeviceParams struct {
	ExternalID string
	OwnerName  string
	DeviceName string
	Platform   string
}

// RegisterDevice creates or refreshes the device keyed on ExternalID and marks it active.
func (s *LBService) RegisterDevice(ctx context.Context, params RegisterDeviceParams) (*Device, error) {
	if strings.TrimSpace(params.ExternalID) == "" {
		return nil, invalid("playerId", "is required")
	}
	if strings.TrimSpace(params.OwnerName) == "" {
		return nil, invalid("userName", "is required")
	}

	platform := strings.ToLower(strings.TrimSpace(params.Platform))
	switch platform {
	case "":
		platform = PlatformAndroid
	case PlatformAndroid, PlatformIOS:
	default:
		return nil, invalid("platform", fmt.Sprintf("must be %q or %q", PlatformAndroid, PlatformIOS))
	}

	deviceName := strings.TrimSpace(params.DeviceName)
	if deviceName == "" {
		deviceName = defaultDeviceName
	}

	now := s.clock.Now()
	device, err := s.database.UpsertDevice(ctx, &Device{
		ExternalID: strings.TrimSpace(params.ExternalID),
		OwnerName:  strings.TrimSpace(params.OwnerName),
		DeviceName: deviceName,
		Platform:   platform,
		Active:     true,
		LastSeen:   now,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return nil, fmt.Errorf("registering device: %w", err)
	}

	s.logger.Info("device registered", "device", device.ExternalID, "owner", device.OwnerName)
	return device, nil
}

// ListDevices returns every registered device, most recently seen first.
func (s *LBService) ListDevices(ctx context.Context) ([]*Device, error) {
	devices, err := s.database.ListDevices(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing devices: %w", err)
	}
	return devices, nil
}

// DeactivateDevice stops notifications to a device without deleting it.
func (s *LBService) DeactivateDevice(ctx context.Context, externalID string) (*Device, error) {
	device, err := s.database.DeactivateDevice(ctx, externalID, s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("deactivating device: %w", err)
	}
	if device == nil {
		return nil, fmt.Errorf("device %s: %w", externalID, ErrNotFound)
	}

	s.logger.Info("device deactivated", "device", externalID)
	return device, nil
}
