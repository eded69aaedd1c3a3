package lb_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"letterbox/internal/lb"
	"letterbox/internal/testutil"
)

func TestLBService_RegisterDevice(t *testing.T) {
	ctx := context.Background()

	t.Run("applies defaults", func(t *testing.T) {
		env := testutil.NewServiceEnv(t)

		d, err := env.Service.RegisterDevice(ctx, lb.RegisterDeviceParams{ExternalID: "player-1", OwnerName: "Sam"})
		if err != nil {
			t.Fatalf("RegisterDevice() error = %v", err)
		}
		if d.Platform != lb.PlatformAndroid {
			t.Errorf("Platform = %q, want %q", d.Platform, lb.PlatformAndroid)
		}
		if d.DeviceName != "Unknown Device" {
			t.Errorf("DeviceName = %q, want %q", d.DeviceName, "Unknown Device")
		}
		if !d.Active {
			t.Error("Active = false, want true")
		}
	})

	t.Run("re-registering refreshes the same device", func(t *testing.T) {
		env := testutil.NewServiceEnv(t)

		first, err := env.Service.RegisterDevice(ctx, lb.RegisterDeviceParams{ExternalID: "player-1", OwnerName: "Sam", Platform: "android"})
		if err != nil {
			t.Fatalf("RegisterDevice() error = %v", err)
		}
		if _, err := env.Service.DeactivateDevice(ctx, "player-1"); err != nil {
			t.Fatalf("DeactivateDevice() error = %v", err)
		}

		env.Clock.Advance(time.Hour)
		second, err := env.Service.RegisterDevice(ctx, lb.RegisterDeviceParams{ExternalID: "player-1", OwnerName: "Sam", DeviceName: "iPhone", Platform: "iOS"})
		if err != nil {
			t.Fatalf("second RegisterDevice() error = %v", err)
		}

		if !second.Active {
			t.Error("re-registered device is not active")
		}
		if second.Platform != lb.PlatformIOS || second.DeviceName != "iPhone" {
			t.Errorf("device = %+v, want refreshed platform and name", second)
		}
		if !second.LastSeen.After(first.LastSeen) {
			t.Errorf("LastSeen = %v, want after %v", second.LastSeen, first.LastSeen)
		}

		all, _ := env.Service.ListDevices(ctx)
		if len(all) != 1 {
			t.Errorf("ListDevices() returned %d devices, want 1", len(all))
		}
	})

	t.Run("validation", func(t *testing.T) {
		tests := []struct {
			name      string
			params    lb.RegisterDeviceParams
			wantField string
		}{
			{name: "missing player id", params: lb.RegisterDeviceParams{OwnerName: "Sam"}, wantField: "playerId"},
			{name: "missing owner", params: lb.RegisterDeviceParams{ExternalID: "p"}, wantField: "userName"},
			{name: "unknown platform", params: lb.RegisterDeviceParams{ExternalID: "p", OwnerName: "Sam", Platform: "windows"}, wantField: "platform"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				env := testutil.NewServiceEnv(t)
				_, err := env.Service.RegisterDevice(ctx, tt.params)

				var verr *lb.ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("RegisterDevice() error = %v, want ValidationError", err)
				}
				if verr.Field != tt.wantField {
					t.Errorf("Field = %q, want %q", verr.Field, tt.wantField)
				}
			})
		}
	})
}

func TestLBService_DeactivateDevice(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewServiceEnv(t)

	if _, err := env.Service.DeactivateDevice(ctx, "missing"); !errors.Is(err, lb.ErrNotFound) {
		t.Errorf("DeactivateDevice() error = %v, want ErrNotFound", err)
	}

	if _, err := env.Service.RegisterDevice(ctx, lb.RegisterDeviceParams{ExternalID: "player-1", OwnerName: "Sam"}); err != nil {
		t.Fatalf("RegisterDevice() error = %v", err)
	}
	d, err := env.Service.DeactivateDevice(ctx, "player-1")
	if err != nil {
		t.Fatalf("DeactivateDevice() error = %v", err)
	}
	if d.Active {
		t.Error("Active = true after DeactivateDevice")
	}
}
