package main

import (
	"fmt"

	"letterbox/internal/lb"

	"github.com/spf13/cobra"
)

var devicesCmd = &cobra.Command{
	Use:     "devices",
	Aliases: []string{"device"},
	Short:   "Manage notification devices",
}

var devicesRegisterCmd = &cobra.Command{
	Use:   "register PLAYER_ID",
	Short: "Register or refresh a device",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, _ := cmd.Flags().GetString("owner")
		name, _ := cmd.Flags().GetString("name")
		platform, _ := cmd.Flags().GetString("platform")

		a, err := newApp(cmd.Context(), "RegisterDevice")
		if err != nil {
			return err
		}
		defer a.Close()

		d, err := a.RegisterDevice(cmd.Context(), lb.RegisterDeviceParams{
			ExternalID: args[0],
			OwnerName:  owner,
			DeviceName: name,
			Platform:   platform,
		})
		if err != nil {
			return err
		}
		fmt.Printf("%s %s (%s, %s) for %s\n", successText("Registered"), d.ExternalID, d.DeviceName, d.Platform, d.OwnerName)
		return nil
	},
}

var devicesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered devices",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "ListDevices")
		if err != nil {
			return err
		}
		defer a.Close()

		devices, err := a.ListDevices(cmd.Context())
		if err != nil {
			return err
		}
		if len(devices) == 0 {
			fmt.Println("No devices registered.")
			return nil
		}

		for _, d := range devices {
			status := successText("active  ")
			if !d.Active {
				status = warnText("inactive")
			}
			fmt.Printf("%s  %s  %-8s  %-12s  %s  seen %s\n", d.ExternalID, status, d.Platform, d.OwnerName, d.DeviceName, formatTime(d.LastSeen))
		}
		return nil
	},
}

var devicesDeactivateCmd = &cobra.Command{
	Use:   "deactivate PLAYER_ID",
	Short: "Stop sending notifications to a device",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "DeactivateDevice")
		if err != nil {
			return err
		}
		defer a.Close()

		d, err := a.DeactivateDevice(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s %s\n", successText("Deactivated"), d.ExternalID)
		return nil
	},
}

func init() {
	devicesCmd.AddCommand(devicesRegisterCmd)
	devicesRegisterCmd.Flags().String("owner", "", "Name of the device's owner")
	devicesRegisterCmd.Flags().String("name", "", "Device name")
	devicesRegisterCmd.Flags().String("platform", lb.PlatformAndroid, "android or ios")
	devicesRegisterCmd.MarkFlagRequired("owner")

	devicesCmd.AddCommand(devicesListCmd)
	devicesCmd.AddCommand(devicesDeactivateCmd)
}
