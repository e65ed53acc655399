package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"ipm-quickstart/config"
)

func newDeviceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "device",
		Short: "Print the device identifier sent to the token server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			id, err := config.NewDeviceStore(cfg.DeviceFile).DeviceID()
			if err != nil {
				return fmt.Errorf("failed to load device id: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
}
