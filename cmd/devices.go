// Package cmd holds the auxiliary CLI commands added to the humacli
// root: offline device inspection and one-shot frame grabbing, both
// running without the API server.
package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/capnode/capnode/internal/devices"
	"github.com/capnode/capnode/internal/logging"
)

// CreateDevicesCmd creates the devices command.
func CreateDevicesCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List capture devices",
		Long:  `Enumerates capture devices and prints each device with its supported capture modes. Ordinals printed here are the device and format IDs the API accepts.`,
		Run: func(_ *cobra.Command, _ []string) {
			logging.Initialize(logging.Config{
				Level:  logLevel,
				Format: "text",
			})
			logger := logging.GetLogger("devices")

			descs, err := devices.NewDetector().Enumerate()
			if err != nil {
				logger.Error("Device enumeration failed", "error", err)
				os.Exit(1)
			}

			if len(descs) == 0 {
				fmt.Println("no capture devices found")
				return
			}

			for deviceID, dev := range descs {
				fmt.Printf("[%d] %s\n", deviceID, dev.Name)
				if dev.Path != "" {
					fmt.Printf("    path:      %s\n", dev.Path)
				}
				if dev.StableID != "" {
					fmt.Printf("    stable id: %s\n", dev.StableID)
				}
				for formatID, f := range dev.Formats {
					if len(f.Framerates) > 0 {
						rates := make([]string, len(f.Framerates))
						for i, fps := range f.Framerates {
							rates[i] = strconv.FormatFloat(fps, 'f', -1, 64)
						}
						fmt.Printf("    [%d] %dx%d %s @ %s fps\n",
							formatID, f.Width, f.Height, f.FourCC.String(), strings.Join(rates, "/"))
						continue
					}
					fmt.Printf("    [%d] %dx%d %s\n", formatID, f.Width, f.Height, f.FourCC.String())
				}
			}
		},
	}

	cmd.Flags().StringVar(&logLevel, "log-level", "warn", "Logging level (debug, info, warn, error)")

	return cmd
}
