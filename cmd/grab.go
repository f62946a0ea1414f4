package cmd

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/capnode/capnode/internal/capture"
	"github.com/capnode/capnode/internal/devices"
	"github.com/capnode/capnode/internal/logging"
	"github.com/capnode/capnode/internal/sources"
)

// CreateGrabCmd creates the grab command.
func CreateGrabCmd() *cobra.Command {
	var output string
	var timeout time.Duration
	var logLevel string

	cmd := &cobra.Command{
		Use:   "grab [device-id] [format-id]",
		Short: "Grab one frame to a JPEG file",
		Long:  `Opens a stream on the chosen device and capture mode, waits for the first frame, writes it as JPEG and closes the stream. Ordinals come from the devices command.`,
		Args:  cobra.ExactArgs(2),
		Run: func(_ *cobra.Command, args []string) {
			logging.Initialize(logging.Config{
				Level:  logLevel,
				Format: "text",
			})
			logger := logging.GetLogger("grab")

			deviceID, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				logger.Error("Invalid device ID", "arg", args[0])
				os.Exit(1)
			}
			formatID, err := strconv.ParseUint(args[1], 10, 32)
			if err != nil {
				logger.Error("Invalid format ID", "arg", args[1])
				os.Exit(1)
			}

			ctx, err := capture.New(capture.Options{
				Enumerate: devices.NewDetector().Enumerate,
				NewSource: sources.NewFactory(nil, nil),
			})
			if err != nil {
				logger.Error("Capture setup failed", "error", err)
				os.Exit(1)
			}
			defer ctx.Close()

			handle := ctx.OpenStream(uint32(deviceID), uint32(formatID))
			if handle == capture.InvalidStream {
				logger.Error("Could not open stream", "device_id", deviceID, "format_id", formatID)
				os.Exit(1)
			}

			_, mode, _ := ctx.StreamMode(handle)
			frame := make([]byte, mode.Width*mode.Height*3)

			deadline := time.Now().Add(timeout)
			for !ctx.HasNewFrame(handle) {
				if time.Now().After(deadline) {
					logger.Error("Timed out waiting for a frame", "timeout", timeout)
					os.Exit(1)
				}
				time.Sleep(10 * time.Millisecond)
			}

			if !ctx.CaptureFrame(handle, frame) {
				logger.Error("Frame capture failed")
				os.Exit(1)
			}

			encoded, err := encodeFrameJPEG(frame, mode.Width, mode.Height)
			if err != nil {
				logger.Error("JPEG encoding failed", "error", err)
				os.Exit(1)
			}

			if err := os.WriteFile(output, encoded, 0o644); err != nil {
				logger.Error("Could not write output file", "path", output, "error", err)
				os.Exit(1)
			}

			fmt.Printf("wrote %dx%d frame to %s\n", mode.Width, mode.Height, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "frame.jpg", "Output JPEG path")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "How long to wait for the first frame")
	cmd.Flags().StringVar(&logLevel, "log-level", "warn", "Logging level (debug, info, warn, error)")

	return cmd
}

// encodeFrameJPEG compresses a tightly packed RGB24 frame.
func encodeFrameJPEG(frame []byte, width, height uint32) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, int(width), int(height)))
	si := 0
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = frame[si]
		img.Pix[i+1] = frame[si+1]
		img.Pix[i+2] = frame[si+2]
		img.Pix[i+3] = 255
		si += 3
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
