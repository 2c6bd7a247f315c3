package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"helmetkiosk/internal/app"
	"helmetkiosk/internal/config"
)

// Version is the application version.
const Version = "0.1.0"

var (
	backendURL string
	port       int
	device     string
	quality    int
)

var rootCmd = &cobra.Command{
	Use:          "kiosk",
	Short:        "Helmet compliance and attendance kiosk",
	Version:      Version,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()

		// flags win over the environment only when given explicitly
		flags := cmd.Flags()
		if flags.Changed("backend") {
			cfg.BackendURL = backendURL
		}
		if flags.Changed("port") {
			cfg.Port = port
		}
		if flags.Changed("device") {
			cfg.CameraDevice = device
		}
		if flags.Changed("quality") {
			cfg.JPEGQuality = quality
		}
		if err := cfg.Normalize(); err != nil {
			return err
		}

		application, err := app.NewApp(cfg)
		if err != nil {
			return fmt.Errorf("failed to start kiosk: %w", err)
		}
		return application.Run(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().StringVar(&backendURL, "backend", "", "Detection backend base URL (default from BACKEND_URL)")
	rootCmd.Flags().IntVar(&port, "port", 0, "Operator page port (default from PORT)")
	rootCmd.Flags().StringVar(&device, "device", "", "Camera index, file or stream URL (default from CAMERA_DEVICE)")
	rootCmd.Flags().IntVar(&quality, "quality", 0, "JPEG quality 1-100 (default from JPEG_QUALITY)")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
