package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/plant-identifier/backend/internal/client"
)

// Version info (set during build)
var Version = "dev"

var (
	// Global flags
	verbose   bool
	serverURL string

	// identify flags
	cameraDir  string
	jsonOutput bool
	width      int
	timeout    time.Duration

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "plantid",
	Short: "Identify plants from photos",
	Long: `plantid sends a photo to a running Plant Identifier server and prints
the plant's name, care instructions and health assessment.

Examples:
  plantid identify rose.jpg
  plantid identify --camera-dir /tmp/frames
  plantid identify leaf.png --json`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var identifyCmd = &cobra.Command{
	Use:   "identify [image]",
	Short: "Identify the plant in an image file or the latest camera frame",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runIdentify,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "plantid %s\n", Version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("PLANTID_SERVER", "http://localhost:8080"), "Plant Identifier server URL")

	identifyCmd.Flags().StringVar(&cameraDir, "camera-dir", "", "Directory a camera writes frames into; the newest frame is submitted")
	identifyCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the raw record as JSON")
	identifyCmd.Flags().IntVar(&width, "width", 80, "Terminal width for the result card")
	identifyCmd.Flags().DurationVar(&timeout, "timeout", 0, "Give up after this long (0 waits for the server)")

	rootCmd.AddCommand(identifyCmd, versionCmd)
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func runIdentify(cmd *cobra.Command, args []string) error {
	if len(args) == 1 && cameraDir != "" {
		return fmt.Errorf("pass either an image file or --camera-dir, not both")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	session := client.NewSession(client.NewHTTPClient(serverURL, logger), logger)

	switch {
	case cameraDir != "":
		camera, err := client.NewDirFrameSource(cameraDir, logger)
		if err != nil {
			return err
		}
		defer camera.Close()
		session.StartCamera(camera)
	case len(args) == 1:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading image: %w", err)
		}
		session.SelectFile(client.Uploaded{Name: filepath.Base(args[0]), Data: data})
	}

	rec, err := session.Submit(ctx)
	if err != nil {
		return fmt.Errorf("%s", client.ErrorMessage(err))
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}

	card, err := client.RenderTerminal(rec, width)
	if err != nil {
		return err
	}
	fmt.Fprint(out, card)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
