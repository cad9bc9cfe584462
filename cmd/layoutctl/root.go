package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/layoutnav/layoutnav/internal/config"
	"github.com/layoutnav/layoutnav/internal/imageio"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "layoutctl",
	Short: "Draw floor layouts over photos and place them on a map",
	Long: `layoutctl replays recorded pointer sessions against the layout editor
and the map overlay. Settings come from the environment (LOG_LEVEL,
POLYGON_CLOSE_RADIUS, MAP_ZOOM, ...).`,
	SilenceUsage:      true,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()})))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(editCmd, placeCmd)
}

// formatFor picks the output encoding from a file name: .qoi writes QOI,
// anything else PNG.
func formatFor(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".qoi") {
		return "qoi"
	}
	return "png"
}

func writeImageFile(path string, encode func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func supportedList() string {
	return strings.Join(imageio.SupportedFormats(), ", ")
}
