package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/layoutnav/layoutnav/internal/editor"
	"github.com/layoutnav/layoutnav/internal/imageio"
	"github.com/layoutnav/layoutnav/internal/script"
)

var (
	editImage  string
	editScript string
	editOut    string
	editName   string
	editOwner  string
)

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Draw a layout over a photo",
	Long: `Loads a photo into the layout editor, replays an editor script
(tool switches, strokes, frame moves) and writes the photo with the drawing
on top. Output ending in .qoi is written as QOI, anything else as PNG.`,
	Example: `  layoutctl edit --image hall.jpg --script draw.yaml --out hall.png`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !imageio.IsSupportedFormat(editImage) {
			return fmt.Errorf("%s: %w", editImage, imageio.ErrUnsupportedFormat)
		}
		img, err := imageio.Load(editImage)
		if err != nil {
			return err
		}
		sc, err := script.LoadEditor(editScript)
		if err != nil {
			return err
		}

		ed := editor.New(nil, cfg.EditorOptions())
		if err := ed.LoadImage(img, sc.Playground); err != nil {
			return fmt.Errorf("load %s: %w", editImage, err)
		}
		if err := sc.Run(ed); err != nil {
			return err
		}

		l, err := ed.Save(editName, editOwner)
		if err != nil {
			return fmt.Errorf("save layout: %w", err)
		}
		err = writeImageFile(editOut, func(f *os.File) error {
			if formatFor(editOut) == "png" {
				_, err := f.Write(l.ImageData)
				return err
			}
			out, err := imageio.DecodeBytes(l.ImageData)
			if err != nil {
				return err
			}
			return imageio.Encode(f, out, "qoi")
		})
		if err != nil {
			return fmt.Errorf("write %s: %w", editOut, err)
		}

		slog.Info("layout written", "path", editOut, "id", l.ID, "name", l.Name)
		return nil
	},
}

func init() {
	editCmd.Flags().StringVar(&editImage, "image", "", "photo to draw on ("+supportedList()+")")
	editCmd.Flags().StringVar(&editScript, "script", "", "editor script (YAML)")
	editCmd.Flags().StringVarP(&editOut, "out", "o", "layout.png", "output file")
	editCmd.Flags().StringVar(&editName, "name", "layout", "layout name")
	editCmd.Flags().StringVar(&editOwner, "owner", "layoutctl", "layout owner")
	_ = editCmd.MarkFlagRequired("image")
	_ = editCmd.MarkFlagRequired("script")
}
