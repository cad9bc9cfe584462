package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/layoutnav/layoutnav/internal/auth"
	"github.com/layoutnav/layoutnav/internal/geo"
	"github.com/layoutnav/layoutnav/internal/imageio"
	"github.com/layoutnav/layoutnav/internal/navigator"
	"github.com/layoutnav/layoutnav/internal/script"
)

var (
	placeLayout string
	placeScript string
	placeRender string
	placeUser   string
)

var placeCmd = &cobra.Command{
	Use:   "place",
	Short: "Place a layout on the map",
	Long: `Logs in as a configured user (AUTH_USERS), places a layout image on a
Web-Mercator map and replays a map script (handle drags, fix, zoom, marker
drops). The resulting placements are printed as JSON.`,
	Example: `  layoutctl place --layout hall.png --script map.yaml --render map.png`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := login(cmd.Context())
		if err != nil {
			return err
		}

		img, err := imageio.Load(placeLayout)
		if err != nil {
			return err
		}
		var data bytes.Buffer
		if err := imageio.Encode(&data, img, "png"); err != nil {
			return fmt.Errorf("encode layout: %w", err)
		}
		name := strings.TrimSuffix(filepath.Base(placeLayout), filepath.Ext(placeLayout))
		l, err := app.SaveLayout(name, app.Email(), data.Bytes())
		if err != nil {
			return err
		}

		sc, err := script.LoadMap(placeScript)
		if err != nil {
			return err
		}
		vp := geo.NewViewport(cfg.MapCenter(), cfg.MapZoom, cfg.MapWidth, cfg.MapHeight)
		app.AttachMap(vp)
		defer app.DetachMap()
		if err := sc.Run(app, vp, l.ID); err != nil {
			return err
		}

		if placeRender != "" {
			out, err := vp.Render()
			if err != nil {
				return err
			}
			err = writeImageFile(placeRender, func(f *os.File) error {
				return imageio.Encode(f, out, formatFor(placeRender))
			})
			if err != nil {
				return fmt.Errorf("write %s: %w", placeRender, err)
			}
			slog.Info("map rendered", "path", placeRender)
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(app.Placements())
	},
}

func init() {
	placeCmd.Flags().StringVar(&placeLayout, "layout", "", "layout image to place")
	placeCmd.Flags().StringVar(&placeScript, "script", "", "map script (YAML)")
	placeCmd.Flags().StringVar(&placeRender, "render", "", "also render the map to this image file")
	placeCmd.Flags().StringVar(&placeUser, "user", "", "configured user to log in as (default: first by email)")
	_ = placeCmd.MarkFlagRequired("layout")
	_ = placeCmd.MarkFlagRequired("script")
}

func login(ctx context.Context) (*navigator.App, error) {
	users, err := cfg.Users()
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, errors.New("no users configured in AUTH_USERS")
	}
	email := placeUser
	if email == "" {
		email = slices.Sorted(maps.Keys(users))[0]
	}

	svc := auth.NewService(cfg.JWTSecret, cfg.BcryptCost, cfg.SessionTTL)
	if err := svc.Seed(ctx, users); err != nil {
		return nil, err
	}
	app := navigator.New(svc, cfg.NavigatorOptions())
	if code, ok := app.Login(ctx, email, users[email]); !ok {
		return nil, fmt.Errorf("login as %s: %s", email, auth.FailureMessage(code))
	}
	return app, nil
}
