package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/layoutnav/layoutnav/internal/drawing"
	"github.com/layoutnav/layoutnav/internal/editor"
	"github.com/layoutnav/layoutnav/internal/layout"
	"github.com/layoutnav/layoutnav/internal/navigator"
	"github.com/layoutnav/layoutnav/internal/transform"
)

type Config struct {
	LogLevel   string        `envconfig:"LOG_LEVEL" default:"info"`
	JWTSecret  string        `envconfig:"JWT_SECRET" default:"dev-secret-change-in-production"`
	BcryptCost int           `envconfig:"BCRYPT_COST" default:"12"`
	AuthUsers  []string      `envconfig:"AUTH_USERS" default:"admin@example.com:changeme"`
	SessionTTL time.Duration `envconfig:"SESSION_TTL" default:"24h"`

	PolygonCloseRadius float64 `envconfig:"POLYGON_CLOSE_RADIUS" default:"10"`
	PenCloseDistance   float64 `envconfig:"PEN_CLOSE_DISTANCE" default:"15"`
	MinSize            float64 `envconfig:"MIN_SIZE" default:"20"`
	EraserWidth        float64 `envconfig:"ERASER_WIDTH" default:"20"`
	StrokeWidth        float64 `envconfig:"STROKE_WIDTH" default:"3"`
	DashLength         float64 `envconfig:"DASH_LENGTH" default:"10"`
	PlaygroundFill     float64 `envconfig:"PLAYGROUND_FILL" default:"0.7"`
	PlaceWidth         float64 `envconfig:"PLACE_WIDTH" default:"200"`

	MapCenterLat float64 `envconfig:"MAP_CENTER_LAT" default:"51.505"`
	MapCenterLng float64 `envconfig:"MAP_CENTER_LNG" default:"-0.09"`
	MapZoom      float64 `envconfig:"MAP_ZOOM" default:"13"`
	MapWidth     float64 `envconfig:"MAP_WIDTH" default:"1024"`
	MapHeight    float64 `envconfig:"MAP_HEIGHT" default:"768"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Level parses LogLevel, falling back to info for unknown values.
func (c *Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Users parses AuthUsers entries of the form "email:password".
func (c *Config) Users() (map[string]string, error) {
	users := make(map[string]string, len(c.AuthUsers))
	for _, entry := range c.AuthUsers {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		email, password, ok := strings.Cut(entry, ":")
		if !ok || email == "" || password == "" {
			return nil, fmt.Errorf("invalid AUTH_USERS entry %q: want email:password", entry)
		}
		users[email] = password
	}
	return users, nil
}

func (c *Config) DrawingOptions() drawing.Options {
	return drawing.Options{
		PolygonCloseRadius: c.PolygonCloseRadius,
		PenCloseDistance:   c.PenCloseDistance,
		StrokeWidth:        c.StrokeWidth,
		EraserWidth:        c.EraserWidth,
		DashLength:         c.DashLength,
	}
}

func (c *Config) TransformOptions() transform.Options {
	return transform.Options{MinSize: c.MinSize}
}

func (c *Config) EditorOptions() editor.Options {
	return editor.Options{
		Drawing:        c.DrawingOptions(),
		Transform:      c.TransformOptions(),
		PlaygroundFill: c.PlaygroundFill,
	}
}

func (c *Config) NavigatorOptions() navigator.Options {
	return navigator.Options{
		PlaceWidth: c.PlaceWidth,
		Transform:  c.TransformOptions(),
	}
}

// MapCenter returns the initial map center.
func (c *Config) MapCenter() layout.LatLng {
	return layout.LatLng{Lat: c.MapCenterLat, Lng: c.MapCenterLng}
}
