// Package config loads the tunable constants of layout, camera and server
// from YAML. Every field has a default; a file only needs the fields it
// overrides.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/chazu/mindscape/pkg/camera"
	"github.com/chazu/mindscape/pkg/layout"
	"github.com/chazu/mindscape/pkg/viewer"
	"github.com/cockroachdb/errors"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"gopkg.in/yaml.v3"
)

// Vec is a 3D vector written as a YAML sequence, e.g. [0, 3, 8].
type Vec [3]float64

func (v Vec) vec() v3.Vec {
	return v3.Vec{X: v[0], Y: v[1], Z: v[2]}
}

// Duration is a time.Duration written as a Go duration string ("1s").
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(n *yaml.Node) error {
	var s string
	if err := n.Decode(&s); err != nil {
		return errors.Wrapf(err, "line %d: duration", n.Line)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return errors.Wrapf(err, "line %d: duration", n.Line)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

type TreeConfig struct {
	MinWidth      float64 `yaml:"min_width"`
	PerChildWidth float64 `yaml:"per_child_width"`
	VerticalStep  float64 `yaml:"vertical_step"`
	DepthStep     float64 `yaml:"depth_step"`
}

type RadialConfig struct {
	Radius       float64 `yaml:"radius"`
	Shrink       float64 `yaml:"shrink"`
	VerticalStep float64 `yaml:"vertical_step"`
	Stagger      float64 `yaml:"stagger"`
}

type ForceConfig struct {
	BaseRadius     float64 `yaml:"base_radius"`
	RadiusPerDepth float64 `yaml:"radius_per_depth"`
	VerticalStep   float64 `yaml:"vertical_step"`
	Repulsion      float64 `yaml:"repulsion"`
	Epsilon        float64 `yaml:"epsilon"`
	Iterations     int     `yaml:"iterations"`
}

type LayoutConfig struct {
	Anchor Vec          `yaml:"anchor"`
	Tree   TreeConfig   `yaml:"tree"`
	Radial RadialConfig `yaml:"radial"`
	Force  ForceConfig  `yaml:"force"`
}

type CameraConfig struct {
	HomePosition    Vec      `yaml:"home_position"`
	HomeLookAt      Vec      `yaml:"home_look_at"`
	FocusOffset     Vec      `yaml:"focus_offset"`
	FitFactor       float64  `yaml:"fit_factor"`
	DefaultDistance float64  `yaml:"default_distance"`
	Duration        Duration `yaml:"duration"`
	FrameInterval   Duration `yaml:"frame_interval"`
	Easing          string   `yaml:"easing"` // "cubic" or "linear"
}

type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	MaxUploadBytes int64    `yaml:"max_upload_bytes"`
	WatchDebounce  Duration `yaml:"watch_debounce"`
}

// Config is the complete configuration.
type Config struct {
	Layout LayoutConfig `yaml:"layout"`
	Camera CameraConfig `yaml:"camera"`
	Server ServerConfig `yaml:"server"`
}

// Default returns the built-in configuration.
func Default() Config {
	lp := layout.DefaultParams()
	vo := viewer.DefaultOptions()
	return Config{
		Layout: LayoutConfig{
			Tree: TreeConfig{
				MinWidth:      lp.Tree.MinWidth,
				PerChildWidth: lp.Tree.PerChildWidth,
				VerticalStep:  lp.Tree.VerticalStep,
				DepthStep:     lp.Tree.DepthStep,
			},
			Radial: RadialConfig{
				Radius:       lp.Radial.Radius,
				Shrink:       lp.Radial.Shrink,
				VerticalStep: lp.Radial.VerticalStep,
				Stagger:      lp.Radial.Stagger,
			},
			Force: ForceConfig{
				BaseRadius:     lp.Force.BaseRadius,
				RadiusPerDepth: lp.Force.RadiusPerDepth,
				VerticalStep:   lp.Force.VerticalStep,
				Repulsion:      lp.Force.Repulsion,
				Epsilon:        lp.Force.Epsilon,
				Iterations:     lp.Force.Iterations,
			},
		},
		Camera: CameraConfig{
			HomePosition:    Vec{vo.Home.Position.X, vo.Home.Position.Y, vo.Home.Position.Z},
			HomeLookAt:      Vec{vo.Home.LookAt.X, vo.Home.LookAt.Y, vo.Home.LookAt.Z},
			FocusOffset:     Vec{vo.FocusOffset.X, vo.FocusOffset.Y, vo.FocusOffset.Z},
			FitFactor:       vo.FitFactor,
			DefaultDistance: vo.DefaultDistance,
			Duration:        Duration(time.Second),
			FrameInterval:   Duration(camera.DefaultFrameInterval),
			Easing:          "cubic",
		},
		Server: ServerConfig{
			Addr:           "127.0.0.1:8787",
			MaxUploadBytes: 25 << 20,
			WatchDebounce:  Duration(200 * time.Millisecond),
		},
	}
}

// Load reads path and overlays it on Default. An empty path returns the
// defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "reading config file")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "parsing config file %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrapf(err, "config file %s", path)
	}
	return cfg, nil
}

// Marshal renders cfg as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Validate rejects values that would break layout or animation.
func (c Config) Validate() error {
	l, cam, srv := c.Layout, c.Camera, c.Server
	checks := []struct {
		bad  bool
		what string
	}{
		{l.Tree.MinWidth < 0, "layout.tree.min_width must be >= 0"},
		{l.Tree.PerChildWidth < 0, "layout.tree.per_child_width must be >= 0"},
		{l.Radial.Radius <= 0, "layout.radial.radius must be > 0"},
		{l.Radial.Shrink <= 0 || l.Radial.Shrink > 1, "layout.radial.shrink must be in (0, 1]"},
		{l.Force.Iterations < 0, "layout.force.iterations must be >= 0"},
		{l.Force.Repulsion < 0, "layout.force.repulsion must be >= 0"},
		{l.Force.Epsilon <= 0, "layout.force.epsilon must be > 0"},
		{cam.FitFactor <= 0, "camera.fit_factor must be > 0"},
		{cam.DefaultDistance <= 0, "camera.default_distance must be > 0"},
		{cam.Duration < 0, "camera.duration must be >= 0"},
		{cam.FrameInterval <= 0, "camera.frame_interval must be > 0"},
		{cam.Easing != "cubic" && cam.Easing != "linear", "camera.easing must be cubic or linear"},
		{srv.Addr == "", "server.addr must be set"},
		{srv.MaxUploadBytes <= 0, "server.max_upload_bytes must be > 0"},
		{srv.WatchDebounce < 0, "server.watch_debounce must be >= 0"},
	}
	var problems []string
	for _, ck := range checks {
		if ck.bad {
			problems = append(problems, ck.what)
		}
	}
	if len(problems) > 0 {
		return errors.Newf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// LayoutParams converts the layout section.
func (c Config) LayoutParams() layout.Params {
	l := c.Layout
	return layout.Params{
		Anchor: l.Anchor.vec(),
		Tree: layout.TreeParams{
			MinWidth:      l.Tree.MinWidth,
			PerChildWidth: l.Tree.PerChildWidth,
			VerticalStep:  l.Tree.VerticalStep,
			DepthStep:     l.Tree.DepthStep,
		},
		Radial: layout.RadialParams{
			Radius:       l.Radial.Radius,
			Shrink:       l.Radial.Shrink,
			VerticalStep: l.Radial.VerticalStep,
			Stagger:      l.Radial.Stagger,
		},
		Force: layout.ForceParams{
			BaseRadius:     l.Force.BaseRadius,
			RadiusPerDepth: l.Force.RadiusPerDepth,
			VerticalStep:   l.Force.VerticalStep,
			Repulsion:      l.Force.Repulsion,
			Epsilon:        l.Force.Epsilon,
			Iterations:     l.Force.Iterations,
		},
	}
}

// ViewerOptions converts the layout and camera sections.
func (c Config) ViewerOptions() viewer.Options {
	return viewer.Options{
		Layout:          c.LayoutParams(),
		FocusOffset:     c.Camera.FocusOffset.vec(),
		FitFactor:       c.Camera.FitFactor,
		DefaultDistance: c.Camera.DefaultDistance,
		Home:            c.HomePose(),
	}
}

// HomePose is the camera's reset pose.
func (c Config) HomePose() camera.Pose {
	return camera.Pose{
		Position: c.Camera.HomePosition.vec(),
		LookAt:   c.Camera.HomeLookAt.vec(),
	}
}

// Easing returns the configured camera easing.
func (c Config) Easing() camera.Easing {
	if c.Camera.Easing == "linear" {
		return camera.Linear
	}
	return camera.EaseInOutCubic
}

// NewDriver returns a camera driver with the configured timing, starting
// at the home pose.
func (c Config) NewDriver() *camera.Driver {
	return camera.NewDriver(c.HomePose(),
		time.Duration(c.Camera.Duration),
		time.Duration(c.Camera.FrameInterval),
		c.Easing())
}
