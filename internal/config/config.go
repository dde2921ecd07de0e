// Package config loads the server settings and scene presets. The cube,
// dodge and race presets are built in; a user file may override them or
// add new ones.
package config

import (
	"bytes"
	_ "embed"
	"io"
	"os"
	"sort"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/zeusync/trackrun/internal/core/scene"
)

//go:embed presets.yaml
var presets []byte

var (
	ErrUnknownScene = errors.New("unknown scene")
	ErrInvalid      = errors.New("invalid config")
)

type Config struct {
	Log    LogConfig              `yaml:"log"`
	Server ServerConfig           `yaml:"server"`
	Scenes map[string]SceneConfig `yaml:"scenes"`
}

type LogConfig struct {
	Level       string   `yaml:"level"`
	Encoding    string   `yaml:"encoding"`
	OutputPaths []string `yaml:"output_paths"`
}

type ServerConfig struct {
	HTTPAddr     string `yaml:"http_addr"`
	QUICAddr     string `yaml:"quic_addr"`
	TickHz       int    `yaml:"tick_hz"`
	ScaleByDelta bool   `yaml:"scale_by_delta"`
}

type SceneConfig struct {
	Threshold   float64         `yaml:"threshold"`
	Step        float64         `yaml:"step"`
	Turn        float64         `yaml:"turn"`
	Seed        int64           `yaml:"seed"`
	Keys        []KeyConfig     `yaml:"keys"`
	Camera      CameraConfig    `yaml:"camera"`
	Bounds      BoundsConfig    `yaml:"bounds"`
	Focus       *FocusConfig    `yaml:"focus"`
	Obstacles   *ObstacleConfig `yaml:"obstacles"`
	Track       *TrackConfig    `yaml:"track"`
	Decorations []ObjectConfig  `yaml:"decorations"`
}

type KeyConfig struct {
	Key  string     `yaml:"key"`
	Axis scene.Axis `yaml:"axis"`
	Sign float64    `yaml:"sign"`
	Turn bool       `yaml:"turn"`
}

type CameraConfig struct {
	Position scene.Vec3 `yaml:"position"`
	Target   scene.Vec3 `yaml:"target"`
	FOV      float64    `yaml:"fov"`
	Near     float64    `yaml:"near"`
	Far      float64    `yaml:"far"`
	Follow   scene.Vec3 `yaml:"follow"`
}

type BoundsConfig struct {
	X          scene.Range `yaml:"x"`
	Y          scene.Range `yaml:"y"`
	Z          scene.Range `yaml:"z"`
	TravelAxis scene.Axis  `yaml:"travel_axis"`
	Direction  float64     `yaml:"direction"`
	ExitAt     float64     `yaml:"exit_at"`
	SpawnNear  float64     `yaml:"spawn_near"`
	SpawnFar   float64     `yaml:"spawn_far"`
}

// FocusConfig describes the player object. With Model set it is loaded
// asynchronously and stays absent until the load completes.
type FocusConfig struct {
	Name     string     `yaml:"name"`
	Model    string     `yaml:"model"`
	Position scene.Vec3 `yaml:"position"`
	Rotation scene.Vec3 `yaml:"rotation"`
	Scale    float64    `yaml:"scale"`
}

type ObstacleConfig struct {
	Name  string  `yaml:"name"`
	Count int     `yaml:"count"`
	Speed float64 `yaml:"speed"`
}

type TrackConfig struct {
	Count  int     `yaml:"count"`
	Width  float64 `yaml:"width"`
	Length float64 `yaml:"length"`
	Speed  float64 `yaml:"speed"`
	Start  float64 `yaml:"start"`
}

type ObjectConfig struct {
	Name       string     `yaml:"name"`
	Kind       scene.Kind `yaml:"kind"`
	Position   scene.Vec3 `yaml:"position"`
	Rotation   scene.Vec3 `yaml:"rotation"`
	Scale      scene.Vec3 `yaml:"scale"`
	Spin       scene.Vec3 `yaml:"spin"`
	Speed      float64    `yaml:"speed"`
	Collidable bool       `yaml:"collidable"`
}

// Default returns the built-in configuration.
func Default() (*Config, error) {
	var c Config
	if err := decode(presets, &c); err != nil {
		return nil, errors.Wrap(err, "built-in presets")
	}
	c.applyDefaults()
	return &c, nil
}

// LoadYAML reads a user file on top of the built-in configuration. Scenes
// in r replace built-in scenes of the same name.
func LoadYAML(r io.Reader) (*Config, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	if err = decode(raw, c); err != nil {
		return nil, err
	}
	c.applyDefaults()
	if err = c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Load reads path, or only the built-in configuration when path is empty.
func Load(path string) (*Config, error) {
	if path == "" {
		c, err := Default()
		if err != nil {
			return nil, err
		}
		return c, c.Validate()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open config")
	}
	defer func() { _ = f.Close() }()
	c, err := LoadYAML(f)
	return c, errors.Wrapf(err, "config %s", path)
}

func decode(raw []byte, into *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(into); err != nil && !errors.Is(err, io.EOF) {
		return errors.Wrap(err, "decode config")
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Encoding == "" {
		c.Log.Encoding = "console"
	}
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = ":8080"
	}
	if c.Server.TickHz == 0 {
		c.Server.TickHz = 60
	}
	for name, s := range c.Scenes {
		if s.Camera.FOV == 0 {
			s.Camera.FOV = 75
		}
		if s.Camera.Near == 0 {
			s.Camera.Near = 0.1
		}
		if s.Camera.Far == 0 {
			s.Camera.Far = 1000
		}
		if s.Bounds.Direction == 0 {
			s.Bounds.Direction = -1
		}
		if s.Focus != nil && s.Focus.Scale == 0 {
			s.Focus.Scale = 1
		}
		for i := range s.Decorations {
			if s.Decorations[i].Scale == (scene.Vec3{}) {
				s.Decorations[i].Scale = scene.V(1, 1, 1)
			}
		}
		c.Scenes[name] = s
	}
}

// Validate reports the first problem found. Scenes are checked in name
// order so the error is stable.
func (c *Config) Validate() error {
	if c.Server.TickHz <= 0 {
		return errors.Wrapf(ErrInvalid, "server.tick_hz must be positive, got %d", c.Server.TickHz)
	}
	if len(c.Scenes) == 0 {
		return errors.Wrap(ErrInvalid, "no scenes")
	}
	for _, name := range c.Names() {
		if err := c.Scenes[name].Validate(); err != nil {
			return errors.Wrapf(err, "scene %s", name)
		}
	}
	return nil
}

func (s SceneConfig) Validate() error {
	if s.Threshold <= 0 {
		return errors.Wrapf(ErrInvalid, "threshold must be positive, got %v", s.Threshold)
	}
	bounds := s.SceneBounds()
	if err := bounds.Validate(); err != nil {
		return err
	}
	if f := s.Focus; f != nil && !bounds.Contains(f.Position) {
		return errors.Wrapf(ErrInvalid, "focus position %+v outside bounds", f.Position)
	}
	if t := s.Track; t != nil {
		if t.Count < 0 {
			return errors.Wrapf(ErrInvalid, "track.count %d", t.Count)
		}
		if t.Count > 0 && t.Length <= 0 {
			return errors.Wrap(ErrInvalid, "track.length must be positive with track segments")
		}
	}
	if o := s.Obstacles; o != nil {
		if o.Count < 0 {
			return errors.Wrapf(ErrInvalid, "obstacles.count %d", o.Count)
		}
		if o.Count > 0 && s.Bounds.SpawnFar <= s.Bounds.SpawnNear {
			return errors.Wrap(ErrInvalid, "obstacles need spawn_far > spawn_near")
		}
	}
	for _, k := range s.Keys {
		if k.Turn && s.Turn <= 0 {
			return errors.Wrapf(ErrInvalid, "key %s turns but turn is %v", k.Key, s.Turn)
		}
		if !k.Turn && s.Step <= 0 {
			return errors.Wrapf(ErrInvalid, "key %s steps but step is %v", k.Key, s.Step)
		}
	}
	return nil
}

func (s SceneConfig) segmentLength() float64 {
	if s.Track == nil {
		return 0
	}
	return s.Track.Length
}

// Bounds converts to the scene representation.
func (b BoundsConfig) Bounds(segmentLength float64) scene.Bounds {
	return scene.Bounds{
		X:             b.X,
		Y:             b.Y,
		Z:             b.Z,
		TravelAxis:    b.TravelAxis,
		Direction:     b.Direction,
		ExitAt:        b.ExitAt,
		SpawnNear:     b.SpawnNear,
		SpawnFar:      b.SpawnFar,
		SegmentLength: segmentLength,
	}
}

// SceneBounds is the scene's bounds including the track segment length.
func (s SceneConfig) SceneBounds() scene.Bounds {
	return s.Bounds.Bounds(s.segmentLength())
}

// Scene returns a preset by name.
func (c *Config) Scene(name string) (SceneConfig, error) {
	s, ok := c.Scenes[name]
	if !ok {
		return SceneConfig{}, errors.Wrapf(ErrUnknownScene, "%q (have %v)", name, c.Names())
	}
	return s, nil
}

// Names lists the scene presets in sorted order.
func (c *Config) Names() []string {
	names := make([]string, 0, len(c.Scenes))
	for name := range c.Scenes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
