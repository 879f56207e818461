package siteheader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned when a config document is missing a value that
// every tag needs.
var ErrInvalidConfig = errors.New("invalid config")

// Config lists the tags to register and the Header each one renders.
type Config struct {
	Tags []TagConfig `yaml:"tags"`
}

// TagConfig binds a tag name to a Header's assets.
type TagConfig struct {
	Name      string           `yaml:"name"`
	Signature *SignatureConfig `yaml:"signature"`
	Banner    BannerConfig     `yaml:"banner"`
}

// SignatureConfig is the YAML form of a Signature.
type SignatureConfig struct {
	Image string `yaml:"image"`
	Href  string `yaml:"href"`
}

// BannerConfig is the YAML form of a Banner.
type BannerConfig struct {
	Image string `yaml:"image"`
	Alt   string `yaml:"alt"`
}

// Header returns the Header described by the TagConfig.
func (tc TagConfig) Header() Header {
	header := Header{
		Banner: Banner{Image: tc.Banner.Image, Alt: tc.Banner.Alt},
	}
	if tc.Signature != nil {
		header.Signature = &Signature{Image: tc.Signature.Image, Href: tc.Signature.Href}
	}
	return header
}

// LoadConfig decodes a YAML Config from r. Unknown fields are rejected. An
// empty document results in an empty Config.
func LoadConfig(r io.Reader) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("error decoding config: %w", err)
	}
	for pos, tag := range cfg.Tags {
		if tag.Name == "" {
			return Config{}, fmt.Errorf("tag %d has no name: %w", pos, ErrInvalidConfig)
		}
		if tag.Banner.Image == "" {
			return Config{}, fmt.Errorf("tag %q has no banner image: %w", tag.Name, ErrInvalidConfig)
		}
	}
	return cfg, nil
}

// LoadConfigFile opens path in fsys and decodes it with LoadConfig.
func LoadConfigFile(fsys fs.FS, path string) (Config, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("error opening config %q: %w", path, err)
	}
	defer f.Close()
	cfg, err := LoadConfig(f)
	if err != nil {
		return Config{}, fmt.Errorf("error loading config %q: %w", path, err)
	}
	return cfg, nil
}

// Register registers every tag in the Config with registry, in order,
// stopping at the first error.
func (c Config) Register(ctx context.Context, registry *Registry) error {
	for _, tag := range c.Tags {
		if err := registry.Register(ctx, tag.Name, tag.Header()); err != nil {
			return err
		}
	}
	return nil
}
