// Package config loads facade settings from TOML and can watch the file for
// changes, so projection parameters can be tuned while a session runs.
package config

import (
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/immerse/webxr"
	"github.com/spaghettifunk/immerse/webxr/core"
)

type Projection struct {
	// Near clip distance in meters.
	Near float32 `toml:"near"`
	// Far clip distance in meters.
	Far float32 `toml:"far"`
}

type Session struct {
	// "inline", "immersive-vr" or "immersive-ar".
	Mode string `toml:"mode"`
	// Feature names as the host spells them: "local", "local-floor",
	// "bounded-floor", "unbounded", "hit-test".
	RequiredFeature string `toml:"required_feature"`
	OptionalFeature string `toml:"optional_feature"`
}

type Config struct {
	// "debug", "info", "warn" or "error".
	LogLevel string `toml:"log_level"`
	// Device backend to bind: "sim" or "desktop".
	Device     string     `toml:"device"`
	Projection Projection `toml:"projection"`
	Session    Session    `toml:"session"`
}

func Default() *Config {
	return &Config{
		LogLevel: "info",
		Device:   "sim",
		Projection: Projection{
			Near: 0.1,
			Far:  1000.0,
		},
		Session: Session{
			Mode:            "immersive-vr",
			RequiredFeature: "local-floor",
			OptionalFeature: "hit-test",
		},
	}
}

// Load reads the TOML file at path over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	config := Default()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, err
	}
	return config, nil
}

// SessionMode maps the configured mode name onto its tag. Unknown names fall
// back to inline.
func (c *Config) SessionMode() webxr.SessionMode {
	switch c.Session.Mode {
	case "immersive-vr":
		return webxr.SESSION_MODE_IMMERSIVE_VR
	case "immersive-ar":
		return webxr.SESSION_MODE_IMMERSIVE_AR
	case "inline":
		return webxr.SESSION_MODE_INLINE
	}
	core.LogWarn("unknown session mode %q, falling back to inline", c.Session.Mode)
	return webxr.SESSION_MODE_INLINE
}

func featureTag(name string) webxr.SessionFeature {
	switch name {
	case "local-floor":
		return webxr.SESSION_FEATURE_LOCAL_FLOOR
	case "bounded-floor":
		return webxr.SESSION_FEATURE_BOUNDED_FLOOR
	case "unbounded":
		return webxr.SESSION_FEATURE_UNBOUNDED
	case "hit-test":
		return webxr.SESSION_FEATURE_HIT_TEST
	}
	return webxr.SESSION_FEATURE_LOCAL
}

// Features returns the configured required and optional feature tags.
func (c *Config) Features() (webxr.SessionFeature, webxr.SessionFeature) {
	return featureTag(c.Session.RequiredFeature), featureTag(c.Session.OptionalFeature)
}

// Level maps the configured log level name onto the core logging level.
func (c *Config) Level() core.LogLevel {
	switch c.LogLevel {
	case "debug":
		return core.DebugLevel
	case "warn":
		return core.WarnLevel
	case "error":
		return core.ErrorLevel
	}
	return core.InfoLevel
}
