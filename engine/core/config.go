package core

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type LogConfig struct {
	Level        string `toml:"level"`
	Prefix       string `toml:"prefix"`
	ReportCaller bool   `toml:"report_caller"`
}

type AssetsConfig struct {
	/** @brief The directory indexed by the asset manager. */
	Directory string `toml:"directory"`
	/** @brief Keeps the asset index current through filesystem notifications. */
	Watch bool `toml:"watch"`
}

type TextureConfig struct {
	/** @brief Flips decoded images vertically before upload. */
	FlipY bool `toml:"flip_y"`
	/** @brief "linear" or "nearest". */
	Filter string `toml:"filter"`
	/** @brief "repeat", "mirrored_repeat", "clamp_to_edge" or "clamp_to_border". */
	Repeat string `toml:"repeat"`
	/** @brief Uploads diffuse maps with an sRGB format. Normal maps are always linear. */
	SRGB bool `toml:"srgb"`
}

type ModelsConfig struct {
	/** @brief Destroys a model when its last reference is released. */
	AutoRelease bool `toml:"auto_release"`
}

type Config struct {
	Log      LogConfig     `toml:"log"`
	Assets   AssetsConfig  `toml:"assets"`
	Textures TextureConfig `toml:"textures"`
	Models   ModelsConfig  `toml:"models"`
}

func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:        "debug",
			Prefix:       "Anima 🧊 ",
			ReportCaller: true,
		},
		Assets: AssetsConfig{
			Directory: "assets",
		},
		Textures: TextureConfig{
			Filter: "linear",
			Repeat: "repeat",
			SRGB:   true,
		},
		Models: ModelsConfig{
			AutoRelease: true,
		},
	}
}

// LoadConfig reads a TOML file on top of DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseConfig(data)
}

func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error", "fatal":
	default:
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}
	switch c.Textures.Filter {
	case "linear", "nearest":
	default:
		return fmt.Errorf("invalid texture filter: %s", c.Textures.Filter)
	}
	switch c.Textures.Repeat {
	case "repeat", "mirrored_repeat", "clamp_to_edge", "clamp_to_border":
	default:
		return fmt.Errorf("invalid texture repeat mode: %s", c.Textures.Repeat)
	}
	if c.Assets.Directory == "" {
		return fmt.Errorf("assets directory is required")
	}
	return nil
}

// Apply pushes the logging section into the engine logger.
func (c *Config) Apply() error {
	if err := SetLogLevel(c.Log.Level); err != nil {
		return err
	}
	SetLogPrefix(c.Log.Prefix)
	SetLogReportCaller(c.Log.ReportCaller)
	return nil
}
