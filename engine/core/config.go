package core

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

/** @brief Linker related settings. */
type LinkerConfig struct {
	/** @brief Emit banner comments (buffer names, registers consumed) into generated declarations. */
	DebugDeclarations bool `toml:"debug_declarations"`
}

/** @brief Catalog asset settings. */
type AssetsConfig struct {
	/** @brief Directory scanned for .cbcat catalog files. */
	CatalogDir string `toml:"catalog_dir"`
	/** @brief Re-link catalogs when they change on disk. */
	Watch bool `toml:"watch"`
}

/** @brief Job system settings. */
type JobsConfig struct {
	Workers   int `toml:"workers"`
	QueueSize int `toml:"queue_size"`
}

/** @brief Constant buffer system settings. */
type SystemsConfig struct {
	/** @brief The maximum number of live constant buffer instances. */
	MaxBufferCount uint32 `toml:"max_buffer_count"`
}

// Config is the top level configuration file of the tool.
type Config struct {
	LogLevel string        `toml:"log_level"`
	Linker   LinkerConfig  `toml:"linker"`
	Assets   AssetsConfig  `toml:"assets"`
	Jobs     JobsConfig    `toml:"jobs"`
	Systems  SystemsConfig `toml:"systems"`
}

func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Assets: AssetsConfig{
			CatalogDir: "assets/catalogs",
		},
		Jobs: JobsConfig{
			Workers:   4,
			QueueSize: 64,
		},
		Systems: SystemsConfig{
			MaxBufferCount: 1024,
		},
	}
}

// LoadConfig reads a TOML configuration file. Keys missing from the file
// keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config '%s': %w", path, err)
	}
	if cfg.Jobs.Workers <= 0 {
		return nil, fmt.Errorf("config '%s': jobs.workers must be greater than 0", path)
	}
	if cfg.Jobs.QueueSize < 0 {
		return nil, fmt.Errorf("config '%s': jobs.queue_size must not be negative", path)
	}
	return cfg, nil
}
