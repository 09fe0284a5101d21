/*
Package config holds the settings of the wmc2d tool, read from a TOML
file. Anything missing from the file keeps its default.
*/
package config

import (
	"os"
	"runtime"

	"github.com/pelletier/go-toml"
)

type Config struct {
	Main     Main     `toml:"main"`
	Database Database `toml:"database"`
	Scan     Scan     `toml:"scan"`
	Render   Render   `toml:"render"`
}

type Main struct {
	LogLevel string `toml:"log_level"`
}

type Database struct {
	Path string `toml:"path"`
}

type Scan struct {
	Workers int `toml:"workers"`
}

type Render struct {
	Depth int  `toml:"depth"`
	Mask  bool `toml:"mask"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Main: Main{
			LogLevel: "info",
		},
		Database: Database{
			Path: "wmc2d.db",
		},
		Scan: Scan{
			Workers: runtime.NumCPU(),
		},
		Render: Render{
			Depth: 24,
			Mask:  true,
		},
	}
}

// Load reads the configuration file at path on top of the defaults. An
// empty path returns the defaults.
func Load(path string) (Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}

	fd, err := os.Open(path)
	if err != nil {
		return c, err
	}
	defer fd.Close()

	if err := toml.NewDecoder(fd).Decode(&c); err != nil {
		return c, err
	}

	return c, nil
}

// Write saves c to path.
func Write(path string, c Config) error {
	fd, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}

	enc := toml.NewEncoder(fd).
		Indentation("  ").
		Order(toml.OrderPreserve)

	if err = enc.Encode(c); err != nil {
		defer fd.Close()
		return err
	}

	return fd.Close()
}
