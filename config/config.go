package config

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/DomeLiquid/pair/core"
	"github.com/pkg/errors"
)

type Config struct {
	Pair  core.PairConfig `toml:"pair"`
	Store StoreConfig     `toml:"store"`
}

type StoreConfig struct {
	DSN string `toml:"dsn"`
}

func Default() *Config {
	return &Config{
		Pair:  core.DefaultPairConfig(),
		Store: StoreConfig{DSN: "file::memory:?cache=shared"},
	}
}

// Load reads a TOML file over the defaults. Decimal parameters are written as strings,
// e.g. collateralization_rate = "0.8". A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	var file Config
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, errors.Wrapf(err, "decode config %s", path)
	}
	return cfg.merge(&file)
}

// Decode parses TOML text over the defaults.
func Decode(data string) (*Config, error) {
	var file Config
	if _, err := toml.Decode(data, &file); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	return Default().merge(&file)
}

func (c *Config) merge(file *Config) (*Config, error) {
	c.Pair.Update(&file.Pair)
	if file.Store.DSN != "" {
		c.Store.DSN = file.Store.DSN
	}
	if err := c.Pair.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
