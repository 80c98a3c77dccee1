// config.go: viper-backed startup configuration

package cacheme

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// defaultSweepInterval is how often the background sweeper of a local tier
// opened through OpenStorage (and so through Bootstrap) reclaims expired
// entries; neither the storage URL nor Config has a setting for it.
const defaultSweepInterval = 30 * time.Second

// StorageConfig is one entry of a config file's "storages" list.
type StorageConfig struct {
	Name string `mapstructure:"name"`
	URL  string `mapstructure:"url"`
}

// Config is the shape an engine's startup file takes: a process-global key
// prefix and the named storages to register. Node types are still declared
// in code — only the storage topology is data-driven, matching the
// source's "registration is expected to complete during startup" model.
type Config struct {
	Prefix   string          `mapstructure:"prefix"`
	Storages []StorageConfig `mapstructure:"storages"`
}

// LoadConfig reads a cacheme config from path using viper, which picks the
// format (YAML, JSON, TOML, ...) from the file extension.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, &ConfigError{Msg: fmt.Sprintf("read config %q: %v", path, err)}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &ConfigError{Msg: fmt.Sprintf("parse config %q: %v", path, err)}
	}
	return &cfg, nil
}

// Bootstrap builds an Engine from cfg: sets the global key prefix and
// registers every configured storage, connecting each in turn. Registration
// order matches cfg.Storages so a caller can rely on earlier entries being
// live before later ones connect.
func Bootstrap(ctx context.Context, cfg *Config, log *zap.Logger) (*Engine, error) {
	if cfg.Prefix != "" {
		SetPrefix(cfg.Prefix)
	}
	e := NewEngine(log)
	for _, sc := range cfg.Storages {
		s, err := OpenStorage(sc.Name, sc.URL)
		if err != nil {
			return nil, err
		}
		if err := e.RegisterStorage(ctx, s); err != nil {
			return nil, err
		}
	}
	return e, nil
}
