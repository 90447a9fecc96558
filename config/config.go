package config

import (
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/golang/glog"
)

const DEFAULT_CONFIG = `
# TableDB configuration.

[module]
name = "default"
data-path = "/tmp/tabledb/data"
metadata-path = "/tmp/tabledb/metadata"

[bootstrap]
# 0 means the pool width is auto-detected from the host cpu count
max-pool-size = 0
fsync-metadata = false
force-restore-data = false

[log]
#debug, info, warn, error
level = "info"
`

const (
	CONFIG_LOG_LEVEL_DEBUG = "debug"
	CONFIG_LOG_LEVEL_INFO  = "info"
	CONFIG_LOG_LEVEL_WARN  = "warn"
	CONFIG_LOG_LEVEL_ERROR = "error"
)

type Config struct {
	ModuleCfg    ModuleConfig    `toml:"module,omitempty" json:"module"`
	BootstrapCfg BootstrapConfig `toml:"bootstrap,omitempty" json:"bootstrap"`
	LogCfg       LogConfig       `toml:"log,omitempty" json:"log"`
}

// NewConfig decodes the built-in defaults and overlays the file at path when
// one is given. Invalid configuration is fatal.
func NewConfig(path string) *Config {
	c := new(Config)

	if _, err := toml.Decode(DEFAULT_CONFIG, c); err != nil {
		glog.Fatalf("fail to decode default config, err[%v]", err)
	}

	if len(path) != 0 {
		if _, err := toml.DecodeFile(path, c); err != nil {
			glog.Fatalf("fail to decode config file[%v]. err[%v]", path, err)
		}
	}

	c.adjust()

	return c
}

func (c *Config) adjust() {
	c.ModuleCfg.adjust()
	c.BootstrapCfg.adjust()
	c.LogCfg.adjust()
}

type ModuleConfig struct {
	Name         string `toml:"name,omitempty" json:"name"`
	DataPath     string `toml:"data-path,omitempty" json:"data-path"`
	MetadataPath string `toml:"metadata-path,omitempty" json:"metadata-path"`
}

func (cfg *ModuleConfig) adjust() {
	adjustString(&cfg.Name, "no module name")
	adjustString(&cfg.DataPath, "no data path")
	adjustString(&cfg.MetadataPath, "no metadata path")

	for _, dir := range []string{cfg.DataPath, cfg.MetadataPath} {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, os.ModePerm); err != nil {
				glog.Fatalf("fail to create path[%v]. err[%v]", dir, err)
			}
		}
	}
}

type BootstrapConfig struct {
	MaxPoolSize      int  `toml:"max-pool-size,omitempty" json:"max-pool-size"`
	FsyncMetadata    bool `toml:"fsync-metadata,omitempty" json:"fsync-metadata"`
	ForceRestoreData bool `toml:"force-restore-data,omitempty" json:"force-restore-data"`
}

func (cfg *BootstrapConfig) adjust() {
	if cfg.MaxPoolSize < 0 {
		glog.Fatalf("invalid bootstrap max-pool-size[%v]", cfg.MaxPoolSize)
	}
}

type LogConfig struct {
	Level string `toml:"level,omitempty" json:"level"`
}

func (c *LogConfig) adjust() {
	adjustString(&c.Level, "no log level")
	c.Level = strings.ToLower(c.Level)
	switch c.Level {
	case CONFIG_LOG_LEVEL_DEBUG:
	case CONFIG_LOG_LEVEL_INFO:
	case CONFIG_LOG_LEVEL_WARN:
	case CONFIG_LOG_LEVEL_ERROR:
	default:
		glog.Fatalf("invalid log level[%v]", c.Level)
	}
}

func adjustString(v *string, errMsg string) {
	if len(*v) == 0 {
		glog.Fatalf("config adjust string error, %v", errMsg)
	}
}
