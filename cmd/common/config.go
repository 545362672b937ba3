package common

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	configName = ".gitsummary"
	envPrefix  = "GITSUMMARY"
)

var defaults = map[string]any{
	"format":     string(FormatTable),
	"log-level":  "warn",
	"log-format": "console",
	"threads":    4,
	"timeout":    "10m",
}

// Config is the merged view of the config file, GITSUMMARY_* environment
// variables and command-line flags, in increasing priority.
type Config struct {
	Output          string        `mapstructure:"output"`
	Format          string        `mapstructure:"format"`
	LogLevel        string        `mapstructure:"log-level"`
	LogFormat       string        `mapstructure:"log-format"`
	Threads         int           `mapstructure:"threads"`
	Timeout         time.Duration `mapstructure:"timeout"`
	Username        string        `mapstructure:"username"`
	Token           string        `mapstructure:"token"`
	SSHKeyPath      string        `mapstructure:"ssh"`
	InsecureSkipTLS bool          `mapstructure:"insecure"`
}

// Runtime is what the root command hands to its subcommands once flags and
// configuration are resolved.
type Runtime struct {
	Ctx    context.Context
	Config *Config
	Logger *zap.Logger

	stop context.CancelFunc
}

// Start derives the run context from parent. Interrupts cancel it so
// in-flight runs unwind and remove their temporary clones.
func (rt *Runtime) Start(parent context.Context) {
	rt.Ctx, rt.stop = signal.NotifyContext(parent, os.Interrupt)
}

// Close releases what Start and the root command set up. Commands defer it
// so it runs on failures too. It is safe to call more than once.
func (rt *Runtime) Close() error {
	if rt.stop != nil {
		rt.stop()
		rt.stop = nil
	}
	if rt.Logger != nil {
		_ = rt.Logger.Sync()
	}
	return CloseOutput()
}

func LoadConfig(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("failed to read configuration: %w", err)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if config.Threads < 1 {
		return nil, fmt.Errorf("threads must be at least 1, got %d", config.Threads)
	}
	return config, nil
}
