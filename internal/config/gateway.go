package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// GatewayConfig tunes the outbound request gateway. Values apply to
// not-yet-dispatched requests, so a reload takes effect mid-queue.
type GatewayConfig struct {
	MaxRequestsPerSecond int           `mapstructure:"maxRequestsPerSecond"`
	RequestTimeout       time.Duration `mapstructure:"requestTimeout"`
}

func DefaultGatewayConfig(cfg Config) GatewayConfig {
	rate := cfg.GatewayMaxRate
	if rate <= 0 {
		rate = 20
	}
	timeout := cfg.GatewayRequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return GatewayConfig{
		MaxRequestsPerSecond: rate,
		RequestTimeout:       timeout,
	}
}

type GatewayConfigHolder struct {
	current atomic.Value // holds GatewayConfig
}

// NewGatewayConfigHolder reads optional gateway tuning from fieldbill.yml
// and keeps it hot-reloaded.
func NewGatewayConfigHolder(cfg Config) (*GatewayConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("fieldbill")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/fieldbill")
	v.AddConfigPath(".")

	v.SetEnvPrefix("FIELDBILL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultGatewayConfig(cfg)
	v.SetDefault("gateway.maxRequestsPerSecond", defaults.MaxRequestsPerSecond)
	v.SetDefault("gateway.requestTimeout", defaults.RequestTimeout)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var gw GatewayConfig
	if err := v.UnmarshalKey("gateway", &gw); err != nil {
		return nil, err
	}
	if err := validateGatewayConfig(gw); err != nil {
		return nil, err
	}

	holder := &GatewayConfigHolder{}
	holder.current.Store(gw)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated GatewayConfig
		if err := v.UnmarshalKey("gateway", &updated); err != nil {
			log.Printf("[gateway-config] reload failed: %v", err)
			return
		}
		if err := validateGatewayConfig(updated); err != nil {
			log.Printf("[gateway-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[gateway-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *GatewayConfigHolder) Get() GatewayConfig {
	return h.current.Load().(GatewayConfig)
}

// NewStaticGatewayConfigHolder wraps a fixed config, for tests.
func NewStaticGatewayConfigHolder(gw GatewayConfig) *GatewayConfigHolder {
	holder := &GatewayConfigHolder{}
	holder.current.Store(gw)
	return holder
}

func validateGatewayConfig(gw GatewayConfig) error {
	if gw.MaxRequestsPerSecond <= 0 {
		return errors.New("gateway.maxRequestsPerSecond must be positive")
	}
	if gw.RequestTimeout <= 0 {
		return errors.New("gateway.requestTimeout must be positive")
	}
	return nil
}
