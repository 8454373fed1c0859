package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// MerchantConfig holds the display settings the checkout surface is branded
// with. It is file-backed so ops can retune copy without a redeploy.
type MerchantConfig struct {
	DisplayName string `mapstructure:"displayName"`
	ThemeColor  string `mapstructure:"themeColor"`
	SupportURL  string `mapstructure:"supportUrl"`
}

func DefaultMerchantConfig() MerchantConfig {
	return MerchantConfig{
		DisplayName: "Next Developer",
		ThemeColor:  "#6C5CE7",
		SupportURL:  "/support",
	}
}

type MerchantConfigHolder struct {
	current atomic.Value // holds MerchantConfig
}

func NewMerchantConfigHolder() (*MerchantConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("merchant")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/storefront/config") // Volume-mounted config
	v.AddConfigPath("/etc/storefront")            // System config
	v.AddConfigPath(".")                          // Current directory (dev mode)

	v.SetEnvPrefix("STOREFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// if config file not found, use defaults
		defaults := DefaultMerchantConfig()
		v.SetDefault("merchant.displayName", defaults.DisplayName)
		v.SetDefault("merchant.themeColor", defaults.ThemeColor)
		v.SetDefault("merchant.supportUrl", defaults.SupportURL)
	}

	var cfg MerchantConfig
	if err := v.UnmarshalKey("merchant", &cfg); err != nil {
		return nil, err
	}
	if err := validateMerchantConfig(cfg); err != nil {
		return nil, err
	}

	holder := &MerchantConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated MerchantConfig
		if err := v.UnmarshalKey("merchant", &updated); err != nil {
			log.Printf("[merchant-config] reload failed: %v", err)
			return
		}
		if err := validateMerchantConfig(updated); err != nil {
			log.Printf("[merchant-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[merchant-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// StaticMerchantConfigHolder wraps a fixed config for callers that do not
// watch a file.
func StaticMerchantConfigHolder(cfg MerchantConfig) *MerchantConfigHolder {
	holder := &MerchantConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *MerchantConfigHolder) Get() MerchantConfig {
	return h.current.Load().(MerchantConfig)
}

func validateMerchantConfig(cfg MerchantConfig) error {
	if strings.TrimSpace(cfg.DisplayName) == "" {
		return errors.New("merchant.displayName cannot be empty")
	}
	if !strings.HasPrefix(strings.TrimSpace(cfg.ThemeColor), "#") {
		return errors.New("merchant.themeColor must be a hex color")
	}
	return nil
}
