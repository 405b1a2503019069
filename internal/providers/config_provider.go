package providers

import (
	"counterd/internal/structures"
	"fmt"
	"github.com/spf13/viper"
	"path/filepath"
	"strings"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	v := viper.New()
	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")

	v.SetDefault("cache.ttl", 60)

	v.BindEnv("logger.level", "COUNTERD_LOG_LEVEL")
	v.BindEnv("webServer.port", "COUNTERD_PORT")
	v.BindEnv("persistence.filePath", "COUNTERD_DATA_FILE")
	v.BindEnv("persistence.compress", "COUNTERD_COMPRESS")
	v.BindEnv("cache.enabled", "COUNTERD_CACHE_ENABLED")
	v.BindEnv("cache.size", "COUNTERD_CACHE_SIZE")
	v.BindEnv("metrics.enabled", "COUNTERD_METRICS_ENABLED")

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "NightbotCounterDaemon"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
