package cfg

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const envPrefix = "KUDOS"

type ViperLoader struct {
	v                     *viper.Viper
	configFile            string
	watch                 bool
	mu                    sync.RWMutex
	once                  sync.Once
	cfg                   *Config
	configChangeCallbacks []func(*Config)
}

// NewViperLoader builds a loader reading configFile, or mode.yaml from cfg/yaml
// and the working directory when configFile is empty.
func NewViperLoader(configFile string) (*ViperLoader, error) {
	return &ViperLoader{
		v:                     viper.New(),
		configFile:            configFile,
		watch:                 true,
		configChangeCallbacks: make([]func(*Config), 0),
	}, nil
}

func (yl *ViperLoader) Load() (*Config, error) {
	var err error
	yl.once.Do(func() {
		var found bool
		found, err = yl.loadConfig()
		if err == nil && found && yl.IsWatchChange() {
			yl.v.WatchConfig()
			yl.v.OnConfigChange(func(e fsnotify.Event) {
				fmt.Printf("[INFO][CONFIG] Config file changed: %s\n", e.Name)
				if errReload := yl.reloadConfig(); errReload != nil {
					fmt.Printf("[ERROR][CONFIG] Failed to reload config: %v\n", errReload)
				}
			})
		}
	})

	if err != nil {
		return nil, err
	}

	yl.mu.RLock()
	defer yl.mu.RUnlock()
	return yl.cfg, nil
}

func (yl *ViperLoader) IsWatchChange() bool {
	return yl.watch
}

// DisableWatch turns off hot reload; it must be called before Load.
func (yl *ViperLoader) DisableWatch() {
	yl.watch = false
}

func (yl *ViperLoader) RegisterConfigChangeCallback(callback func(*Config)) {
	yl.mu.Lock()
	yl.configChangeCallbacks = append(yl.configChangeCallbacks, callback)
	yl.mu.Unlock()
}

func (yl *ViperLoader) loadConfig() (bool, error) {
	setDefaults(yl.v, Defaults())

	yl.v.SetEnvPrefix(envPrefix)
	yl.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	yl.v.AutomaticEnv()

	if yl.configFile != "" {
		yl.v.SetConfigFile(yl.configFile)
	} else {
		yl.v.AddConfigPath("cfg/yaml")
		yl.v.AddConfigPath(".")
		yl.v.SetConfigName("mode")
		yl.v.SetConfigType("yaml")
	}

	found := true
	if err := yl.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if yl.configFile != "" || !errors.As(err, &notFound) {
			return false, fmt.Errorf("[ERROR][CONFIG] failed to read config file: %w", err)
		}
		found = false
	}

	cfg := &Config{}
	if err := yl.v.Unmarshal(cfg); err != nil {
		return false, fmt.Errorf("[ERROR][CONFIG] failed to unmarshal config: %w", err)
	}

	yl.mu.Lock()
	yl.cfg = cfg
	yl.mu.Unlock()

	return found, nil
}

func (yl *ViperLoader) reloadConfig() error {
	cfg := &Config{}
	if err := yl.v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("[ERROR][CONFIG] failed to unmarshal config during reload: %w", err)
	}

	yl.mu.Lock()
	yl.cfg = cfg

	// Notify all registered callbacks
	callbacks := make([]func(*Config), len(yl.configChangeCallbacks))
	copy(callbacks, yl.configChangeCallbacks)
	yl.mu.Unlock()
	for _, callback := range callbacks {
		go callback(cfg)
	}

	fmt.Println("[INFO][CONFIG] Configuration reloaded successfully")
	return nil
}

// setDefaults registers every key so AutomaticEnv can override values that the
// yaml file leaves out.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("app.name", d.App.Name)
	v.SetDefault("app.version", d.App.Version)
	v.SetDefault("app.log_level", d.App.LogLevel)

	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.allowed_origins", d.Server.AllowedOrigins)
	v.SetDefault("server.read_timeout_sec", d.Server.ReadTimeoutSec)

	v.SetDefault("storage.driver", d.Storage.Driver)
	v.SetDefault("bolt.path", d.Bolt.Path)

	v.SetDefault("mysql.host", d.Mysql.Host)
	v.SetDefault("mysql.port", d.Mysql.Port)
	v.SetDefault("mysql.username", d.Mysql.Username)
	v.SetDefault("mysql.password", d.Mysql.Password)
	v.SetDefault("mysql.database", d.Mysql.Database)
	v.SetDefault("mysql.max_idle_connection", d.Mysql.MaxIdleConnection)
	v.SetDefault("mysql.max_open_connection", d.Mysql.MaxOpenConnection)
	v.SetDefault("mysql.max_life_time_connection", d.Mysql.MaxLifeTimeConnection)

	v.SetDefault("github_api.access_token", d.GithubApi.AccessToken)
	v.SetDefault("github_api.api_url", d.GithubApi.ApiUrl)
	v.SetDefault("github_api.requests_per_second", d.GithubApi.RequestsPerSecond)
	v.SetDefault("github_api.rate_limit_reset_min", d.GithubApi.RateLimitResetMin)
	v.SetDefault("github_api.timeout_sec", d.GithubApi.TimeoutSec)

	v.SetDefault("kudos_api.base_url", d.KudosApi.BaseUrl)
	v.SetDefault("kudos_api.access_token", d.KudosApi.AccessToken)
	v.SetDefault("kudos_api.timeout_sec", d.KudosApi.TimeoutSec)

	v.SetDefault("kafka.brokers", d.Kafka.Brokers)
	v.SetDefault("kafka.producer.topic_kudo", d.Kafka.Producer.TopicKudo)
	v.SetDefault("kafka.consumer.group_id", d.Kafka.Consumer.GroupID)
	v.SetDefault("kafka.consumer.batch_size", d.Kafka.Consumer.BatchSize)
	v.SetDefault("kafka.consumer.batch_timeout_sec", d.Kafka.Consumer.BatchTimeoutSec)

	v.SetDefault("auth.issuer", d.Auth.Issuer)
	v.SetDefault("auth.audience", d.Auth.Audience)
	v.SetDefault("auth.signing_key", d.Auth.SigningKey)
}
