package cfg

type (
	App struct {
		Name     string
		Version  string
		LogLevel string `mapstructure:"log_level"`
	}

	Server struct {
		Port           int
		AllowedOrigins []string `mapstructure:"allowed_origins"`
		ReadTimeoutSec int      `mapstructure:"read_timeout_sec"`
	}

	Storage struct {
		// Driver selects the kudo backend: "mysql" or "bolt".
		Driver string
	}

	Mysql struct {
		Host                  string
		Port                  string
		Username              string
		Password              string
		Database              string
		MaxIdleConnection     int `mapstructure:"max_idle_connection"`
		MaxOpenConnection     int `mapstructure:"max_open_connection"`
		MaxLifeTimeConnection int `mapstructure:"max_life_time_connection"`
	}

	Bolt struct {
		Path string
	}

	GithubApi struct {
		AccessToken       string `mapstructure:"access_token"`
		ApiUrl            string `mapstructure:"api_url"`
		RequestsPerSecond int    `mapstructure:"requests_per_second"`
		RateLimitResetMin int    `mapstructure:"rate_limit_reset_min"`
		TimeoutSec        int    `mapstructure:"timeout_sec"`
	}

	KudosApi struct {
		BaseUrl     string `mapstructure:"base_url"`
		AccessToken string `mapstructure:"access_token"`
		TimeoutSec  int    `mapstructure:"timeout_sec"`
	}

	Producer struct {
		TopicKudo string `mapstructure:"topic_kudo"`
	}

	Consumer struct {
		GroupID         string `mapstructure:"group_id"`
		BatchSize       int    `mapstructure:"batch_size"`
		BatchTimeoutSec int    `mapstructure:"batch_timeout_sec"`
	}

	Kafka struct {
		Brokers  []string
		Producer Producer
		Consumer Consumer
	}

	Auth struct {
		Issuer     string
		Audience   string
		SigningKey string `mapstructure:"signing_key"`
	}
)

type Config struct {
	App       App
	Server    Server
	Storage   Storage
	Mysql     Mysql
	Bolt      Bolt
	GithubApi GithubApi `mapstructure:"github_api"`
	KudosApi  KudosApi  `mapstructure:"kudos_api"`
	Kafka     Kafka
	Auth      Auth
}

// KafkaEnabled reports whether kudo events should be published.
func (c *Config) KafkaEnabled() bool {
	return len(c.Kafka.Brokers) > 0 && c.Kafka.Producer.TopicKudo != ""
}
