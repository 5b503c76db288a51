package cfg

type MockLoader struct {
	Config *Config
}

func NewMockLoader() (*MockLoader, error) {
	return &MockLoader{Config: Defaults()}, nil
}

func (ml *MockLoader) Load() (*Config, error) {
	return ml.Config, nil
}

// Defaults returns the configuration used when no file overrides a value.
func Defaults() *Config {
	return &Config{
		// App
		App: App{
			Name:     "github-kudos",
			Version:  "0.1.0",
			LogLevel: "info",
		},

		// Server
		Server: Server{
			Port:           4444,
			AllowedOrigins: []string{"http://localhost:8080"},
			ReadTimeoutSec: 15,
		},

		// Storage
		Storage: Storage{Driver: "bolt"},
		Bolt:    Bolt{Path: "kudos.bolt"},

		// Mysql
		Mysql: Mysql{
			Host:                  "127.0.0.1",
			Password:              "root",
			Username:              "root",
			Port:                  "3306",
			Database:              "kudos",
			MaxIdleConnection:     10,
			MaxOpenConnection:     100,
			MaxLifeTimeConnection: 3600,
		},

		// GithubApi
		GithubApi: GithubApi{
			ApiUrl:            "https://api.github.com/search/repositories",
			RequestsPerSecond: 5,
			RateLimitResetMin: 1,
			TimeoutSec:        30,
		},

		// KudosApi
		KudosApi: KudosApi{
			BaseUrl:    "http://localhost:4444",
			TimeoutSec: 15,
		},

		// Kafka
		Kafka: Kafka{
			Producer: Producer{TopicKudo: "kudo-events"},
			Consumer: Consumer{
				GroupID:         "kudo-events-consumer-group",
				BatchSize:       100,
				BatchTimeoutSec: 5,
			},
		},
	}
}
