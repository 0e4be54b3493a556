package config

type Config struct {
	Port          int    `mapstructure:"port"`
	LogLevel      string `mapstructure:"log_level"`
	LogFile       string `mapstructure:"log_file"`
	NATSURL       string `mapstructure:"nats_url"`
	RedisURL      string `mapstructure:"redis_url"`
	MongoURL      string `mapstructure:"mongo_url"`
	MongoDatabase string `mapstructure:"mongo_database"`
	AMQPURL       string `mapstructure:"amqp_url"`
	ScraperURL    string `mapstructure:"scraper_url"`

	Session SessionConfig `mapstructure:"session"`
	Gemini  GeminiConfig  `mapstructure:"gemini"`
}

type SessionConfig struct {
	Secret   string `mapstructure:"secret"`
	TTLHours int    `mapstructure:"ttl_hours"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}
