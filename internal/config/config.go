package config

import (
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	DBURL             string `mapstructure:"DB_URL"`
	RedisAddr         string `mapstructure:"REDIS_ADDR"`
	MQTTBroker        string `mapstructure:"MQTT_BROKER"`
	MQTTClientID      string `mapstructure:"MQTT_CLIENT_ID"`
	TopicRoot         string `mapstructure:"TOPIC_ROOT"`
	HTTPAddr          string `mapstructure:"HTTP_ADDR"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	LogFormat         string `mapstructure:"LOG_FORMAT"`
	WorkerConcurrency int    `mapstructure:"WORKER_CONCURRENCY"`
	JobMaxRetry       int    `mapstructure:"JOB_MAX_RETRY"`
	PublishTimeoutSec int    `mapstructure:"PUBLISH_TIMEOUT"`
	RuleLightDevice   string `mapstructure:"RULE_LIGHT_DEVICE"`
	RuleGenDevice     string `mapstructure:"RULE_GENERATOR_DEVICE"`
}

// LoadConfig reads configuration from .env and environment variables
func LoadConfig() (*Config, error) {
	// .env is optional; containers provide env vars directly
	_ = godotenv.Load()

	viper.AutomaticEnv()

	viper.SetDefault("TOPIC_ROOT", "ochiga")
	viper.SetDefault("MQTT_CLIENT_ID", "estatecore-backend")
	viper.SetDefault("HTTP_ADDR", ":5000")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")
	viper.SetDefault("WORKER_CONCURRENCY", 2)
	viper.SetDefault("JOB_MAX_RETRY", 3)
	viper.SetDefault("PUBLISH_TIMEOUT", 5)
	viper.SetDefault("RULE_LIGHT_DEVICE", "light-01")
	viper.SetDefault("RULE_GENERATOR_DEVICE", "generator-01")

	cfg := &Config{
		DBURL:             viper.GetString("DB_URL"),
		RedisAddr:         viper.GetString("REDIS_ADDR"),
		MQTTBroker:        viper.GetString("MQTT_BROKER"),
		MQTTClientID:      viper.GetString("MQTT_CLIENT_ID"),
		TopicRoot:         viper.GetString("TOPIC_ROOT"),
		HTTPAddr:          viper.GetString("HTTP_ADDR"),
		JWTSecret:         viper.GetString("JWT_SECRET"),
		LogLevel:          viper.GetString("LOG_LEVEL"),
		LogFormat:         viper.GetString("LOG_FORMAT"),
		WorkerConcurrency: viper.GetInt("WORKER_CONCURRENCY"),
		JobMaxRetry:       viper.GetInt("JOB_MAX_RETRY"),
		PublishTimeoutSec: viper.GetInt("PUBLISH_TIMEOUT"),
		RuleLightDevice:   viper.GetString("RULE_LIGHT_DEVICE"),
		RuleGenDevice:     viper.GetString("RULE_GENERATOR_DEVICE"),
	}
	return cfg, nil
}
