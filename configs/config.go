package config

import "os"

type Config struct {
	TwitterConsumerKey    string
	TwitterConsumerSecret string
	TwitterCallbackURL    string
	PostgresURI           string
	RedisURI              string
	FrontendURL           string
	SecretKey             string
	Port                  string
}

func LoadConfig() *Config {
	return &Config{
		TwitterConsumerKey:    getEnv("TWITTER_CONSUMER_KEY", ""),
		TwitterConsumerSecret: getEnv("TWITTER_CONSUMER_SECRET", ""),
		TwitterCallbackURL:    getEnv("TWITTER_CALLBACK_URL", ""),
		PostgresURI:           getEnv("POSTGRES_URI", ""),
		RedisURI:              getEnv("REDIS_URI", ""),
		FrontendURL:           getEnv("FRONTEND_URL", "http://localhost:3000"),
		SecretKey:             getEnv("SECRET_KEY", ""),
		Port:                  getEnv("PORT", "8000"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
