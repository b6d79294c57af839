package config

import (
	"log"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	TelegramBotToken string `env:"TG_BOT_TOKEN,required"`

	// Moltin credentials
	MoltinClientID     string `env:"CLIENT_ID,required"`
	MoltinClientSecret string `env:"CLIENT_SECRET,required"`
	MoltinBaseURL      string `env:"MOLTIN_BASE_URL" envDefault:"https://api.moltin.com"`

	// Identity store
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	// Log mirroring to an admin chat (optional, needs both values)
	LogBotToken string `env:"TG_LOG_BOT_TOKEN"`
	LogChatID   int64  `env:"TG_LOG_CHAT_ID"`
}

func New() *Config {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	return cfg
}
