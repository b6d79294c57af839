package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"fish-shop/internal/config"
	"fish-shop/internal/customers"
	"fish-shop/internal/moltin"
	"fish-shop/internal/shop"
	"fish-shop/internal/telegram"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()

	if cfg.LogBotToken != "" && cfg.LogChatID != 0 {
		lw, err := telegram.NewLogWriter(cfg.LogBotToken, cfg.LogChatID)
		if err != nil {
			log.Printf("failed to init log forwarding: %v", err)
		} else {
			log.SetOutput(io.MultiWriter(os.Stderr, lw))
		}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("failed to reach redis at %s: %v", cfg.RedisAddr, err)
	}

	// No client-side retries; a hung upstream call fails the turn instead of
	// blocking the conversation forever.
	httpc := &http.Client{Timeout: 30 * time.Second}
	client := moltin.NewClient(cfg.MoltinBaseURL, cfg.MoltinClientID, cfg.MoltinClientSecret, httpc)
	machine := shop.NewMachine(client, client, client, customers.NewStore(rdb))

	bot, err := telegram.New(cfg.TelegramBotToken, machine)
	if err != nil {
		log.Fatalf("failed to create bot: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Printf("fish shop bot started")
	bot.Start(ctx)
}
