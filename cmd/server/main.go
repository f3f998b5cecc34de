package main

import (
	"context"
	"log"

	"docconv/internal/cli"
	"docconv/internal/config"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if err := cli.Serve(context.Background(), cfg); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
