package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"argocd-diff-preview/internal"
	"argocd-diff-preview/internal/cli"
	"argocd-diff-preview/internal/config"
	"argocd-diff-preview/internal/logger"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env without overriding variables already set in the environment
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("Failed to load .env file: %v", err)
	}

	// Parse command-line arguments
	args, err := cli.Parse()
	if err != nil {
		log.Fatalf("Failed to parse arguments: %v", err)
	}

	// Handle help flag
	if args.ShowHelp {
		cli.ShowUsage()
		os.Exit(0)
	}

	// Load configuration from environment variables
	cfg, err := config.Load(args.Mode, args.RecordsFile != "")
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Setup logging; stdout is reserved for rendered comments
	logger.Setup(cfg, os.Stderr)

	previewer, err := internal.New(cfg, args)
	if err != nil {
		log.Fatalf("Failed to create diff previewer: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := previewer.Run(ctx); err != nil {
		stop()
		log.Fatalf("Failed to run diff preview: %v", err)
	}
}
