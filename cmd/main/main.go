package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/BartekS5/ingest/internal/cli"
	"github.com/BartekS5/ingest/pkg/logger"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	rootCmd := cli.NewRootCmd()
	err := rootCmd.ExecuteContext(ctx)
	stop()
	logger.Close()
	if err != nil {
		os.Exit(1)
	}
}
