package main

import (
	"flag"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"PriceCast/internal/di"
	"PriceCast/pkg/config"
)

func main() {
	configPath := flag.String("config", envOr("PRICECAST_CONFIG", "config/config.yaml"), "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	deps, err := di.InitializeLambda(cfg)
	if err != nil {
		log.Fatalf("lambda initialization failed: %v", err)
	}

	lambda.Start(newHandler(deps.Pipeline, deps.Recorder, deps.Logger).Handle)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
