package main

import (
	"flag"
	"fmt"
	"os"

	"PriceCast/internal/di"
	"PriceCast/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the YAML config")
	checkOnly := flag.Bool("check", false, "load config and artifacts, then exit")
	flag.Parse()

	if err := run(*configPath, *checkOnly); err != nil {
		fmt.Fprintf(os.Stderr, "pricecast: %v\n", err)
		os.Exit(1)
	}
}

// run wires the server and blocks until SIGINT or SIGTERM. Scaler and model
// artifacts are loaded during wiring, so a missing or corrupt artifact fails
// here before anything listens.
func run(configPath string, checkOnly bool) error {
	cfg, err := config.LoadWithEnv(configPath)
	if err != nil {
		return err
	}

	app, err := di.InitializeApp(cfg)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	if checkOnly {
		app.Close()
		fmt.Printf("config ok: provider=%s model=%s recorder=%s\n",
			cfg.Provider.Type, cfg.Model.Backend, cfg.Recorder.Type)
		return nil
	}
	return app.Run()
}
