package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pointlessguy/Haptic-FOC-driven-Tactile-Knob/internal/app"
	"github.com/pointlessguy/Haptic-FOC-driven-Tactile-Knob/internal/config"
	"github.com/pointlessguy/Haptic-FOC-driven-Tactile-Knob/internal/logging"
)

func main() {
	configPath := flag.String("config", "knob_config.txt", "path to the configuration file")
	flag.Parse()

	log.Println("starting haptic knob OLED display")

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Get()

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to set up logging: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunDisplay(ctx, cfg, logger); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
