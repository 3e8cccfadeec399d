package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/dominicporter/software-for-climate-iot/pkg/climatenode"
)

func main() {
	cfg, err := climatenode.LoadConfig("../../data/config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	cfg.Sensors.Backend = "host"
	cfg.Loop.Period = 15 * time.Second

	node, err := climatenode.NewNode(cfg)
	if err != nil {
		log.Fatalf("build node: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = node.Run(ctx)
	switch {
	case err == nil, errors.Is(err, context.Canceled):
	case errors.Is(err, climatenode.ErrDeepSleep):
		log.Printf("node went to deep sleep")
	default:
		log.Fatalf("node exited: %v", err)
	}
}
