package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dominicporter/software-for-climate-iot/pkg/climatenode"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	var err error

	switch cmd {
	case "run":
		err = runCommand(os.Args[2:])
	case "validate":
		err = validateCommand(os.Args[2:])
	case "stats":
		err = statsCommand(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		printUsage()
		err = fmt.Errorf("unknown command %q", cmd)
	}

	if err != nil {
		log.Fatalf("climate-node %s: %v", cmd, err)
	}
}

func runCommand(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	cfgPath := fs.String("config", "./data/config.yaml", "Path to node configuration file")
	fromEnv := fs.Bool("env", false, "Build configuration from environment variables only")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var (
		cfg *climatenode.Config
		err error
	)
	if *fromEnv {
		cfg, err = climatenode.ConfigFromEnv()
	} else {
		cfg, err = climatenode.LoadConfig(*cfgPath)
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	node, err := climatenode.NewNode(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = node.Run(ctx)
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return nil
	case errors.Is(err, climatenode.ErrDeepSleep):
		// Clean exit: the wake alarm is armed and the supervisor restarts
		// the process at wake time.
		log.Printf("deep sleeping until wake alarm")
		return nil
	case errors.Is(err, climatenode.ErrResetRequested):
		log.Printf("device reset requested after persistent upload outages")
		os.Exit(3)
		return nil
	default:
		return err
	}
}

func validateCommand(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	cfgPath := fs.String("config", "./data/config.yaml", "Path to configuration file to validate")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if _, err := climatenode.LoadConfig(*cfgPath); err != nil {
		return err
	}
	fmt.Printf("config %s looks good\n", *cfgPath)
	return nil
}

func statsCommand(args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	url := fs.String("url", "http://localhost:9100/metrics", "Prometheus metrics endpoint")
	interval := fs.Duration("interval", 2*time.Second, "Refresh interval")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	fmt.Printf("Streaming metrics from %s (Ctrl+C to stop)\n", *url)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := printMetricsSnapshot(*url); err != nil {
				fmt.Fprintf(os.Stderr, "stats error: %v\n", err)
			}
		}
	}
}

func printMetricsSnapshot(url string) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	targets := map[string]float64{
		"climate_samples_uploaded_total": 0,
		"climate_upload_failures_total":  0,
		"climate_spool_entries":          0,
		"climate_battery_percent":        0,
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}
		for key := range targets {
			if strings.HasPrefix(line, key+" ") {
				var value float64
				if _, err := fmt.Sscanf(line, key+" %f", &value); err == nil {
					targets[key] = value
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	fmt.Printf("[%s] uploaded=%.0f failures=%.0f spooled=%.0f battery=%.0f%%\n",
		time.Now().Format(time.RFC3339),
		targets["climate_samples_uploaded_total"],
		targets["climate_upload_failures_total"],
		targets["climate_spool_entries"],
		targets["climate_battery_percent"],
	)
	return nil
}

func printUsage() {
	fmt.Printf(`climate-node CLI

Usage:
  climate-node <command> [flags]

Commands:
  run        Start the sensor node using the provided config
  validate   Load and validate a config file without starting the node
  stats      Poll the Prometheus metrics endpoint and print live counters

Examples:
  climate-node run -config ./data/config.yaml
  climate-node run -env
  climate-node validate -config ./data/config.yaml
  climate-node stats -url http://localhost:9100/metrics -interval 1s
`)
}
