//go:build !tinygo

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"

	"bgmatrix/app"
	"bgmatrix/hal"
	"bgmatrix/internal/buildinfo"
	"bgmatrix/internal/config"
	"bgmatrix/internal/units"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	var (
		cfgPath     string
		unitFlag    string
		metricsAddr string
		showVersion bool
		debug       bool
		headless    hal.HeadlessConfig
	)
	flag.StringVar(&cfgPath, "config", "bgmatrix.yaml", "YAML config file (missing file = defaults).")
	flag.StringVar(&unitFlag, "units", "", "Override display units: mgdl or mmol.")
	flag.StringVar(&metricsAddr, "metrics", "", "Serve Prometheus metrics on this address (e.g. :9100).")
	flag.BoolVar(&debug, "debug", false, "Log one diagnostic line per render.")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit.")
	flag.BoolVar(&headless.Enabled, "headless", false, "Run without a window.")
	flag.IntVar(&headless.Hz, "hz", 30, "Tick rate in headless mode.")
	flag.Uint64Var(&headless.Ticks, "ticks", 0, "Stop after N ticks in headless mode (0 = run forever).")
	flag.Parse()

	if showVersion {
		fmt.Println(buildinfo.String())
		return
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if unitFlag != "" {
		u, err := units.ParseUnit(unitFlag)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		cfg.Units = u
	}
	if metricsAddr != "" {
		cfg.MetricsAddr = metricsAddr
	}
	if debug {
		cfg.Debug = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr)
	}

	host := hal.HostConfig{Width: cfg.Width, Height: cfg.Height, Scale: cfg.Scale}
	newApp := func(h hal.HAL) func() error {
		return app.New(ctx, h, cfg)
	}

	if headless.Enabled {
		if err := hal.RunHeadless(ctx, host, newApp, headless); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := hal.RunWindow(host, newApp); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		fmt.Fprintf(os.Stderr, "metrics: %v\n", err)
	}
}
