package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/flightaware/tilecover/pkg/logging"
	"github.com/flightaware/tilecover/pkg/server"

	"github.com/alexflint/go-arg"
	"github.com/joho/godotenv"
)

type Args struct {
	Config string `arg:"-c,--config,env:TILECOVER_CONFIG" help:"YAML config file, built-in limits are used if empty"`
	Addr   string `arg:"-a,--addr,env:TILECOVER_ADDR" help:"listen address, overrides the config file"`
	Debug  bool   `arg:"--debug" help:"debug logging and access log"`
}

func (Args) Description() string {
	return "HTTP service computing the tiles covering GeoJSON geometries"
}

func main() {
	_ = godotenv.Load(".env")

	var args Args
	arg.MustParse(&args)
	logger := logging.Setup(args.Debug)

	cfg := server.DefaultConfig()
	if args.Config != "" {
		var err error
		if cfg, err = server.LoadConfig(args.Config); err != nil {
			logger.Error("invalid config", "file", args.Config, "error", err)
			os.Exit(1)
		}
	}
	if args.Addr != "" {
		cfg.Addr = args.Addr
	}
	if args.Debug {
		cfg.AccessLog = true
	}

	app := server.New(cfg, logger)
	go func() {
		logger.Info("listening on " + cfg.Addr)
		if err := app.Listen(cfg.Addr); err != nil {
			logger.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc

	logger.Info("shutting down")
	if err := app.Shutdown(); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}
