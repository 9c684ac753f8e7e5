package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/ironsheep/fern-ppm/internal/render"
	"github.com/ironsheep/fern-ppm/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

type cli struct {
	LogLevel string           `help:"Log level (debug, info, warn, error)" enum:"debug,info,warn,error" default:"info" env:"FERN_LOG_LEVEL"`
	Version  kong.VersionFlag `help:"Print version information and quit" short:"v"`

	Render   render.FernCmd     `cmd:"" help:"Render the Barnsley fern with the chaos game"`
	Gradient render.GradientCmd `cmd:"" help:"Write the red test gradient"`
	Serve    serveCmd           `cmd:"" help:"Serve render and PPM inspection tools as JSON-RPC over stdin/stdout"`
}

type serveCmd struct{}

func (c *serveCmd) Run(logger *slog.Logger) error {
	logger.Debug("starting server", "version", Version, "built", BuildTime, "commit", GitCommit)
	return server.New(logger, Version).Run()
}

// newLogger logs to stderr; stdout carries images and the JSON-RPC stream.
func newLogger(level string) *slog.Logger {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}

func main() {
	var c cli
	kctx := kong.Parse(&c,
		kong.Name("fern"),
		kong.Description("Chaos-game fractal renderer with a binary PPM writer."),
		kong.UsageOnError(),
		kong.Vars{"version": fmt.Sprintf("fern %s (built %s, commit %s)", Version, BuildTime, GitCommit)},
	)

	logger := newLogger(c.LogLevel)
	slog.SetDefault(logger)

	if err := kctx.Run(logger); err != nil {
		logger.Error("command failed", "command", kctx.Command(), "error", err)
		os.Exit(1)
	}
}
