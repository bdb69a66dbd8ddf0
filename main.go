package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"

	"picasso/convert"
	"picasso/info"
	"picasso/internal/logging"
	"picasso/parallel"
	"picasso/render"
)

type cli struct {
	LogLevel string `help:"Log level" enum:"trace,debug,info,warn,error,fatal" default:"info"`
	Workers  int    `help:"Number of files processed in parallel. 0 uses all CPUs" default:"0"`

	Info    info.CLICmd    `cmd:"" help:"Show format, size and orientation of images, and BMP headers"`
	Convert convert.CLICmd `cmd:"" help:"Convert, resize and repalette every image in a folder"`
	Render  render.CLICmd  `cmd:"" help:"Draw a YAML scene and save the frame"`
}

func newLogger(level string) *slog.Logger {
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		slog.Warn("falling back to info level", "error", err)
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:       lvl,
		ReplaceAttr: logging.ReplaceLevel,
	}))
}

func main() {
	var c cli
	kctx := kong.Parse(&c,
		kong.Name("picasso"),
		kong.Description("Decode, convert and draw raster images."),
		kong.UsageOnError(),
	)

	logger := newLogger(c.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	pool := parallel.Start(ctx, c.Workers)
	defer pool.Wait()

	kctx.BindTo(ctx, (*context.Context)(nil))
	if err := kctx.Run(logger, pool); err != nil {
		logger.Log(ctx, logging.LevelFatal, "command failed", "command", kctx.Command(), "error", err)
		pool.Wait()
		stop()
		os.Exit(1)
	}
}
