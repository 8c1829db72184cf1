package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	// various formatters
	_ "github.com/netsampler/fgmatrix/format/csv"
	_ "github.com/netsampler/fgmatrix/format/json"
	_ "github.com/netsampler/fgmatrix/format/text"
	_ "github.com/netsampler/fgmatrix/format/yaml"

	// various transports
	_ "github.com/netsampler/fgmatrix/transport/file"
	_ "github.com/netsampler/fgmatrix/transport/kafka"
	_ "github.com/netsampler/fgmatrix/transport/nats"
	_ "github.com/netsampler/fgmatrix/transport/redis"

	"github.com/netsampler/fgmatrix/pkg/fgmatrix/app"
	"github.com/netsampler/fgmatrix/pkg/fgmatrix/config"
	"github.com/netsampler/fgmatrix/pkg/fgmatrix/logging"
)

var (
	version    = ""
	buildinfos = ""
	AppVersion = "fgmatrix " + version + " " + buildinfos
)

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "Usage: %s -f <logfile> [options]\n\n", os.Args[0])
	fmt.Fprintln(out, "Builds a communication matrix (srcip, dstip, dstport, proto) from a FortiGate traffic log.")
	fmt.Fprintln(out)
	flag.PrintDefaults()
}

func main() {
	cfg := config.BindFlags(flag.CommandLine)
	flag.Usage = usage
	flag.Parse()

	if err := cfg.Resolve(flag.CommandLine); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(app.ExitFailure)
	}

	if cfg.Version {
		fmt.Println(AppVersion)
		os.Exit(app.ExitOK)
	}

	if cfg.File == "" {
		flag.Usage()
		os.Exit(app.ExitUnreadable)
	}

	logger, err := logging.NewLogger(cfg.EffectiveLogLevel(), cfg.LogFmt)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(app.ExitFailure)
	}
	slog.SetDefault(logger)

	a, err := app.New(cfg, logger)
	if err != nil {
		slog.Error("error initializing", slog.String("error", err.Error()))
		os.Exit(app.ExitFailure)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = a.Run(ctx)
	stop()
	if err != nil {
		slog.Error("fgmatrix failed", slog.String("error", err.Error()))
	}
	os.Exit(app.ExitCode(err))
}
