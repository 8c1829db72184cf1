package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/netsampler/fgmatrix/format"
	"github.com/netsampler/fgmatrix/matrix"
	"github.com/netsampler/fgmatrix/metrics"
	"github.com/netsampler/fgmatrix/pkg/fgmatrix/builder"
	"github.com/netsampler/fgmatrix/pkg/fgmatrix/config"
	"github.com/netsampler/fgmatrix/pkg/fgmatrix/httpserver"
	"github.com/netsampler/fgmatrix/producer"
	"github.com/netsampler/fgmatrix/transport"
	"github.com/netsampler/fgmatrix/utils"
)

const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitUnreadable  = 2
	shutdownTimeout = time.Second * 5
)

var (
	ErrStrict = errors.New("lines were skipped")
)

// ExitCode maps the error returned by Run to a process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, utils.ErrSource):
		return ExitUnreadable
	default:
		return ExitFailure
	}
}

// App wires and runs one fgmatrix invocation.
type App struct {
	cfg       *config.Config
	logger    *slog.Logger
	formatter format.FormatInterface
	transport *transport.Transport
	matrix    *matrix.Matrix
	producer  producer.ProducerInterface
	pipe      *utils.LinePipe
	mute      *utils.BatchMute
	server    *http.Server
	serverErr chan error
	running   atomic.Bool
}

// New constructs a new App from config.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	formatter, err := builder.BuildFormatter(cfg.Format)
	if err != nil {
		return nil, err
	}
	transporter, err := builder.BuildTransport(cfg.Transport)
	if err != nil {
		return nil, err
	}

	m := matrix.NewMatrix(cfg.CountBytes)
	p := builder.BuildProducer(m)

	app := &App{
		cfg:       cfg,
		logger:    logger,
		formatter: formatter,
		transport: transporter,
		matrix:    m,
		producer:  p,
		pipe:      builder.BuildPipe(cfg, p),
		mute:      utils.NewBatchMute(cfg.ErrInt, cfg.ErrCnt),
		serverErr: make(chan error, 1),
	}

	if cfg.Addr != "" {
		app.server = &http.Server{
			Addr:              cfg.Addr,
			Handler:           httpserver.New(app.running.Load),
			ReadHeaderTimeout: time.Second * 5,
		}
	}

	return app, nil
}

// Matrix returns the matrix the app folds into.
func (a *App) Matrix() *matrix.Matrix {
	return a.matrix
}

// Start starts the HTTP server when an address is configured.
func (a *App) Start() error {
	a.running.Store(true)
	if a.server == nil {
		return nil
	}

	go func() {
		err := a.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.serverErr <- err
			return
		}
		a.logger.With(slog.String("http", a.cfg.Addr)).Info("closed HTTP server")
	}()

	return nil
}

// Process folds every line of r into the matrix and logs what was skipped.
func (a *App) Process(ctx context.Context, r io.Reader) (*utils.Result, error) {
	res, err := a.pipe.Run(ctx, r)
	if err != nil {
		return nil, err
	}
	a.report(res)
	return res, nil
}

func (a *App) report(res *utils.Result) {
	for _, d := range res.Diagnostics {
		if a.cfg.Verbose {
			a.logger.Debug("skipped line",
				slog.Int("line", d.Line),
				slog.String("kind", metrics.ErrorKind(d.Err)),
				slog.String("error", d.Err.Error()))
			continue
		}
		ok, muted := a.mute.Allow()
		if muted > 0 {
			a.logger.Warn("too many skipped lines, muted", slog.Int("count", muted))
		}
		if ok {
			a.logger.Warn("skipped line",
				slog.Int("line", d.Line),
				slog.String("error", d.Err.Error()))
		}
	}
	if muted := a.mute.Flush(); muted > 0 {
		a.logger.Warn("too many skipped lines, muted", slog.Int("count", muted))
	}

	a.logger.Info("log processed",
		slog.Int("lines", res.Lines),
		slog.Int("records", res.Records),
		slog.Int("skipped", res.Skipped()),
		slog.Int("entries", a.matrix.Len()))
	if res.AllMalformed() {
		a.logger.Warn("no record could be folded, every non-blank line was skipped")
	}
}

// Emit renders the current matrix and sends it through the transport.
func (a *App) Emit() error {
	key, data, err := a.formatter.Format(a.matrix.Snapshot())
	if err != nil {
		return err
	}
	if err := a.transport.Send(key, data); err != nil {
		return err
	}
	metrics.EmitBytes.WithLabelValues(a.cfg.Format, a.cfg.Transport).Add(float64(len(data)))
	return nil
}

// Run reads the configured source, emits the matrix, then shuts down.
func (a *App) Run(ctx context.Context) error {
	src, err := utils.OpenSource(a.cfg.File)
	if err != nil {
		return err
	}
	defer src.Close()

	if err := a.Start(); err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		a.Shutdown(shutdownCtx)
		cancel()
	}()

	res, err := a.run(ctx, src)
	if err != nil {
		return err
	}

	if a.cfg.MetricsPush != "" {
		if err := metrics.Push(a.cfg.MetricsPush, a.cfg.MetricsJob); err != nil {
			a.logger.Error("error pushing metrics", slog.String("error", err.Error()))
		}
	}

	if a.cfg.Strict && res.Skipped() > 0 {
		return fmt.Errorf("%w: %d of %d lines", ErrStrict, res.Skipped(), res.Lines)
	}
	return nil
}

func (a *App) run(ctx context.Context, r io.Reader) (*utils.Result, error) {
	tm := metrics.TimeMeasureNow()
	res, err := a.Process(ctx, r)
	tm.MeasureStage("process")
	if err != nil {
		return nil, err
	}

	select {
	case err := <-a.serverErr:
		return nil, err
	default:
	}

	tm = metrics.TimeMeasureNow()
	err = a.Emit()
	tm.MeasureStage("emit")
	return res, err
}

// Shutdown closes the producer, the transport and the HTTP server.
func (a *App) Shutdown(ctx context.Context) {
	a.running.Store(false)

	a.producer.Close()
	if err := a.transport.Close(); err != nil {
		a.logger.Error("error closing transport", slog.String("error", err.Error()))
	}
	a.logger.Debug("transporter closed")

	if a.server == nil {
		return
	}
	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.Error("error shutting-down HTTP server", slog.String("error", err.Error()))
	}
}
