package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	_ "github.com/netsampler/fgmatrix/format/json"
	_ "github.com/netsampler/fgmatrix/format/text"
	"github.com/netsampler/fgmatrix/pkg/fgmatrix/config"
	"github.com/netsampler/fgmatrix/transport"
	"github.com/netsampler/fgmatrix/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureDriver struct {
	lock   sync.Mutex
	sent   [][]byte
	closed bool
}

func (d *captureDriver) Prepare() error {
	return nil
}

func (d *captureDriver) Init() error {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.sent = nil
	d.closed = false
	return nil
}

func (d *captureDriver) Close() error {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.closed = true
	return nil
}

func (d *captureDriver) Send(key, data []byte) error {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.sent = append(d.sent, append([]byte(nil), data...))
	return nil
}

func (d *captureDriver) output() string {
	d.lock.Lock()
	defer d.lock.Unlock()
	var out []string
	for _, s := range d.sent {
		out = append(out, string(s))
	}
	return strings.Join(out, "")
}

var capture = &captureDriver{}

func init() {
	transport.RegisterTransportDriver("apptest", capture)
}

const trafficLog = `date=2023-05-01 time=10:00:00 devname="fw 1" srcip=10.0.0.1 dstip=8.8.8.8 dstport=53 proto=17 sentbyte=60 rcvdbyte=120
date=2023-05-01 time=10:00:01 devname="fw 1" srcip=10.0.0.1 dstip=8.8.8.8 dstport=53 proto=17 sentbyte=64 rcvdbyte=128
date=2023-05-01 time=10:00:02 devname="fw 1" srcip=10.0.0.1 dstip=1.1.1.1 proto=6
date=2023-05-01 time=10:00:03 devname="fw 1" srcip=10.0.0.2 dstip=1.1.1.1 dstport=443 proto=6 sentbyte=500 rcvdbyte=9000
`

func testConfig(t *testing.T, input string) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "traffic.log")
	require.NoError(t, os.WriteFile(path, []byte(input), 0o600))

	cfg := config.Defaults()
	cfg.File = path
	cfg.Transport = "apptest"
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) (*App, *bytes.Buffer) {
	t.Helper()
	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	a, err := New(cfg, logger)
	require.NoError(t, err)
	return a, logs
}

func TestRunText(t *testing.T) {
	cfg := testConfig(t, trafficLog)
	a, logs := newTestApp(t, cfg)

	require.NoError(t, a.Run(context.Background()))
	assert.Equal(t, "10.0.0.1\n\t8.8.8.8\n\t\t53\n\t\t\tUDP\n\t\t\t\t2\n"+
		"10.0.0.2\n\t1.1.1.1\n\t\t443\n\t\t\tTCP\n\t\t\t\t1\n", capture.output())
	assert.True(t, capture.closed)
	assert.Contains(t, logs.String(), "skipped line")
	assert.Contains(t, logs.String(), "line=3")
}

func TestRunCountBytes(t *testing.T) {
	cfg := testConfig(t, trafficLog)
	cfg.CountBytes = true
	cfg.Format = "json"
	a, _ := newTestApp(t, cfg)

	require.NoError(t, a.Run(context.Background()))
	assert.JSONEq(t, `{
		"10.0.0.1": {"8.8.8.8": {"53": {"UDP": {"count": 2, "sentbytes": 124, "rcvdbytes": 248}}}},
		"10.0.0.2": {"1.1.1.1": {"443": {"TCP": {"count": 1, "sentbytes": 500, "rcvdbytes": 9000}}}}
	}`, capture.output())
}

func TestRunWorkers(t *testing.T) {
	var lines []string
	for i := 0; i < 500; i++ {
		lines = append(lines, trafficLog)
	}
	input := strings.Join(lines, "")

	var outputs []string
	for _, workers := range []int{1, 8} {
		cfg := testConfig(t, input)
		cfg.Workers = workers
		a, _ := newTestApp(t, cfg)
		require.NoError(t, a.Run(context.Background()))
		outputs = append(outputs, capture.output())
	}
	assert.Equal(t, outputs[0], outputs[1])
	assert.Contains(t, outputs[0], "\t\t\t\t1000\n")
}

func TestRunStrict(t *testing.T) {
	cfg := testConfig(t, trafficLog)
	cfg.Strict = true
	a, _ := newTestApp(t, cfg)

	err := a.Run(context.Background())
	assert.ErrorIs(t, err, ErrStrict)
	assert.Equal(t, ExitFailure, ExitCode(err))
	assert.NotEmpty(t, capture.output())
}

func TestRunMuted(t *testing.T) {
	cfg := testConfig(t, strings.Repeat("garbage\n", 20))
	cfg.ErrCnt = 3
	a, logs := newTestApp(t, cfg)

	require.NoError(t, a.Run(context.Background()))
	assert.Equal(t, 3, strings.Count(logs.String(), "msg=\"skipped line\""))
	assert.Contains(t, logs.String(), "count=17")
	assert.Contains(t, logs.String(), "every non-blank line was skipped")
}

func TestRunMissingFile(t *testing.T) {
	cfg := testConfig(t, "")
	cfg.File = filepath.Join(t.TempDir(), "absent.log")
	a, _ := newTestApp(t, cfg)

	err := a.Run(context.Background())
	assert.ErrorIs(t, err, utils.ErrSource)
	assert.Equal(t, ExitUnreadable, ExitCode(err))
}

func TestRunCancelled(t *testing.T) {
	cfg := testConfig(t, trafficLog)
	a, _ := newTestApp(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := a.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, ExitFailure, ExitCode(err))
}

func TestProcessReader(t *testing.T) {
	cfg := testConfig(t, "")
	a, _ := newTestApp(t, cfg)

	res, err := a.Process(context.Background(), strings.NewReader(trafficLog))
	require.NoError(t, err)
	assert.Equal(t, 3, res.Records)
	assert.Equal(t, 2, a.Matrix().Len())
	a.Shutdown(context.Background())
}

func TestNewUnknownDrivers(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := config.Defaults()
	cfg.Format = "protobuf"
	_, err := New(cfg, logger)
	assert.Error(t, err)

	cfg = config.Defaults()
	cfg.Transport = "carrier-pigeon"
	_, err = New(cfg, logger)
	assert.True(t, errors.Is(err, transport.ErrTransport))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitOK, ExitCode(nil))
	assert.Equal(t, ExitUnreadable, ExitCode(&utils.ReadError{Line: 4, Err: io.ErrUnexpectedEOF}))
	assert.Equal(t, ExitFailure, ExitCode(errors.New("transport down")))
}

func TestRunLongLineSkipped(t *testing.T) {
	cfg := testConfig(t, "srcip=10.0.0.1 dstip=8.8.8.8 dstport=53 proto=17 msg=\""+strings.Repeat("x", 300)+"\"\n"+trafficLog)
	cfg.MaxLine = 256
	a, logs := newTestApp(t, cfg)

	require.NoError(t, a.Run(context.Background()))
	assert.Contains(t, capture.output(), "\t\t\t\t2\n")
	assert.Contains(t, logs.String(), "line too long")
}
