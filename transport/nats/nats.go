// Package nats publishes rendered matrices on a NATS subject.
package nats

import (
	"crypto/tls"
	"flag"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/netsampler/fgmatrix/transport"
)

// Publisher is the part of a NATS connection used by the driver.
type Publisher interface {
	PublishMsg(msg *nats.Msg) error
	FlushTimeout(timeout time.Duration) error
	Drain() error
}

type Driver struct {
	natsURL      string
	subject      string
	name         string
	tlsCertFile  string
	tlsKeyFile   string
	tlsCAFile    string
	tlsInsecure  bool
	flushTimeout time.Duration

	conn Publisher
}

// Prepare sets up command-line flags for the NATS transport.
func (d *Driver) Prepare() error {
	flag.StringVar(&d.natsURL, "transport.nats.url", nats.DefaultURL, "NATS server URL")
	flag.StringVar(&d.subject, "transport.nats.subject", "fgmatrix.matrix", "NATS subject for publishing matrices")
	flag.StringVar(&d.name, "transport.nats.name", "fgmatrix", "NATS connection name")
	flag.StringVar(&d.tlsCertFile, "transport.nats.tls.cert", "", "NATS client certificate file")
	flag.StringVar(&d.tlsKeyFile, "transport.nats.tls.key", "", "NATS client key file")
	flag.StringVar(&d.tlsCAFile, "transport.nats.tls.ca", "", "NATS CA certificate file")
	flag.BoolVar(&d.tlsInsecure, "transport.nats.tls.insecure", false, "Skip TLS verification for NATS")
	flag.DurationVar(&d.flushTimeout, "transport.nats.flush.timeout", time.Second*5, "Time to wait for the server to acknowledge a publish")

	return nil
}

func (d *Driver) options() []nats.Option {
	opts := []nats.Option{
		nats.Name(d.name),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			slog.Error("NATS error", slog.String("error", err.Error()))
		}),
	}
	if d.tlsCertFile != "" && d.tlsKeyFile != "" {
		opts = append(opts, nats.ClientCert(d.tlsCertFile, d.tlsKeyFile))
	}
	if d.tlsCAFile != "" {
		opts = append(opts, nats.RootCAs(d.tlsCAFile))
	}
	if d.tlsInsecure {
		opts = append(opts, nats.Secure(&tls.Config{InsecureSkipVerify: true}))
	}
	return opts
}

// Init connects to the NATS server.
func (d *Driver) Init() error {
	if (d.tlsCertFile == "") != (d.tlsKeyFile == "") {
		return &TransportError{Err: fmt.Errorf("tls.cert and tls.key must be set together")}
	}

	nc, err := nats.Connect(d.natsURL, d.options()...)
	if err != nil {
		return &TransportError{Err: fmt.Errorf("failed to connect to NATS: %w", err)}
	}
	slog.Debug("connected to NATS", slog.String("url", nc.ConnectedUrl()))
	d.conn = nc
	return nil
}

// Send publishes the payload and waits for the server to process it. The key,
// when set, is carried in the Fgmatrix-Key header.
func (d *Driver) Send(key, data []byte) error {
	if d.conn == nil {
		return &TransportError{Err: fmt.Errorf("NATS driver not initialized")}
	}

	msg := nats.NewMsg(d.subject)
	msg.Data = data
	if len(key) > 0 {
		msg.Header.Set("Fgmatrix-Key", string(key))
	}
	if err := d.conn.PublishMsg(msg); err != nil {
		return &TransportError{Err: fmt.Errorf("failed to publish message: %w", err)}
	}
	if err := d.conn.FlushTimeout(d.flushTimeout); err != nil {
		return &TransportError{Err: fmt.Errorf("failed to flush: %w", err)}
	}
	return nil
}

// Close drains the connection.
func (d *Driver) Close() error {
	if d.conn == nil {
		return nil
	}
	err := d.conn.Drain()
	d.conn = nil
	return err
}

func init() {
	d := &Driver{}
	transport.RegisterTransportDriver("nats", d)
}
