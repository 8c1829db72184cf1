package nats

import (
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/netsampler/fgmatrix/transport"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPublisher struct {
	msgs       []*nats.Msg
	publishErr error
	drained    bool
}

func (p *testPublisher) PublishMsg(msg *nats.Msg) error {
	if p.publishErr != nil {
		return p.publishErr
	}
	p.msgs = append(p.msgs, msg)
	return nil
}

func (p *testPublisher) FlushTimeout(timeout time.Duration) error {
	return nil
}

func (p *testPublisher) Drain() error {
	p.drained = true
	return nil
}

func TestNatsSend(t *testing.T) {
	pub := &testPublisher{}
	d := &Driver{subject: "fgmatrix.test", conn: pub}

	require.NoError(t, d.Send([]byte("k"), []byte("payload")))
	require.Len(t, pub.msgs, 1)
	assert.Equal(t, "fgmatrix.test", pub.msgs[0].Subject)
	assert.Equal(t, "payload", string(pub.msgs[0].Data))
	assert.Equal(t, "k", pub.msgs[0].Header.Get("Fgmatrix-Key"))

	require.NoError(t, d.Close())
	assert.True(t, pub.drained)
	require.NoError(t, d.Close())
}

func TestNatsSendErrors(t *testing.T) {
	d := &Driver{subject: "fgmatrix.test"}
	err := d.Send(nil, []byte("payload"))
	assert.True(t, errors.Is(err, transport.ErrTransport))

	failure := errors.New("connection closed")
	d.conn = &testPublisher{publishErr: failure}
	err = d.Send(nil, []byte("payload"))
	assert.True(t, errors.Is(err, failure))
	assert.True(t, errors.Is(err, transport.ErrTransport))
}

func TestNatsInitTLSPair(t *testing.T) {
	d := &Driver{natsURL: nats.DefaultURL, tlsCertFile: "client.crt"}
	err := d.Init()
	assert.True(t, errors.Is(err, transport.ErrTransport))
}
