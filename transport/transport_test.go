package transport

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testTransportDriver struct {
	sent     [][]byte
	sendErr  error
	closeErr error
}

func (d *testTransportDriver) Prepare() error {
	return nil
}

func (d *testTransportDriver) Init() error {
	return nil
}

func (d *testTransportDriver) Close() error {
	return d.closeErr
}

func (d *testTransportDriver) Send(key, data []byte) error {
	if d.sendErr != nil {
		return d.sendErr
	}
	d.sent = append(d.sent, data)
	return nil
}

func TestTransportSend(t *testing.T) {
	driver := &testTransportDriver{}
	name := fmt.Sprintf("test-transport-%d", time.Now().UnixNano())
	RegisterTransportDriver(name, driver)
	assert.Contains(t, GetTransports(), name)

	tr, err := FindTransport(name)
	require.NoError(t, err)
	assert.Equal(t, name, tr.Name())
	require.NoError(t, tr.Send(nil, []byte("payload")))
	require.NoError(t, tr.Close())
	assert.Equal(t, [][]byte{[]byte("payload")}, driver.sent)
}

func TestTransportErrors(t *testing.T) {
	failure := errors.New("unreachable")
	driver := &testTransportDriver{sendErr: failure, closeErr: failure}
	name := fmt.Sprintf("test-transport-err-%d", time.Now().UnixNano())
	RegisterTransportDriver(name, driver)

	tr, err := FindTransport(name)
	require.NoError(t, err)

	err = tr.Send(nil, []byte("payload"))
	assert.True(t, errors.Is(err, ErrTransport))
	assert.True(t, errors.Is(err, failure))
	var dErr *DriverTransportError
	require.True(t, errors.As(err, &dErr))
	assert.Equal(t, name, dErr.Driver)

	assert.True(t, errors.Is(tr.Close(), ErrTransport))
}

func TestFindTransportUnknown(t *testing.T) {
	_, err := FindTransport("does-not-exist")
	assert.True(t, errors.Is(err, ErrTransport))
}
