package utils

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLine = "srcip=10.0.0.1 dstip=8.8.8.8 dstport=53 proto=17\n"

func TestSourcePlain(t *testing.T) {
	rc, err := NewSourceReader("plain", io.NopCloser(bytes.NewBufferString(sampleLine)))
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, sampleLine, string(data))
	require.NoError(t, rc.Close())
}

func TestSourceGzip(t *testing.T) {
	buf := &bytes.Buffer{}
	zw := gzip.NewWriter(buf)
	_, err := zw.Write([]byte(sampleLine))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	path := filepath.Join(t.TempDir(), "traffic.log.gz")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	rc, err := OpenSource(path)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, sampleLine, string(data))
}

func TestSourceShort(t *testing.T) {
	for _, in := range []string{"", "x"} {
		rc, err := NewSourceReader("short", io.NopCloser(bytes.NewBufferString(in)))
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, in, string(data))
	}
}

func TestSourceBrokenGzip(t *testing.T) {
	_, err := NewSourceReader("broken", io.NopCloser(bytes.NewReader([]byte{0x1f, 0x8b, 0x00})))
	assert.ErrorIs(t, err, ErrSource)
}

func TestSourceMissing(t *testing.T) {
	_, err := OpenSource(filepath.Join(t.TempDir(), "missing.log"))
	assert.ErrorIs(t, err, ErrSource)
	assert.ErrorIs(t, err, os.ErrNotExist)

	var serr *SourceError
	require.ErrorAs(t, err, &serr)
	assert.Contains(t, serr.Path, "missing.log")
}
