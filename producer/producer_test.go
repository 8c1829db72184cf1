package producer

import (
	"errors"
	"testing"

	"github.com/netsampler/fgmatrix/decoders/fortigate"
	"github.com/netsampler/fgmatrix/matrix"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDecode(t *testing.T, line string) fortigate.Record {
	t.Helper()
	rec, err := fortigate.Decode(line)
	require.NoError(t, err)
	return rec
}

func TestFoldCount(t *testing.T) {
	m := matrix.NewMatrix(false)
	agg := NewAggregator(m)
	for i := 1; i <= 2; i++ {
		require.NoError(t, agg.Fold(i, mustDecode(t, "srcip=10.0.0.1 dstip=8.8.8.8 dstport=53 proto=17")))
	}

	assert.Equal(t, 1, m.Len())
	e, ok := m.Get(matrix.Key{SrcIP: "10.0.0.1", DstIP: "8.8.8.8", DstPort: "53", Proto: matrix.TranslateProto(17)})
	require.True(t, ok)
	assert.Equal(t, uint64(2), e.Count)
	assert.Same(t, m, agg.Matrix())
}

func TestFoldBytes(t *testing.T) {
	m := matrix.NewMatrix(true)
	agg := NewAggregator(m)
	require.NoError(t, agg.Fold(1, mustDecode(t, "srcip=a dstip=b dstport=80 proto=6 sentbyte=10 rcvdbyte=20")))

	e, ok := m.Get(matrix.Key{SrcIP: "a", DstIP: "b", DstPort: "80", Proto: matrix.TranslateProto(6)})
	require.True(t, ok)
	assert.Equal(t, matrix.Entry{Count: 1, SentBytes: 10, RcvdBytes: 20}, e)
}

func TestFoldBytesAccumulate(t *testing.T) {
	m := matrix.NewMatrix(true)
	agg := NewAggregator(m)
	require.NoError(t, agg.Fold(1, mustDecode(t, "srcip=a dstip=b dstport=80 proto=6 sentbyte=100 rcvdbyte=1")))
	require.NoError(t, agg.Fold(2, mustDecode(t, "srcip=a dstip=b dstport=80 proto=6 sentbyte=50 rcvdbyte=1")))

	e, _ := m.Get(matrix.Key{SrcIP: "a", DstIP: "b", DstPort: "80", Proto: matrix.TranslateProto(6)})
	assert.Equal(t, uint64(2), e.Count)
	assert.Equal(t, uint64(150), e.SentBytes)
	assert.Equal(t, uint64(2), e.RcvdBytes)
}

func TestFoldIgnoresBytesWhenDisabled(t *testing.T) {
	m := matrix.NewMatrix(false)
	agg := NewAggregator(m)
	// byte fields are neither required nor parsed
	require.NoError(t, agg.Fold(1, mustDecode(t, "srcip=a dstip=b dstport=80 proto=6 sentbyte=oops")))
	e, _ := m.Get(matrix.Key{SrcIP: "a", DstIP: "b", DstPort: "80", Proto: matrix.TranslateProto(6)})
	assert.Equal(t, matrix.Entry{Count: 1}, e)
}

func TestFoldMissingField(t *testing.T) {
	cases := []struct {
		line       string
		countBytes bool
		field      string
	}{
		{"dstip=b dstport=80 proto=6", false, "srcip"},
		{"srcip=a dstport=80 proto=6", false, "dstip"},
		{"srcip=a dstip=b proto=6", false, "dstport"},
		{"srcip=a dstip=b dstport=80", false, "proto"},
		{"srcip=a dstip=b dstport=80 proto=6 rcvdbyte=1", true, "sentbyte"},
		{"srcip=a dstip=b dstport=80 proto=6 sentbyte=1", true, "rcvdbyte"},
	}
	for _, c := range cases {
		t.Run(c.field, func(t *testing.T) {
			m := matrix.NewMatrix(c.countBytes)
			err := NewAggregator(m).Fold(3, mustDecode(t, c.line))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMissingField))

			var mErr *MissingFieldError
			require.True(t, errors.As(err, &mErr))
			assert.Equal(t, c.field, mErr.Field)
			assert.Equal(t, 3, mErr.Line)
			assert.Equal(t, 0, m.Len())
		})
	}
}

func TestFoldInvalidProtocol(t *testing.T) {
	m := matrix.NewMatrix(false)
	err := NewAggregator(m).Fold(4, mustDecode(t, "srcip=a dstip=b dstport=80 proto=tcp"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, matrix.ErrInvalidProtocol))
	assert.Contains(t, err.Error(), "line 4")
	assert.Equal(t, 0, m.Len())
}

func TestFoldInvalidBytes(t *testing.T) {
	m := matrix.NewMatrix(true)
	err := NewAggregator(m).Fold(5, mustDecode(t, "srcip=a dstip=b dstport=80 proto=6 sentbyte=10 rcvdbyte=-1"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidByteValue))

	var bErr *InvalidByteValueError
	require.True(t, errors.As(err, &bErr))
	assert.Equal(t, "rcvdbyte", bErr.Field)
	assert.Equal(t, "-1", bErr.Value)
	assert.Equal(t, 5, bErr.Line)
	assert.Equal(t, 0, m.Len())
}

func TestProduceMessage(t *testing.T) {
	msg, err := ProduceMessage(1, mustDecode(t, `srcip=a dstip=b dstport=500 proto=50 sentbyte=1 rcvdbyte=2 msg="ignored field"`), true)
	require.NoError(t, err)
	assert.Equal(t, "50", msg.Key.Proto.String())
	assert.Equal(t, uint64(1), msg.SentBytes)
	assert.Equal(t, uint64(2), msg.RcvdBytes)
}
