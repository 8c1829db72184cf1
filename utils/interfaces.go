package utils

import (
	"github.com/netsampler/fgmatrix/decoders/fortigate"
)

// DecoderFunc turns one numbered line into a record.
type DecoderFunc func(lineNo int, line string) (fortigate.Record, error)
