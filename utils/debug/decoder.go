package debug

import (
	"runtime/debug"

	"github.com/netsampler/fgmatrix/decoders/fortigate"
	"github.com/netsampler/fgmatrix/utils"
)

func PanicDecoderWrapper(wrapped utils.DecoderFunc) utils.DecoderFunc {
	return func(lineNo int, line string) (rec fortigate.Record, err error) {
		defer func() {
			if pErr := recover(); pErr != nil {
				rec = nil
				err = newPanicError(lineNo, line, pErr, debug.Stack())
			}
		}()
		return wrapped(lineNo, line)
	}
}
