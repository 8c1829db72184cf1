package debug

import (
	"runtime/debug"

	"github.com/netsampler/fgmatrix/decoders/fortigate"
	"github.com/netsampler/fgmatrix/producer"
)

// PanicProducerWrapper wraps a producer to recover panics during Fold.
type PanicProducerWrapper struct {
	wrapped producer.ProducerInterface
}

// Fold calls the wrapped producer and converts panics into errors.
func (p *PanicProducerWrapper) Fold(lineNo int, rec fortigate.Record) (err error) {
	defer func() {
		if pErr := recover(); pErr != nil {
			err = newPanicError(lineNo, rec, pErr, debug.Stack())
		}
	}()
	return p.wrapped.Fold(lineNo, rec)
}

// Close forwards Close to the wrapped producer.
func (p *PanicProducerWrapper) Close() {
	p.wrapped.Close()
}

// WrapPanicProducer wraps a producer to recover panics as errors.
func WrapPanicProducer(wrapped producer.ProducerInterface) producer.ProducerInterface {
	return &PanicProducerWrapper{
		wrapped: wrapped,
	}
}
