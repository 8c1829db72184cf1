package metrics

import (
	"time"

	"github.com/netsampler/fgmatrix/decoders/fortigate"
	"github.com/netsampler/fgmatrix/matrix"
	"github.com/netsampler/fgmatrix/producer"

	"github.com/prometheus/client_golang/prometheus"
)

type PromProducerWrapper struct {
	wrapped producer.ProducerInterface
	matrix  *matrix.Matrix
}

func (p *PromProducerWrapper) Fold(lineNo int, rec fortigate.Record) error {
	timeTrackStart := time.Now().UTC()
	err := p.wrapped.Fold(lineNo, rec)
	ProducerTime.Observe(float64(time.Since(timeTrackStart).Nanoseconds()) / 1000)

	if err != nil {
		ProducerErrors.With(
			prometheus.Labels{
				"error": ErrorKind(err),
			}).
			Inc()
		return err
	}
	ProducerRecords.Inc()
	if p.matrix != nil {
		MatrixEntries.Set(float64(p.matrix.Len()))
	}
	return nil
}

func (p *PromProducerWrapper) Close() {
	p.wrapped.Close()
}

// WrapPromProducer wraps a producer with metrics. When m is set the entry
// gauge follows its size.
func WrapPromProducer(wrapped producer.ProducerInterface, m *matrix.Matrix) producer.ProducerInterface {
	return &PromProducerWrapper{
		wrapped: wrapped,
		matrix:  m,
	}
}
