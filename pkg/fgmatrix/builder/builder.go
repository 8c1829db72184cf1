package builder

import (
	"fmt"

	"github.com/netsampler/fgmatrix/decoders/fortigate"
	"github.com/netsampler/fgmatrix/format"
	"github.com/netsampler/fgmatrix/matrix"
	"github.com/netsampler/fgmatrix/metrics"
	"github.com/netsampler/fgmatrix/pkg/fgmatrix/config"
	"github.com/netsampler/fgmatrix/producer"
	"github.com/netsampler/fgmatrix/transport"
	"github.com/netsampler/fgmatrix/utils"
	"github.com/netsampler/fgmatrix/utils/debug"
)

const DecoderName = "fortigate"

// BuildFormatter resolves a formatter by name.
func BuildFormatter(name string) (format.FormatInterface, error) {
	formatter, err := format.FindFormat(name)
	if err != nil {
		return nil, fmt.Errorf("build formatter %s: %w", name, err)
	}
	return formatter, nil
}

// BuildTransport resolves a transport by name.
func BuildTransport(name string) (*transport.Transport, error) {
	t, err := transport.FindTransport(name)
	if err != nil {
		return nil, fmt.Errorf("build transport %s: %w", name, err)
	}
	return t, nil
}

// BuildProducer creates the aggregator for m with panic recovery and metrics.
func BuildProducer(m *matrix.Matrix) producer.ProducerInterface {
	var p producer.ProducerInterface = producer.NewAggregator(m)
	p = debug.WrapPanicProducer(p)
	p = metrics.WrapPromProducer(p, m)
	return p
}

// BuildPipe wires the FortiGate decoder and p into a line pipe.
func BuildPipe(cfg *config.Config, p producer.ProducerInterface) *utils.LinePipe {
	decoder := debug.PanicDecoderWrapper(fortigate.DecodeLine)
	decoder = metrics.PromDecoderWrapper(decoder, DecoderName)
	return utils.NewLinePipe(&utils.PipeConfig{
		Decoder:     decoder,
		Producer:    p,
		Workers:     cfg.Workers,
		MaxLineSize: cfg.MaxLine,
	})
}
