package metrics

import (
	"errors"
	"fmt"

	"github.com/netsampler/fgmatrix/decoders/fortigate"
	"github.com/netsampler/fgmatrix/matrix"
	"github.com/netsampler/fgmatrix/producer"
	"github.com/netsampler/fgmatrix/utils"
	"github.com/netsampler/fgmatrix/utils/debug"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// ErrorKind maps an error to the label value used by the error counters.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, fortigate.ErrMalformedToken):
		return "malformed_token"
	case errors.Is(err, producer.ErrMissingField):
		return "missing_field"
	case errors.Is(err, matrix.ErrInvalidProtocol):
		return "invalid_protocol"
	case errors.Is(err, producer.ErrInvalidByteValue):
		return "invalid_byte_value"
	case errors.Is(err, utils.ErrLineTooLong):
		return "line_too_long"
	case errors.Is(err, debug.ErrPanic):
		return "panic"
	default:
		return "other"
	}
}

// Push sends every registered collector to a Pushgateway under job.
func Push(uri, job string) error {
	return PushFrom(uri, job, prometheus.DefaultGatherer)
}

func PushFrom(uri, job string, gatherer prometheus.Gatherer) error {
	err := push.New(uri, job).
		Gatherer(gatherer).
		Push()
	if err != nil {
		return fmt.Errorf("could not push metrics, %w", err)
	}
	return nil
}
