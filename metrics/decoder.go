package metrics

import (
	"time"

	"github.com/netsampler/fgmatrix/decoders/fortigate"
	"github.com/netsampler/fgmatrix/utils"

	"github.com/prometheus/client_golang/prometheus"
)

func PromDecoderWrapper(wrapped utils.DecoderFunc, name string) utils.DecoderFunc {
	return func(lineNo int, line string) (fortigate.Record, error) {
		DecoderStats.With(
			prometheus.Labels{
				"name": name,
			}).
			Inc()

		timeTrackStart := time.Now().UTC()

		rec, err := wrapped(lineNo, line)

		timeTrackStop := time.Now().UTC()

		DecoderTime.With(
			prometheus.Labels{
				"name": name,
			}).
			Observe(float64((timeTrackStop.Sub(timeTrackStart)).Nanoseconds()) / 1000)

		if err != nil {
			DecoderErrors.With(
				prometheus.Labels{
					"name":  name,
					"error": ErrorKind(err),
				}).
				Inc()
		}
		return rec, err
	}
}
