// Package csv renders the matrix as one row per key.
package csv

import (
	"bytes"
	"encoding/csv"
	"flag"
	"strconv"

	"github.com/netsampler/fgmatrix/format"
	"github.com/netsampler/fgmatrix/matrix"
)

type CSVDriver struct {
	header bool
}

func (d *CSVDriver) Prepare() error {
	flag.BoolVar(&d.header, "format.csv.header", true, "Write a header row")
	return nil
}

func (d *CSVDriver) Init() error {
	return nil
}

func (d *CSVDriver) Format(snapshot *matrix.Snapshot) ([]byte, []byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	if d.header {
		header := []string{"srcip", "dstip", "dstport", "proto", "count"}
		if snapshot.CountBytes {
			header = append(header, "sentbytes", "rcvdbytes")
		}
		if err := w.Write(header); err != nil {
			return nil, nil, err
		}
	}

	for _, r := range snapshot.Rows {
		row := []string{
			r.Key.SrcIP,
			r.Key.DstIP,
			r.Key.DstPort,
			r.Key.Proto.String(),
			strconv.FormatUint(r.Entry.Count, 10),
		}
		if snapshot.CountBytes {
			row = append(row,
				strconv.FormatUint(r.Entry.SentBytes, 10),
				strconv.FormatUint(r.Entry.RcvdBytes, 10))
		}
		if err := w.Write(row); err != nil {
			return nil, nil, err
		}
	}
	w.Flush()
	return nil, buf.Bytes(), w.Error()
}

func init() {
	d := &CSVDriver{}
	format.RegisterFormatDriver("csv", d)
}
