// Package text renders the matrix as an indented tree, one key per line.
package text

import (
	"bytes"
	"flag"
	"strconv"
	"strings"

	"github.com/netsampler/fgmatrix/format"
	"github.com/netsampler/fgmatrix/matrix"
)

type TextDriver struct {
	indent string
}

func (d *TextDriver) Prepare() error {
	flag.StringVar(&d.indent, "format.text.indent", "\t", "Indentation for each nesting level")
	return nil
}

func (d *TextDriver) Init() error {
	return nil
}

// Format writes source addresses at depth 0 and the count of each protocol
// one level below the protocol. Byte totals follow the count when enabled.
func (d *TextDriver) Format(snapshot *matrix.Snapshot) ([]byte, []byte, error) {
	buf := &bytes.Buffer{}
	err := snapshot.Walk(func(depth int, name string, entry *matrix.Entry) error {
		buf.WriteString(strings.Repeat(d.indent, depth))
		buf.WriteString(name)
		buf.WriteByte('\n')
		if entry == nil {
			return nil
		}
		buf.WriteString(strings.Repeat(d.indent, depth+1))
		buf.WriteString(strconv.FormatUint(entry.Count, 10))
		if snapshot.CountBytes {
			buf.WriteString(" sentbytes=")
			buf.WriteString(strconv.FormatUint(entry.SentBytes, 10))
			buf.WriteString(" rcvdbytes=")
			buf.WriteString(strconv.FormatUint(entry.RcvdBytes, 10))
		}
		buf.WriteByte('\n')
		return nil
	})
	return nil, buf.Bytes(), err
}

func init() {
	d := &TextDriver{}
	format.RegisterFormatDriver("text", d)
}
