// Package json renders the matrix as nested JSON objects.
package json

import (
	"flag"

	"github.com/netsampler/fgmatrix/format"
	"github.com/netsampler/fgmatrix/format/common"
	"github.com/netsampler/fgmatrix/matrix"

	json "github.com/goccy/go-json"
)

type JsonDriver struct {
	indent string
}

func (d *JsonDriver) Prepare() error {
	flag.StringVar(&d.indent, "format.json.indent", "", "Indentation of JSON output (empty for compact)")
	return nil
}

func (d *JsonDriver) Init() error {
	return nil
}

// Format encodes the tree of the snapshot. Object keys are sorted.
func (d *JsonDriver) Format(snapshot *matrix.Snapshot) ([]byte, []byte, error) {
	tree := common.NewTree(snapshot)
	if d.indent != "" {
		output, err := json.MarshalIndent(tree, "", d.indent)
		return nil, output, err
	}
	output, err := json.Marshal(tree)
	return nil, output, err
}

func init() {
	d := &JsonDriver{}
	format.RegisterFormatDriver("json", d)
}
