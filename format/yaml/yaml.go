// Package yaml renders the matrix as nested YAML mappings.
package yaml

import (
	"bytes"

	"github.com/netsampler/fgmatrix/format"
	"github.com/netsampler/fgmatrix/format/common"
	"github.com/netsampler/fgmatrix/matrix"

	"gopkg.in/yaml.v3"
)

type YamlDriver struct {
}

func (d *YamlDriver) Prepare() error {
	return nil
}

func (d *YamlDriver) Init() error {
	return nil
}

// Format builds the document node by node so that mapping keys keep the
// order of the snapshot.
func (d *YamlDriver) Format(snapshot *matrix.Snapshot) ([]byte, []byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	var parents [4]*yaml.Node
	parents[0] = root

	err := snapshot.Walk(func(depth int, name string, entry *matrix.Entry) error {
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name}
		var valueNode *yaml.Node
		if entry == nil {
			valueNode = &yaml.Node{Kind: yaml.MappingNode}
			parents[depth+1] = valueNode
		} else {
			valueNode = &yaml.Node{}
			if err := valueNode.Encode(common.NewEntryView(*entry, snapshot.CountBytes)); err != nil {
				return err
			}
		}
		parents[depth].Content = append(parents[depth].Content, keyNode, valueNode)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	buf := &bytes.Buffer{}
	enc := yaml.NewEncoder(buf)
	enc.SetIndent(2)
	if len(root.Content) == 0 {
		root.Style = yaml.FlowStyle
	}
	if err := enc.Encode(root); err != nil {
		return nil, nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, nil, err
	}
	return nil, buf.Bytes(), nil
}

func init() {
	d := &YamlDriver{}
	format.RegisterFormatDriver("yaml", d)
}
