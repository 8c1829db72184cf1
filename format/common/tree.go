// Package common holds helpers shared by the format drivers.
package common

import (
	"github.com/netsampler/fgmatrix/matrix"
)

// EntryView is the serialized form of a matrix entry. Byte totals are
// omitted when the matrix does not count bytes.
type EntryView struct {
	Count     uint64  `json:"count" yaml:"count"`
	SentBytes *uint64 `json:"sentbytes,omitempty" yaml:"sentbytes,omitempty"`
	RcvdBytes *uint64 `json:"rcvdbytes,omitempty" yaml:"rcvdbytes,omitempty"`
}

func NewEntryView(e matrix.Entry, countBytes bool) EntryView {
	v := EntryView{Count: e.Count}
	if countBytes {
		sent, rcvd := e.SentBytes, e.RcvdBytes
		v.SentBytes = &sent
		v.RcvdBytes = &rcvd
	}
	return v
}

// Tree is the nested view: srcip, dstip, dstport, protocol.
type Tree map[string]map[string]map[string]map[string]EntryView

func NewTree(s *matrix.Snapshot) Tree {
	t := make(Tree)
	for _, r := range s.Rows {
		k := r.Key
		dsts, ok := t[k.SrcIP]
		if !ok {
			dsts = make(map[string]map[string]map[string]EntryView)
			t[k.SrcIP] = dsts
		}
		ports, ok := dsts[k.DstIP]
		if !ok {
			ports = make(map[string]map[string]EntryView)
			dsts[k.DstIP] = ports
		}
		protos, ok := ports[k.DstPort]
		if !ok {
			protos = make(map[string]EntryView)
			ports[k.DstPort] = protos
		}
		protos[k.Proto.String()] = NewEntryView(r.Entry, s.CountBytes)
	}
	return t
}
