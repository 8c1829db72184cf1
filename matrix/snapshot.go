package matrix

import (
	"sort"
)

// Row is one key of the matrix with its counters.
type Row struct {
	Key   Key
	Entry Entry
}

// Snapshot is a read-only, ordered copy of a Matrix. Rows are sorted by
// source address, destination address, destination port and protocol name,
// each compared as strings.
type Snapshot struct {
	Rows       []Row
	CountBytes bool
}

func newSnapshot(rows []Row, countBytes bool) *Snapshot {
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Key.less(rows[j].Key)
	})
	return &Snapshot{Rows: rows, CountBytes: countBytes}
}

func (k Key) less(o Key) bool {
	if k.SrcIP != o.SrcIP {
		return k.SrcIP < o.SrcIP
	}
	if k.DstIP != o.DstIP {
		return k.DstIP < o.DstIP
	}
	if k.DstPort != o.DstPort {
		return k.DstPort < o.DstPort
	}
	return k.Proto.String() < o.Proto.String()
}

// Len returns the number of rows.
func (s *Snapshot) Len() int {
	return len(s.Rows)
}

// Visitor receives the nested view of a snapshot. depth is 0 for source
// addresses, 1 for destination addresses, 2 for destination ports and 3 for
// protocols; entry is only set at depth 3.
type Visitor func(depth int, name string, entry *Entry) error

// Walk visits every level of the nesting in order. A node is visited once,
// before its children.
func (s *Snapshot) Walk(visit Visitor) error {
	var prev *Key
	for i := range s.Rows {
		row := &s.Rows[i]
		k := row.Key
		level := 0
		if prev != nil {
			switch {
			case prev.SrcIP != k.SrcIP:
				level = 0
			case prev.DstIP != k.DstIP:
				level = 1
			case prev.DstPort != k.DstPort:
				level = 2
			default:
				level = 3
			}
		}
		names := [4]string{k.SrcIP, k.DstIP, k.DstPort, k.Proto.String()}
		for depth := level; depth < 3; depth++ {
			if err := visit(depth, names[depth], nil); err != nil {
				return err
			}
		}
		if err := visit(3, names[3], &row.Entry); err != nil {
			return err
		}
		prev = &row.Key
	}
	return nil
}
