// Package matrix holds the communication matrix: traffic counters keyed by
// source address, destination address, destination port and protocol.
package matrix

import (
	"math"
	"sync"
)

// Key identifies one aggregation bucket. Values are kept as they appear in
// the logs; addresses and ports are not validated.
type Key struct {
	SrcIP   string
	DstIP   string
	DstPort string
	Proto   Protocol
}

// Entry holds the counters of a Key. Byte totals stay at zero when byte
// counting is disabled.
type Entry struct {
	Count     uint64
	SentBytes uint64
	RcvdBytes uint64
}

// Matrix is safe for concurrent use.
type Matrix struct {
	lock       *sync.RWMutex
	entries    map[Key]*Entry
	countBytes bool
}

func NewMatrix(countBytes bool) *Matrix {
	return &Matrix{
		lock:       &sync.RWMutex{},
		entries:    make(map[Key]*Entry),
		countBytes: countBytes,
	}
}

// CountBytes reports whether byte totals are accumulated.
func (m *Matrix) CountBytes() bool {
	return m.countBytes
}

// Add records one occurrence of key. sent and rcvd are ignored unless byte
// counting is enabled. Totals saturate at the maximum uint64 value.
func (m *Matrix) Add(key Key, sent, rcvd uint64) {
	m.lock.Lock()
	defer m.lock.Unlock()

	e, ok := m.entries[key]
	if !ok {
		e = &Entry{}
		m.entries[key] = e
	}
	e.Count = addSaturate(e.Count, 1)
	if m.countBytes {
		e.SentBytes = addSaturate(e.SentBytes, sent)
		e.RcvdBytes = addSaturate(e.RcvdBytes, rcvd)
	}
}

// Get returns a copy of the entry for key.
func (m *Matrix) Get(key Key) (Entry, bool) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	e, ok := m.entries[key]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Len returns the number of distinct keys.
func (m *Matrix) Len() int {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return len(m.entries)
}

// Snapshot copies the current content. Later updates do not affect it.
func (m *Matrix) Snapshot() *Snapshot {
	m.lock.RLock()
	rows := make([]Row, 0, len(m.entries))
	for k, e := range m.entries {
		rows = append(rows, Row{Key: k, Entry: *e})
	}
	m.lock.RUnlock()

	return newSnapshot(rows, m.countBytes)
}

func addSaturate(a, b uint64) uint64 {
	if a > math.MaxUint64-b {
		return math.MaxUint64
	}
	return a + b
}
