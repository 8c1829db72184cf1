// Package producer folds decoded log records into a communication matrix.
package producer

import (
	"fmt"
	"strconv"

	"github.com/netsampler/fgmatrix/decoders/fortigate"
	"github.com/netsampler/fgmatrix/matrix"
)

// ProducerInterface folds records into an aggregate.
type ProducerInterface interface {
	// Fold validates rec and adds its contribution. A record that returns an
	// error contributes nothing.
	Fold(lineNo int, rec fortigate.Record) error
	Close()
}

var requiredFields = []string{
	fortigate.FieldSrcIP,
	fortigate.FieldDstIP,
	fortigate.FieldDstPort,
	fortigate.FieldProto,
}

var byteFields = []string{
	fortigate.FieldSentByte,
	fortigate.FieldRcvdByte,
}

// Aggregator is the default producer. Byte fields are required and summed
// when the matrix counts bytes.
type Aggregator struct {
	matrix *matrix.Matrix
}

func NewAggregator(m *matrix.Matrix) *Aggregator {
	return &Aggregator{
		matrix: m,
	}
}

// Message is the validated content of a record.
type Message struct {
	Key       matrix.Key
	SentBytes uint64
	RcvdBytes uint64
}

// ProduceMessage validates a record. Byte fields are only looked at when
// countBytes is set.
func ProduceMessage(lineNo int, rec fortigate.Record, countBytes bool) (*Message, error) {
	for _, field := range requiredFields {
		if _, ok := rec[field]; !ok {
			return nil, &MissingFieldError{Field: field, Line: lineNo}
		}
	}
	if countBytes {
		for _, field := range byteFields {
			if _, ok := rec[field]; !ok {
				return nil, &MissingFieldError{Field: field, Line: lineNo}
			}
		}
	}

	proto, err := matrix.ParseProtocol(rec[fortigate.FieldProto])
	if err != nil {
		return nil, fmt.Errorf("line %d: %w", lineNo, err)
	}

	msg := &Message{
		Key: matrix.Key{
			SrcIP:   rec[fortigate.FieldSrcIP],
			DstIP:   rec[fortigate.FieldDstIP],
			DstPort: rec[fortigate.FieldDstPort],
			Proto:   proto,
		},
	}
	if !countBytes {
		return msg, nil
	}

	if msg.SentBytes, err = parseBytes(lineNo, fortigate.FieldSentByte, rec[fortigate.FieldSentByte]); err != nil {
		return nil, err
	}
	if msg.RcvdBytes, err = parseBytes(lineNo, fortigate.FieldRcvdByte, rec[fortigate.FieldRcvdByte]); err != nil {
		return nil, err
	}
	return msg, nil
}

func parseBytes(lineNo int, field, value string) (uint64, error) {
	n, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, &InvalidByteValueError{Field: field, Value: value, Line: lineNo, Err: err}
	}
	return n, nil
}

func (a *Aggregator) Fold(lineNo int, rec fortigate.Record) error {
	msg, err := ProduceMessage(lineNo, rec, a.matrix.CountBytes())
	if err != nil {
		return err
	}
	a.matrix.Add(msg.Key, msg.SentBytes, msg.RcvdBytes)
	return nil
}

// Matrix returns the aggregate being built.
func (a *Aggregator) Matrix() *matrix.Matrix {
	return a.matrix
}

func (a *Aggregator) Close() {}
