// Package utils reads log sources and drives their lines through a decoder
// and a producer.
package utils

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/netsampler/fgmatrix/decoders/fortigate"
	"github.com/netsampler/fgmatrix/producer"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultMaxLineSize = 1024 * 1024

	readBufferSize = 64 * 1024
)

var (
	ErrNoProducer  = errors.New("pipe has no producer")
	ErrLineTooLong = errors.New("line too long")
)

// Diagnostic is a line that was skipped and the reason.
type Diagnostic struct {
	Line int
	Err  error
}

// Result summarizes one pass over a source.
type Result struct {
	Lines       int // lines read, blank lines included
	Blank       int
	Records     int // records folded into the matrix
	Diagnostics []Diagnostic
}

// Skipped is the number of non-blank lines that did not contribute.
func (r *Result) Skipped() int {
	return len(r.Diagnostics)
}

// AllMalformed tells apart a source where every record failed from a source
// without any traffic.
func (r *Result) AllMalformed() bool {
	return r.Records == 0 && len(r.Diagnostics) > 0
}

// PipeConfig wires a decoder and a producer.
type PipeConfig struct {
	Decoder  DecoderFunc // defaults to fortigate.DecodeLine
	Producer producer.ProducerInterface

	Workers     int // decoding goroutines, values below 2 decode inline
	MaxLineSize int
}

// LinePipe decodes lines and folds them. Decoding may be spread over several
// workers but folding always happens on the goroutine calling Run.
type LinePipe struct {
	decoder     DecoderFunc
	producer    producer.ProducerInterface
	workers     int
	maxLineSize int
}

type rawLine struct {
	no   int
	text string
	err  error
}

type decodedLine struct {
	no  int
	rec fortigate.Record
	err error
}

// ReadError is a failure of the underlying source while scanning.
type ReadError struct {
	Line int
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read error after line %d: %s", e.Line, e.Err.Error())
}

func (e *ReadError) Unwrap() []error {
	return []error{ErrSource, e.Err}
}

func NewLinePipe(cfg *PipeConfig) *LinePipe {
	p := &LinePipe{
		decoder:     cfg.Decoder,
		producer:    cfg.Producer,
		workers:     cfg.Workers,
		maxLineSize: cfg.MaxLineSize,
	}
	if p.decoder == nil {
		p.decoder = fortigate.DecodeLine
	}
	if p.maxLineSize <= 0 {
		p.maxLineSize = DefaultMaxLineSize
	}
	return p
}

// lineReader splits a source into lines. A line over max bytes is consumed
// up to its terminator and reported instead of returned.
type lineReader struct {
	r   *bufio.Reader
	max int
	no  int
}

func (p *LinePipe) lineReader(r io.Reader) *lineReader {
	size := readBufferSize
	if p.maxLineSize < size {
		size = p.maxLineSize
	}
	return &lineReader{
		r:   bufio.NewReaderSize(r, size),
		max: p.maxLineSize,
	}
}

// lineLength is the length of b without a trailing \n or \r\n.
func lineLength(b []byte) int {
	n := len(b)
	if n > 0 && b[n-1] == '\n' {
		n--
		if n > 0 && b[n-1] == '\r' {
			n--
		}
	}
	return n
}

// next returns the following line without its terminator. It returns io.EOF
// once the source is exhausted.
func (l *lineReader) next() (rawLine, error) {
	var buf []byte
	read := 0
	tooLong := false
	for {
		chunk, err := l.r.ReadSlice('\n')
		read += len(chunk)
		if !tooLong {
			buf = append(buf, chunk...)
			if lineLength(buf) > l.max {
				tooLong = true
				buf = nil
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return rawLine{}, &ReadError{Line: l.no, Err: err}
		}
		if err != nil && read == 0 {
			return rawLine{}, io.EOF
		}
		break
	}

	l.no++
	if tooLong {
		return rawLine{
			no:  l.no,
			err: fmt.Errorf("line %d: %w (limit %d bytes)", l.no, ErrLineTooLong, l.max),
		}, nil
	}
	buf = buf[:lineLength(buf)]
	return rawLine{no: l.no, text: string(buf)}, nil
}

func (p *LinePipe) decode(line rawLine) decodedLine {
	if line.err != nil {
		return decodedLine{no: line.no, err: line.err}
	}
	rec, err := p.decoder(line.no, line.text)
	return decodedLine{no: line.no, rec: rec, err: err}
}

func (p *LinePipe) fold(res *Result, d decodedLine) {
	res.Lines++
	if d.err == nil && len(d.rec) == 0 {
		res.Blank++
		return
	}
	if d.err == nil {
		d.err = p.producer.Fold(d.no, d.rec)
	}
	if d.err != nil {
		res.Diagnostics = append(res.Diagnostics, Diagnostic{Line: d.no, Err: d.err})
		return
	}
	res.Records++
}

// Run consumes r until EOF. Malformed and over-long lines end up in the
// diagnostics of the result; a read failure or a cancelled context aborts the
// run and no result is returned.
func (p *LinePipe) Run(ctx context.Context, r io.Reader) (*Result, error) {
	if p.producer == nil {
		return nil, ErrNoProducer
	}

	res := &Result{}
	var err error
	if p.workers > 1 {
		err = p.runWorkers(ctx, p.lineReader(r), res)
	} else {
		err = p.runSequential(ctx, p.lineReader(r), res)
	}
	if err != nil {
		return nil, err
	}

	sort.SliceStable(res.Diagnostics, func(i, j int) bool {
		return res.Diagnostics[i].Line < res.Diagnostics[j].Line
	})
	return res, nil
}

func (p *LinePipe) runSequential(ctx context.Context, lr *lineReader, res *Result) error {
	for {
		line, err := lr.next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		p.fold(res, p.decode(line))
	}
}

func (p *LinePipe) runWorkers(ctx context.Context, lr *lineReader, res *Result) error {
	g, gctx := errgroup.WithContext(ctx)
	lines := make(chan rawLine, p.workers*4)
	decoded := make(chan decodedLine, p.workers*4)

	g.Go(func() error {
		defer close(lines)
		for {
			line, err := lr.next()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return err
			}
			if err := gctx.Err(); err != nil {
				return err
			}
			select {
			case lines <- line:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
	})

	wg := &sync.WaitGroup{}
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		g.Go(func() error {
			defer wg.Done()
			for line := range lines {
				select {
				case decoded <- p.decode(line):
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})
	}
	go func() {
		wg.Wait()
		close(decoded)
	}()

	for d := range decoded {
		p.fold(res, d)
	}
	return g.Wait()
}
