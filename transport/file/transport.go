// Package file implements a file/stdout transport.
package file

import (
	"flag"
	"io"
	"os"
	"sync"

	"github.com/netsampler/fgmatrix/transport"
)

// FileDriver writes rendered matrices to stdout or a file.
type FileDriver struct {
	fileDestination string
	lineSeparator   string
	appendFile      bool
	w               io.Writer
	file            *os.File
	lock            *sync.Mutex
}

// Prepare registers flags for file transport configuration.
func (d *FileDriver) Prepare() error {
	flag.StringVar(&d.fileDestination, "transport.file", "", "File/console output (empty for stdout)")
	flag.StringVar(&d.lineSeparator, "transport.file.sep", "", "Separator written after each payload")
	flag.BoolVar(&d.appendFile, "transport.file.append", false, "Append to the output file instead of truncating it")
	return nil
}

// Init opens the output destination.
func (d *FileDriver) Init() error {
	d.lock.Lock()
	defer d.lock.Unlock()

	if d.fileDestination == "" {
		d.w = os.Stdout
		return nil
	}

	mode := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if d.appendFile {
		mode = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	file, err := os.OpenFile(d.fileDestination, mode, 0644)
	if err != nil {
		return err
	}
	d.file = file
	d.w = file
	return nil
}

// Send writes a payload followed by the separator.
func (d *FileDriver) Send(key, data []byte) error {
	d.lock.Lock()
	defer d.lock.Unlock()
	if len(data) > 0 {
		if _, err := d.w.Write(data); err != nil {
			return err
		}
	}
	if d.lineSeparator == "" {
		return nil
	}
	_, err := io.WriteString(d.w, d.lineSeparator)
	return err
}

// Close closes the output file.
func (d *FileDriver) Close() error {
	d.lock.Lock()
	defer d.lock.Unlock()
	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	return err
}

func init() {
	d := &FileDriver{
		lock: &sync.Mutex{},
	}
	transport.RegisterTransportDriver("file", d)
}
