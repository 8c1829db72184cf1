// Package format provides a registry of matrix renderers.
package format

import (
	"fmt"
	"sort"
	"sync"

	"github.com/netsampler/fgmatrix/matrix"
)

var (
	formatDrivers = make(map[string]FormatDriver)
	lock          = &sync.RWMutex{}

	ErrFormat = fmt.Errorf("format error")
)

// DriverFormatError wraps a driver error with the format name.
type DriverFormatError struct {
	Driver string
	Err    error
}

func (e *DriverFormatError) Error() string {
	return fmt.Sprintf("%s for %s format", e.Err.Error(), e.Driver)
}

func (e *DriverFormatError) Unwrap() []error {
	return []error{ErrFormat, e.Err}
}

type FormatDriver interface {
	// Prepare driver (eg: flag registration)
	Prepare() error
	// Initialize driver (eg: parse options)
	Init() error
	// Render a matrix, returns a key and the payload
	Format(snapshot *matrix.Snapshot) ([]byte, []byte, error)
}

type FormatInterface interface {
	Format(snapshot *matrix.Snapshot) ([]byte, []byte, error)
}

type Format struct {
	FormatDriver
	name string
}

func (t *Format) Name() string {
	return t.name
}

func (t *Format) Format(snapshot *matrix.Snapshot) ([]byte, []byte, error) {
	key, text, err := t.FormatDriver.Format(snapshot)
	if err != nil {
		err = &DriverFormatError{
			t.name,
			err,
		}
	}
	return key, text, err
}

func RegisterFormatDriver(name string, t FormatDriver) {
	lock.Lock()
	formatDrivers[name] = t
	lock.Unlock()

	if err := t.Prepare(); err != nil {
		panic(err)
	}
}

func FindFormat(name string) (*Format, error) {
	lock.RLock()
	t, ok := formatDrivers[name]
	lock.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %s not found", ErrFormat, name)
	}

	err := t.Init()
	if err != nil {
		err = &DriverFormatError{name, err}
	}
	return &Format{t, name}, err
}

// GetFormats returns the registered names in alphabetical order.
func GetFormats() []string {
	lock.RLock()
	defer lock.RUnlock()
	t := make([]string, 0, len(formatDrivers))
	for k := range formatDrivers {
		t = append(t, k)
	}
	sort.Strings(t)
	return t
}
