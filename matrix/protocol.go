package matrix

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrInvalidProtocol = errors.New("invalid protocol")
)

// Protocol is either a well-known protocol name or the numeric identifier
// it was resolved from. Unnamed protocols keep the text they were parsed
// from, so "053" renders as "053".
type Protocol struct {
	name   string
	number int
	raw    string
}

var knownProtocols = map[int]string{
	1:  "ICMP",
	6:  "TCP",
	17: "UDP",
}

// TranslateProto maps an IP protocol number to its canonical name. Numbers
// without a name are kept as they are.
func TranslateProto(n int) Protocol {
	if name, ok := knownProtocols[n]; ok {
		return Protocol{name: name, number: n}
	}
	return Protocol{number: n, raw: strconv.Itoa(n)}
}

// InvalidProtocolError is returned when a protocol field is not an integer.
type InvalidProtocolError struct {
	Value string
	Err   error
}

func (e *InvalidProtocolError) Error() string {
	return fmt.Sprintf("%s %q: %s", ErrInvalidProtocol.Error(), e.Value, e.Err.Error())
}

func (e *InvalidProtocolError) Unwrap() []error {
	return []error{ErrInvalidProtocol, e.Err}
}

// ParseProtocol parses a decimal protocol number and resolves it. A number
// without a name is kept as the original text.
func ParseProtocol(s string) (Protocol, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return Protocol{}, &InvalidProtocolError{Value: s, Err: err}
	}
	p := TranslateProto(n)
	if !p.Known() {
		p.raw = strings.TrimSpace(s)
	}
	return p, nil
}

// Known reports whether the protocol resolved to a name.
func (p Protocol) Known() bool {
	return p.name != ""
}

// Number is the IP protocol number.
func (p Protocol) Number() int {
	return p.number
}

func (p Protocol) String() string {
	if p.name != "" {
		return p.name
	}
	if p.raw != "" {
		return p.raw
	}
	return strconv.Itoa(p.number)
}

func (p Protocol) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}
