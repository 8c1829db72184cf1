// Package fortigate decodes FortiGate style key=value log lines.
package fortigate

import (
	"errors"
	"fmt"
	"strings"
)

const (
	FieldSrcIP    = "srcip"
	FieldDstIP    = "dstip"
	FieldDstPort  = "dstport"
	FieldProto    = "proto"
	FieldSentByte = "sentbyte"
	FieldRcvdByte = "rcvdbyte"

	KVDelim = "="
)

var (
	ErrMalformedToken = errors.New("malformed token")
)

// Record holds the fields of one log line. Later occurrences of a key
// overwrite earlier ones.
type Record map[string]string

// Get returns the value of a field and whether it was present.
func (r Record) Get(field string) (string, bool) {
	v, ok := r[field]
	return v, ok
}

// MalformedTokenError is returned when a token cannot be split into a key
// and a value. Line is zero when the caller did not provide a line number.
type MalformedTokenError struct {
	Line   int
	Token  string
	Reason string
}

func (e *MalformedTokenError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s %q: %s", e.Line, ErrMalformedToken.Error(), e.Token, e.Reason)
	}
	return fmt.Sprintf("%s %q: %s", ErrMalformedToken.Error(), e.Token, e.Reason)
}

func (e *MalformedTokenError) Unwrap() error {
	return ErrMalformedToken
}

// Decode tokenizes a single line without line information.
func Decode(line string) (Record, error) {
	return DecodeLine(0, line)
}

// DecodeLine tokenizes a single line into a Record.
//
// Tokens are separated by whitespace. Double or single quoted regions are part
// of the current token and may contain whitespace and the delimiter; the quote
// characters themselves are dropped. Within double quotes, \" and \\ are
// escapes. Outside quotes a backslash escapes the following character.
// Each token is split on its first "=".
func DecodeLine(lineNo int, line string) (Record, error) {
	rec := make(Record)

	var (
		tok     strings.Builder
		inToken bool
		quote   byte
	)

	emit := func() error {
		t := tok.String()
		tok.Reset()
		inToken = false

		key, value, ok := strings.Cut(t, KVDelim)
		if !ok {
			return &MalformedTokenError{Line: lineNo, Token: t, Reason: "missing key/value delimiter"}
		}
		if key == "" {
			return &MalformedTokenError{Line: lineNo, Token: t, Reason: "empty key"}
		}
		rec[key] = value
		return nil
	}

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case quote == '"':
			if c == '\\' && i+1 < len(line) && (line[i+1] == '"' || line[i+1] == '\\') {
				i++
				tok.WriteByte(line[i])
			} else if c == '"' {
				quote = 0
			} else {
				tok.WriteByte(c)
			}
		case quote == '\'':
			if c == '\'' {
				quote = 0
			} else {
				tok.WriteByte(c)
			}
		case c == '"' || c == '\'':
			quote = c
			inToken = true
		case c == '\\':
			inToken = true
			if i+1 < len(line) {
				i++
				tok.WriteByte(line[i])
			} else {
				tok.WriteByte(c)
			}
		case isSpace(c):
			if inToken {
				if err := emit(); err != nil {
					return nil, err
				}
			}
		default:
			inToken = true
			tok.WriteByte(c)
		}
	}

	if quote != 0 {
		return nil, &MalformedTokenError{Line: lineNo, Token: tok.String(), Reason: "unterminated quote"}
	}
	if inToken {
		if err := emit(); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\v', '\f':
		return true
	}
	return false
}
