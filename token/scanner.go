package token

import (
	"bufio"
	"io"
)

// DefaultMaxLen is the longest token, in bytes, a Scanner returns.
// Longer tokens are truncated.
const DefaultMaxLen = 255

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

// Scanner splits a stream into whitespace-delimited tokens of at most max
// bytes. Bytes past the limit are dropped until the next whitespace.
type Scanner struct {
	r   *bufio.Reader
	max int

	buf       []byte
	tok       string
	truncated bool
	err       error
}

// NewScanner returns a Scanner reading from r. max <= 0 means DefaultMaxLen.
func NewScanner(r io.Reader, max int) *Scanner {
	if max <= 0 {
		max = DefaultMaxLen
	}
	return &Scanner{
		r:   bufio.NewReader(r),
		max: max,
		buf: make([]byte, 0, max),
	}
}

// Scan advances to the next token. It returns false at the end of the
// stream or on a read error, see Err.
func (s *Scanner) Scan() bool {
	if s.err != nil {
		return false
	}

	s.buf = s.buf[:0]
	s.truncated = false
	for {
		c, err := s.r.ReadByte()
		if err != nil {
			s.err = err
			if len(s.buf) == 0 {
				return false
			}
			s.tok = string(s.buf)
			return true
		}

		if isSpace(c) {
			if len(s.buf) == 0 {
				continue
			}
			s.tok = string(s.buf)
			return true
		}

		if len(s.buf) >= s.max {
			s.truncated = true
			continue
		}
		s.buf = append(s.buf, c)
	}
}

// Text returns the most recent token.
func (s *Scanner) Text() string {
	return s.tok
}

// Truncated reports whether the most recent token was cut to the limit.
func (s *Scanner) Truncated() bool {
	return s.truncated
}

// Err returns the first non-EOF error encountered.
func (s *Scanner) Err() error {
	if s.err == io.EOF {
		return nil
	}
	return s.err
}
