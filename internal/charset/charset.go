// Package charset converts instrument text between its wire encoding and
// UTF-8. Analysers commonly send latin-1 or a Chinese code page; the codec
// works on UTF-8 strings only.
package charset

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// ErrUnknownCharset is returned by Lookup for names it cannot resolve.
var ErrUnknownCharset = errors.New("unknown charset")

// UTF8 is the name of the pass-through charset.
const UTF8 = "utf-8"

var known = map[string]encoding.Encoding{
	"latin1":  charmap.ISO8859_1,
	"cp1252":  charmap.Windows1252,
	"gbk":     simplifiedchinese.GBK,
	"gb18030": simplifiedchinese.GB18030,
	UTF8:      encoding.Nop,
}

// Charset pairs a name with its encoding.
type Charset struct {
	name string
	enc  encoding.Encoding
}

// Lookup resolves a charset name. The short names of Names are tried first,
// then the WHATWG labels ("iso-8859-1", "windows-1252", "gb2312", ...).
func Lookup(name string) (Charset, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" || n == "utf8" {
		n = UTF8
	}

	if enc, ok := known[n]; ok {
		return Charset{name: n, enc: enc}, nil
	}

	enc, err := htmlindex.Get(n)
	if err != nil {
		return Charset{}, fmt.Errorf("%w: %q", ErrUnknownCharset, name)
	}

	if canonical, err := htmlindex.Name(enc); err == nil && canonical == UTF8 {
		return Charset{name: UTF8, enc: encoding.Nop}, nil
	}

	return Charset{name: n, enc: enc}, nil
}

// Names lists the short charset names in sorted order.
func Names() []string {
	names := make([]string, 0, len(known))
	for n := range known {
		names = append(names, n)
	}

	slices.Sort(names)

	return names
}

// Name returns the name the charset was looked up with.
func (c Charset) Name() string {
	return c.name
}

func (c Charset) isNop() bool {
	return c.enc == nil || c.enc == encoding.Nop
}

// Decode converts wire bytes to a UTF-8 string.
func (c Charset) Decode(b []byte) (string, error) {
	if c.isNop() {
		return string(b), nil
	}

	out, err := c.enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", c.name, err)
	}

	return string(out), nil
}

// Encode converts a UTF-8 string to wire bytes. Runes the charset cannot
// represent are an error.
func (c Charset) Encode(s string) ([]byte, error) {
	if c.isNop() {
		return []byte(s), nil
	}

	out, err := c.enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", c.name, err)
	}

	return out, nil
}

// NewReader decodes r on the fly.
func (c Charset) NewReader(r io.Reader) io.Reader {
	if c.isNop() {
		return r
	}

	return transform.NewReader(r, c.enc.NewDecoder())
}

// ErrWriterClosed is returned by writes after Close.
var ErrWriterClosed = errors.New("charset writer closed")

// NewWriter encodes UTF-8 written to w on the fly. Close flushes pending
// bytes; it does not close w. Close may be called more than once; only the
// first call flushes.
func (c Charset) NewWriter(w io.Writer) io.WriteCloser {
	if c.isNop() {
		return nopCloser{w}
	}

	return &encodeWriter{w: transform.NewWriter(w, c.enc.NewEncoder())}
}

// encodeWriter guards transform.Writer, whose Close re-emits its buffered
// tail when called twice.
type encodeWriter struct {
	w      *transform.Writer
	closed bool
}

func (e *encodeWriter) Write(p []byte) (int, error) {
	if e.closed {
		return 0, ErrWriterClosed
	}

	return e.w.Write(p)
}

func (e *encodeWriter) Close() error {
	if e.closed {
		return nil
	}

	e.closed = true

	return e.w.Close()
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
