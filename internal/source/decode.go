package source

// decode.go turns raw collection bytes into text for the catalog parser.
//
// Exports from Czech Excel installs are often Windows-1250 rather than UTF-8,
// and many carry a UTF-8 BOM. Decode handles both:
//
//   - BOMSkippingReader: drops a leading UTF-8 BOM (0xEF 0xBB 0xBF)
//   - limitedReader: fails once more than the configured bytes arrive
//   - UTF8Sanitizer: replaces invalid UTF-8 bytes with '?'
//
// Bytes that are not valid UTF-8 are decoded with the fallback charset when
// one is configured, and sanitized otherwise.

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
)

// DefaultMaxBytes caps a single collection file.
const DefaultMaxBytes int64 = 20 << 20

// DefaultFallback is the charset assumed for non-UTF-8 input.
var DefaultFallback encoding.Encoding = charmap.Windows1250

// Options control decoding. The zero value applies DefaultMaxBytes and
// sanitizes invalid UTF-8 without a fallback charset.
type Options struct {
	// MaxBytes limits the input size. Zero means DefaultMaxBytes.
	MaxBytes int64
	// Fallback decodes input that is not valid UTF-8. Nil disables it.
	Fallback encoding.Encoding
}

func (o Options) maxBytes() int64 {
	if o.MaxBytes <= 0 {
		return DefaultMaxBytes
	}
	return o.MaxBytes
}

// Charset resolves a charset label such as "windows-1250" or "iso-8859-2".
// An empty label or "none" returns nil: no fallback decoding.
func Charset(name string) (encoding.Encoding, error) {
	name = strings.TrimSpace(strings.ToLower(name))
	switch name {
	case "", "none", "utf-8", "utf8":
		return nil, nil
	case "windows-1250", "cp1250":
		return charmap.Windows1250, nil
	case "iso-8859-2", "latin2":
		return charmap.ISO8859_2, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unknown charset %q", name)
	}
	return enc, nil
}

// Decode reads r fully and returns its text. It fails with ErrTooLarge when
// r holds more than the configured limit.
func Decode(r io.Reader, opts Options) (string, error) {
	limit := opts.maxBytes()
	lr := &limitedReader{reader: NewBOMSkippingReader(r), remaining: limit}

	raw, err := io.ReadAll(lr)
	if err != nil {
		return "", err
	}

	if utf8.Valid(raw) {
		return string(raw), nil
	}

	if opts.Fallback != nil {
		text, err := opts.Fallback.NewDecoder().Bytes(raw)
		if err == nil {
			return string(text), nil
		}
	}

	clean, err := io.ReadAll(NewUTF8Sanitizer(bytes.NewReader(raw)))
	if err != nil {
		return "", err
	}
	return string(clean), nil
}

// limitedReader is io.LimitReader that reports overflow instead of a silent
// truncation.
type limitedReader struct {
	reader    io.Reader
	remaining int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.remaining < 0 {
		return 0, ErrTooLarge
	}
	// Ask for one byte past the limit so overflow is detectable.
	if int64(len(p)) > l.remaining+1 {
		p = p[:l.remaining+1]
	}
	n, err := l.reader.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		return 0, ErrTooLarge
	}
	return n, err
}

// UTF8Sanitizer wraps an io.Reader and replaces invalid UTF-8 bytes with '?'.
// Multi-byte sequences split across reads are carried over.
type UTF8Sanitizer struct {
	reader  io.Reader
	pending []byte
}

// NewUTF8Sanitizer creates a sanitizer over r.
func NewUTF8Sanitizer(r io.Reader) *UTF8Sanitizer {
	return &UTF8Sanitizer{
		reader:  r,
		pending: make([]byte, 0, utf8.UTFMax),
	}
}

// Read implements io.Reader.
func (s *UTF8Sanitizer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	offset := 0
	if len(s.pending) > 0 {
		offset = copy(p, s.pending)
		s.pending = s.pending[:0]
	}

	n, err := s.reader.Read(p[offset:])
	n += offset
	if n == 0 {
		return 0, err
	}
	if isASCII(p[:n]) {
		return n, err
	}
	return s.sanitize(p[:n], err == io.EOF), err
}

func isASCII(data []byte) bool {
	for _, b := range data {
		if b >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// sanitize rewrites data in place and returns the bytes ready for the
// caller. Unless atEOF, an incomplete trailing sequence is kept for the next
// read.
func (s *UTF8Sanitizer) sanitize(data []byte, atEOF bool) int {
	write := 0
	for read := 0; read < len(data); {
		if !atEOF && !utf8.FullRune(data[read:]) {
			s.pending = append(s.pending, data[read:]...)
			return write
		}
		r, size := utf8.DecodeRune(data[read:])
		if r == utf8.RuneError && size == 1 {
			data[write] = '?'
			write++
			read++
			continue
		}
		copy(data[write:], data[read:read+size])
		write += size
		read += size
	}
	return write
}

// BOMSkippingReader wraps an io.Reader and skips a leading UTF-8 BOM.
type BOMSkippingReader struct {
	reader  io.Reader
	checked bool
	buf     [3]byte
	head    []byte
}

// NewBOMSkippingReader creates a BOM-skipping reader.
func NewBOMSkippingReader(r io.Reader) *BOMSkippingReader {
	return &BOMSkippingReader{reader: r}
}

// Read implements io.Reader.
func (r *BOMSkippingReader) Read(p []byte) (int, error) {
	if !r.checked {
		r.checked = true
		n, err := io.ReadFull(r.reader, r.buf[:])
		if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
			return 0, err
		}
		if n == 3 && r.buf[0] == 0xEF && r.buf[1] == 0xBB && r.buf[2] == 0xBF {
			r.head = nil
		} else {
			r.head = r.buf[:n]
		}
	}

	if len(r.head) > 0 {
		copied := copy(p, r.head)
		r.head = r.head[copied:]
		return copied, nil
	}
	return r.reader.Read(p)
}
