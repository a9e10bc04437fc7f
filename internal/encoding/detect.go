// Package encoding normalizes exported ledger files to UTF-8 before decoding.
package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const sniffSize = 8192

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// charsets maps chardet names to decoders. Spreadsheet exports of the ledger come
// from Excel on Windows, so the legacy Chinese code pages show up alongside
// Windows-1252.
var charsets = map[string]encoding.Encoding{
	"Big5":         traditionalchinese.Big5,
	"GB-18030":     simplifiedchinese.GB18030,
	"ISO-8859-1":   charmap.Windows1252,
	"windows-1252": charmap.Windows1252,
}

// NewUTF8Reader returns a reader yielding r as UTF-8.
//
// A BOM wins over everything else: the UTF-8 one is stripped, UTF-16 is decoded.
// Input that already validates as UTF-8 passes through. Otherwise chardet picks the
// charset, falling back to Windows-1252.
func NewUTF8Reader(r io.Reader) (io.Reader, error) {
	br := bufio.NewReaderSize(r, sniffSize)

	buf, err := br.Peek(sniffSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("peek: %w", err)
	}

	switch {
	case bytes.HasPrefix(buf, bomUTF8):
		_, _ = br.Discard(len(bomUTF8))
		return br, nil
	case bytes.HasPrefix(buf, bomUTF16LE):
		return transform.NewReader(br, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()), nil
	case bytes.HasPrefix(buf, bomUTF16BE):
		return transform.NewReader(br, unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()), nil
	}

	if validUTF8Prefix(buf) {
		return br, nil
	}

	if res, err := chardet.NewTextDetector().DetectBest(buf); err == nil {
		if res.Charset == "UTF-8" {
			return br, nil
		}

		if enc, ok := charsets[res.Charset]; ok {
			return transform.NewReader(br, enc.NewDecoder()), nil
		}
	}

	return transform.NewReader(br, charmap.Windows1252.NewDecoder()), nil
}

// validUTF8Prefix is utf8.Valid tolerant of a multi-byte rune cut off at the end of
// a full sniff window.
func validUTF8Prefix(buf []byte) bool {
	if len(buf) < sniffSize {
		return utf8.Valid(buf)
	}

	for cut := 0; cut < utf8.UTFMax; cut++ {
		if utf8.Valid(buf[:len(buf)-cut]) {
			return true
		}
	}

	return false
}
