// Package charset converts bank exports of unknown encoding to UTF-8.
package charset

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const sniffSize = 4096

const (
	UTF8        = "UTF-8"
	UTF16LE     = "UTF-16LE"
	UTF16BE     = "UTF-16BE"
	Windows1252 = "windows-1252"
	ISO88599    = "ISO-8859-9"
)

var boms = []struct {
	prefix []byte
	name   string
}{
	{prefix: []byte{0xEF, 0xBB, 0xBF}, name: UTF8},
	{prefix: []byte{0xFF, 0xFE}, name: UTF16LE},
	{prefix: []byte{0xFE, 0xFF}, name: UTF16BE},
}

// decoders for the non-UTF-8 charsets chardet reports in Portuguese and
// English bank exports. Anything else falls back to Windows-1252.
var decoders = map[string]encoding.Encoding{
	"ISO-8859-1": charmap.Windows1252,
	Windows1252:  charmap.Windows1252,
	ISO88599:     charmap.ISO8859_9,
}

// Detect names the charset of a sample. A byte-order mark wins, valid UTF-8
// comes next, then chardet's best guess.
func Detect(sample []byte) string {
	for _, b := range boms {
		if bytes.HasPrefix(sample, b.prefix) {
			return b.name
		}
	}

	if utf8.Valid(trimPartialRune(sample)) {
		return UTF8
	}

	result, err := chardet.NewTextDetector().DetectBest(sample)
	if err != nil {
		return Windows1252
	}

	if result.Charset == UTF8 {
		return UTF8
	}

	if _, ok := decoders[result.Charset]; ok {
		return result.Charset
	}

	return Windows1252
}

// NewReader returns a UTF-8 view of r with any byte-order mark removed,
// along with the name of the detected charset.
func NewReader(r io.Reader) (io.Reader, string, error) {
	br := bufio.NewReaderSize(r, sniffSize)

	sample, err := br.Peek(sniffSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, "", fmt.Errorf("peek: %w", err)
	}

	name := Detect(sample)

	switch name {
	case UTF8:
		if bytes.HasPrefix(sample, boms[0].prefix) {
			_, _ = br.Discard(len(boms[0].prefix))
		}

		return br, name, nil
	case UTF16LE:
		return transform.NewReader(br, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()), name, nil
	case UTF16BE:
		return transform.NewReader(br, unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()), name, nil
	}

	enc, ok := decoders[name]
	if !ok {
		enc = charmap.Windows1252
	}

	return transform.NewReader(br, enc.NewDecoder()), name, nil
}

// trimPartialRune drops a multi-byte sequence cut off by the end of a sample.
func trimPartialRune(b []byte) []byte {
	for i := 1; i <= utf8.UTFMax && i <= len(b); i++ {
		if !utf8.RuneStart(b[len(b)-i]) {
			continue
		}

		if !utf8.FullRune(b[len(b)-i:]) {
			return b[:len(b)-i]
		}

		break
	}

	return b
}
