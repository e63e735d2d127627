package charset

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/dimchansky/utfbom"
	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// bytes handed to the detector; subtitle headers are plain ASCII so the
// sample has to reach into the dialogue lines
const sampleSize = 64 * 1024

// minimum chardet confidence before a non UTF-8 guess is trusted
const minConfidence = 30

// well-formed multibyte sequences needed per malformed byte before a sample
// is read as damaged UTF-8 rather than a legacy encoding
const mostlyUTF8Ratio = 10

const (
	Auto = "auto"
	UTF8 = "utf-8"
)

// describes how an input stream was decoded
type Detection struct {
	Charset    string
	Confidence int
	BOM        bool

	// malformed UTF-8 is replaced with U+FFFD while decoding
	Lossy bool
}

// returns a reader producing UTF-8 without a byte order mark. name forces an
// encoding ("auto" or empty runs detection).
func NewReader(r io.Reader, name string) (io.Reader, Detection, error) {
	stripped, bom := utfbom.Skip(r)
	switch bom {
	case utfbom.UTF8:
		return stripped, Detection{Charset: UTF8, Confidence: 100, BOM: true}, nil
	case utfbom.UTF16LittleEndian:
		return decode(stripped, unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)),
			Detection{Charset: "utf-16le", Confidence: 100, BOM: true}, nil
	case utfbom.UTF16BigEndian:
		return decode(stripped, unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)),
			Detection{Charset: "utf-16be", Confidence: 100, BOM: true}, nil
	case utfbom.UTF32LittleEndian, utfbom.UTF32BigEndian:
		return nil, Detection{}, fmt.Errorf("unsupported encoding: %s", bom)
	}

	name = strings.ToLower(strings.TrimSpace(name))
	if name != "" && name != Auto {
		enc, err := Lookup(name)
		if err != nil {
			return nil, Detection{}, err
		}
		return decode(stripped, enc), Detection{Charset: name, Confidence: 100}, nil
	}

	buffered := bufio.NewReaderSize(stripped, sampleSize)
	sample, err := buffered.Peek(sampleSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, Detection{}, fmt.Errorf("failed to read input sample: %w", err)
	}

	det := Detect(sample)
	if det.Charset == UTF8 {
		if det.Lossy {
			return decode(buffered, unicode.UTF8), det, nil
		}
		return buffered, det, nil
	}
	enc, err := Lookup(det.Charset)
	if err != nil {
		return buffered, Detection{Charset: UTF8}, nil
	}
	return decode(buffered, enc), det, nil
}

// guesses the charset of sample. Valid UTF-8 (including plain ASCII) always
// wins so detector noise cannot mangle ordinary files, and a sample that is
// overwhelmingly UTF-8 with a few stray bytes stays UTF-8.
func Detect(sample []byte) Detection {
	multibyte, invalid := utf8Stats(sample)
	if invalid == 0 {
		return Detection{Charset: UTF8, Confidence: 100}
	}
	if multibyte >= mostlyUTF8Ratio*invalid {
		return Detection{Charset: UTF8, Confidence: 100 * multibyte / (multibyte + invalid), Lossy: true}
	}

	result, err := chardet.NewTextDetector().DetectBest(sample)
	if err != nil || result == nil || result.Confidence < minConfidence {
		return Detection{Charset: "windows-1252"}
	}

	name := canonicalName(result.Charset)
	if name == UTF8 {
		return Detection{Charset: UTF8, Confidence: result.Confidence, Lossy: true}
	}
	return Detection{Charset: name, Confidence: result.Confidence}
}

// resolves an encoding by name, accepting chardet and WHATWG labels
func Lookup(name string) (encoding.Encoding, error) {
	switch canonicalName(name) {
	case UTF8:
		return encoding.Nop, nil
	case "utf-16le":
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), nil
	case "utf-16be":
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), nil
	case "gb18030":
		return simplifiedchinese.GB18030, nil
	case "big5":
		return traditionalchinese.Big5, nil
	case "shift_jis":
		return japanese.ShiftJIS, nil
	case "euc-jp":
		return japanese.EUCJP, nil
	case "iso-2022-jp":
		return japanese.ISO2022JP, nil
	case "euc-kr":
		return korean.EUCKR, nil
	case "iso-8859-1":
		return charmap.ISO8859_1, nil
	case "windows-1252":
		return charmap.Windows1252, nil
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", name, err)
	}
	return enc, nil
}

func canonicalName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	switch n {
	case "utf-8", "utf8", "ascii", "us-ascii":
		return UTF8
	case "utf-16le", "utf16le":
		return "utf-16le"
	case "utf-16be", "utf16be":
		return "utf-16be"
	case "gb-18030", "gb18030", "gbk", "gb2312":
		return "gb18030"
	case "big5", "big-5":
		return "big5"
	case "shift_jis", "shift-jis", "sjis":
		return "shift_jis"
	case "cp1252", "windows-1252":
		return "windows-1252"
	case "latin1", "iso-8859-1":
		return "iso-8859-1"
	}
	return n
}

func decode(r io.Reader, enc encoding.Encoding) io.Reader {
	if enc == encoding.Nop {
		return r
	}
	return transform.NewReader(r, enc.NewDecoder())
}

// counts well-formed multibyte sequences and malformed bytes. A sequence cut
// off by the edge of a full sample counts as neither.
func utf8Stats(b []byte) (multibyte, invalid int) {
	for i := 0; i < len(b); {
		if b[i] < utf8.RuneSelf {
			i++
			continue
		}
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size == 1 {
			if len(b) == sampleSize && !utf8.FullRune(b[i:]) {
				break
			}
			invalid++
			i++
			continue
		}
		multibyte++
		i += size
	}
	return multibyte, invalid
}
