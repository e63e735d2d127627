package charset

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

func readAll(t *testing.T, r io.Reader) string {
	t.Helper()
	b, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	return string(b)
}

func TestNewReaderPlainUTF8(t *testing.T) {
	input := "[Events]\nDialogue: 0,0:00:01.00,0:00:02.00,Default,,0,0,0,,héllo\n"

	r, det, err := NewReader(bytes.NewReader([]byte(input)), Auto)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	if det.Charset != UTF8 {
		t.Errorf("expected utf-8, got %s", det.Charset)
	}
	if got := readAll(t, r); got != input {
		t.Errorf("expected %q, got %q", input, got)
	}
}

func TestNewReaderStripsUTF8BOM(t *testing.T) {
	input := append([]byte{0xEF, 0xBB, 0xBF}, []byte("[Events]\n")...)

	r, det, err := NewReader(bytes.NewReader(input), "")
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	if !det.BOM {
		t.Error("expected BOM to be reported")
	}
	if got := readAll(t, r); got != "[Events]\n" {
		t.Errorf("expected BOM stripped, got %q", got)
	}
}

func TestNewReaderUTF16WithBOM(t *testing.T) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	encoded, err := enc.Bytes([]byte("Dialogue: ça va\n"))
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	r, det, err := NewReader(bytes.NewReader(encoded), Auto)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	if det.Charset != "utf-16le" {
		t.Errorf("expected utf-16le, got %s", det.Charset)
	}
	if got := readAll(t, r); got != "Dialogue: ça va\n" {
		t.Errorf("unexpected decoded text %q", got)
	}
}

func TestNewReaderForcedCharset(t *testing.T) {
	encoded, err := charmap.Windows1252.NewEncoder().Bytes([]byte("Crème brûlée"))
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	r, det, err := NewReader(bytes.NewReader(encoded), "cp1252")
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	if det.Charset != "cp1252" {
		t.Errorf("expected forced charset to be reported, got %s", det.Charset)
	}
	if got := readAll(t, r); got != "Crème brûlée" {
		t.Errorf("unexpected decoded text %q", got)
	}
}

func TestNewReaderUnknownForcedCharset(t *testing.T) {
	_, _, err := NewReader(bytes.NewReader([]byte("x")), "klingon-8")
	if err == nil {
		t.Fatal("expected error for unknown charset")
	}
}

func TestDetectPrefersUTF8(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{"empty", nil},
		{"ascii", []byte("Format: Layer, Start, End, Text")},
		{"multibyte", []byte("こんにちは、世界")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect(tt.input); got.Charset != UTF8 {
				t.Errorf("Detect(%q) = %s, want utf-8", tt.input, got.Charset)
			}
		})
	}
}

func TestDetectMostlyUTF8KeepsUTF8(t *testing.T) {
	sample := []byte(strings.Repeat("Déjà vu, señor. ", 10) + "stray \xff byte")

	det := Detect(sample)
	if det.Charset != UTF8 {
		t.Fatalf("expected utf-8, got %s", det.Charset)
	}
	if !det.Lossy {
		t.Error("expected lossy decoding to be reported")
	}

	r, _, err := NewReader(bytes.NewReader(sample), Auto)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	got := readAll(t, r)
	if !strings.HasPrefix(got, "Déjà vu, señor.") {
		t.Errorf("expected UTF-8 text preserved, got %q", got)
	}
	if !strings.HasSuffix(got, "stray \uFFFD byte") {
		t.Errorf("expected replacement character for stray byte, got %q", got)
	}
}

func TestDetectLegacyBytesLeaveUTF8(t *testing.T) {
	encoded, err := charmap.Windows1252.NewEncoder().Bytes([]byte(strings.Repeat("Crème brûlée à la française. ", 10)))
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if det := Detect(encoded); det.Charset == UTF8 {
		t.Errorf("expected a legacy charset, got %+v", det)
	}
}

func TestLookup(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"utf-8", false},
		{"GB-18030", false},
		{"Big5", false},
		{"Shift_JIS", false},
		{"windows-1251", false},
		{"ISO-8859-1", false},
		{"not-a-charset", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Lookup(tt.name)
			if (err != nil) != tt.wantErr {
				t.Errorf("Lookup(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
		})
	}
}
