package subtitle

import (
	"strings"
)

// fields of one Dialogue line, positioned by the document's FormatSpec
type RawDialogue struct {
	spec   *FormatSpec
	fields []string
}

// splits the part of a Dialogue line after "Dialogue:". The last declared
// field absorbs any remaining commas since subtitle text is free-form.
func (f *FormatSpec) ParseDialogue(rest string) (RawDialogue, error) {
	content := strings.TrimLeft(rest, " \t")
	parts := strings.SplitN(content, ",", len(f.fields))
	if len(parts) < len(f.fields) {
		return RawDialogue{}, &FieldCountError{
			Want: len(f.fields),
			Got:  len(parts),
		}
	}
	return RawDialogue{spec: f, fields: parts}, nil
}

func (d RawDialogue) Start() string {
	return strings.TrimSpace(d.fields[d.spec.start])
}

func (d RawDialogue) End() string {
	return strings.TrimSpace(d.fields[d.spec.end])
}

// raw text field, override codes and escapes intact
func (d RawDialogue) Text() string {
	return d.fields[d.spec.text]
}

func (d RawDialogue) Field(name string) (string, bool) {
	i, ok := d.spec.Index(name)
	if !ok {
		return "", false
	}
	return d.fields[i], true
}
