package subtitle

import (
	"strings"
)

const (
	fieldStart = "Start"
	fieldEnd   = "End"
	fieldText  = "Text"
)

// field schema declared by the Events Format line. Built once per document
// and never mutated.
type FormatSpec struct {
	fields []string
	index  map[string]int
	start  int
	end    int
	text   int
}

// parses the part of a Format line after "Format:"
func ParseFormat(decl string) (*FormatSpec, error) {
	columns := strings.Split(decl, ",")
	spec := &FormatSpec{
		fields: make([]string, len(columns)),
		index:  make(map[string]int, len(columns)),
	}
	for i, col := range columns {
		name := strings.TrimSpace(col)
		spec.fields[i] = name
		key := strings.ToLower(name)
		if _, dup := spec.index[key]; !dup {
			spec.index[key] = i
		}
	}

	var missing []string
	resolve := func(name string) int {
		i, ok := spec.index[strings.ToLower(name)]
		if !ok {
			missing = append(missing, name)
			return -1
		}
		return i
	}
	spec.start = resolve(fieldStart)
	spec.end = resolve(fieldEnd)
	spec.text = resolve(fieldText)

	if len(missing) > 0 {
		return nil, &MissingFieldError{Fields: missing}
	}
	return spec, nil
}

func (f *FormatSpec) Len() int {
	return len(f.fields)
}

func (f *FormatSpec) Fields() []string {
	out := make([]string, len(f.fields))
	copy(out, f.fields)
	return out
}

// column position of a declared field, case-insensitive
func (f *FormatSpec) Index(name string) (int, bool) {
	i, ok := f.index[strings.ToLower(strings.TrimSpace(name))]
	return i, ok
}
