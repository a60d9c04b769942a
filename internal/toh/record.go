package toh

import "strings"

const (
	FieldTarget    = "target"
	FieldSubtarget = "subtarget"
)

// Record is one row of the Table of Hardware, keyed by column name.
type Record map[string]string

// DisplayFields is the projection returned by Catalog.Info, in display order.
var DisplayFields = []string{
	"brand",
	"model",
	"version",
	"cpu",
	"supportedsincerel",
	"supportedcurrentrel",
	"packagearchitecture",
	"wikideviurl",
}

// junkValues are the placeholders the ToH dump uses for unknown platform
// fields. "Â¿" is "¿" read back as Latin-1 after a UTF-8 round trip.
var junkValues = []string{"", "nan", "null", "-", "?", "¿", "Â¿"}

// IsJunk reports whether value is one of the ToH placeholder values.
func IsJunk(value string) bool {
	trimmed := strings.TrimSpace(value)
	for _, junk := range junkValues {
		if strings.EqualFold(trimmed, junk) {
			return true
		}
	}
	return false
}

func (r Record) Target() string {
	return strings.TrimSpace(r[FieldTarget])
}

func (r Record) Subtarget() string {
	return strings.TrimSpace(r[FieldSubtarget])
}

func (r Record) valid() bool {
	return !IsJunk(r[FieldTarget]) && !IsJunk(r[FieldSubtarget])
}

func (r Record) project(fields []string) Record {
	out := make(Record, len(fields))
	for _, field := range fields {
		out[field] = r[field]
	}
	return out
}

func (r Record) clone() Record {
	out := make(Record, len(r))
	for key, value := range r {
		out[key] = value
	}
	return out
}
