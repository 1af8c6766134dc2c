package pgbind

import "fmt"

// Format is the parameter format requested by a placeholder. It is the format
// the caller asked for, which may be auto; the value transformer resolves
// auto to a concrete wire format when the parameters are dumped.
type Format byte

const (
	// FormatAuto (%s) lets the value transformer pick text or binary per type.
	FormatAuto Format = 's'
	// FormatText (%t) forces the text wire format.
	FormatText Format = 't'
	// FormatBinary (%b) forces the binary wire format.
	FormatBinary Format = 'b'
)

func (f Format) String() string {
	switch f {
	case FormatAuto:
		return "auto"
	case FormatText:
		return "text"
	case FormatBinary:
		return "binary"
	}
	return fmt.Sprintf("Format(%q)", byte(f))
}

// A queryPart is a section of a scanned query: the raw bytes leading up to a
// placeholder, and the placeholder itself as either a positional index or a
// name. The last part of every scan is a sentinel holding only the bytes
// after the final placeholder.
type queryPart struct {
	pre    []byte
	index  int
	name   string
	format Format
}

// String returns a representation of the part for debugging and testing.
func (p queryPart) String() string {
	if p.name != "" {
		return fmt.Sprintf("Part[%s %%(%s)%c]", p.pre, p.name, p.format)
	}
	return fmt.Sprintf("Part[%s %d%c]", p.pre, p.index, p.format)
}

// named reports whether the scanned parts use named placeholders. The first
// placeholder establishes the style for the whole query.
func named(parts []queryPart) bool {
	return len(parts) > 1 && parts[0].name != ""
}
