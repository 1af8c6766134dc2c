// Copyright 2026 The pgbind authors
// Licensed under Apache 2.0, see LICENCE file for details.

package pgbind

import (
	"bytes"
	"fmt"
)

// phStyle tracks whether the placeholders seen so far are positional or
// named.
type phStyle int

const (
	styleUnknown phStyle = iota
	stylePositional
	styleNamed
)

// splitQuery scans raw left to right for %-placeholders and splits it into
// queryParts. The returned slice always ends with a sentinel part carrying
// the bytes after the last placeholder, so a query with n placeholders
// produces n+1 parts.
//
// A doubled %% is an escaped percent sign. With collapsePercent it is merged
// into the surrounding prefix as a single %; the client-bind assembler scans
// with collapsePercent false so the doubled percent survives into the
// template, which goes through a second round of %-expansion when the
// literals are merged in.
func splitQuery(raw []byte, encoding string, collapsePercent bool) ([]queryPart, error) {
	var (
		parts []queryPart
		pre   []byte
		style phStyle
	)

	i := 0
	for i < len(raw) {
		j := bytes.IndexByte(raw[i:], '%')
		if j < 0 {
			break
		}
		j += i
		pre = append(pre, raw[i:j]...)

		if j+1 == len(raw) {
			// A bare % as the last byte of the query is literal text.
			pre = append(pre, '%')
			i = len(raw)
			break
		}

		switch c := raw[j+1]; {
		case c == '%':
			if collapsePercent {
				pre = append(pre, '%')
			} else {
				pre = append(pre, '%', '%')
			}
			i = j + 2

		case c == '(':
			name, format, end, err := scanNamed(raw, j, encoding)
			if err != nil {
				return nil, err
			}
			if style == stylePositional {
				return nil, fmt.Errorf("positional and named placeholders cannot be mixed")
			}
			style = styleNamed
			parts = append(parts, queryPart{pre: pre, name: name, format: format})
			pre = nil
			i = end

		case c == ' ':
			return nil, fmt.Errorf("incomplete placeholder: '%%'; if you want to use '%%' as an operator you can double it up, i.e. use '%%%%'")

		case c != 's' && c != 'b' && c != 't':
			return nil, fmt.Errorf("only '%%s', '%%b', '%%t' are allowed as placeholders, got '%s'", decode(raw[j:j+2], encoding))

		default:
			if style == styleNamed {
				return nil, fmt.Errorf("positional and named placeholders cannot be mixed")
			}
			style = stylePositional
			parts = append(parts, queryPart{pre: pre, index: len(parts), format: Format(c)})
			pre = nil
			i = j + 2
		}
	}

	// Sentinel part carrying the trailing bytes.
	pre = append(pre, raw[i:]...)
	parts = append(parts, queryPart{pre: pre, format: FormatAuto})
	return parts, nil
}

// scanNamed scans a %(name)X placeholder whose % sits at raw[start]. It
// returns the name, the format and the position just after the placeholder.
func scanNamed(raw []byte, start int, encoding string) (name string, format Format, end int, err error) {
	rest := raw[start+2:]
	k := bytes.IndexByte(rest, ')')
	if k <= 0 || start+2+k+1 >= len(raw) {
		return "", 0, 0, fmt.Errorf("incomplete placeholder: '%s'", incompleteFragment(raw[start:], encoding))
	}
	switch c := raw[start+2+k+1]; c {
	case 's', 'b', 't':
		return decode(rest[:k], encoding), Format(c), start + 2 + k + 2, nil
	default:
		return "", 0, 0, fmt.Errorf("only '%%s', '%%b', '%%t' are allowed as placeholders, got '%s'", decode(raw[start:start+2+k+2], encoding))
	}
}

// incompleteFragment extracts the offending fragment for an incomplete
// placeholder error: the first whitespace-delimited token starting at the %.
func incompleteFragment(tail []byte, encoding string) string {
	if f := bytes.Fields(tail); len(f) > 0 {
		return decode(f[0], encoding)
	}
	return decode(tail, encoding)
}

// decode renders query bytes as a string for placeholder names and error
// messages. The client encodings PostgreSQL negotiates are ASCII-compatible
// for the byte values the scanner inspects, so the bytes convert directly;
// the encoding name still participates in plan cache keys because the same
// bytes may spell different names under different encodings.
func decode(b []byte, encoding string) string {
	_ = encoding
	return string(b)
}
