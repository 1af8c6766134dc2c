// Copyright 2026 The pgbind authors
// Licensed under Apache 2.0, see LICENCE file for details.

package pgbind

import (
	"bytes"
	"fmt"
	"strconv"
)

// serverPlan is the parsed form of a server-bind query: the query rewritten
// with $N markers, the requested format per marker, and the order in which
// named placeholders first appear. Plans are immutable once built and are
// shared by reference through the plan cache.
type serverPlan struct {
	sql     []byte
	formats []Format
	// order is nil unless the placeholders are named.
	order []string
	parts []queryPart
}

// clientPlan is the parsed form of a client-bind query: a template with one
// generic %s marker per placeholder occurrence and the name at every
// occurrence. No formats are kept, formatting happens at literal-rendering
// time.
type clientPlan struct {
	template []byte
	order    []string
	parts    []queryPart
}

// assembleServer scans raw and rewrites each placeholder into a $N marker.
// Positional placeholders are numbered by occurrence. A named placeholder is
// allocated a marker on first occurrence and reuses it on repeats, so its
// value is transmitted once; a repeat asking for a different format is an
// error.
func assembleServer(raw []byte, encoding string) (*serverPlan, error) {
	parts, err := splitQuery(raw, encoding, true)
	if err != nil {
		return nil, err
	}

	plan := &serverPlan{parts: parts}
	var sql []byte

	if named(parts) {
		type namedMarker struct {
			marker []byte
			format Format
		}
		seen := make(map[string]namedMarker)
		for _, part := range parts[:len(parts)-1] {
			sql = append(sql, part.pre...)
			nm, ok := seen[part.name]
			if !ok {
				nm = namedMarker{
					marker: []byte("$" + strconv.Itoa(len(seen)+1)),
					format: part.format,
				}
				seen[part.name] = nm
				plan.order = append(plan.order, part.name)
				plan.formats = append(plan.formats, part.format)
			} else if nm.format != part.format {
				return nil, fmt.Errorf("placeholder '%s' cannot have different formats", part.name)
			}
			sql = append(sql, nm.marker...)
		}
	} else {
		for _, part := range parts[:len(parts)-1] {
			sql = append(sql, part.pre...)
			sql = append(sql, '$')
			sql = strconv.AppendInt(sql, int64(part.index)+1, 10)
			plan.formats = append(plan.formats, part.format)
		}
	}

	sql = append(sql, parts[len(parts)-1].pre...)
	plan.sql = sql
	return plan, nil
}

// assembleClient scans raw and rewrites every placeholder into a generic %s
// marker. Unlike server-bind, a repeated name is recorded at every position
// it appears: the merge pass consumes one literal per marker, so repeats need
// a value supplied each time.
func assembleClient(raw []byte, encoding string) (*clientPlan, error) {
	parts, err := splitQuery(raw, encoding, false)
	if err != nil {
		return nil, err
	}

	plan := &clientPlan{parts: parts}
	var template []byte

	isNamed := named(parts)
	for _, part := range parts[:len(parts)-1] {
		template = append(template, part.pre...)
		template = append(template, '%', 's')
		if isNamed {
			plan.order = append(plan.order, part.name)
		}
	}

	template = append(template, parts[len(parts)-1].pre...)
	plan.template = template
	return plan, nil
}

// mergeTemplate substitutes the ordered literals into a client-bind template.
// This is the deferred round of %-expansion: %s consumes the next literal and
// %% collapses to a single %. The validator has already matched counts, so a
// mismatch here is an internal error.
func mergeTemplate(template []byte, literals [][]byte) ([]byte, error) {
	merged := make([]byte, 0, len(template))
	next := 0

	i := 0
	for i < len(template) {
		j := bytes.IndexByte(template[i:], '%')
		if j < 0 {
			break
		}
		j += i
		merged = append(merged, template[i:j]...)

		switch {
		case j+1 < len(template) && template[j+1] == '%':
			merged = append(merged, '%')
			i = j + 2
		case j+1 < len(template) && template[j+1] == 's':
			if next >= len(literals) {
				return nil, fmt.Errorf("internal error: query template needs more than %d parameters", len(literals))
			}
			merged = append(merged, literals[next]...)
			next++
			i = j + 2
		default:
			// A bare % at the end of the template is literal text.
			merged = append(merged, '%')
			i = j + 1
		}
	}
	merged = append(merged, template[i:]...)

	if next != len(literals) {
		return nil, fmt.Errorf("internal error: %d parameters for a query template with %d markers", len(literals), next)
	}
	return merged, nil
}
