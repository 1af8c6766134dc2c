// Copyright 2026 The pgbind authors
// Licensed under Apache 2.0, see LICENCE file for details.

package pgbind

import (
	"fmt"
	"reflect"
	"slices"
	"sort"
	"strings"
)

// paramsKind tags the classified shape of user-supplied parameters.
type paramsKind int

const (
	paramsNone paramsKind = iota
	paramsSequence
	paramsMapping
)

// boundParams is the classified form of the user-supplied parameters.
// Classification happens once, in classifyParams; the rest of the pipeline
// switches on the tag instead of re-inspecting runtime types.
type boundParams struct {
	kind    paramsKind
	seq     []any
	mapping map[string]any
}

// count returns the number of supplied parameters regardless of shape.
func (bp boundParams) count() int {
	switch bp.kind {
	case paramsSequence:
		return len(bp.seq)
	case paramsMapping:
		return len(bp.mapping)
	}
	return 0
}

// classifyParams sorts the params argument into a sequence, a mapping or
// nothing. Any slice or array is a sequence except byte slices, which are
// single values even though they are iterable; any map with string keys is a
// mapping. Everything else is a type error naming the runtime type.
func classifyParams(params any) (boundParams, error) {
	switch params := params.(type) {
	case nil:
		return boundParams{kind: paramsNone}, nil
	case S:
		return boundParams{kind: paramsSequence, seq: params}, nil
	case []any:
		return boundParams{kind: paramsSequence, seq: params}, nil
	case M:
		return boundParams{kind: paramsMapping, mapping: params}, nil
	case map[string]any:
		return boundParams{kind: paramsMapping, mapping: params}, nil
	}

	v := reflect.ValueOf(params)
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			break
		}
		seq := make([]any, v.Len())
		for i := range seq {
			seq[i] = v.Index(i).Interface()
		}
		return boundParams{kind: paramsSequence, seq: seq}, nil
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			break
		}
		mapping := make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			mapping[iter.Key().String()] = iter.Value().Interface()
		}
		return boundParams{kind: paramsMapping, mapping: mapping}, nil
	}
	return boundParams{}, fmt.Errorf("query parameters should be a sequence or a mapping, got %T", params)
}

// validateAndReorder reconciles the classified parameters with the scanned
// parts and returns the values aligned with the rewritten query's markers.
// For named queries the order list is the reordering key: server-bind plans
// list each distinct name once in marker order, client-bind plans list every
// occurrence.
func validateAndReorder(parts []queryPart, order []string, params boundParams) ([]any, error) {
	switch params.kind {
	case paramsSequence:
		if len(params.seq) != len(parts)-1 {
			return nil, fmt.Errorf("the query has %d placeholders but %d parameters were passed",
				len(parts)-1, len(params.seq))
		}
		if len(params.seq) > 0 && named(parts) {
			return nil, fmt.Errorf("named placeholders require a mapping of parameters")
		}
		return params.seq, nil

	case paramsMapping:
		if len(parts) > 1 && !named(parts) {
			return nil, fmt.Errorf("positional placeholders (%%s) require a sequence of parameters")
		}
		var missing []string
		seq := make([]any, 0, len(order))
		for _, name := range order {
			v, ok := params.mapping[name]
			if !ok {
				missing = append(missing, name)
				continue
			}
			seq = append(seq, v)
		}
		if len(missing) > 0 {
			// The error path is the only consumer of the sorted list, so it
			// is built here rather than on the hot path.
			sort.Strings(missing)
			return nil, fmt.Errorf("query parameter missing: %s", strings.Join(slices.Compact(missing), ", "))
		}
		return seq, nil
	}

	// No parameters were supplied.
	return nil, nil
}
