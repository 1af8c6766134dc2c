// Copyright 2026 The pgbind authors
// Licensed under Apache 2.0, see LICENCE file for details.

package pgbind

import (
	"fmt"
)

// M is a convenience type for passing named parameters by key. M is not a
// special type, any map with string keys can be used.
type M map[string]any

// S is a convenience type for passing positional parameters. Any slice or
// array works, except byte slices which are treated as single values.
type S []any

// Transformer converts Go values to PostgreSQL wire representations. It is
// the collaborator that owns the type mapping and the client encoding
// negotiated with the server. The pgxadapt package provides an
// implementation built on pgx's type map.
type Transformer interface {
	// Encoding returns the name of the negotiated client encoding.
	Encoding() string

	// DumpSequence converts values to wire form for server-side binding.
	// formats holds the requested format per value; the returned wire format
	// codes are the resolved ones (0 text, 1 binary), parallel to params and
	// oids. A nil value dumps to a nil params entry.
	DumpSequence(values []any, formats []Format) (params [][]byte, oids []uint32, wire []int16, err error)

	// AsLiteral renders a single value as a SQL literal for client-side
	// binding.
	AsLiteral(v any) ([]byte, error)
}

// Composable is a query object that renders itself to bytes with the help of
// a Transformer, such as a composed SQL expression.
type Composable interface {
	AsBytes(tx Transformer) ([]byte, error)
}

// Query converts a %-placeholder query and its parameters to the server-bind
// form: SQL rewritten with $N markers plus separately transmitted parameter
// values, type OIDs and wire formats. [Query.Convert] parses and binds in
// one step; [Query.Dump] re-binds a fresh parameter set against the same
// parsed query.
//
// A Query holds the state of one statement at a time and is not safe for
// concurrent use. The results plug into the extended query protocol, e.g.
// pgconn's ExecParams.
type Query struct {
	tx       Transformer
	encoding string

	sql     []byte
	params  [][]byte
	oids    []uint32
	formats []int16

	wantFormats []Format
	order       []string
	parts       []queryPart
}

// NewQuery returns a Query dumping values through tx.
func NewQuery(tx Transformer) *Query {
	return &Query{tx: tx, encoding: tx.Encoding()}
}

// SQL returns the rewritten query bytes.
func (q *Query) SQL() []byte { return q.sql }

// Params returns the dumped parameter values. It is nil when no binding was
// requested; individual entries are nil for NULL values.
func (q *Query) Params() [][]byte { return q.params }

// Types returns the parameter type OIDs, parallel to Params.
func (q *Query) Types() []uint32 { return q.oids }

// Formats returns the resolved wire format codes, parallel to Params.
func (q *Query) Formats() []int16 { return q.formats }

// Convert sets up the query and parameters for execution. The query may be a
// string, a []byte already in the client encoding, or a [Composable]. With
// nil params the query text passes through untouched and no placeholder
// scanning happens at all.
func (q *Query) Convert(query any, params any) error {
	raw, err := q.rawQuery(query)
	if err != nil {
		return err
	}
	bp, err := classifyParams(params)
	if err != nil {
		return err
	}

	if bp.kind == paramsNone {
		q.setPlan(raw, nil, nil, sentinelParts(raw))
		return q.dump(bp)
	}

	assemble := func() (*serverPlan, error) { return assembleServer(raw, q.encoding) }
	var plan *serverPlan
	if cacheable(raw, bp) {
		plan, err = serverPlans.getOrAdd(planKey{query: string(raw), encoding: q.encoding}, assemble)
	} else {
		plan, err = assemble()
	}
	if err != nil {
		return err
	}
	q.setPlan(plan.sql, plan.formats, plan.order, plan.parts)
	return q.dump(bp)
}

// Dump processes a new set of parameters against the query parsed by the
// last Convert. It rewrites the bound values, types and formats from
// scratch; nothing from the previous parameter set is kept.
func (q *Query) Dump(params any) error {
	bp, err := classifyParams(params)
	if err != nil {
		return err
	}
	return q.dump(bp)
}

func (q *Query) setPlan(sql []byte, formats []Format, order []string, parts []queryPart) {
	q.sql = sql
	q.wantFormats = formats
	q.order = order
	q.parts = parts
}

func (q *Query) dump(bp boundParams) error {
	if bp.kind == paramsNone {
		q.params = nil
		q.oids = nil
		q.formats = nil
		return nil
	}
	seq, err := validateAndReorder(q.parts, q.order, bp)
	if err != nil {
		return err
	}
	q.params, q.oids, q.formats, err = q.tx.DumpSequence(seq, q.wantFormats)
	return err
}

// rawQuery renders the query argument to bytes.
func (q *Query) rawQuery(query any) ([]byte, error) {
	switch query := query.(type) {
	case string:
		return []byte(query), nil
	case []byte:
		return query, nil
	case Composable:
		return query.AsBytes(q.tx)
	}
	return nil, fmt.Errorf("query should be a string, []byte or Composable, got %T", query)
}

// sentinelParts is the parse of a query that was never scanned: a single
// sentinel with no placeholders. It keeps a later Dump well-defined.
func sentinelParts(raw []byte) []queryPart {
	return []queryPart{{pre: raw, format: FormatAuto}}
}

// ClientQuery is the client-bind variant of [Query]: parameter values are
// rendered as literals and merged into the query text, producing a single
// self-contained statement with nothing transmitted separately. Params
// returns the rendered literals; Types and Formats stay nil.
type ClientQuery struct {
	Query
	template []byte
}

// NewClientQuery returns a ClientQuery rendering literals through tx.
func NewClientQuery(tx Transformer) *ClientQuery {
	return &ClientQuery{Query: Query{tx: tx, encoding: tx.Encoding()}}
}

// Convert sets up the query and parameters for execution, splicing the
// parameter values into the query text.
func (q *ClientQuery) Convert(query any, params any) error {
	raw, err := q.rawQuery(query)
	if err != nil {
		return err
	}
	bp, err := classifyParams(params)
	if err != nil {
		return err
	}

	if bp.kind == paramsNone {
		q.setPlan(raw, nil, nil, sentinelParts(raw))
		q.template = nil
		return q.dump(bp)
	}

	assemble := func() (*clientPlan, error) { return assembleClient(raw, q.encoding) }
	var plan *clientPlan
	if cacheable(raw, bp) {
		plan, err = clientPlans.getOrAdd(planKey{query: string(raw), encoding: q.encoding}, assemble)
	} else {
		plan, err = assemble()
	}
	if err != nil {
		return err
	}
	q.template = plan.template
	q.setPlan(nil, nil, plan.order, plan.parts)
	return q.dump(bp)
}

// Dump renders a new set of parameters into the template parsed by the last
// Convert, replacing the merged query.
func (q *ClientQuery) Dump(params any) error {
	bp, err := classifyParams(params)
	if err != nil {
		return err
	}
	return q.dump(bp)
}

func (q *ClientQuery) dump(bp boundParams) error {
	q.oids = nil
	q.formats = nil
	if bp.kind == paramsNone {
		q.params = nil
		return nil
	}
	seq, err := validateAndReorder(q.parts, q.order, bp)
	if err != nil {
		return err
	}
	literals := make([][]byte, len(seq))
	for i, v := range seq {
		if v == nil {
			literals[i] = []byte("NULL")
			continue
		}
		if literals[i], err = q.tx.AsLiteral(v); err != nil {
			return err
		}
	}
	q.params = literals
	q.sql, err = mergeTemplate(q.template, literals)
	return err
}
