/*
Package pgbind converts queries written with %-style placeholders, together
with their parameter values, into a form a PostgreSQL backend can execute.

Two binding strategies are supported.

Server-side binding ([Query]) rewrites the placeholders into native positional
markers and keeps the parameter values out of the query text:

	q := pgbind.NewQuery(tx)
	err := q.Convert("SELECT * FROM t WHERE a = %s AND b = %s", pgbind.S{1, "x"})
	// q.SQL()     => SELECT * FROM t WHERE a = $1 AND b = $2
	// q.Params()  => the two values in wire form
	// q.Types()   => their type OIDs
	// q.Formats() => their wire format codes

The rewritten query, values, OIDs and formats plug directly into the extended
query protocol, e.g. pgconn's ExecParams.

Client-side binding ([ClientQuery]) renders each value as a SQL literal and
splices it into the query text, producing a single self-contained statement:

	cq := pgbind.NewClientQuery(tx)
	err := cq.Convert("SELECT * FROM t WHERE a = %s", pgbind.S{1})
	// cq.SQL() => SELECT * FROM t WHERE a = 1

# Placeholders

A placeholder is %s, %b or %t for positional parameters, or %(name)s,
%(name)b, %(name)t for named parameters. The trailing letter selects the
parameter format: s lets the value transformer choose, t forces the text wire
format and b the binary one. A literal percent sign is written %%. Positional
and named placeholders cannot be mixed in one query.

Positional placeholders take their values from a sequence ([S] or any slice),
named placeholders from a mapping ([M] or any map with string keys). In a
server-bind query a repeated name refers to a single marker and its value is
sent once; in a client-bind query every occurrence is substituted.

# Value transformers

Rendering individual values is delegated to a [Transformer], the collaborator
that owns the type mapping and the client encoding negotiated with the server.
The pgxadapt package provides a Transformer built on pgx's type map.

Conversion results are memoized in bounded per-strategy caches, so repeating a
statement skips the scanning and rewriting work. Very long queries and queries
with very many parameters bypass the caches.
*/
package pgbind
