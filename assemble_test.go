// Copyright 2026 The pgbind authors
// Licensed under Apache 2.0, see LICENCE file for details.

package pgbind

import (
	. "gopkg.in/check.v1"
)

type assembleSuite struct{}

var _ = Suite(&assembleSuite{})

var assembleServerTests = []struct {
	summary string
	query   string
	sql     string
	formats []Format
	order   []string
}{{
	"no placeholders",
	"SELECT 1",
	"SELECT 1",
	nil,
	nil,
}, {
	"positional placeholders numbered by occurrence",
	"SELECT * FROM t WHERE a = %s AND b = %s",
	"SELECT * FROM t WHERE a = $1 AND b = $2",
	[]Format{FormatAuto, FormatAuto},
	nil,
}, {
	"positional formats collected in order",
	"INSERT INTO t VALUES (%t, %b, %s)",
	"INSERT INTO t VALUES ($1, $2, $3)",
	[]Format{FormatText, FormatBinary, FormatAuto},
	nil,
}, {
	"named placeholder reuses its marker",
	"SELECT %(a)s, %(a)s, %(b)t",
	"SELECT $1, $1, $2",
	[]Format{FormatAuto, FormatText},
	[]string{"a", "b"},
}, {
	"name order follows first occurrence",
	"SELECT %(b)s, %(a)s, %(b)s",
	"SELECT $1, $2, $1",
	[]Format{FormatAuto, FormatAuto},
	[]string{"b", "a"},
}, {
	"escaped percent collapses",
	"100%% done: %s",
	"100% done: $1",
	[]Format{FormatAuto},
	nil,
}}

func (s *assembleSuite) TestAssembleServer(c *C) {
	for _, t := range assembleServerTests {
		plan, err := assembleServer([]byte(t.query), "UTF8")
		cm := Commentf("%s: %q", t.summary, t.query)
		c.Assert(err, IsNil, cm)
		c.Assert(string(plan.sql), Equals, t.sql, cm)
		c.Assert(plan.formats, DeepEquals, t.formats, cm)
		c.Assert(plan.order, DeepEquals, t.order, cm)
		c.Assert(plan.parts, HasLen, len(t.formats)+1, cm)
	}
}

func (s *assembleSuite) TestAssembleServerConflictingFormats(c *C) {
	_, err := assembleServer([]byte("SELECT %(a)s WHERE x = %(a)b"), "UTF8")
	c.Assert(err, ErrorMatches, "placeholder 'a' cannot have different formats")

	// The same format twice is fine.
	plan, err := assembleServer([]byte("SELECT %(a)b WHERE x = %(a)b"), "UTF8")
	c.Assert(err, IsNil)
	c.Assert(string(plan.sql), Equals, "SELECT $1 WHERE x = $1")
	c.Assert(plan.formats, DeepEquals, []Format{FormatBinary})
}

var assembleClientTests = []struct {
	summary  string
	query    string
	template string
	order    []string
}{{
	"no placeholders",
	"SELECT 1",
	"SELECT 1",
	nil,
}, {
	"positional placeholders become generic markers",
	"SELECT * FROM t WHERE a = %s AND b = %b",
	"SELECT * FROM t WHERE a = %s AND b = %s",
	nil,
}, {
	"named order records every occurrence including repeats",
	"SELECT %(a)s, %(a)s, %(b)t",
	"SELECT %s, %s, %s",
	[]string{"a", "a", "b"},
}, {
	"escaped percent is preserved in the template",
	"100%% done: %s",
	"100%% done: %s",
	nil,
}}

func (s *assembleSuite) TestAssembleClient(c *C) {
	for _, t := range assembleClientTests {
		plan, err := assembleClient([]byte(t.query), "UTF8")
		cm := Commentf("%s: %q", t.summary, t.query)
		c.Assert(err, IsNil, cm)
		c.Assert(string(plan.template), Equals, t.template, cm)
		c.Assert(plan.order, DeepEquals, t.order, cm)
	}
}

func (s *assembleSuite) TestAssembleClientConflictingFormatsAllowed(c *C) {
	// Client-bind has no format list, so a repeated name may ask for
	// different formats without error.
	plan, err := assembleClient([]byte("SELECT %(a)s, %(a)b"), "UTF8")
	c.Assert(err, IsNil)
	c.Assert(string(plan.template), Equals, "SELECT %s, %s")
	c.Assert(plan.order, DeepEquals, []string{"a", "a"})
}

func (s *assembleSuite) TestMergeTemplate(c *C) {
	lits := func(ss ...string) [][]byte {
		bs := make([][]byte, len(ss))
		for i, s := range ss {
			bs[i] = []byte(s)
		}
		return bs
	}

	merged, err := mergeTemplate([]byte("SELECT %s, %s"), lits("1", "'x'"))
	c.Assert(err, IsNil)
	c.Assert(string(merged), Equals, "SELECT 1, 'x'")

	// The deferred round of %-expansion collapses %% now.
	merged, err = mergeTemplate([]byte("100%% done: %s"), lits("5"))
	c.Assert(err, IsNil)
	c.Assert(string(merged), Equals, "100% done: 5")

	// Count mismatches cannot get past the validator, so they are internal
	// errors here.
	_, err = mergeTemplate([]byte("%s %s"), lits("1"))
	c.Assert(err, ErrorMatches, "internal error: query template needs more than 1 parameters")
	_, err = mergeTemplate([]byte("%s"), lits("1", "2"))
	c.Assert(err, ErrorMatches, "internal error: 2 parameters for a query template with 1 markers")
}

func (s *assembleSuite) TestEscapedPercentResolvesIdentically(c *C) {
	// Server-bind collapses %% at scan time, client-bind at merge time; the
	// final literal text agrees.
	server, err := assembleServer([]byte("100%% done: %s"), "UTF8")
	c.Assert(err, IsNil)
	c.Assert(string(server.sql), Equals, "100% done: $1")

	client, err := assembleClient([]byte("100%% done: %s"), "UTF8")
	c.Assert(err, IsNil)
	merged, err := mergeTemplate(client.template, [][]byte{[]byte("5")})
	c.Assert(err, IsNil)
	c.Assert(string(merged), Equals, "100% done: 5")
}
