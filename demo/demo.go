package demo

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pgbind/pgbind"
	"github.com/pgbind/pgbind/pgxadapt"
)

func example() error {
	ctx := context.Background()
	conn, err := pgconn.Connect(ctx, os.Getenv("DATABASE_URL"))
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	tx := pgxadapt.New()

	// Queries without parameters pass through untouched.
	q := pgbind.NewQuery(tx)
	err = q.Convert(`
		CREATE TABLE IF NOT EXISTS sessions (
			id text PRIMARY KEY,
			account text,
			score bigint,
			started_at timestamptz
		);`, nil)
	if err != nil {
		return err
	}
	rr := conn.ExecParams(ctx, string(q.SQL()), q.Params(), q.Types(), q.Formats(), nil)
	if _, err := rr.Close(); err != nil {
		return err
	}

	// Named placeholders with server-side binding: the statement is parsed
	// once and re-dumped for each row.
	insert := pgbind.NewQuery(tx)
	err = insert.Convert(`
		INSERT INTO sessions (id, account, score, started_at)
		VALUES (%(id)s, %(account)s, %(score)b, %(started_at)s);`,
		pgbind.M{
			"id":         uuid.New().String(),
			"account":    "saba",
			"score":      int64(1500),
			"started_at": time.Now(),
		})
	if err != nil {
		return err
	}
	rr = conn.ExecParams(ctx, string(insert.SQL()), insert.Params(), insert.Types(), insert.Formats(), nil)
	if _, err := rr.Close(); err != nil {
		return err
	}

	err = insert.Dump(pgbind.M{
		"id":         uuid.New().String(),
		"account":    "dave",
		"score":      int64(900),
		"started_at": time.Now(),
	})
	if err != nil {
		return err
	}
	rr = conn.ExecParams(ctx, string(insert.SQL()), insert.Params(), insert.Types(), insert.Formats(), nil)
	if _, err := rr.Close(); err != nil {
		return err
	}

	// Client-side binding produces one self-contained statement, usable on
	// the simple query protocol.
	sel := pgbind.NewClientQuery(tx)
	err = sel.Convert(`
		SELECT account, score FROM sessions
		WHERE score > %s ORDER BY score DESC;`,
		pgbind.S{int64(1000)})
	if err != nil {
		return err
	}
	results, err := conn.Exec(ctx, string(sel.SQL())).ReadAll()
	if err != nil {
		return err
	}
	for _, result := range results {
		for _, row := range result.Rows {
			fmt.Printf("%s scored %s\n", row[0], row[1])
		}
	}
	return nil
}

func main() {
	err := example()
	if err != nil {
		panic(err)
	}
}
