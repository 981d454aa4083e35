package sqldoc

import (
	"fmt"
	"strconv"

	"github.com/pressly/goose/v3"
)

// Dialect is what differs between SQL databases for the document table.
type Dialect struct {
	// Name identifies the dialect in logs.
	Name string

	// Goose selects the migration dialect.
	Goose goose.Dialect

	// Placeholder returns the bind parameter for the n-th argument, 1-based.
	Placeholder func(n int) string

	// MapError translates driver errors into docstore errors. Nil leaves
	// errors untouched.
	MapError func(err error) error
}

// DollarPlaceholder renders $1, $2, ... as PostgreSQL expects.
func DollarPlaceholder(n int) string {
	return "$" + strconv.Itoa(n)
}

// NumberedQuestionPlaceholder renders ?1, ?2, ... as SQLite accepts.
func NumberedQuestionPlaceholder(n int) string {
	return "?" + strconv.Itoa(n)
}

// queries holds the statements for one dialect, rendered once.
type queries struct {
	get     string
	list    string
	insert  string
	update  string
	delete  string
	version string
}

func buildQueries(d Dialect) queries {
	p := d.Placeholder
	return queries{
		get: fmt.Sprintf(
			`SELECT data, version FROM documents WHERE collection = %s AND id = %s`,
			p(1), p(2)),
		list: fmt.Sprintf(
			`SELECT id, data, version FROM documents WHERE collection = %s ORDER BY id`,
			p(1)),
		insert: fmt.Sprintf(
			`INSERT INTO documents (collection, id, data, version, updated_at)
			 VALUES (%s, %s, %s, 1, %s)
			 ON CONFLICT (collection, id) DO NOTHING`,
			p(1), p(2), p(3), p(4)),
		update: fmt.Sprintf(
			`UPDATE documents SET data = %s, version = version + 1, updated_at = %s
			 WHERE collection = %s AND id = %s AND version = %s`,
			p(1), p(2), p(3), p(4), p(5)),
		delete: fmt.Sprintf(
			`DELETE FROM documents WHERE collection = %s AND id = %s AND version = %s`,
			p(1), p(2), p(3)),
		version: fmt.Sprintf(
			`SELECT version FROM documents WHERE collection = %s AND id = %s`,
			p(1), p(2)),
	}
}
