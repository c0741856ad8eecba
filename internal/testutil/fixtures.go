package testutil

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/sift/internal/queryir"
)

// Fixture columns for the users/tags schema created by SeedUsers.
var (
	UsersID       = queryir.Column{Table: "users", Name: "id"}
	UsersUsername = queryir.Column{Table: "users", Name: "username"}
	UsersEmail    = queryir.Column{Table: "users", Name: "email"}
	UsersAge      = queryir.Column{Table: "users", Name: "age"}
	UsersTags     = queryir.Column{
		Table:    "users",
		Name:     "id",
		Relation: &queryir.Relation{Table: "tags", ForeignKey: "user_id"},
	}
	TagsName = queryir.Column{Table: "tags", Name: "name"}
)

// Columns returns the fixture field names mapped to their columns.
// A fresh map is returned on every call.
func Columns() map[string]queryir.Column {
	return map[string]queryir.Column{
		"id":        UsersID,
		"username":  UsersUsername,
		"email":     UsersEmail,
		"age":       UsersAge,
		"tags":      UsersTags,
		"tags.name": TagsName,
	}
}

// Schema creates the users and tags tables.
const Schema = `
CREATE TABLE users (
	id       INTEGER PRIMARY KEY,
	username TEXT NOT NULL,
	email    TEXT,
	age      INTEGER
);
CREATE TABLE tags (
	user_id INTEGER NOT NULL REFERENCES users(id),
	name    TEXT NOT NULL
);
`

// Seed rows. Bob has no email, carol a blank one, dave no tags.
const seedRows = `
INSERT INTO users (id, username, email, age) VALUES
	(1, 'alice', 'alice@example.com', 31),
	(2, 'Bob',   NULL,                25),
	(3, 'carol', '   ',               42),
	(4, 'dave',  'dave@example.org',  19);
INSERT INTO tags (user_id, name) VALUES
	(1, 'go'), (1, 'sql'),
	(2, 'go'),
	(3, 'rust');
`

// SeedUsers creates the fixture schema in db and inserts the seed rows.
func SeedUsers(t testing.TB, db *sql.DB) {
	t.Helper()
	_, err := db.Exec(Schema)
	require.NoError(t, err, "create fixture schema")
	_, err = db.Exec(seedRows)
	require.NoError(t, err, "insert fixture rows")
}
