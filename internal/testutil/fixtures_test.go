package testutil

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedUsers(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	defer db.Close()

	SeedUsers(t, db)

	var users, tags int
	require.NoError(t, db.QueryRow("SELECT count(*) FROM users").Scan(&users))
	require.NoError(t, db.QueryRow("SELECT count(*) FROM tags").Scan(&tags))
	assert.Equal(t, 4, users)
	assert.Equal(t, 4, tags)
}

func TestColumns_FreshMap(t *testing.T) {
	a := Columns()
	delete(a, "id")

	b := Columns()
	assert.Contains(t, b, "id")
	assert.Equal(t, "users.id", b["id"].Qualified())
	require.NotNil(t, b["tags"].Relation)
	assert.Equal(t, "tags", b["tags"].Relation.Table)
}
