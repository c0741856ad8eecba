package querysql

import (
	"database/sql"
	"testing"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sift/internal/queryir"
)

var (
	usersID       = queryir.Column{Table: "users", Name: "id"}
	usersUsername = queryir.Column{Table: "users", Name: "username"}
	usersTags     = queryir.Column{Table: "users", Name: "id", Relation: &queryir.Relation{Table: "tags", ForeignKey: "user_id"}}
	tagsName      = queryir.Column{Table: "tags", Name: "name"}
)

func TestCompile_SimpleSelect(t *testing.T) {
	compiler := NewSQLCompiler(SQLite{})

	query := queryir.NewSelect("users").
		Where(queryir.And{Predicates: []queryir.Predicate{
			queryir.Compare{Column: usersID, Op: queryir.OpEq, Param: "id_0"},
			queryir.Compare{Column: usersUsername, Op: queryir.OpEq, Param: "username_0"},
		}}).
		Params(map[string]any{"id_0": int64(1), "username_0": "test"})

	sqlStr, args, err := compiler.Compile(query)
	require.NoError(t, err)

	assert.Equal(t, "SELECT * FROM users WHERE users.id = :id_0 AND users.username = :username_0", sqlStr)
	assert.NotContains(t, sqlStr, "test") // value NOT in SQL
	assert.Equal(t, []any{sql.Named("id_0", int64(1)), sql.Named("username_0", "test")}, args)
}

func TestCompile_ColumnsOrderLimit(t *testing.T) {
	compiler := NewSQLCompiler(SQLite{})

	query := queryir.NewSelect("users", "id", "username").
		OrderBy(queryir.OrderKey{Column: usersUsername}, queryir.OrderKey{Column: usersID, Desc: true}).
		WithLimit(5)

	sqlStr, args, err := compiler.Compile(query)
	require.NoError(t, err)
	assert.Equal(t, "SELECT id, username FROM users ORDER BY users.username, users.id DESC LIMIT 5", sqlStr)
	assert.Empty(t, args)
}

func TestCompile_PredicatesSQLite(t *testing.T) {
	tests := []struct {
		name     string
		pred     queryir.Predicate
		expected string
	}{
		{"equal", queryir.Compare{Column: usersID, Op: queryir.OpEq, Param: "p"}, "users.id = :p"},
		{"not equal", queryir.Compare{Column: usersID, Op: queryir.OpNe, Param: "p"}, "users.id != :p"},
		{"greater", queryir.Compare{Column: usersID, Op: queryir.OpGt, Param: "p"}, "users.id > :p"},
		{"greater or equal", queryir.Compare{Column: usersID, Op: queryir.OpGte, Param: "p"}, "users.id >= :p"},
		{"less", queryir.Compare{Column: usersID, Op: queryir.OpLt, Param: "p"}, "users.id < :p"},
		{"less or equal", queryir.Compare{Column: usersID, Op: queryir.OpLte, Param: "p"}, "users.id <= :p"},
		{"folded equal", queryir.Compare{Column: usersUsername, Op: queryir.OpEq, Param: "p", Fold: true}, "lower(users.username) = lower(:p)"},
		{"like", queryir.Like{Column: usersUsername, Param: "p"}, "users.username LIKE :p"},
		{"ilike", queryir.Like{Column: usersUsername, Param: "p", CaseInsensitive: true}, "lower(users.username) LIKE lower(:p)"},
		{"in", queryir.In{Column: usersID, Param: "p"}, "users.id IN (SELECT value FROM json_each(:p))"},
		{"not in", queryir.In{Column: usersID, Param: "p", Negate: true}, "users.id NOT IN (SELECT value FROM json_each(:p))"},
		{"is null", queryir.IsNull{Column: usersUsername}, "users.username IS NULL"},
		{"is not null", queryir.IsNull{Column: usersUsername, Negate: true}, "users.username IS NOT NULL"},
		{"is empty", queryir.IsEmpty{Column: usersUsername}, "trim(users.username) = ''"},
		{"is not empty", queryir.IsEmpty{Column: usersUsername, Negate: true}, "trim(users.username) != ''"},
		{"true", queryir.True{}, "1 = 1"},
		{"nil", nil, "1 = 1"},
		{"empty and", queryir.And{}, "1 = 1"},
		{"empty or", queryir.Or{}, "1 = 0"},
		{"not", queryir.Not{Predicate: queryir.IsNull{Column: usersUsername}}, "NOT (users.username IS NULL)"},
		{
			"any",
			queryir.Any{Column: usersTags, Predicate: queryir.Compare{Column: tagsName, Op: queryir.OpEq, Param: "p"}},
			"EXISTS (SELECT 1 FROM tags WHERE tags.user_id = users.id AND (tags.name = :p))",
		},
		{
			"any without predicate",
			queryir.Any{Column: usersTags},
			"EXISTS (SELECT 1 FROM tags WHERE tags.user_id = users.id)",
		},
		{
			"or inside and is parenthesized",
			queryir.And{Predicates: []queryir.Predicate{
				queryir.Or{Predicates: []queryir.Predicate{
					queryir.IsNull{Column: usersID},
					queryir.IsNull{Column: usersUsername},
				}},
				queryir.True{},
			}},
			"(users.id IS NULL OR users.username IS NULL) AND 1 = 1",
		},
		{
			"single child combinator is not parenthesized",
			queryir.Or{Predicates: []queryir.Predicate{
				queryir.And{Predicates: []queryir.Predicate{queryir.IsNull{Column: usersID}, queryir.True{}}},
			}},
			"users.id IS NULL AND 1 = 1",
		},
	}

	compiler := NewSQLCompiler(SQLite{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sqlStr, _, err := compiler.CompilePredicate(tt.pred)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, sqlStr)
		})
	}
}

func TestCompilePredicate_ParamOrder(t *testing.T) {
	compiler := NewSQLCompiler(SQLite{})

	_, names, err := compiler.CompilePredicate(queryir.Or{Predicates: []queryir.Predicate{
		queryir.Compare{Column: usersUsername, Op: queryir.OpEq, Param: "username_1"},
		queryir.Compare{Column: usersID, Op: queryir.OpEq, Param: "id_0"},
		queryir.Compare{Column: usersUsername, Op: queryir.OpEq, Param: "username_1"},
	}})
	require.NoError(t, err)
	assert.Equal(t, []string{"username_1", "id_0"}, names)
}

func TestCompilePredicate_AnyWithoutRelation(t *testing.T) {
	_, _, err := NewSQLCompiler(SQLite{}).CompilePredicate(queryir.Any{Column: usersID})
	assert.Error(t, err)
}

func TestCompile_InvalidQuery(t *testing.T) {
	compiler := NewSQLCompiler(SQLite{})

	_, _, err := compiler.Compile(queryir.NewSelect("users").
		Where(queryir.Compare{Column: usersID, Op: queryir.OpEq, Param: "id_0"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `parameter "id_0" has no binding`)

	_, _, err = (&SQLCompiler{}).Compile(queryir.NewSelect("users"))
	assert.Error(t, err)
}

func TestCompile_SQLiteSequenceArgs(t *testing.T) {
	compiler := NewSQLCompiler(SQLite{})

	query := queryir.NewSelect("users").
		Where(queryir.In{Column: usersID, Param: "id_0"}).
		Params(map[string]any{"id_0": []any{int64(1), int64(2)}, "unused": "x"})

	_, args, err := compiler.Compile(query)
	require.NoError(t, err)
	assert.Equal(t, []any{sql.Named("id_0", "[1,2]")}, args)
}

func TestCompile_Postgres(t *testing.T) {
	compiler := NewSQLCompiler(Postgres{})

	query := queryir.NewSelect("users").
		Where(queryir.And{Predicates: []queryir.Predicate{
			queryir.Like{Column: usersUsername, Param: "username_0", CaseInsensitive: true},
			queryir.In{Column: usersID, Param: "id_0", Negate: true},
		}}).
		Params(map[string]any{"username_0": "%bob%", "id_0": []any{int64(3)}})

	sqlStr, args, err := compiler.Compile(query)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM users WHERE users.username ILIKE @username_0 AND NOT (users.id = ANY(@id_0))", sqlStr)
	require.Len(t, args, 1)
	assert.Equal(t, pgx.NamedArgs{"username_0": "%bob%", "id_0": []any{int64(3)}}, args[0])
}

func TestCompile_PostgresNoParams(t *testing.T) {
	_, args, err := NewSQLCompiler(Postgres{}).Compile(queryir.NewSelect("users"))
	require.NoError(t, err)
	assert.Nil(t, args)
}

func TestCompile_ClickHouse(t *testing.T) {
	compiler := NewSQLCompiler(ClickHouse{})

	query := queryir.NewSelect("events").
		Where(queryir.Or{Predicates: []queryir.Predicate{
			queryir.In{Column: queryir.Column{Name: "level"}, Param: "level_0"},
			queryir.Like{Column: queryir.Column{Name: "message"}, Param: "message_0"},
		}}).
		Params(map[string]any{"level_0": []any{"WARN", "ERROR"}, "message_0": "%timeout%"})

	sqlStr, args, err := compiler.Compile(query)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM events WHERE has(@level_0, level) OR message LIKE @message_0", sqlStr)
	assert.Equal(t, []any{
		clickhouse.Named("level_0", []any{"WARN", "ERROR"}),
		clickhouse.Named("message_0", "%timeout%"),
	}, args)
}

func TestDialectByName(t *testing.T) {
	for name, expected := range map[string]string{
		"sqlite":     "sqlite",
		"sqlite3":    "sqlite",
		"postgres":   "postgres",
		"pgx":        "postgres",
		"clickhouse": "clickhouse",
	} {
		d, err := DialectByName(name)
		require.NoError(t, err)
		assert.Equal(t, expected, d.Name())
	}

	_, err := DialectByName("oracle")
	assert.Error(t, err)
}

func TestCompile_DottedParamNames(t *testing.T) {
	compiler := NewSQLCompiler(SQLite{})

	query := queryir.NewSelect("users").
		Where(queryir.Any{Column: usersTags, Predicate: queryir.Compare{Column: tagsName, Op: queryir.OpEq, Param: "tags.name_0"}}).
		Params(map[string]any{"tags.name_0": "go"})

	sqlStr, args, err := compiler.Compile(query)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM users WHERE EXISTS (SELECT 1 FROM tags WHERE tags.user_id = users.id AND (tags.name = :tags_name_0))", sqlStr)
	assert.Equal(t, []any{sql.Named("tags_name_0", "go")}, args)

	_, names, err := compiler.CompilePredicate(query.Filter)
	require.NoError(t, err)
	assert.Equal(t, []string{"tags.name_0"}, names)
}

func TestCompile_PlaceholderCollision(t *testing.T) {
	compiler := NewSQLCompiler(SQLite{})

	query := queryir.NewSelect("users").
		Where(queryir.Or{Predicates: []queryir.Predicate{
			queryir.Compare{Column: tagsName, Op: queryir.OpEq, Param: "tags.name_0"},
			queryir.Compare{Column: tagsName, Op: queryir.OpEq, Param: "tags_name_0"},
		}}).
		Params(map[string]any{"tags.name_0": "a", "tags_name_0": "b"})

	_, _, err := compiler.Compile(query)
	assert.ErrorContains(t, err, "collide")
}
