package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEmptyAndMalformed(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "empty string", text: ""},
		{name: "whitespace only", text: "   \n\t"},
		{name: "invalid json", text: `[{"name": "users", "columns": [}]`},
		{name: "json object at top level", text: `{"name": "users", "columns": []}`},
		{name: "json null", text: "null"},
		{name: "json array of numbers", text: "[1, 2, 3]"},
		{name: "plain prose", text: "this is not a schema"},
		{name: "yaml without table names", text: "- columns: []\n"},
		{name: "columns before any create table", text: "id INTEGER NOT NULL\nname TEXT\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Parse(tt.text)
			require.NotNil(t, s)
			assert.True(t, s.IsEmpty())
			assert.Empty(t, s.Tables)
		})
	}
}

func TestParseJSONSingleTable(t *testing.T) {
	s := Parse(`[{"name":"users","columns":[{"name":"id","type":"INTEGER","nullable":false,"primaryKey":true}]}]`)

	require.Len(t, s.Tables, 1)
	table := s.Tables[0]
	assert.Equal(t, "users", table.Name)
	require.Len(t, table.Columns, 1)
	assert.Equal(t, Column{Name: "id", Type: "INTEGER", Nullable: false, IsPrimaryKey: true}, table.Columns[0])
}

func TestParseJSONRoundTripsNamesAndFlags(t *testing.T) {
	text := `[
		{"name": "users", "columns": [
			{"name": "id", "type": "INTEGER", "nullable": false, "primaryKey": true},
			{"name": "email", "type": "VARCHAR(255)", "nullable": false, "primaryKey": false},
			{"name": "nickname", "type": "TEXT", "nullable": true, "primaryKey": false}
		]},
		{"name": "orders", "columns": [
			{"name": "id", "type": "BIGINT", "nullable": false, "primaryKey": true},
			{"name": "user_id", "type": "INTEGER", "nullable": true, "primaryKey": false}
		]}
	]`

	want := []Table{
		{Name: "users", Columns: []Column{
			{Name: "id", Type: "INTEGER", Nullable: false, IsPrimaryKey: true},
			{Name: "email", Type: "VARCHAR(255)", Nullable: false},
			{Name: "nickname", Type: "TEXT", Nullable: true},
		}},
		{Name: "orders", Columns: []Column{
			{Name: "id", Type: "BIGINT", Nullable: false, IsPrimaryKey: true},
			{Name: "user_id", Type: "INTEGER", Nullable: true},
		}},
	}

	assert.Equal(t, want, Parse(text).Tables)
}

func TestParseJSONDefaults(t *testing.T) {
	s := Parse(`[{"name":"t","comment":"ignored","columns":[
		{"name":"a"},
		{"name":"b","type":"INT","primaryKey":true},
		{"name":"c","type":"INT","primaryKey":true,"nullable":true,"extra":1}
	]}]`)

	require.Len(t, s.Tables, 1)
	cols := s.Tables[0].Columns
	require.Len(t, cols, 3)
	assert.Equal(t, Column{Name: "a", Nullable: true}, cols[0])
	assert.Equal(t, Column{Name: "b", Type: "INT", Nullable: false, IsPrimaryKey: true}, cols[1])
	assert.Equal(t, Column{Name: "c", Type: "INT", Nullable: true, IsPrimaryKey: true}, cols[2])
}

func TestParseJSONBadlyTypedFields(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantTables []string
		wantCols   []Column
	}{
		{
			name:       "nullable as string",
			text:       `[{"name":"users","columns":[{"name":"id","type":"INTEGER","nullable":"false","primaryKey":true}]}]`,
			wantTables: []string{"users"},
			wantCols:   []Column{{Name: "id", Type: "INTEGER", Nullable: false, IsPrimaryKey: true}},
		},
		{
			name:       "nullable as number falls back to default",
			text:       `[{"name":"users","columns":[{"name":"email","type":"TEXT","nullable":0}]}]`,
			wantTables: []string{"users"},
			wantCols:   []Column{{Name: "email", Type: "TEXT", Nullable: true}},
		},
		{
			name:       "primaryKey as number",
			text:       `[{"name":"users","columns":[{"name":"id","type":"INTEGER","primaryKey":1},{"name":"email","type":"TEXT"}]}]`,
			wantTables: []string{"users"},
			wantCols:   []Column{{Name: "id", Type: "INTEGER", Nullable: true}, {Name: "email", Type: "TEXT", Nullable: true}},
		},
		{
			name:       "numeric type",
			text:       `[{"name":"users","columns":[{"name":"id","type":42}]}]`,
			wantTables: []string{"users"},
			wantCols:   []Column{{Name: "id", Nullable: true}},
		},
		{
			name:       "stray element",
			text:       `[{"name":"users","columns":[{"name":"id","type":"INTEGER"}]}, 5]`,
			wantTables: []string{"users", ""},
			wantCols:   []Column{{Name: "id", Type: "INTEGER", Nullable: true}},
		},
		{
			name:       "columns not an array",
			text:       `[{"name":"users","columns":"id"}]`,
			wantTables: []string{"users"},
			wantCols:   []Column{},
		},
		{
			name:       "case-insensitive keys",
			text:       `[{"Name":"users","Columns":[{"NAME":"id","Type":"INTEGER","PrimaryKey":true}]}]`,
			wantTables: []string{"users"},
			wantCols:   []Column{{Name: "id", Type: "INTEGER", Nullable: false, IsPrimaryKey: true}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Parse(tt.text)

			names := make([]string, 0, len(s.Tables))
			for _, table := range s.Tables {
				names = append(names, table.Name)
			}
			require.Equal(t, tt.wantTables, names)
			assert.Equal(t, tt.wantCols, s.Tables[0].Columns)
		})
	}
}

func TestParseJSONKeepsDuplicateTables(t *testing.T) {
	s := Parse(`[{"name":"users","columns":[]},{"name":"users","columns":[]}]`)
	require.Len(t, s.Tables, 2)
	assert.Equal(t, "users", s.Tables[0].Name)
	assert.Equal(t, "users", s.Tables[1].Name)
}

func TestParseJSONEmptyArray(t *testing.T) {
	s := Parse("[]")
	assert.True(t, s.IsEmpty())
}

func TestParseYAML(t *testing.T) {
	text := `
- name: users
  columns:
    - name: id
      type: INTEGER
      primaryKey: true
    - name: email
      type: TEXT
      nullable: false
- name: audit_log
  columns: []
`
	s := Parse(text)

	require.Len(t, s.Tables, 2)
	assert.Equal(t, "users", s.Tables[0].Name)
	assert.Equal(t, []Column{
		{Name: "id", Type: "INTEGER", Nullable: false, IsPrimaryKey: true},
		{Name: "email", Type: "TEXT", Nullable: false},
	}, s.Tables[0].Columns)
	assert.Equal(t, "audit_log", s.Tables[1].Name)
	assert.Empty(t, s.Tables[1].Columns)
}

func TestParseDDL(t *testing.T) {
	text := `-- application schema
CREATE TABLE users (
  id INTEGER PRIMARY KEY,
  email VARCHAR(255) NOT NULL,
  nickname TEXT,
  balance DECIMAL(10, 2) NOT NULL,
  PRIMARY KEY (id)
);

create table if not exists "orders" (
  id BIGINT NOT NULL PRIMARY KEY,
  user_id INTEGER,
  CONSTRAINT fk_user FOREIGN KEY (user_id) REFERENCES users(id)
);
`
	s := Parse(text)

	require.Len(t, s.Tables, 2)

	users := s.Tables[0]
	assert.Equal(t, "users", users.Name)
	assert.Equal(t, []Column{
		{Name: "id", Type: "INTEGER", Nullable: false, IsPrimaryKey: true},
		{Name: "email", Type: "VARCHAR(255)", Nullable: false},
		{Name: "nickname", Type: "TEXT", Nullable: true},
		{Name: "balance", Type: "DECIMAL(10, 2)", Nullable: false},
	}, users.Columns)
	assert.Equal(t, []string{"id"}, users.PrimaryKey())

	orders := s.Tables[1]
	assert.Equal(t, "orders", orders.Name)
	assert.Equal(t, []Column{
		{Name: "id", Type: "BIGINT", Nullable: false, IsPrimaryKey: true},
		{Name: "user_id", Type: "INTEGER", Nullable: true},
	}, orders.Columns)
}

func TestParseDDLClosingParenDoesNotEndTable(t *testing.T) {
	// Lines after ")" still accumulate into the open table until the next CREATE TABLE.
	text := "CREATE TABLE a (\n  x INT\n)\ny TEXT NOT NULL\n"
	s := Parse(text)

	require.Len(t, s.Tables, 1)
	require.Len(t, s.Tables[0].Columns, 2)
	assert.Equal(t, "y", s.Tables[0].Columns[1].Name)
	assert.False(t, s.Tables[0].Columns[1].Nullable)
}

func TestParseDDLWithoutColumns(t *testing.T) {
	s := Parse("CREATE TABLE empty_table (\n);")
	require.Len(t, s.Tables, 1)
	assert.Equal(t, "empty_table", s.Tables[0].Name)
	assert.Empty(t, s.Tables[0].Columns)
}

func TestFindTable(t *testing.T) {
	s := &Schema{Tables: []Table{{Name: "Users"}, {Name: "orders"}}}

	table, ok := s.FindTable("USERS")
	require.True(t, ok)
	assert.Equal(t, "Users", table.Name)

	_, ok = s.FindTable("missing")
	assert.False(t, ok)

	var nilSchema *Schema
	_, ok = nilSchema.FindTable("users")
	assert.False(t, ok)
	assert.True(t, nilSchema.IsEmpty())
}

func TestParseDDLLongLine(t *testing.T) {
	text := "CREATE TABLE a (\n  x INT,\n  -- " + strings.Repeat("z", 2<<20) + "\n  y TEXT\n);\r\nCREATE TABLE b (\r\n  id INT PRIMARY KEY\r\n);"
	s := Parse(text)

	require.Len(t, s.Tables, 2)
	assert.Equal(t, []Column{{Name: "x", Type: "INT", Nullable: true}, {Name: "y", Type: "TEXT", Nullable: true}}, s.Tables[0].Columns)
	assert.Equal(t, "b", s.Tables[1].Name)
	assert.Equal(t, []Column{{Name: "id", Type: "INT", Nullable: false, IsPrimaryKey: true}}, s.Tables[1].Columns)
}
