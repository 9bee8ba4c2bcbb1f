package schema

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/goccy/go-yaml"
)

// tableDoc and columnDoc are the on-read shapes of a schema document. YAML decodes into
// them directly; JSON fills them field by field.
// Pointer fields distinguish a missing flag from an explicit false.
type tableDoc struct {
	Name    string      `yaml:"name"`
	Columns []columnDoc `yaml:"columns"`
}

type columnDoc struct {
	Name       string `yaml:"name"`
	Type       string `yaml:"type"`
	Nullable   *bool  `yaml:"nullable"`
	PrimaryKey *bool  `yaml:"primaryKey"`
}

var createTablePattern = regexp.MustCompile(`(?i)^\s*CREATE\s+(?:TEMP(?:ORARY)?\s+)?TABLE\s+(?:IF\s+NOT\s+EXISTS\s+)?([^\s(]+)`)

// reservedLeaders are first tokens of table-level constraint lines inside a CREATE TABLE body.
var reservedLeaders = map[string]bool{
	"PRIMARY":    true,
	"FOREIGN":    true,
	"CONSTRAINT": true,
	"UNIQUE":     true,
	"CHECK":      true,
	"KEY":        true,
	"INDEX":      true,
}

// Parse converts schema text into a Schema.
//
// The text is tried as a JSON array of tables first, then as a YAML sequence of tables,
// then scanned line by line for CREATE TABLE blocks. Unrecognized input yields an empty
// schema; Parse never fails.
//
// The DDL scan is a heuristic, not a grammar: a CREATE TABLE line opens a table and every
// following line with at least a name and a type is read as a column until the next
// CREATE TABLE line. A closing parenthesis does not end the table.
func Parse(text string) *Schema {
	if strings.TrimSpace(text) == "" {
		return Empty()
	}

	if s, ok := parseJSON(text); ok {
		return s
	}

	if s, ok := parseYAML(text); ok {
		return s
	}

	if s := parseDDL(text); len(s.Tables) > 0 {
		return s
	}

	return Empty()
}

func parseJSON(text string) (*Schema, bool) {
	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(text), &elems); err != nil {
		return nil, false
	}
	if elems == nil {
		// JSON null decodes without error but is not an array
		return nil, false
	}

	docs := make([]tableDoc, 0, len(elems))
	for _, raw := range elems {
		docs = append(docs, decodeTableDoc(raw))
	}
	return fromDocs(docs), true
}

// jsonObject decodes one field at a time so a badly typed value only loses that field.
type jsonObject map[string]json.RawMessage

func decodeObject(raw json.RawMessage) jsonObject {
	var obj jsonObject
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil
	}
	return obj
}

// lookup finds key case-insensitively as encoding/json does for struct fields.
// A JSON null counts as missing.
func (o jsonObject) lookup(key string) (json.RawMessage, bool) {
	raw, ok := o[key]
	if !ok {
		for k, r := range o {
			if strings.EqualFold(k, key) {
				raw, ok = r, true
				break
			}
		}
	}
	if !ok || string(bytes.TrimSpace(raw)) == "null" {
		return nil, false
	}
	return raw, true
}

// decodeField reports false for a missing or badly typed field.
func decodeField[T any](o jsonObject, key string) (T, bool) {
	var v T
	raw, ok := o.lookup(key)
	if !ok {
		return v, false
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		var zero T
		return zero, false
	}
	return v, true
}

// decodeTableDoc turns a non-object element into an unnamed table without columns.
func decodeTableDoc(raw json.RawMessage) tableDoc {
	obj := decodeObject(raw)

	var doc tableDoc
	doc.Name, _ = decodeField[string](obj, "name")

	cols, _ := decodeField[[]json.RawMessage](obj, "columns")
	for _, c := range cols {
		doc.Columns = append(doc.Columns, decodeColumnDoc(c))
	}
	return doc
}

func decodeColumnDoc(raw json.RawMessage) columnDoc {
	obj := decodeObject(raw)

	var cd columnDoc
	cd.Name, _ = decodeField[string](obj, "name")
	cd.Type, _ = decodeField[string](obj, "type")
	if b, ok := decodeField[bool](obj, "nullable"); ok {
		cd.Nullable = &b
	}
	if b, ok := decodeField[bool](obj, "primaryKey"); ok {
		cd.PrimaryKey = &b
	}
	return cd
}

// parseYAML only considers block-style documents. Flow-style text starting with '[' or '{'
// is left to the JSON path so that malformed JSON is never rescued by the YAML decoder.
func parseYAML(text string) (*Schema, bool) {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{") {
		return nil, false
	}

	var docs []tableDoc
	if err := yaml.Unmarshal([]byte(text), &docs); err != nil {
		return nil, false
	}

	named := false
	for _, doc := range docs {
		if doc.Name != "" {
			named = true
			break
		}
	}
	if !named {
		return nil, false
	}
	return fromDocs(docs), true
}

func fromDocs(docs []tableDoc) *Schema {
	s := &Schema{Tables: make([]Table, 0, len(docs))}
	for _, doc := range docs {
		table := Table{Name: doc.Name, Columns: make([]Column, 0, len(doc.Columns))}
		for _, cd := range doc.Columns {
			table.Columns = append(table.Columns, cd.toColumn())
		}
		s.Tables = append(s.Tables, table)
	}
	return s
}

func (cd columnDoc) toColumn() Column {
	col := Column{Name: cd.Name, Type: cd.Type, Nullable: true}
	if cd.PrimaryKey != nil {
		col.IsPrimaryKey = *cd.PrimaryKey
	}
	switch {
	case cd.Nullable != nil:
		col.Nullable = *cd.Nullable
	case col.IsPrimaryKey:
		col.Nullable = false
	}
	return col
}

func parseDDL(text string) *Schema {
	s := Empty()
	var current *Table

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")

		if m := createTablePattern.FindStringSubmatch(line); m != nil {
			s.Tables = append(s.Tables, Table{Name: cleanIdentifier(m[1]), Columns: []Column{}})
			current = &s.Tables[len(s.Tables)-1]
			continue
		}

		if current == nil {
			continue
		}

		if col, ok := parseColumnLine(line); ok {
			current.Columns = append(current.Columns, col)
		}
	}

	return s
}

// parseColumnLine reads "name type [constraints]" from a line of a CREATE TABLE body.
func parseColumnLine(line string) (Column, bool) {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) < 2 {
		return Column{}, false
	}

	first := strings.ToUpper(fields[0])
	if reservedLeaders[first] || strings.HasPrefix(first, ")") || strings.HasPrefix(first, "--") {
		return Column{}, false
	}

	name := cleanIdentifier(fields[0])
	if name == "" {
		return Column{}, false
	}

	// Rejoin a parameterized type split by whitespace, e.g. "DECIMAL(10, 2)".
	typeEnd := 1
	typ := fields[1]
	for strings.Count(typ, "(") > strings.Count(typ, ")") && typeEnd+1 < len(fields) {
		typeEnd++
		typ += " " + fields[typeEnd]
	}
	typ = strings.TrimRight(typ, ",")

	rest := strings.ToUpper(strings.Join(fields[typeEnd+1:], " "))
	isPK := strings.Contains(rest, "PRIMARY KEY")
	notNull := strings.Contains(rest, "NOT NULL")

	return Column{
		Name:         name,
		Type:         typ,
		Nullable:     !notNull && !isPK,
		IsPrimaryKey: isPK,
	}, true
}

func cleanIdentifier(s string) string {
	s = strings.TrimRight(s, "(,;")
	return strings.Trim(s, "\"`[]")
}
