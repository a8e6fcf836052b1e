// Package jsoncodec makes a JSON-valued column behave the same on every
// supported engine. PostgreSQL stores it as JSONB, MySQL as JSON, and SQLite
// as JSON-declared text. Values are always written as canonical JSON text and
// read back from whatever the driver hands over ([]byte or string).
package jsoncodec

import (
	"fmt"

	json "github.com/goccy/go-json"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Codec encodes and decodes structured values for one backing engine.
type Codec interface {
	// Dialect is the gorm dialector name the codec serves.
	Dialect() string
	// ColumnType is the DDL type used for the column on this engine.
	ColumnType() string
	// Encode renders v as a SQL expression suitable for INSERT/UPDATE.
	Encode(v any) (clause.Expr, error)
	// Decode parses a raw column value into dst.
	Decode(src any, dst any) error
}

type codec struct {
	dialect    string
	columnType string
	// placeholder wraps the bound JSON text, e.g. "CAST(? AS JSON)".
	placeholder string
}

var (
	Postgres Codec = codec{dialect: "postgres", columnType: "JSONB", placeholder: "?"}
	MySQL    Codec = codec{dialect: "mysql", columnType: "JSON", placeholder: "CAST(? AS JSON)"}
	SQLite   Codec = codec{dialect: "sqlite", columnType: "JSON", placeholder: "?"}
)

// ForDialect selects the codec for a gorm dialector name. Unknown engines
// fall back to plain text storage, which every engine can hold.
func ForDialect(name string) Codec {
	switch name {
	case "postgres", "pgx":
		return Postgres
	case "mysql":
		return MySQL
	case "sqlite", "sqlite3":
		return SQLite
	default:
		return codec{dialect: name, columnType: "TEXT", placeholder: "?"}
	}
}

// For is a convenience wrapper around ForDialect for a live connection.
func For(db *gorm.DB) Codec {
	if db == nil || db.Dialector == nil {
		return SQLite
	}
	return ForDialect(db.Dialector.Name())
}

func (c codec) Dialect() string    { return c.dialect }
func (c codec) ColumnType() string { return c.columnType }

func (c codec) Encode(v any) (clause.Expr, error) {
	text, err := Marshal(v)
	if err != nil {
		return clause.Expr{}, err
	}
	return clause.Expr{SQL: c.placeholder, Vars: []any{text}}, nil
}

func (c codec) Decode(src any, dst any) error {
	return Unmarshal(src, dst)
}

// Marshal renders v as JSON text.
func Marshal(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("jsoncodec: encode: %w", err)
	}
	return string(b), nil
}

// Unmarshal accepts the raw representations drivers return for JSON columns.
// A NULL column leaves dst untouched.
func Unmarshal(src any, dst any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("jsoncodec: unsupported source type %T", src)
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("jsoncodec: decode: %w", err)
	}
	return nil
}
