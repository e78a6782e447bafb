// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// dialect captures what differs between the SQL backends: driver name,
// DDL, placeholder syntax and how string lists are stored.
type dialect struct {
	name   string
	driver string
	schema []string

	// numbered reports whether placeholders are $1, $2, ... instead of ?.
	numbered bool

	// maxOpenConns limits the pool; 0 means unlimited.
	maxOpenConns int

	listValue func(v []string) driver.Valuer
	listDest  func(dst *[]string) any
}

var sqliteDialect = dialect{
	name:         "sqlite",
	driver:       "sqlite3",
	maxOpenConns: 1,
	schema: []string{
		`CREATE TABLE IF NOT EXISTS research_items (
			uid TEXT PRIMARY KEY,
			id TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			authors TEXT NOT NULL,
			"date" INTEGER NOT NULL,
			source TEXT NOT NULL,
			url TEXT NOT NULL,
			relevance_score INTEGER NOT NULL,
			is_starred BOOLEAN NOT NULL DEFAULT 0,
			is_interested BOOLEAN NOT NULL DEFAULT 0,
			is_read BOOLEAN NOT NULL DEFAULT 0,
			user_score INTEGER,
			tags TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_research_items_date ON research_items("date")`,
	},
	listValue: func(v []string) driver.Valuer { return jsonList(v) },
	listDest:  func(dst *[]string) any { return &jsonListScanner{dst: dst} },
}

var postgresDialect = dialect{
	name:     "postgres",
	driver:   "postgres",
	numbered: true,
	schema: []string{
		`CREATE TABLE IF NOT EXISTS research_items (
			uid UUID PRIMARY KEY,
			id TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			authors TEXT[] NOT NULL,
			"date" BIGINT NOT NULL,
			source TEXT NOT NULL,
			url TEXT NOT NULL,
			relevance_score INTEGER NOT NULL,
			is_starred BOOLEAN NOT NULL DEFAULT FALSE,
			is_interested BOOLEAN NOT NULL DEFAULT FALSE,
			is_read BOOLEAN NOT NULL DEFAULT FALSE,
			user_score INTEGER,
			tags TEXT[] NOT NULL,
			created_at BIGINT NOT NULL,
			updated_at BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_research_items_date ON research_items("date")`,
	},
	listValue: func(v []string) driver.Valuer {
		if v == nil {
			v = []string{}
		}
		return pq.StringArray(v)
	},
	listDest: func(dst *[]string) any { return (*pq.StringArray)(dst) },
}

// rebind rewrites ? placeholders for dialects that number them.
func (d dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// jsonList stores a string list as a JSON array in a TEXT column.
type jsonList []string

func (l jsonList) Value() (driver.Value, error) {
	if l == nil {
		l = jsonList{}
	}
	data, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

type jsonListScanner struct {
	dst *[]string
}

func (s *jsonListScanner) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*s.dst = []string{}
		return nil
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("scanning string list: unsupported type %T", src)
	}
	var out []string
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("decoding string list: %w", err)
	}
	*s.dst = out
	return nil
}
