// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pdiddy/research-radar/pkg/types"
)

const entityColumns = `id, title, description, authors, "date", source, url,
	relevance_score, is_starred, is_interested, is_read, user_score, tags`

// SQLStore implements Store over database/sql.
type SQLStore struct {
	db  *sql.DB
	d   dialect
	now func() time.Time
}

var _ Store = (*SQLStore)(nil)

func openSQL(ctx context.Context, d dialect, dsn string) (*SQLStore, error) {
	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", d.name, err)
	}
	if d.maxOpenConns > 0 {
		db.SetMaxOpenConns(d.maxOpenConns)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to %s database: %w", d.name, err)
	}

	s := &SQLStore{db: db, d: d, now: time.Now}
	if err := s.createSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Driver returns the dialect name ("sqlite" or "postgres").
func (s *SQLStore) Driver() string { return s.d.name }

func (s *SQLStore) createSchema(ctx context.Context) error {
	for _, stmt := range s.d.schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// List returns every stored entity ordered by date descending, then ID.
func (s *SQLStore) List(ctx context.Context) ([]types.ResearchEntity, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+entityColumns+` FROM research_items ORDER BY "date" DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying entities: %w", err)
	}
	defer rows.Close()

	entities := []types.ResearchEntity{}
	for rows.Next() {
		e, err := s.scanEntity(rows)
		if err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entities: %w", err)
	}
	return entities, nil
}

// Get returns the entity with id.
func (s *SQLStore) Get(ctx context.Context, id string) (types.ResearchEntity, error) {
	return s.get(ctx, s.db, id)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLStore) get(ctx context.Context, q queryRower, id string) (types.ResearchEntity, error) {
	row := q.QueryRowContext(ctx,
		s.d.rebind(`SELECT `+entityColumns+` FROM research_items WHERE id = ?`), id)
	e, err := s.scanEntity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.ResearchEntity{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return e, err
}

// Insert writes e keyed by RowID(e.ID). An existing row with the same key
// is left untouched and Insert reports false.
func (s *SQLStore) Insert(ctx context.Context, e types.ResearchEntity) (bool, error) {
	if e.ID == "" {
		return false, errors.New("inserting entity: empty id")
	}
	now := s.now().UTC().UnixNano()
	res, err := s.db.ExecContext(ctx, s.d.rebind(`
		INSERT INTO research_items (
			uid, id, title, description, authors, "date", source, url,
			relevance_score, is_starred, is_interested, is_read, user_score, tags,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING`),
		RowID(e.ID).String(), e.ID, e.Title, e.Description, s.d.listValue(e.Authors),
		e.Date.UTC().UnixNano(), string(e.Source), e.URL,
		e.RelevanceScore, e.IsStarred, e.IsInterested, e.IsRead, nullableScore(e.UserScore),
		s.d.listValue(e.Tags), now, now,
	)
	if err != nil {
		return false, fmt.Errorf("inserting %s: %w", e.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("inserting %s: %w", e.ID, err)
	}
	return n > 0, nil
}

// Update reads the row, applies upd and writes every column back inside one
// transaction.
func (s *SQLStore) Update(ctx context.Context, id string, upd types.EntityUpdate) (types.ResearchEntity, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return types.ResearchEntity{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := s.get(ctx, tx, id)
	if err != nil {
		return types.ResearchEntity{}, err
	}
	next := upd.ApplyTo(current)

	_, err = tx.ExecContext(ctx, s.d.rebind(`
		UPDATE research_items SET
			title = ?, description = ?, authors = ?, "date" = ?, source = ?, url = ?,
			relevance_score = ?, is_starred = ?, is_interested = ?, is_read = ?,
			user_score = ?, tags = ?, updated_at = ?
		WHERE id = ?`),
		next.Title, next.Description, s.d.listValue(next.Authors), next.Date.UTC().UnixNano(),
		string(next.Source), next.URL, next.RelevanceScore, next.IsStarred, next.IsInterested,
		next.IsRead, nullableScore(next.UserScore), s.d.listValue(next.Tags),
		s.now().UTC().UnixNano(), id,
	)
	if err != nil {
		return types.ResearchEntity{}, fmt.Errorf("updating %s: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return types.ResearchEntity{}, fmt.Errorf("committing update of %s: %w", id, err)
	}
	return next, nil
}

// DeleteAll removes every stored entity.
func (s *SQLStore) DeleteAll(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM research_items`)
	if err != nil {
		return 0, fmt.Errorf("deleting entities: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("deleting entities: %w", err)
	}
	return n, nil
}

// Count returns the number of stored entities.
func (s *SQLStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM research_items`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting entities: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *SQLStore) scanEntity(row rowScanner) (types.ResearchEntity, error) {
	var (
		e         types.ResearchEntity
		dateNS    int64
		source    string
		userScore sql.NullInt64
	)
	err := row.Scan(
		&e.ID, &e.Title, &e.Description, s.d.listDest(&e.Authors), &dateNS, &source, &e.URL,
		&e.RelevanceScore, &e.IsStarred, &e.IsInterested, &e.IsRead, &userScore,
		s.d.listDest(&e.Tags),
	)
	if errors.Is(err, sql.ErrNoRows) {
		return e, err
	}
	if err != nil {
		return e, fmt.Errorf("scanning entity: %w", err)
	}

	e.Date = time.Unix(0, dateNS).UTC()
	e.Source = types.SourceKind(source)
	if userScore.Valid {
		v := int(userScore.Int64)
		e.UserScore = &v
	}
	if e.Authors == nil {
		e.Authors = []string{}
	}
	if e.Tags == nil {
		e.Tags = []string{}
	}
	return e, nil
}

func nullableScore(score *int) sql.NullInt64 {
	if score == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*score), Valid: true}
}
