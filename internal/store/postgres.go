// Package store provides the two dictionary backends: a direct PostgreSQL
// connection via pgx and the Supabase PostgREST API. Both satisfy
// dict.DictionarySource; only the direct backend supports imports.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/TanukiMa/my-workflow-test/internal/config"
	"github.com/TanukiMa/my-workflow-test/internal/dict"
)

// uniqueViolation is the SQLSTATE raised by a duplicate key.
const uniqueViolation = "23505"

// schemaStatements is executed in order inside one transaction by
// InitializeSchema. Every statement is idempotent, so the initializer is
// safe to run on every startup.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS pos_codes (
		code SERIAL PRIMARY KEY,
		name VARCHAR(50) UNIQUE NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS attr_codes (
		id SERIAL PRIMARY KEY,
		name VARCHAR(100) UNIQUE NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS words (
		id SERIAL PRIMARY KEY,
		reading     VARCHAR(255) NOT NULL,
		word        VARCHAR(255) NOT NULL,
		pos_code    INTEGER REFERENCES pos_codes(code),
		attr_id     INTEGER REFERENCES attr_codes(id),
		collocation TEXT,
		created_at  TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at  TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(reading, word, pos_code)
	)`,
	`CREATE OR REPLACE FUNCTION update_updated_at_column()
	RETURNS TRIGGER AS $$
	BEGIN
		NEW.updated_at = CURRENT_TIMESTAMP;
		RETURN NEW;
	END;
	$$ LANGUAGE plpgsql`,
	`DROP TRIGGER IF EXISTS update_words_updated_at ON words`,
	`CREATE TRIGGER update_words_updated_at
		BEFORE UPDATE ON words
		FOR EACH ROW
		EXECUTE FUNCTION update_updated_at_column()`,
	`INSERT INTO pos_codes (name) VALUES ('固有名詞'), ('普通名詞')
		ON CONFLICT (name) DO NOTHING`,
}

// DirectSQL is the pgx-backed dictionary store. It holds exactly one
// connection for the lifetime of a CLI invocation.
type DirectSQL struct {
	conn   *pgx.Conn
	logger *slog.Logger
}

// ConnectDirect opens a PostgreSQL connection from the resolved
// configuration. Callers must Close the returned store.
func ConnectDirect(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*DirectSQL, error) {
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := pgx.Connect(ctx, cfg.DSN())
	if err != nil {
		return nil, &dict.ConnectionError{
			Backend: fmt.Sprintf("PostgreSQL (%s:%d)", cfg.Host, cfg.Port),
			Err:     err,
		}
	}

	logger.Debug("connected to PostgreSQL", "host", cfg.Host, "database", cfg.Database)
	return &DirectSQL{conn: conn, logger: logger}, nil
}

// Close releases the connection. Safe to call on error paths.
func (s *DirectSQL) Close(ctx context.Context) {
	if err := s.conn.Close(ctx); err != nil {
		s.logger.Warn("closing connection", "error", err)
	} else {
		s.logger.Debug("connection closed")
	}
}

// InitializeSchema creates the three tables, the updated_at trigger and the
// seed part-of-speech rows inside one transaction. Any failure rolls the
// whole transaction back and surfaces as a *dict.SchemaError.
func (s *DirectSQL) InitializeSchema(ctx context.Context) error {
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return &dict.SchemaError{Err: err}
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	for _, stmt := range schemaStatements {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return &dict.SchemaError{Err: err}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return &dict.SchemaError{Err: err}
	}

	s.logger.Info("database initialized")
	return nil
}

// ResolvePartOfSpeech looks up a part-of-speech code. Unknown names are an
// error: pos codes pair with externally fixed Mozc costs, so the importer
// must never invent one.
func (s *DirectSQL) ResolvePartOfSpeech(ctx context.Context, name string) (int32, error) {
	var code int32
	err := s.conn.QueryRow(ctx, `SELECT code FROM pos_codes WHERE name = $1`, name).Scan(&code)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, &dict.UnknownPartOfSpeechError{Name: name}
	}
	if err != nil {
		return 0, fmt.Errorf("look up part of speech %q: %w", name, err)
	}
	return code, nil
}

// ResolveOrCreateAttribute looks up an attribute id, inserting the name when
// absent. The insert runs in its own small transaction and commits
// immediately, so a later failure of the same CSV row does not undo it.
// A uniqueness conflict from a concurrent creator is recovered by rolling
// back and re-reading the now-existing row.
func (s *DirectSQL) ResolveOrCreateAttribute(ctx context.Context, name string) (int32, error) {
	var id int32
	err := s.conn.QueryRow(ctx, `SELECT id FROM attr_codes WHERE name = $1`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("look up attribute %q: %w", name, err)
	}

	insertErr := s.insertAttribute(ctx, name, &id)
	if insertErr == nil {
		return id, nil
	}
	if !isUniqueViolation(insertErr) {
		return 0, fmt.Errorf("create attribute %q: %w", name, insertErr)
	}

	// Lost the race: someone else inserted the same name first.
	err = s.conn.QueryRow(ctx, `SELECT id FROM attr_codes WHERE name = $1`, name).Scan(&id)
	if err != nil {
		// The row should exist after a uniqueness conflict. If it does
		// not, the original insert error is the truthful one.
		return 0, fmt.Errorf("create attribute %q: %w", name, insertErr)
	}
	return id, nil
}

func (s *DirectSQL) insertAttribute(ctx context.Context, name string, id *int32) error {
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if err := tx.QueryRow(ctx,
		`INSERT INTO attr_codes (name) VALUES ($1) RETURNING id`, name).Scan(id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// UpsertWord inserts or updates one word on the (reading, word, pos_code)
// key and reports whether a new row was created. The write runs in its own
// transaction so a failing row rolls back alone.
//
// Created is decided by an explicit existence check inside the transaction,
// not by inspecting storage internals such as xmin.
func (s *DirectSQL) UpsertWord(ctx context.Context, entry dict.Entry) (bool, error) {
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	var existingID int32
	err = tx.QueryRow(ctx,
		`SELECT id FROM words WHERE reading = $1 AND word = $2 AND pos_code = $3`,
		entry.Reading, entry.Word, entry.PosCode).Scan(&existingID)

	created := false
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		created = true
		_, err = tx.Exec(ctx,
			`INSERT INTO words (reading, word, pos_code, attr_id, collocation)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (reading, word, pos_code)
			   DO UPDATE SET
			     collocation = EXCLUDED.collocation,
			     attr_id     = EXCLUDED.attr_id,
			     updated_at  = CURRENT_TIMESTAMP`,
			entry.Reading, entry.Word, entry.PosCode, entry.AttrID, entry.Collocation)
	case err == nil:
		_, err = tx.Exec(ctx,
			`UPDATE words
			    SET collocation = $2, attr_id = $3, updated_at = CURRENT_TIMESTAMP
			  WHERE id = $1`,
			existingID, entry.AttrID, entry.Collocation)
	}
	if err != nil {
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return created, nil
}

// FetchWordsWithPos returns all words joined to their part-of-speech name,
// ordered by (reading, word). The read is wrapped in the fixed-count retry
// helper.
func (s *DirectSQL) FetchWordsWithPos(ctx context.Context) ([]dict.WordWithPos, error) {
	return withRetry(ctx, s.logger, "fetch_words_with_pos", DefaultMaxAttempts, nil,
		func(ctx context.Context) ([]dict.WordWithPos, error) {
			rows, err := s.conn.Query(ctx, `
				SELECT w.reading, w.word, p.name AS pos_name
				  FROM words w
				  JOIN pos_codes p ON p.code = w.pos_code
				 ORDER BY w.reading, w.word`)
			if err != nil {
				return nil, err
			}
			defer rows.Close()

			var result []dict.WordWithPos
			for rows.Next() {
				var row dict.WordWithPos
				if err := rows.Scan(&row.Reading, &row.Word, &row.PosName); err != nil {
					return nil, err
				}
				result = append(result, row)
			}
			return result, rows.Err()
		})
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
