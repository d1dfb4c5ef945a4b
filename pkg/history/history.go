// Package history persists successful conversions in SQLite so the last
// result survives the process and can be copied again later.
package history

import (
	"database/sql"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"wordsmith/pkg/errors"
	"wordsmith/pkg/logger"
	"wordsmith/pkg/models"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

const selectEntries = `SELECT
		id,
		provider,
		model,
		input,
		html,
		created_at
	FROM conversions WHERE 1=1
	`

type Store struct {
	db    *sql.DB
	path  string
	limit int
	now   func() time.Time
}

// Info summarises the store.
type Info struct {
	Path   string    `json:"path" yaml:"path"`
	Count  int       `json:"count" yaml:"count"`
	Limit  int       `json:"limit" yaml:"limit"`
	Oldest time.Time `json:"oldest,omitempty" yaml:"oldest,omitempty"`
	Newest time.Time `json:"newest,omitempty" yaml:"newest,omitempty"`
}

// Query narrows List. Zero values select everything, newest first.
type Query struct {
	Provider string
	Limit    int
}

// Open opens or creates the database at path. limit caps the number of kept
// entries; 0 keeps everything.
func Open(path string, limit int) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.StorageError("failed to create history directory", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.StorageError("failed to open history database", err)
	}
	// one writer at a time keeps sqlite from reporting SQLITE_BUSY
	db.SetMaxOpenConns(1)

	s := &Store{db: db, path: path, limit: limit, now: time.Now}
	if err := s.init(); err != nil {
		db.Close()
		return nil, errors.StorageError("failed to initialize history database", err)
	}

	return s, nil
}

func (s *Store) init() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS conversions (
			id TEXT PRIMARY KEY,
			provider TEXT NOT NULL,
			model TEXT NOT NULL,
			input TEXT NOT NULL,
			html TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_created_at ON conversions(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_provider ON conversions(provider)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Path() string {
	return s.path
}

// Save records a successful conversion and prunes entries beyond the limit.
func (s *Store) Save(input string, result models.ConversionResult) (models.HistoryEntry, error) {
	entry := models.HistoryEntry{
		ID:        uuid.NewString(),
		Provider:  result.Provider,
		Model:     result.Model,
		Input:     input,
		HTML:      result.HTML,
		CreatedAt: s.now().UTC(),
	}

	_, err := s.db.Exec(`
		INSERT INTO conversions (id, provider, model, input, html, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.Provider, entry.Model, entry.Input, entry.HTML, entry.CreatedAt.UnixNano())
	if err != nil {
		return models.HistoryEntry{}, errors.StorageError("failed to save conversion", err)
	}

	if err := s.prune(); err != nil {
		logger.Warn().Err(err).Msg("failed to prune history")
	}

	logger.Debug().Str("id", entry.ID).Str("provider", entry.Provider).Msg("conversion saved to history")
	return entry, nil
}

func (s *Store) prune() error {
	if s.limit <= 0 {
		return nil
	}
	res, err := s.db.Exec(`
		DELETE FROM conversions WHERE id NOT IN (
			SELECT id FROM conversions ORDER BY created_at DESC LIMIT ?
		)`, s.limit)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		logger.Debug().Int64("removed", n).Int("limit", s.limit).Msg("pruned history")
	}
	return nil
}

// Latest returns the most recent entry.
func (s *Store) Latest() (*models.HistoryEntry, error) {
	row := s.db.QueryRow(selectEntries + `ORDER BY created_at DESC LIMIT 1`)

	var entry models.HistoryEntry
	if err := scanEntry(row, &entry); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundError("conversion history")
		}
		return nil, errors.StorageError("failed to read latest conversion", err)
	}
	return &entry, nil
}

// Get returns the entry whose ID starts with idPrefix. A prefix matching
// more than one entry is rejected.
func (s *Store) Get(idPrefix string) (*models.HistoryEntry, error) {
	idPrefix = strings.TrimSpace(idPrefix)
	if idPrefix == "" {
		return nil, errors.ValidationError("conversion ID must not be empty")
	}

	rows, err := s.db.Query(selectEntries+`AND id LIKE ? ESCAPE '\' ORDER BY created_at DESC LIMIT 2`, escapeLike(idPrefix)+"%")
	if err != nil {
		return nil, errors.StorageError("failed to query conversion", err)
	}
	defer rows.Close()

	entries, err := scanEntries(rows)
	if err != nil {
		return nil, errors.StorageError("failed to read conversion", err)
	}

	switch len(entries) {
	case 0:
		return nil, errors.NotFoundError(fmt.Sprintf("conversion '%s'", idPrefix))
	case 1:
		return &entries[0], nil
	default:
		return nil, errors.NewWithSuggestion(errors.ExitCodeValidation,
			fmt.Sprintf("conversion ID '%s' is ambiguous", idPrefix),
			"Use more characters of the ID.")
	}
}

// List returns entries newest first.
func (s *Store) List(q Query) ([]models.HistoryEntry, error) {
	query := selectEntries
	args := []any{}

	if q.Provider != "" {
		query += " AND provider = ?"
		args = append(args, q.Provider)
	}

	query += " ORDER BY created_at DESC"

	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, errors.StorageError("failed to query history", err)
	}
	defer rows.Close()

	entries, err := scanEntries(rows)
	if err != nil {
		return nil, errors.StorageError("failed to read history", err)
	}
	return entries, nil
}

// Delete removes one entry by exact ID.
func (s *Store) Delete(id string) error {
	res, err := s.db.Exec(`DELETE FROM conversions WHERE id = ?`, id)
	if err != nil {
		return errors.StorageError("failed to delete conversion", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.NotFoundError(fmt.Sprintf("conversion '%s'", id))
	}
	return nil
}

// Clear removes every entry and returns how many were removed.
func (s *Store) Clear() (int64, error) {
	res, err := s.db.Exec(`DELETE FROM conversions`)
	if err != nil {
		return 0, errors.StorageError("failed to clear history", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (s *Store) Info() (Info, error) {
	info := Info{Path: s.path, Limit: s.limit}
	var oldest, newest sql.NullInt64

	if err := s.db.QueryRow(`SELECT COUNT(*), MIN(created_at), MAX(created_at) FROM conversions`).
		Scan(&info.Count, &oldest, &newest); err != nil {
		return info, errors.StorageError("failed to query history info", err)
	}
	if oldest.Valid {
		info.Oldest = time.Unix(0, oldest.Int64).UTC()
	}
	if newest.Valid {
		info.Newest = time.Unix(0, newest.Int64).UTC()
	}
	return info, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner, entry *models.HistoryEntry) error {
	var createdAt int64
	if err := row.Scan(&entry.ID, &entry.Provider, &entry.Model, &entry.Input, &entry.HTML, &createdAt); err != nil {
		return err
	}
	entry.CreatedAt = time.Unix(0, createdAt).UTC()
	return nil
}

func scanEntries(rows *sql.Rows) ([]models.HistoryEntry, error) {
	entries := []models.HistoryEntry{}
	for rows.Next() {
		var entry models.HistoryEntry
		if err := scanEntry(rows, &entry); err != nil {
			return nil, fmt.Errorf("failed to scan conversion: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
