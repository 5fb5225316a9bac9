// Package local keeps chapters in an SQLite database on this device. It is
// the fallback when no remote table is configured or reachable.
package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/zenbook-app/zenbook/internal/book"
	"github.com/zenbook-app/zenbook/internal/store"
)

// BackendName identifies this store.
const BackendName = "local"

// MemoryPath opens a throwaway in-memory database.
const MemoryPath = ":memory:"

const schema = `
CREATE TABLE IF NOT EXISTS chapters (
	id          TEXT PRIMARY KEY,
	number      INTEGER NOT NULL,
	title       TEXT    NOT NULL,
	subtitle    TEXT    NOT NULL DEFAULT '',
	icon        TEXT    NOT NULL DEFAULT '🌿',
	body        TEXT    NOT NULL DEFAULT '',
	created_at  INTEGER NOT NULL,
	updated_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS chapters_number ON chapters (number, id);
`

const selectColumns = `SELECT id, number, title, subtitle, icon, body, created_at, updated_at FROM chapters`

// Store implements store.Store on a single SQLite connection.
type Store struct {
	mu   sync.Mutex
	conn *sqlite.Conn
	now  func() time.Time
}

var _ store.Store = (*Store)(nil)

// Open opens (creating if needed) the database at path.
func Open(path string) (*Store, error) {
	flags := []sqlite.OpenFlags{sqlite.OpenReadWrite, sqlite.OpenCreate}
	if path == MemoryPath {
		flags = append(flags, sqlite.OpenMemory)
	} else {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
		flags = append(flags, sqlite.OpenWAL)
	}

	conn, err := sqlite.OpenConn(path, flags...)
	if err != nil {
		return nil, fmt.Errorf("open chapter database: %w", err)
	}
	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{conn: conn, now: time.Now}, nil
}

// Backend returns the backend name.
func (s *Store) Backend() string {
	return BackendName
}

// List returns all chapters ordered by number.
func (s *Store) List(ctx context.Context) ([]book.Chapter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conn.SetInterrupt(ctx.Done())
	defer s.conn.SetInterrupt(nil)

	chapters := []book.Chapter{}
	err := sqlitex.Execute(s.conn, selectColumns+` ORDER BY number ASC, id ASC`,
		&sqlitex.ExecOptions{ResultFunc: func(stmt *sqlite.Stmt) error {
			chapters = append(chapters, scanChapter(stmt))
			return nil
		}})
	if err != nil {
		return nil, fmt.Errorf("list chapters: %w", err)
	}
	return chapters, nil
}

// Get returns one chapter by id.
func (s *Store) Get(ctx context.Context, id string) (*book.Chapter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conn.SetInterrupt(ctx.Done())
	defer s.conn.SetInterrupt(nil)

	var found *book.Chapter
	err := sqlitex.Execute(s.conn, selectColumns+` WHERE id = ?`,
		&sqlitex.ExecOptions{
			Args: []any{id},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				ch := scanChapter(stmt)
				found = &ch
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("get chapter: %w", err)
	}
	if found == nil {
		return nil, fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	return found, nil
}

// Upsert inserts or replaces a chapter.
func (s *Store) Upsert(ctx context.Context, ch book.Chapter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conn.SetInterrupt(ctx.Done())
	defer s.conn.SetInterrupt(nil)

	err := sqlitex.Execute(s.conn, `
		INSERT INTO chapters (id, number, title, subtitle, icon, body, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			number = excluded.number,
			title = excluded.title,
			subtitle = excluded.subtitle,
			icon = excluded.icon,
			body = excluded.body,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at`,
		&sqlitex.ExecOptions{
			Args: []any{ch.ID, ch.Number, ch.Title, ch.Subtitle, ch.Icon, ch.Body, ch.CreatedAt, ch.UpdatedAt},
		})
	if err != nil {
		return fmt.Errorf("upsert chapter: %w", err)
	}
	return nil
}

// Delete removes a chapter by id.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conn.SetInterrupt(ctx.Done())
	defer s.conn.SetInterrupt(nil)

	if err := sqlitex.Execute(s.conn, `DELETE FROM chapters WHERE id = ?`,
		&sqlitex.ExecOptions{Args: []any{id}}); err != nil {
		return fmt.Errorf("delete chapter: %w", err)
	}
	return nil
}

// Reorder sets a chapter's number and bumps its update time.
func (s *Store) Reorder(ctx context.Context, id string, number int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conn.SetInterrupt(ctx.Done())
	defer s.conn.SetInterrupt(nil)

	err := sqlitex.Execute(s.conn, `UPDATE chapters SET number = ?, updated_at = ? WHERE id = ?`,
		&sqlitex.ExecOptions{Args: []any{number, s.now().UnixMilli(), id}})
	if err != nil {
		return fmt.Errorf("reorder chapter: %w", err)
	}
	if s.conn.Changes() == 0 {
		return fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Close()
}

func scanChapter(stmt *sqlite.Stmt) book.Chapter {
	return book.Chapter{
		ID:        stmt.ColumnText(0),
		Number:    stmt.ColumnInt(1),
		Title:     stmt.ColumnText(2),
		Subtitle:  stmt.ColumnText(3),
		Icon:      stmt.ColumnText(4),
		Body:      stmt.ColumnText(5),
		CreatedAt: stmt.ColumnInt64(6),
		UpdatedAt: stmt.ColumnInt64(7),
	}
}
