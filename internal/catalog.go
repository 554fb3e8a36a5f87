package internal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SessionRecord is a catalogued recording session
type SessionRecord struct {
	ID             string    `json:"id" yaml:"id"`
	Dir            string    `json:"dir" yaml:"dir"`
	TranscriptPath string    `json:"transcript_path" yaml:"transcript_path"`
	Strategy       string    `json:"strategy" yaml:"strategy"`
	StartedAt      time.Time `json:"started_at" yaml:"started_at"`
	EndedAt        time.Time `json:"ended_at,omitempty" yaml:"ended_at,omitempty"`
	LineCount      int       `json:"line_count" yaml:"line_count"`
}

// Active reports whether the session has not been ended
func (r SessionRecord) Active() bool {
	return r.EndedAt.IsZero()
}

// SearchHit is a transcript line matching a search query
type SearchHit struct {
	SessionID      string `json:"session_id" yaml:"session_id"`
	TranscriptPath string `json:"transcript_path" yaml:"transcript_path"`
	Line           Line   `json:"line" yaml:"line"`
}

// Catalog indexes sessions and their merged lines in SQLite
type Catalog struct {
	db   *sql.DB
	path string
}

var _ SessionCatalog = (*Catalog)(nil)

// OpenCatalog opens the catalog database at path, creating it if needed
func OpenCatalog(path string) (*Catalog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create catalog directory: %w", err)
	}

	db, err := sql.Open("sqlite", catalogDSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Recording and a concurrent list/search share one writer.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			dir TEXT NOT NULL,
			transcript_path TEXT NOT NULL,
			strategy TEXT NOT NULL,
			started_at INTEGER NOT NULL,
			ended_at INTEGER
		);
		CREATE TABLE IF NOT EXISTS lines (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			start_time TEXT NOT NULL,
			end_time TEXT NOT NULL DEFAULT '',
			text TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_lines_session ON lines(session_id);
		CREATE INDEX IF NOT EXISTS idx_sessions_transcript ON sessions(transcript_path);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}

	return &Catalog{db: db, path: path}, nil
}

// catalogDSN applies the connection pragmas on every connection the pool opens
func catalogDSN(path string) string {
	return path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
}

// Path returns the database file path
func (c *Catalog) Path() string {
	return c.path
}

// Close closes the database connection
func (c *Catalog) Close() error {
	return c.db.Close()
}

// CreateSession records a new session
func (c *Catalog) CreateSession(rec SessionRecord) error {
	_, err := c.db.Exec(`
		INSERT INTO sessions (id, dir, transcript_path, strategy, started_at)
		VALUES (?, ?, ?, ?, ?)
	`, rec.ID, rec.Dir, rec.TranscriptPath, rec.Strategy, rec.StartedAt.Unix())
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// EndSession marks a session as finished
func (c *Catalog) EndSession(sessionID string, endedAt time.Time) error {
	res, err := c.db.Exec(`UPDATE sessions SET ended_at = ? WHERE id = ?`, endedAt.Unix(), sessionID)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return nil
}

// AppendLines indexes merged lines for a session
func (c *Catalog) AppendLines(sessionID string, lines []Line) error {
	if len(lines) == 0 {
		return nil
	}
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO lines (session_id, start_time, end_time, text) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, line := range lines {
		if _, err := stmt.Exec(sessionID, line.Start, line.End, line.Text); err != nil {
			return fmt.Errorf("insert line: %w", err)
		}
	}
	return tx.Commit()
}

// ListSessions returns catalogued sessions, newest first. limit <= 0 means all.
func (c *Catalog) ListSessions(limit int) ([]SessionRecord, error) {
	query := `
		SELECT s.id, s.dir, s.transcript_path, s.strategy, s.started_at, s.ended_at,
			(SELECT COUNT(*) FROM lines l WHERE l.session_id = s.id)
		FROM sessions s
		ORDER BY s.started_at DESC, s.rowid DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := c.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var records []SessionRecord
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// GetSession returns one session by ID or unique ID prefix
func (c *Catalog) GetSession(id string) (SessionRecord, error) {
	rows, err := c.db.Query(`
		SELECT s.id, s.dir, s.transcript_path, s.strategy, s.started_at, s.ended_at,
			(SELECT COUNT(*) FROM lines l WHERE l.session_id = s.id)
		FROM sessions s
		WHERE s.id = ? OR s.id LIKE ? ESCAPE '\'
		ORDER BY s.id = ? DESC
		LIMIT 2
	`, id, escapeLike(id)+"%", id)
	if err != nil {
		return SessionRecord{}, fmt.Errorf("query session: %w", err)
	}
	defer rows.Close()

	var matches []SessionRecord
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return SessionRecord{}, err
		}
		matches = append(matches, rec)
	}
	if err := rows.Err(); err != nil {
		return SessionRecord{}, err
	}

	switch {
	case len(matches) == 0:
		return SessionRecord{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	case matches[0].ID == id || len(matches) == 1:
		return matches[0], nil
	default:
		return SessionRecord{}, fmt.Errorf("session ID prefix %q is ambiguous", id)
	}
}

// SessionLines returns the indexed lines of a session in write order
func (c *Catalog) SessionLines(sessionID string) ([]Line, error) {
	rows, err := c.db.Query(`
		SELECT start_time, end_time, text FROM lines
		WHERE session_id = ?
		ORDER BY seq ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query lines: %w", err)
	}
	defer rows.Close()

	var lines []Line
	for rows.Next() {
		var line Line
		if err := rows.Scan(&line.Start, &line.End, &line.Text); err != nil {
			return nil, fmt.Errorf("scan line: %w", err)
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// Search finds lines containing query, case-insensitively, newest sessions first
func (c *Catalog) Search(query string, limit int) ([]SearchHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search query is empty")
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := c.db.Query(`
		SELECT l.session_id, s.transcript_path, l.start_time, l.end_time, l.text
		FROM lines l JOIN sessions s ON s.id = l.session_id
		WHERE l.text LIKE ? ESCAPE '\'
		ORDER BY s.started_at DESC, l.seq ASC
		LIMIT ?
	`, "%"+escapeLike(query)+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer rows.Close()

	var hits []SearchHit
	for rows.Next() {
		var hit SearchHit
		if err := rows.Scan(&hit.SessionID, &hit.TranscriptPath, &hit.Line.Start, &hit.Line.End, &hit.Line.Text); err != nil {
			return nil, fmt.Errorf("scan hit: %w", err)
		}
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}

// SessionForTranscript returns the session that writes to transcriptPath
func (c *Catalog) SessionForTranscript(transcriptPath string) (SessionRecord, error) {
	rows, err := c.db.Query(`
		SELECT s.id, s.dir, s.transcript_path, s.strategy, s.started_at, s.ended_at,
			(SELECT COUNT(*) FROM lines l WHERE l.session_id = s.id)
		FROM sessions s
		WHERE s.transcript_path = ?
		ORDER BY s.started_at DESC
		LIMIT 1
	`, transcriptPath)
	if err != nil {
		return SessionRecord{}, fmt.Errorf("query session: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return SessionRecord{}, err
		}
		return SessionRecord{}, fmt.Errorf("%w: %s", ErrSessionNotFound, transcriptPath)
	}
	return scanSession(rows)
}

func scanSession(rows *sql.Rows) (SessionRecord, error) {
	var rec SessionRecord
	var startedAt int64
	var endedAt sql.NullInt64
	if err := rows.Scan(&rec.ID, &rec.Dir, &rec.TranscriptPath, &rec.Strategy,
		&startedAt, &endedAt, &rec.LineCount); err != nil {
		return SessionRecord{}, fmt.Errorf("scan session: %w", err)
	}
	rec.StartedAt = time.Unix(startedAt, 0)
	if endedAt.Valid {
		rec.EndedAt = time.Unix(endedAt.Int64, 0)
	}
	return rec, nil
}

// escapeLike escapes LIKE wildcards so user input matches literally
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
