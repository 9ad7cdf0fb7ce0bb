package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Schema for the session history store. One table holds every feature's
// sessions; extra carries the feature-specific fields as JSON.
const schema = `
CREATE TABLE IF NOT EXISTS sessions (
    id          TEXT PRIMARY KEY,
    owner_id    TEXT NOT NULL,
    feature     TEXT NOT NULL,
    score       REAL,
    feedback    TEXT NOT NULL DEFAULT '',
    created_at  TEXT NOT NULL,
    extra       TEXT NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS idx_sessions_owner ON sessions(owner_id, feature, created_at);
`

// SQLiteBackend is the durable Backend realization. It always echoes the
// generated id from Persist, so reconciliation takes the fast path.
type SQLiteBackend struct {
	db      *sql.DB
	feature string
}

// OpenSQLite opens or creates the database at path and applies the schema.
// feature scopes this backend instance to one feature's sessions.
func OpenSQLite(path, feature string) (*SQLiteBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteBackend{db: db, feature: feature}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteBackend) Close() error {
	return s.db.Close()
}

func (s *SQLiteBackend) FetchAll(ctx context.Context, ownerID string) ([]RawRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, score, feedback, created_at, extra
		FROM sessions
		WHERE owner_id = ? AND feature = ?
		ORDER BY created_at DESC`,
		ownerID, s.feature,
	)
	if err != nil {
		return nil, fmt.Errorf("fetch sessions: %w", err)
	}
	defer rows.Close()

	var out []RawRecord
	for rows.Next() {
		var (
			id, owner, feedback, createdAt, extraJSON string
			score                                     sql.NullFloat64
		)
		if err := rows.Scan(&id, &owner, &score, &feedback, &createdAt, &extraJSON); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}

		rec := RawRecord{
			"docId":     id,
			"userId":    owner,
			"feedback":  feedback,
			"timestamp": createdAt,
		}
		if score.Valid {
			rec["score"] = score.Float64
		}
		var extra map[string]any
		if err := json.Unmarshal([]byte(extraJSON), &extra); err == nil {
			for k, v := range extra {
				if _, taken := rec[k]; !taken {
					rec[k] = v
				}
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteBackend) Persist(ctx context.Context, ownerID string, fields map[string]any) (string, error) {
	id := uuid.NewString()

	var score any
	extra := make(map[string]any)
	feedback := ""
	createdAt := time.Now().UTC().Format(time.RFC3339)

	for k, v := range fields {
		switch k {
		case "score":
			score = v
		case "feedback":
			feedback = fmt.Sprintf("%v", v)
		case "timestamp", "createdAt":
			createdAt = fmt.Sprintf("%v", v)
		default:
			extra[k] = v
		}
	}

	extraJSON, err := json.Marshal(extra)
	if err != nil {
		return "", fmt.Errorf("encode extra fields: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, owner_id, feature, score, feedback, created_at, extra)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, ownerID, s.feature, score, feedback, createdAt, string(extraJSON),
	)
	if err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}
	return id, nil
}

func (s *SQLiteBackend) Remove(ctx context.Context, ownerID, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM sessions WHERE id = ? AND owner_id = ? AND feature = ?`,
		id, ownerID, s.feature,
	)
	if err != nil {
		return false, fmt.Errorf("delete session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
