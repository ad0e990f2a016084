package state

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS komiti_state (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	version INTEGER NOT NULL,
	payload BLOB NOT NULL,
	updated_at TEXT NOT NULL
)`

// SQLiteStore keeps the state document as a single row in an embedded
// SQLite database.
type SQLiteStore struct {
	db  *sqlx.DB
	now func() time.Time
}

func OpenSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, crerr.Wrapf(err, "open sqlite %s", path)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, crerr.Wrap(err, "create sqlite state table")
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Load(ctx context.Context) (StoredState, error) {
	var payload []byte
	err := s.db.GetContext(ctx, &payload, `SELECT payload FROM komiti_state WHERE id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return Empty(), nil
	}
	if err != nil {
		return StoredState{}, crerr.Wrap(err, "select sqlite state")
	}
	return Migrate(payload)
}

func (s *SQLiteStore) Save(ctx context.Context, st StoredState) error {
	st = normalize(st)
	payload, err := sonic.Marshal(st)
	if err != nil {
		return crerr.Wrap(err, "encode state")
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO komiti_state (id, version, payload, updated_at)
VALUES (1, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	version = excluded.version,
	payload = excluded.payload,
	updated_at = excluded.updated_at`,
		st.Version, payload, s.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return crerr.Wrap(err, "upsert sqlite state")
	}
	return nil
}
