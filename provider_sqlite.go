package cache

import (
	"context"
	"database/sql"
	"sync"
	"time"

	_ "github.com/glebarez/go-sqlite"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// SQLiteCache is the disk tier. Each row holds a msgpack encoded Entry and its
// expiration in unix nanoseconds (0 never expires).
type SQLiteCache struct {
	db         *sql.DB
	writeMutex *sync.Mutex
}

// NewSQLiteCache opens (or creates) the cache database at filename.
// If filename is empty, a shared in-memory db is opened.
func NewSQLiteCache(filename string) (*SQLiteCache, error) {
	if filename == "" {
		filename = "file::memory:?cache=shared"
	}

	db, err := sql.Open("sqlite", filename)
	if err != nil {
		return nil, errors.Wrap(err, "can not open sqlite cache")
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS cache (
			key TEXT PRIMARY KEY,
			expires INTEGER,
			bytes BLOB
		)`,
		"CREATE INDEX IF NOT EXISTS expires_idx ON cache (expires)",
		"PRAGMA journal_mode=WAL",
	}
	for _, stmt := range statements {
		if _, err = db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, errors.Wrap(err, "can not prepare sqlite cache")
		}
	}

	return &SQLiteCache{
		db:         db,
		writeMutex: &sync.Mutex{},
	}, nil
}

func (s *SQLiteCache) Get(ctx context.Context, key string, requiredModelVersion uint16) (*Entry, error) {
	var expires int64
	var bts []byte

	err := s.db.QueryRowContext(ctx, "SELECT expires, bytes FROM cache WHERE key = ?", key).Scan(&expires, &bts)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.WithStack(err)
	}

	if expires > 0 && time.Now().UnixNano() >= expires {
		return nil, nil
	}

	var item Entry
	if err = msgpack.Unmarshal(bts, &item); err != nil {
		return nil, errors.WithStack(err)
	}

	if !item.usable(requiredModelVersion) {
		return nil, nil
	}

	return &item, nil
}

func (s *SQLiteCache) MSet(ctx context.Context, values map[string]*Entry, ttl time.Duration) error {
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.WithStack(err)
	}

	for k, v := range values {
		b, err := msgpack.Marshal(v)
		if err != nil {
			_ = tx.Rollback()
			return errors.Wrapf(err, "can not encode %s", k)
		}

		var expires int64
		if ttl > 0 {
			expires = time.Now().Add(ttl).UnixNano()
		}

		if _, err = tx.ExecContext(ctx, "INSERT OR REPLACE INTO cache (key, expires, bytes) VALUES (?, ?, ?)", k, expires, b); err != nil {
			_ = tx.Rollback()
			return errors.WithStack(err)
		}
	}

	return errors.WithStack(tx.Commit())
}

// PurgeExpired deletes every expired row and returns how many were removed.
func (s *SQLiteCache) PurgeExpired(ctx context.Context) (int64, error) {
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM cache WHERE expires > 0 AND expires <= ?", time.Now().UnixNano())
	if err != nil {
		return 0, errors.WithStack(err)
	}

	return res.RowsAffected()
}

func (s *SQLiteCache) Close() error {
	return s.db.Close()
}

var _ Provider = (*SQLiteCache)(nil)
