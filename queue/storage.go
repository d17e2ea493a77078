package queue

import (
	"database/sql"
	"errors"

	"github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"cleaning-scheduler/domain"
)

// storageKey is the fixed key the serialized queue lives under, kept stable
// across releases so an upgraded client still finds its pending operations.
const storageKey = "pwa-sync-queue"

// Storage persists the offline queue as structured text in a local sqlite
// file, so queued mutations survive a process restart.
type Storage struct {
	db *sql.DB
}

func OpenStorage(path string) (*Storage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS sync_queue (key TEXT PRIMARY KEY, value TEXT NOT NULL)`)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Storage{db: db}, nil
}

func (s *Storage) Load() ([]domain.PendingOperation, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM sync_queue WHERE key = ?`, storageKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var items []domain.PendingOperation
	if err := json.Unmarshal([]byte(value), &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Storage) Save(items []domain.PendingOperation) error {
	if items == nil {
		items = []domain.PendingOperation{}
	}
	encoded, err := json.Marshal(items)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`INSERT INTO sync_queue (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, storageKey, string(encoded))
	return err
}

func (s *Storage) Close() error {
	return s.db.Close()
}
