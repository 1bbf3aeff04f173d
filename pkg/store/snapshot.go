package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/glebarez/go-sqlite"

	"blinkwallet/pkg/models"
)

const historyLoadLimit = 200

// Snapshot persists the local wallet state in a small SQLite file: a KV
// metadata table for the balance map and username, and an append-only
// history table.
type Snapshot struct {
	db *sql.DB
}

func OpenSnapshot(dbPath string) (*Snapshot, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS metadata (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create metadata table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ts INTEGER NOT NULL,
			entry TEXT NOT NULL
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create history table: %w", err)
	}

	return &Snapshot{db: db}, nil
}

func (s *Snapshot) Close() error {
	return s.db.Close()
}

func (s *Snapshot) upsert(key, value string) error {
	_, err := s.db.Exec(
		"INSERT INTO metadata (key, value, updated_at) VALUES (?, ?, ?) ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at",
		key, value, time.Now().Unix(),
	)
	return err
}

func (s *Snapshot) get(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// SaveState writes the balance map and username.
func (s *Snapshot) SaveState(balances map[string]float64, username string) error {
	data, err := json.Marshal(balances)
	if err != nil {
		return fmt.Errorf("failed to marshal balances: %w", err)
	}
	if err := s.upsert("balances", string(data)); err != nil {
		return err
	}
	return s.upsert("username", username)
}

// AppendHistory stores one history entry.
func (s *Snapshot) AppendHistory(entry models.HistoryEntry) error {
	_, err := s.db.Exec(
		"INSERT INTO history (ts, entry) VALUES (?, ?)",
		entry.Time.Unix(), entry.Text,
	)
	return err
}

// Load reads the persisted state. A corrupted balances blob yields empty
// balances rather than an error; boot must never fail on local state.
func (s *Snapshot) Load() (map[string]float64, []models.HistoryEntry, string, error) {
	raw, err := s.get("balances")
	if err != nil {
		return nil, nil, "", err
	}
	var balances map[string]float64
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &balances); err != nil {
			balances = nil
		}
	}

	username, err := s.get("username")
	if err != nil {
		return balances, nil, "", err
	}

	rows, err := s.db.Query(
		"SELECT ts, entry FROM history ORDER BY id DESC LIMIT ?", historyLoadLimit,
	)
	if err != nil {
		return balances, nil, username, err
	}
	defer func() { _ = rows.Close() }()

	var history []models.HistoryEntry
	for rows.Next() {
		var ts int64
		var text string
		if err := rows.Scan(&ts, &text); err != nil {
			continue
		}
		history = append(history, models.HistoryEntry{Time: time.Unix(ts, 0), Text: text})
	}

	return balances, history, username, rows.Err()
}
