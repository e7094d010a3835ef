package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"convsync/internal/conv"
)

// UpsertConversation stores one raw local conversation record. The full
// record is kept as a JSON document; a few fields are broken out into
// columns for indexing.
func (db *DB) UpsertConversation(rec *conv.LocalConversation) error {
	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	_, err = db.Exec(`
		INSERT INTO conversations (id, type, team_id, last_event_timestamp, record, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			type = excluded.type,
			team_id = excluded.team_id,
			last_event_timestamp = excluded.last_event_timestamp,
			record = excluded.record,
			updated_at = excluded.updated_at`,
		rec.ID, int(rec.Type), rec.ResolvedTeamID(), lastEventColumn(rec), string(doc), time.Now().UnixMilli())
	return err
}

// UpsertConversations stores a batch of records in one transaction.
func (db *DB) UpsertConversations(recs []*conv.LocalConversation) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UnixMilli()
	for _, rec := range recs {
		doc, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode record %s: %w", rec.ID, err)
		}
		if _, err := tx.Exec(`
			INSERT INTO conversations (id, type, team_id, last_event_timestamp, record, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				type = excluded.type,
				team_id = excluded.team_id,
				last_event_timestamp = excluded.last_event_timestamp,
				record = excluded.record,
				updated_at = excluded.updated_at`,
			rec.ID, int(rec.Type), rec.ResolvedTeamID(), lastEventColumn(rec), string(doc), now); err != nil {
			return fmt.Errorf("upsert conversation %s: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

// GetConversation returns a single record by id, or nil when absent.
func (db *DB) GetConversation(id string) (*conv.LocalConversation, error) {
	var doc string
	err := db.QueryRow(`SELECT record FROM conversations WHERE id = ?`, id).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeRecord(doc)
}

// ListConversations returns all records sorted by last event timestamp
// descending, newest conversations first.
func (db *DB) ListConversations() ([]*conv.LocalConversation, error) {
	rows, err := db.Query(`SELECT record FROM conversations ORDER BY last_event_timestamp DESC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var recs []*conv.LocalConversation
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		rec, err := decodeRecord(doc)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// DeleteConversation removes a record. Eviction policy belongs to callers;
// the sync engine itself never deletes.
func (db *DB) DeleteConversation(id string) error {
	_, err := db.Exec(`DELETE FROM conversations WHERE id = ?`, id)
	return err
}

func decodeRecord(doc string) (*conv.LocalConversation, error) {
	var rec conv.LocalConversation
	if err := json.Unmarshal([]byte(doc), &rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return &rec, nil
}

func lastEventColumn(rec *conv.LocalConversation) int64 {
	if rec.LastEventTimestamp == nil {
		return 0
	}
	return *rec.LastEventTimestamp
}
