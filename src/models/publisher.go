package models

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// Publisher is an account on the affiliate network. Its ID is issued by the
// network, never generated locally.
type Publisher struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Token     string    `json:"-"` // API secret, never serialized
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GenerateSign computes the request signature the affiliate API expects:
// a plain hash over publisherId || timestamp || token. The concatenation
// order and encoding are fixed by the wire protocol and must not change.
func (p *Publisher) GenerateSign(timestamp string) string {
	payload := fmt.Sprintf("%d%s%s", p.ID, timestamp, p.Token)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// CreatePublisher inserts a publisher with its externally-issued ID.
func CreatePublisher(db *sql.DB, p *Publisher) error {
	query := `
	INSERT INTO publishers (id, name, token)
	VALUES (?, ?, ?)`
	stmt, err := db.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	_, err = stmt.Exec(p.ID, p.Name, p.Token)
	return err
}

// GetPublisherByID retrieves a publisher. Returns nil, nil when absent.
func GetPublisherByID(db *sql.DB, id int64) (*Publisher, error) {
	query := `
	SELECT id, name, token
	FROM publishers
	WHERE id = ?`

	row := db.QueryRow(query, id)
	var p Publisher
	err := row.Scan(&p.ID, &p.Name, &p.Token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}
