package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pro-grammer-SD/multi-tool-ai-app-farewell-to-codingal/internal/models"
)

// DefaultDSN is a process-private in-memory database.
const DefaultDSN = "file:history?mode=memory&cache=shared"

const schema = `
CREATE TABLE IF NOT EXISTS entries (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id TEXT NOT NULL,
    feature INTEGER NOT NULL,
    input TEXT NOT NULL,
    output TEXT NOT NULL DEFAULT '',
    image_id TEXT,
    image_mime TEXT,
    image_width INTEGER,
    image_height INTEGER,
    image_data BLOB,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS entries_session_feature
    ON entries(session_id, feature, id);`

type Database struct {
	db *sql.DB
}

func New(dsn string) (*Database, error) {
	if dsn == "" {
		dsn = DefaultDSN
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	// An in-memory database lives only as long as its connections; keep a
	// single one open for the lifetime of the store.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Database{db: db}, nil
}

func (d *Database) Append(ctx context.Context, sessionID string, entry *models.Entry) error {
	query := `
        INSERT INTO entries (session_id, feature, input, output,
            image_id, image_mime, image_width, image_height, image_data, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        RETURNING id`

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	var (
		imageID, imageMIME      sql.NullString
		imageWidth, imageHeight sql.NullInt64
		imageData               []byte
	)
	if img := entry.Image; img != nil {
		imageID = sql.NullString{String: img.ID, Valid: true}
		imageMIME = sql.NullString{String: img.MIMEType, Valid: true}
		imageWidth = sql.NullInt64{Int64: int64(img.Width), Valid: true}
		imageHeight = sql.NullInt64{Int64: int64(img.Height), Valid: true}
		imageData = img.Data
	}

	err := d.db.QueryRowContext(ctx, query,
		sessionID, int(entry.Feature), entry.Input, entry.Output,
		imageID, imageMIME, imageWidth, imageHeight, imageData, entry.CreatedAt,
	).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("failed to append entry: %w", err)
	}
	return nil
}

func (d *Database) List(ctx context.Context, sessionID string, feature models.Feature) ([]models.Entry, error) {
	query := `
        SELECT id, input, output, image_id, image_mime, image_width, image_height, image_data, created_at
        FROM entries
        WHERE session_id = ? AND feature = ?
        ORDER BY id ASC`

	rows, err := d.db.QueryContext(ctx, query, sessionID, int(feature))
	if err != nil {
		return []models.Entry{}, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	entries := make([]models.Entry, 0)
	for rows.Next() {
		var (
			e                       models.Entry
			imageID, imageMIME      sql.NullString
			imageWidth, imageHeight sql.NullInt64
			imageData               []byte
		)
		err := rows.Scan(&e.ID, &e.Input, &e.Output,
			&imageID, &imageMIME, &imageWidth, &imageHeight, &imageData, &e.CreatedAt)
		if err != nil {
			return []models.Entry{}, fmt.Errorf("failed to scan entry: %w", err)
		}
		e.Feature = feature
		if imageID.Valid {
			e.Image = &models.Image{
				ID:       imageID.String,
				MIMEType: imageMIME.String,
				Width:    int(imageWidth.Int64),
				Height:   int(imageHeight.Int64),
				Data:     imageData,
			}
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return []models.Entry{}, fmt.Errorf("failed to read entries: %w", err)
	}
	return entries, nil
}

func (d *Database) Clear(ctx context.Context, sessionID string, feature models.Feature) error {
	_, err := d.db.ExecContext(ctx,
		"DELETE FROM entries WHERE session_id = ? AND feature = ?", sessionID, int(feature))
	return err
}

func (d *Database) Drop(ctx context.Context, sessionID string) error {
	_, err := d.db.ExecContext(ctx, "DELETE FROM entries WHERE session_id = ?", sessionID)
	return err
}

func (d *Database) Close() error {
	return d.db.Close()
}
