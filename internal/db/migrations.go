package db

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

// RunMigrations applies any pending database migrations
func (db *DB) RunMigrations() error {
	// Databases created before multi-email support lack the emails column
	if err := db.runEmailsMigration(); err != nil {
		return err
	}

	return nil
}

func (db *DB) runEmailsMigration() error {
	// Check if the emails column exists
	var count int
	err := db.conn.QueryRow(`
		SELECT COUNT(*)
		FROM pragma_table_info('contacts')
		WHERE name = 'emails'
	`).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking for emails column: %w", err)
	}

	if count > 0 {
		return nil
	}

	db.log.Info("running migration: adding emails column")

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`ALTER TABLE contacts ADD COLUMN emails TEXT NOT NULL DEFAULT '[]'`)
	if err != nil && err.Error() != "duplicate column name: emails" {
		return fmt.Errorf("adding emails column: %w", err)
	}

	// Seed the new column from the legacy single email
	rows, err := tx.Query(`SELECT id, email FROM contacts WHERE email IS NOT NULL AND email != ''`)
	if err != nil {
		return fmt.Errorf("reading legacy emails: %w", err)
	}

	legacy := map[string]string{}
	for rows.Next() {
		var id string
		var email sql.NullString
		if err := rows.Scan(&id, &email); err != nil {
			rows.Close()
			return fmt.Errorf("scanning legacy email: %w", err)
		}
		legacy[id] = email.String
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("reading legacy emails: %w", err)
	}

	for id, email := range legacy {
		if _, err := tx.Exec(`UPDATE contacts SET emails = ? WHERE id = ?`, encodeEmails([]string{email}), id); err != nil {
			return fmt.Errorf("backfilling emails for %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing emails migration: %w", err)
	}

	db.log.Info("emails migration completed", zap.Int("backfilled", len(legacy)))
	return nil
}
