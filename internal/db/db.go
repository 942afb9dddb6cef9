package db

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

const contactColumns = `id, name, email, emails, phone, address, created_at, updated_at`

// DB wraps the database connection
type DB struct {
	conn *sql.DB
	log  *zap.Logger
}

// Open creates a new database connection
func Open(dbPath string, log *zap.Logger) (*DB, error) {
	// Check if DB exists
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("database not found at %s\nRun 'addressbookd -init' to create it", dbPath)
	}

	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}

	db := &DB{conn: conn, log: log}

	// Run any pending migrations
	if err := db.RunMigrations(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// ListContacts returns all contacts in creation order
func (db *DB) ListContacts() ([]Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts ORDER BY rowid`
	return db.queryContacts(query)
}

// SearchContacts returns contacts whose name, emails, phone or address
// contain query, ignoring case. An empty query lists everything.
func (db *DB) SearchContacts(query string) ([]Contact, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return db.ListContacts()
	}

	sqlQuery := `
		SELECT ` + contactColumns + `
		FROM contacts
		WHERE instr(lower(name), lower(?1)) > 0
		   OR instr(lower(coalesce(email, '')), lower(?1)) > 0
		   OR instr(lower(emails), lower(?1)) > 0
		   OR instr(lower(coalesce(phone, '')), lower(?1)) > 0
		   OR instr(lower(coalesce(address, '')), lower(?1)) > 0
		ORDER BY rowid
	`
	return db.queryContacts(sqlQuery, query)
}

func (db *DB) queryContacts(query string, args ...any) ([]Contact, error) {
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying contacts: %w", err)
	}
	defer rows.Close()

	contacts := []Contact{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}

	return contacts, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanContact(row scanner) (Contact, error) {
	var c Contact
	var emails sql.NullString
	err := row.Scan(&c.ID, &c.Name, &c.Email, &emails, &c.Phone, &c.Address, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return c, fmt.Errorf("scanning contact: %w", err)
	}

	// Clean up the name field - remove newlines and trim whitespace
	c.Name = strings.TrimSpace(strings.ReplaceAll(c.Name, "\n", " "))
	c.Emails = decodeEmails(emails)
	return c, nil
}

// GetContact retrieves a single contact by ID
func (db *DB) GetContact(id string) (*Contact, error) {
	row := db.conn.QueryRow(`SELECT `+contactColumns+` FROM contacts WHERE id = ?`, id)
	c, err := scanContact(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// AddContact creates a new contact and returns it with its generated ID
func (db *DB) AddContact(contact Contact) (*Contact, error) {
	if contact.ID == "" {
		contact.ID = uuid.NewString()
	}

	query := `
		INSERT INTO contacts (
			id, name, email, emails, phone, address,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`

	_, err := db.conn.Exec(query,
		contact.ID,
		contact.Name,
		contact.Email,
		encodeEmails(contact.Emails),
		contact.Phone,
		contact.Address,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting contact: %w", err)
	}

	return db.GetContact(contact.ID)
}

// UpdateContact replaces every field of an existing contact
func (db *DB) UpdateContact(contact Contact) (*Contact, error) {
	query := `
		UPDATE contacts SET
			name = ?,
			email = ?,
			emails = ?,
			phone = ?,
			address = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	result, err := db.conn.Exec(query,
		contact.Name,
		contact.Email,
		encodeEmails(contact.Emails),
		contact.Phone,
		contact.Address,
		contact.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating contact: %w", err)
	}
	if err := requireAffected(result); err != nil {
		return nil, err
	}

	return db.GetContact(contact.ID)
}

// DeleteContact permanently deletes a contact
func (db *DB) DeleteContact(id string) error {
	result, err := db.conn.Exec(`DELETE FROM contacts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting contact: %w", err)
	}
	return requireAffected(result)
}

func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
