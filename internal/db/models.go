package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/pdxmph/addressbook/internal/contact"
)

// ErrNotFound is returned when no contact has the requested id
var ErrNotFound = errors.New("contact not found")

// Contact represents a stored contact
type Contact struct {
	ID        string
	Name      string
	Email     sql.NullString
	Emails    []string
	Phone     sql.NullString
	Address   sql.NullString
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ToAPI converts the row to the wire representation
func (c Contact) ToAPI() contact.Contact {
	return contact.Normalize(contact.Contact{
		ID:      c.ID,
		Name:    c.Name,
		Email:   c.Email.String,
		Emails:  c.Emails,
		Phone:   c.Phone.String,
		Address: c.Address.String,
	})
}

// FromPayload builds a row from a create or update body. The legacy email
// column always mirrors the first address.
func FromPayload(id string, p contact.Payload) Contact {
	normalized := contact.Normalize(contact.Contact{Email: p.Email, Emails: p.Emails})
	return Contact{
		ID:      id,
		Name:    p.Name,
		Email:   NewNullString(normalized.Email),
		Emails:  normalized.Emails,
		Phone:   NewNullString(p.Phone),
		Address: NewNullString(p.Address),
	}
}

// NewNullString creates a sql.NullString from a string
func NewNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}

// encodeEmails stores the address list as a JSON array
func encodeEmails(emails []string) string {
	if emails == nil {
		emails = []string{}
	}
	data, _ := json.Marshal(emails)
	return string(data)
}

func decodeEmails(raw sql.NullString) []string {
	if !raw.Valid || raw.String == "" {
		return []string{}
	}
	var emails []string
	if err := json.Unmarshal([]byte(raw.String), &emails); err != nil {
		return []string{}
	}
	return emails
}
