// Package contact holds the contact record exchanged with the backend.
package contact

import "strings"

// Contact is a server-owned record. The client treats it as a read-only
// snapshot that is replaced wholesale on every load.
type Contact struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	// Emails is the ordered list of addresses; Email mirrors Emails[0]
	Emails  []string `json:"emails"`
	Phone   string   `json:"phone"`
	Address string   `json:"address"`
}

// Payload is the body sent on create and update
type Payload struct {
	Name    string   `json:"name"`
	Email   string   `json:"email"`
	Emails  []string `json:"emails"`
	Phone   string   `json:"phone"`
	Address string   `json:"address"`
}

// Normalize migrates a decoded contact to the multi-email shape. Contacts
// created before multi-email support only carry the legacy Email field, so
// it becomes the single entry of Emails. Duplicate and blank entries are
// dropped and Email is re-derived from Emails.
func Normalize(c Contact) Contact {
	emails := make([]string, 0, len(c.Emails)+1)
	seen := make(map[string]bool, len(c.Emails)+1)
	add := func(e string) {
		e = strings.TrimSpace(e)
		if e == "" || seen[e] {
			return
		}
		seen[e] = true
		emails = append(emails, e)
	}

	for _, e := range c.Emails {
		add(e)
	}
	if len(emails) == 0 {
		add(c.Email)
	}

	c.Emails = emails
	if len(emails) > 0 {
		c.Email = emails[0]
	} else {
		c.Email = ""
	}
	return c
}

// NormalizeAll normalizes every contact in list, returning a new slice
func NormalizeAll(list []Contact) []Contact {
	out := make([]Contact, 0, len(list))
	for _, c := range list {
		out = append(out, Normalize(c))
	}
	return out
}
