// Package email manages the addresses attached to the contact being edited.
// The working set is kept apart from the contact's persisted emails until
// the form is saved, and a single pending input holds the address currently
// being typed.
package email

import (
	"strings"

	"github.com/pdxmph/addressbook/internal/validate"
)

// InvalidMessage is shown when the pending input is not a valid address
const InvalidMessage = "Please enter a valid email address (e.g. name@example.com)."

// Commit is the outcome of committing the pending input
type Commit int

const (
	// CommitEmpty means there was nothing to commit
	CommitEmpty Commit = iota
	// CommitInvalid means the input failed validation and was kept
	CommitInvalid
	// CommitAdded means the input was added to the working set
	CommitAdded
)

// Manager owns the working set, the pending input and the entry form state
type Manager struct {
	emails    []string
	pending   string
	entryOpen bool
	err       string
}

// NewManager creates an empty manager
func NewManager() *Manager {
	return &Manager{}
}

// SetWorkingSet replaces the working set, dropping duplicates
func (m *Manager) SetWorkingSet(emails []string) {
	m.emails = nil
	for _, e := range emails {
		m.Add(e)
	}
}

// Emails returns a copy of the working set in insertion order
func (m *Manager) Emails() []string {
	out := make([]string, len(m.emails))
	copy(out, m.emails)
	return out
}

// Contains reports whether addr is already in the working set
func (m *Manager) Contains(addr string) bool {
	for _, e := range m.emails {
		if e == addr {
			return true
		}
	}
	return false
}

// Add appends addr unless it is empty or already present
func (m *Manager) Add(addr string) {
	if addr == "" || m.Contains(addr) {
		return
	}
	m.emails = append(m.emails, addr)
}

// RemoveAt removes the address at index i. Out of range is a no-op.
func (m *Manager) RemoveAt(i int) {
	if i < 0 || i >= len(m.emails) {
		return
	}
	m.emails = append(m.emails[:i:i], m.emails[i+1:]...)
}

// SetPendingInput replaces the uncommitted input value
func (m *Manager) SetPendingInput(s string) {
	m.pending = s
}

// PendingInput returns the uncommitted input value
func (m *Manager) PendingInput() string {
	return m.pending
}

// CommitPendingInput moves the pending input into the working set if it is
// a valid address. An invalid input sets a sticky error and is kept so the
// user can fix it.
func (m *Manager) CommitPendingInput() Commit {
	addr := strings.TrimSpace(m.pending)
	if addr == "" {
		m.err = ""
		return CommitEmpty
	}

	if !validate.IsValidEmail(addr) {
		m.err = InvalidMessage
		return CommitInvalid
	}

	m.err = ""
	m.Add(addr)
	m.pending = ""
	return CommitAdded
}

// ToggleEntryForm opens the entry form, or commits and closes it. The form
// stays open when the pending input is invalid.
func (m *Manager) ToggleEntryForm() {
	if !m.entryOpen {
		m.err = ""
		m.entryOpen = true
		return
	}

	if m.CommitPendingInput() == CommitInvalid {
		return
	}
	m.entryOpen = false
}

// EntryFormOpen reports whether the entry form is visible
func (m *Manager) EntryFormOpen() bool {
	return m.entryOpen
}

// Error returns the current email validation message, or ""
func (m *Manager) Error() string {
	return m.err
}

// SetError sets the email validation message
func (m *Manager) SetError(msg string) {
	m.err = msg
}

// ClearError clears the email validation message
func (m *Manager) ClearError() {
	m.err = ""
}

// Reset hides the entry form and clears the pending input and error. The
// working set is left alone.
func (m *Manager) Reset() {
	m.entryOpen = false
	m.pending = ""
	m.err = ""
}
