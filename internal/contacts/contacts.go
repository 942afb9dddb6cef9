// Package contacts owns the loaded contact collection and which contact is
// selected.
package contacts

import (
	"strings"

	"github.com/pdxmph/addressbook/internal/contact"
)

// SelectionObserver is told whenever a contact is selected. ct is nil when
// the selected id is not in the collection.
type SelectionObserver interface {
	SelectionChanged(ct *contact.Contact)
}

// SelectionFunc adapts a function to SelectionObserver
type SelectionFunc func(ct *contact.Contact)

// SelectionChanged calls f(ct)
func (f SelectionFunc) SelectionChanged(ct *contact.Contact) { f(ct) }

// List holds the contact collection in server order plus the selection
type List struct {
	contacts []contact.Contact
	selected string
	observer SelectionObserver
}

// NewList creates an empty list with no selection
func NewList() *List {
	return &List{}
}

// SetObserver registers the single selection observer, replacing any
// previous one
func (l *List) SetObserver(o SelectionObserver) {
	l.observer = o
}

// SetContacts replaces the collection. The selection is left untouched even
// if its id is gone; the caller decides whether to clear it.
func (l *List) SetContacts(list []contact.Contact) {
	l.contacts = make([]contact.Contact, len(list))
	copy(l.contacts, list)
}

// Contacts returns the collection in the order it was loaded
func (l *List) Contacts() []contact.Contact {
	out := make([]contact.Contact, len(l.contacts))
	copy(out, l.contacts)
	return out
}

// Len returns the number of loaded contacts
func (l *List) Len() int {
	return len(l.contacts)
}

// Select marks id as selected and notifies the observer with its snapshot
func (l *List) Select(id string) {
	l.selected = id
	ct := l.ByID(id)
	if l.observer != nil {
		l.observer.SelectionChanged(ct)
	}
}

// ClearSelection drops the selection
func (l *List) ClearSelection() {
	l.selected = ""
}

// SelectedID returns the selected id; ok is false when nothing is selected
func (l *List) SelectedID() (id string, ok bool) {
	return l.selected, l.selected != ""
}

// ByID returns a copy of the contact with the given id, or nil
func (l *List) ByID(id string) *contact.Contact {
	if id == "" {
		return nil
	}
	for i := range l.contacts {
		if l.contacts[i].ID == id {
			ct := l.contacts[i]
			return &ct
		}
	}
	return nil
}

// IndexOf returns the position of id in the collection, or -1
func (l *List) IndexOf(id string) int {
	for i := range l.contacts {
		if l.contacts[i].ID == id {
			return i
		}
	}
	return -1
}

// Filter returns the contacts whose name or any email contains query,
// case-insensitively, in collection order. An empty query returns all.
func (l *List) Filter(query string) []contact.Contact {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return l.Contacts()
	}

	var filtered []contact.Contact
	for _, c := range l.contacts {
		if matches(c, query) {
			filtered = append(filtered, c)
		}
	}
	return filtered
}

func matches(c contact.Contact, query string) bool {
	if strings.Contains(strings.ToLower(c.Name), query) {
		return true
	}
	for _, e := range c.Emails {
		if strings.Contains(strings.ToLower(e), query) {
			return true
		}
	}
	return false
}
