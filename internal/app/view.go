package app

import (
	"github.com/pdxmph/addressbook/internal/contact"
	"github.com/pdxmph/addressbook/internal/form"
)

// View is a consistent copy of everything the UI renders
type View struct {
	State         State
	Username      string
	Contacts      []contact.Contact
	SelectedID    string
	Mode          form.Mode
	FirstName     string
	LastName      string
	Emails        []string
	PendingEmail  string
	EmailEntry    bool
	EmailError    string
	FormError     string
	LoginError    string
	Alert         string
	ConfirmDelete bool
	Busy          bool
	Query         string
}

// Snapshot returns the current view state
func (a *App) Snapshot() View {
	a.mu.Lock()
	defer a.mu.Unlock()

	selected, _ := a.list.SelectedID()
	return View{
		State:         a.state,
		Username:      a.session.Username(),
		Contacts:      a.list.Contacts(),
		SelectedID:    selected,
		Mode:          a.form.Mode(),
		FirstName:     a.form.FirstName(),
		LastName:      a.form.LastName(),
		Emails:        a.emails.Emails(),
		PendingEmail:  a.emails.PendingInput(),
		EmailEntry:    a.emails.EntryFormOpen(),
		EmailError:    a.emails.Error(),
		FormError:     a.formError,
		LoginError:    a.loginError,
		Alert:         a.alert,
		ConfirmDelete: a.confirmDelete,
		Busy:          a.busy,
		Query:         a.query,
	}
}

// Greeting is the auth line shown above the list
func (v View) Greeting() string {
	if v.Username != "" {
		return "Hello " + v.Username
	}
	return "Login to access contacts"
}

// Selected returns the selected contact from the snapshot, or nil
func (v View) Selected() *contact.Contact {
	for i := range v.Contacts {
		if v.Contacts[i].ID == v.SelectedID {
			ct := v.Contacts[i]
			return &ct
		}
	}
	return nil
}
