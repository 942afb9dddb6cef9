// Package app coordinates the address book: it owns the contact list, the
// edit form and the login flow, and is the only place that calls mutating
// API operations or reloads the collection.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/pdxmph/addressbook/internal/api"
	"github.com/pdxmph/addressbook/internal/apperror"
	"github.com/pdxmph/addressbook/internal/contact"
	"github.com/pdxmph/addressbook/internal/contacts"
	"github.com/pdxmph/addressbook/internal/email"
	"github.com/pdxmph/addressbook/internal/form"
	"github.com/pdxmph/addressbook/internal/validate"
)

// ErrBusy is returned when a remote operation is already in flight
var ErrBusy = errors.New("another operation is in progress")

// ErrNotConfirmed is returned by ConfirmDelete without a prior RequestDelete
var ErrNotConfirmed = errors.New("delete was not confirmed")

// Login dialog messages
const (
	UsernameRequired = "Please enter a username."
	PasswordRequired = "Please enter a password."
	LoginFailed      = "Login failed."
)

// Contacts is the subset of the API client the coordinator uses
type Contacts interface {
	Login(ctx context.Context, username, password string) (api.LoginResult, error)
	LoadContacts(ctx context.Context) ([]contact.Contact, error)
	SearchContacts(ctx context.Context, query string) ([]contact.Contact, error)
	CreateContact(ctx context.Context, p contact.Payload) (contact.Contact, error)
	UpdateContact(ctx context.Context, id string, p contact.Payload) (contact.Contact, error)
	DeleteContact(ctx context.Context, id string) error
}

// Session is the subset of the session store the coordinator uses
type Session interface {
	HasToken() bool
	Username() string
	Clear()
}

// State is the top-level UI state. Editing happens inside Viewing.
type State int

const (
	Viewing State = iota
	LoggingIn
)

func (s State) String() string {
	if s == LoggingIn {
		return "logging-in"
	}
	return "viewing"
}

// App is the application state object. One instance lives for the whole
// run; the list, form and email controllers are owned by it.
type App struct {
	mu      sync.Mutex
	api     Contacts
	session Session
	log     *zap.Logger

	list   *contacts.List
	form   *form.Controller
	emails *email.Manager

	state         State
	loginError    string
	formError     string
	alert         string
	confirmDelete bool
	busy          bool
	query         string
}

// New wires the controllers together
func New(client Contacts, session Session, log *zap.Logger) *App {
	emails := email.NewManager()
	a := &App{
		api:     client,
		session: session,
		log:     log,
		list:    contacts.NewList(),
		form:    form.New(emails, validate.New()),
		emails:  emails,
	}
	a.list.SetObserver(contacts.SelectionFunc(a.selectionChanged))
	return a
}

// selectionChanged runs with a.mu held, from inside list.Select
func (a *App) selectionChanged(ct *contact.Contact) {
	a.clearValidationErrors()
	a.form.Load(ct)
}

// Init loads the contacts and shows an empty form. A 401 opens the login
// dialog instead of reporting an error.
func (a *App) Init(ctx context.Context) error {
	err := a.reload(ctx)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.list.ClearSelection()
	a.form.Load(nil)
	return err
}

// OpenLogin shows the login dialog
func (a *App) OpenLogin() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = LoggingIn
	a.loginError = ""
}

// CancelLogin closes the login dialog
func (a *App) CancelLogin() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = Viewing
	a.loginError = ""
}

// SubmitLogin checks the credentials locally, logs in and reloads. The
// form draft is left as it was so an interrupted save can be retried.
func (a *App) SubmitLogin(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)

	a.mu.Lock()
	switch {
	case a.busy:
		a.mu.Unlock()
		return ErrBusy
	case username == "":
		a.loginError = UsernameRequired
		a.mu.Unlock()
		return apperror.NewValidation("username", UsernameRequired)
	case password == "":
		a.loginError = PasswordRequired
		a.mu.Unlock()
		return apperror.NewValidation("password", PasswordRequired)
	}
	a.busy = true
	a.mu.Unlock()

	_, err := a.api.Login(ctx, username, password)

	a.mu.Lock()
	a.busy = false
	if err != nil {
		msg := apperror.Message(err)
		if msg == "" {
			msg = LoginFailed
		}
		a.loginError = msg
		a.mu.Unlock()
		a.log.Info("login failed", zap.String("username", username), zap.Error(err))
		return err
	}
	a.state = Viewing
	a.loginError = ""
	a.mu.Unlock()

	return a.reload(ctx)
}

// Logout drops the session and reloads, which routes back to the login
// dialog once the server rejects the request
func (a *App) Logout(ctx context.Context) error {
	a.mu.Lock()
	if a.busy {
		a.mu.Unlock()
		return ErrBusy
	}
	a.mu.Unlock()

	a.session.Clear()
	a.log.Info("logged out")
	return a.reload(ctx)
}

// Search sets the active query and reloads. An empty query loads
// everything. The query sticks for later reloads.
func (a *App) Search(ctx context.Context, query string) error {
	a.mu.Lock()
	if a.busy {
		a.mu.Unlock()
		return ErrBusy
	}
	a.query = strings.TrimSpace(query)
	a.mu.Unlock()

	return a.reload(ctx)
}

// Reload fetches the collection again
func (a *App) Reload(ctx context.Context) error {
	return a.reload(ctx)
}

// reload replaces the collection with a fresh copy from the server. It must
// be called without a.mu held.
func (a *App) reload(ctx context.Context) error {
	a.mu.Lock()
	query := a.query
	a.mu.Unlock()

	var (
		list []contact.Contact
		err  error
	)
	if query != "" {
		list, err = a.api.SearchContacts(ctx, query)
	} else {
		list, err = a.api.LoadContacts(ctx)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err != nil {
		a.list.SetContacts(nil)
		if apperror.IsAuth(err) {
			a.state = LoggingIn
			a.loginError = ""
		} else {
			a.alert = fmt.Sprintf("Error loading contacts: %s. Make sure the backend server is running.", err)
		}
		a.log.Warn("loading contacts", zap.Error(err))
		return err
	}

	a.list.SetContacts(list)
	a.log.Debug("contacts loaded", zap.Int("count", len(list)), zap.String("query", query))
	return nil
}

// Filter narrows the loaded contacts locally without a server round trip
func (a *App) Filter(query string) []contact.Contact {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.list.Filter(query)
}

// Select makes id the selected contact and loads it into the form
func (a *App) Select(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.confirmDelete = false
	if a.list.IndexOf(id) < 0 {
		// Not in the loaded list, so there is nothing to edit
		a.list.ClearSelection()
		a.clearValidationErrors()
		a.form.Load(nil)
		return
	}
	a.list.Select(id)
}

// NewContact clears the selection and shows an empty form
func (a *App) NewContact() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.confirmDelete = false
	a.list.ClearSelection()
	a.clearValidationErrors()
	a.form.Load(nil)
}

// Cancel discards the edits. A selected contact is restored from the last
// loaded snapshot; otherwise the form is cleared.
func (a *App) Cancel() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.confirmDelete = false
	a.clearValidationErrors()

	if id, ok := a.list.SelectedID(); ok {
		if ct := a.list.ByID(id); ct != nil {
			a.form.Load(ct)
			return
		}
	}
	a.list.ClearSelection()
	a.form.Load(nil)
}

// Save validates the form and creates or updates the contact, then reloads
// and selects the saved contact. Validation failures never reach the network.
func (a *App) Save(ctx context.Context) error {
	a.mu.Lock()
	if a.busy {
		a.mu.Unlock()
		return ErrBusy
	}

	draft := a.form.CollectDraft()
	a.clearValidationErrors()
	if verr := a.form.Validate(draft); verr != nil {
		if verr.Field == form.FieldEmail {
			a.emails.SetError(verr.Message)
		} else {
			a.formError = verr.Message
		}
		a.mu.Unlock()
		return verr
	}

	payload := form.ToPayload(draft)
	mode := a.form.Mode()
	a.busy = true
	a.mu.Unlock()

	var (
		saved contact.Contact
		err   error
	)
	if mode.IsNew() {
		saved, err = a.api.CreateContact(ctx, payload)
	} else {
		saved, err = a.api.UpdateContact(ctx, mode.ID, payload)
	}

	a.mu.Lock()
	a.busy = false
	if err != nil {
		a.mutationFailed("saving", err)
		a.mu.Unlock()
		return err
	}
	a.emails.SetWorkingSet(draft.Emails)
	a.mu.Unlock()

	a.log.Info("contact saved", zap.String("id", saved.ID), zap.Stringer("mode", mode))

	err = a.reload(ctx)

	a.mu.Lock()
	defer a.mu.Unlock()
	if err != nil {
		// Keep editing the saved record so a retry updates instead of
		// creating a duplicate
		a.list.Select(saved.ID)
		a.form.Load(&saved)
		return err
	}
	if a.list.IndexOf(saved.ID) < 0 {
		// The saved record no longer matches the active search
		a.list.ClearSelection()
		a.form.Load(nil)
		return nil
	}
	a.list.Select(saved.ID)
	return nil
}

// RequestDelete asks for confirmation before deleting the selected contact.
// It reports whether there is a contact to delete.
func (a *App) RequestDelete() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	id, ok := a.list.SelectedID()
	if !ok || a.busy || a.list.IndexOf(id) < 0 {
		return false
	}
	a.confirmDelete = true
	return true
}

// CancelDelete withdraws a pending delete confirmation
func (a *App) CancelDelete() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.confirmDelete = false
}

// ConfirmDelete deletes the selected contact, reloads, and resets the form
func (a *App) ConfirmDelete(ctx context.Context) error {
	a.mu.Lock()
	if a.busy {
		a.mu.Unlock()
		return ErrBusy
	}
	id, ok := a.list.SelectedID()
	if !a.confirmDelete || !ok || a.list.IndexOf(id) < 0 {
		a.confirmDelete = false
		a.mu.Unlock()
		return ErrNotConfirmed
	}
	a.confirmDelete = false
	a.busy = true
	a.mu.Unlock()

	err := a.api.DeleteContact(ctx, id)

	a.mu.Lock()
	a.busy = false
	if err != nil {
		a.mutationFailed("deleting", err)
		a.mu.Unlock()
		return err
	}
	a.mu.Unlock()

	a.log.Info("contact deleted", zap.String("id", id))

	err = a.reload(ctx)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.list.ClearSelection()
	a.clearValidationErrors()
	a.form.Load(nil)
	return err
}

// mutationFailed routes a failed save or delete. Runs with a.mu held.
func (a *App) mutationFailed(action string, err error) {
	if apperror.IsAuth(err) {
		a.state = LoggingIn
		a.loginError = ""
		a.log.Info("session expired during "+action, zap.Error(err))
		return
	}
	a.alert = fmt.Sprintf("Error %s contact: %s", action, err)
	a.log.Warn(action+" contact", zap.Error(err))
}

// clearValidationErrors runs with a.mu held
func (a *App) clearValidationErrors() {
	a.emails.ClearError()
	a.formError = ""
}

// DismissAlert clears the blocking notification
func (a *App) DismissAlert() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.alert = ""
}

// SetFirstName updates the first name field
func (a *App) SetFirstName(s string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.form.SetFirstName(s)
}

// SetLastName updates the last name field
func (a *App) SetLastName(s string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.form.SetLastName(s)
}

// SetPendingEmail updates the email entry field
func (a *App) SetPendingEmail(s string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.emails.SetPendingInput(s)
}

// CommitPendingEmail adds the email entry field to the working set
func (a *App) CommitPendingEmail() email.Commit {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.emails.CommitPendingInput()
}

// ToggleEmailEntry opens or commits-and-closes the email entry field
func (a *App) ToggleEmailEntry() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.emails.ToggleEntryForm()
}

// RemoveEmail removes the i-th address from the working set
func (a *App) RemoveEmail(i int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.emails.RemoveAt(i)
}
