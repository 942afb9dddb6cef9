package tui

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pdxmph/addressbook/internal/api"
	"github.com/pdxmph/addressbook/internal/app"
	"github.com/pdxmph/addressbook/internal/apperror"
	"github.com/pdxmph/addressbook/internal/contact"
)

// fakeAPI is an in-memory backend and session in one
type fakeAPI struct {
	records  []contact.Contact
	next     int
	username string
	loadErr  error
	searches []string
	block    chan struct{}
}

func (f *fakeAPI) HasToken() bool   { return f.username != "" }
func (f *fakeAPI) Username() string { return f.username }
func (f *fakeAPI) Clear()           { f.username = "" }

func (f *fakeAPI) Login(_ context.Context, username, password string) (api.LoginResult, error) {
	if password != "secret" {
		return api.LoginResult{}, apperror.NewAuth(401, "Invalid username or password")
	}
	f.username = username
	return api.LoginResult{Token: "tok", Username: username}, nil
}

func (f *fakeAPI) LoadContacts(context.Context) ([]contact.Contact, error) {
	if f.loadErr != nil {
		err := f.loadErr
		f.loadErr = nil
		return nil, err
	}
	if f.username == "" {
		return nil, apperror.NewAuth(401, "Unauthorized")
	}
	return append([]contact.Contact(nil), f.records...), nil
}

func (f *fakeAPI) SearchContacts(_ context.Context, q string) ([]contact.Contact, error) {
	f.searches = append(f.searches, q)
	var out []contact.Contact
	for _, c := range f.records {
		if strings.Contains(strings.ToLower(c.Name+" "+strings.Join(c.Emails, " ")), strings.ToLower(q)) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeAPI) CreateContact(_ context.Context, p contact.Payload) (contact.Contact, error) {
	if f.block != nil {
		<-f.block
	}
	f.next++
	c := contact.Normalize(contact.Contact{ID: fmt.Sprint(f.next), Name: p.Name, Emails: p.Emails})
	f.records = append(f.records, c)
	return c, nil
}

func (f *fakeAPI) UpdateContact(_ context.Context, id string, p contact.Payload) (contact.Contact, error) {
	for i := range f.records {
		if f.records[i].ID == id {
			f.records[i] = contact.Normalize(contact.Contact{ID: id, Name: p.Name, Emails: p.Emails})
			return f.records[i], nil
		}
	}
	return contact.Contact{}, apperror.NewNetwork(404, "Contact not found", nil)
}

func (f *fakeAPI) DeleteContact(_ context.Context, id string) error {
	for i := range f.records {
		if f.records[i].ID == id {
			f.records = append(f.records[:i], f.records[i+1:]...)
			return nil
		}
	}
	return apperror.NewNetwork(404, "Contact not found", nil)
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		username: "alice",
		next:     10,
		records: []contact.Contact{
			{ID: "1", Name: "Amy Adams", Email: "amy@x.com", Emails: []string{"amy@x.com"}},
			{ID: "2", Name: "Bo Diaz", Email: "bo@work.org", Emails: []string{"bo@work.org"}},
		},
	}
}

func newTestModel(t *testing.T, f *fakeAPI) Model {
	t.Helper()
	a := app.New(f, f, zap.NewNop())
	_ = a.Init(context.Background())
	m := *New(a, zap.NewNop())
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(Model)
}

func runes(s string) tea.KeyMsg    { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }
func key(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }

// press sends keys and drops any returned command
func press(m Model, keys ...tea.KeyMsg) Model {
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(Model)
	}
	return m
}

// pressRun sends a key that starts a backend operation and feeds the
// result back into the model
func pressRun(t *testing.T, m Model, k tea.KeyMsg) Model {
	t.Helper()
	next, cmd := m.Update(k)
	m = next.(Model)
	require.NotNil(t, cmd)
	done, ok := cmd().(opDoneMsg)
	require.True(t, ok, "command did not run an operation")
	next, _ = m.Update(done)
	return next.(Model)
}

func TestNavigationLoadsForm(t *testing.T) {
	m := newTestModel(t, newFakeAPI())
	assert.Equal(t, -1, m.selected)
	assert.Contains(t, m.View(), "New Contact")

	m = press(m, runes("j"))
	assert.Equal(t, 0, m.selected)
	assert.Equal(t, "Amy", m.first.Value())
	assert.Equal(t, "Adams", m.last.Value())

	m = press(m, runes("j"), runes("j"))
	assert.Equal(t, 1, m.selected)
	assert.Equal(t, "Bo", m.first.Value())
	assert.Contains(t, m.View(), "Edit Contact: Bo Diaz")
	assert.Contains(t, m.View(), "Hello alice")
}

func TestSelectedRowKeepsEmail(t *testing.T) {
	m := newTestModel(t, newFakeAPI())
	m = press(m, runes("j"))
	require.Equal(t, 0, m.selected)

	var row string
	for _, line := range strings.Split(m.renderList(40, 20), "\n") {
		if strings.Contains(line, "Amy Adams") {
			row = line
		}
	}
	assert.Contains(t, row, "<amy@x.com>")
	assert.Contains(t, m.renderList(40, 20), "Bo Diaz <bo@work.org>")
}

func TestCreateContactFromForm(t *testing.T) {
	f := newFakeAPI()
	m := newTestModel(t, f)

	m = press(m, runes("n"))
	assert.Equal(t, paneForm, m.focus)
	m = press(m,
		runes("Grace"), key(tea.KeyTab),
		runes("Hopper"), key(tea.KeyTab),
		runes("a"), runes("g@navy.mil"), key(tea.KeyEnter),
		runes("hopper@grace.org"),
	)
	assert.Equal(t, []string{"g@navy.mil"}, m.view.Emails)

	m = pressRun(t, m, key(tea.KeyCtrlS))

	require.Len(t, f.records, 3)
	saved := f.records[2]
	assert.Equal(t, "Grace Hopper", saved.Name)
	assert.Equal(t, []string{"g@navy.mil", "hopper@grace.org"}, saved.Emails)
	assert.Equal(t, saved.ID, m.view.SelectedID)
	assert.Equal(t, 2, m.selected)
	assert.Contains(t, m.View(), "Edit Contact: Grace Hopper")
}

func TestSpinnerShowsWhileSaving(t *testing.T) {
	f := newFakeAPI()
	m := newTestModel(t, f)
	m = press(m, runes("n"), runes("Grace"), key(tea.KeyTab), runes("Hopper"))

	f.block = make(chan struct{})
	next, cmd := m.Update(key(tea.KeyCtrlS))
	m = next.(Model)
	require.NotNil(t, cmd)
	result := make(chan tea.Msg, 1)
	go func() { result <- cmd() }()

	require.Eventually(t, func() bool {
		next, _ := m.Update(spinner.TickMsg{})
		m = next.(Model)
		return m.view.Busy
	}, time.Second, time.Millisecond)
	assert.Contains(t, m.View(), "Working...")

	close(f.block)
	next, _ = m.Update(<-result)
	m = next.(Model)
	assert.False(t, m.view.Busy)
	assert.NotContains(t, m.View(), "Working...")
	assert.Contains(t, m.View(), "Edit Contact: Grace Hopper")
}

func TestSaveValidationShowsError(t *testing.T) {
	f := newFakeAPI()
	m := newTestModel(t, f)

	m = press(m, runes("n"), runes("Grace"))
	m = pressRun(t, m, key(tea.KeyCtrlS))

	assert.Len(t, f.records, 2)
	assert.Contains(t, m.View(), "First name and last name are required")
}

func TestRemoveEmailChip(t *testing.T) {
	f := newFakeAPI()
	f.records[0].Emails = []string{"amy@x.com", "adams@y.org"}
	m := newTestModel(t, f)

	m = press(m, runes("j"), runes("e"), key(tea.KeyTab), key(tea.KeyTab))
	assert.Equal(t, FieldEmails, m.formField)
	m = press(m, key(tea.KeyRight), runes("x"))
	assert.Equal(t, []string{"amy@x.com"}, m.view.Emails)
	assert.Equal(t, 0, m.chip)

	// Esc restores the stored contact
	m = press(m, key(tea.KeyEsc))
	assert.Equal(t, paneList, m.focus)
	assert.Equal(t, []string{"amy@x.com", "adams@y.org"}, m.view.Emails)
}

func TestDeleteConfirmation(t *testing.T) {
	f := newFakeAPI()
	m := newTestModel(t, f)

	m = press(m, runes("j"), runes("d"))
	assert.True(t, m.view.ConfirmDelete)
	assert.Contains(t, m.View(), "Delete contact 'Amy Adams'? (y/n)")

	m = press(m, runes("n"))
	assert.False(t, m.view.ConfirmDelete)
	assert.Len(t, f.records, 2)

	m = press(m, runes("d"))
	m = pressRun(t, m, runes("y"))
	assert.Len(t, f.records, 1)
	assert.Equal(t, -1, m.selected)
	assert.Len(t, m.visible, 1)
}

func TestLoginOverlay(t *testing.T) {
	f := newFakeAPI()
	f.username = ""
	m := newTestModel(t, f)

	assert.Equal(t, app.LoggingIn, m.view.State)
	assert.Contains(t, m.View(), "Login to access contacts")

	m = press(m, runes("alice"), key(tea.KeyTab), runes("wrong"))
	m = pressRun(t, m, key(tea.KeyEnter))
	assert.Contains(t, m.View(), "Invalid username or password")

	m = press(m, key(tea.KeyBackspace), key(tea.KeyBackspace), key(tea.KeyBackspace),
		key(tea.KeyBackspace), key(tea.KeyBackspace), runes("secret"))
	m = pressRun(t, m, key(tea.KeyEnter))

	assert.Equal(t, app.Viewing, m.view.State)
	assert.Len(t, m.visible, 2)
	assert.Contains(t, m.View(), "Hello alice")
}

func TestAlertDismissedByAnyKey(t *testing.T) {
	f := newFakeAPI()
	f.loadErr = apperror.NewNetwork(0, "Failed to load contacts", nil)
	m := newTestModel(t, f)

	assert.Contains(t, m.View(), "Error loading contacts")
	m = press(m, runes("z"))
	assert.Empty(t, m.view.Alert)
	assert.NotContains(t, m.View(), "Error loading contacts")
}

func TestFilterThenSearch(t *testing.T) {
	f := newFakeAPI()
	m := newTestModel(t, f)

	m = press(m, runes("/"), runes("work"))
	assert.True(t, m.filterMode)
	require.Len(t, m.visible, 1)
	assert.Equal(t, "Bo Diaz", m.visible[0].Name)
	assert.Empty(t, f.searches, "typing filters locally")

	m = pressRun(t, m, key(tea.KeyEnter))
	assert.False(t, m.filterMode)
	assert.Equal(t, []string{"work"}, f.searches)
	assert.Equal(t, "work", m.view.Query)
	assert.Contains(t, m.View(), "[search: work]")

	m = pressRun(t, m, key(tea.KeyEsc))
	assert.Empty(t, m.view.Query)
	assert.Len(t, m.visible, 2)
}

func TestWrapText(t *testing.T) {
	assert.Equal(t, []string{"one two", "three"}, wrapText("one two three", 8))
	assert.Equal(t, []string{}, wrapText("   ", 8))
	assert.Equal(t, []string{"as is"}, wrapText("as is", 0))
}
