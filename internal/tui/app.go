package tui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/pdxmph/addressbook/internal/app"
	"github.com/pdxmph/addressbook/internal/contact"
	"github.com/pdxmph/addressbook/internal/email"
)

type pane int

const (
	paneList pane = iota
	paneForm
)

// Form field indices
const (
	FieldFirstName = iota
	FieldLastName
	FieldEmails   // chip row
	FieldNewEmail // only reachable while the entry form is open
	FieldCount    // Total number of fields
)

// Login field indices
const (
	LoginFieldUsername = iota
	LoginFieldPassword
)

// opDoneMsg reports that a backend operation finished
type opDoneMsg struct {
	op  string
	err error
}

// Model represents the main application state
type Model struct {
	app *app.App
	log *zap.Logger

	view     app.View
	visible  []contact.Contact
	selected int // index into visible, -1 when nothing is selected
	width    int
	height   int

	focus     pane
	formField int
	chip      int
	first     textinput.Model
	last      textinput.Model
	newEmail  textinput.Model

	loginField int
	username   textinput.Model
	password   textinput.Model

	filterMode bool
	filter     textinput.Model

	spinner spinner.Model
}

// New creates a new application model
func New(a *app.App, log *zap.Logger) *Model {
	// Setup filter input
	ti := textinput.New()
	ti.Placeholder = "Filter contacts..."
	ti.Width = 30 // Generous default width
	ti.CharLimit = 50
	ti.Prompt = "> "
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("230"))
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	ti.PlaceholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = stateStyle

	m := &Model{
		app:      a,
		log:      log,
		selected: -1,
		first:    newInput("First name"),
		last:     newInput("Last name"),
		newEmail: newInput("name@example.com"),
		username: newInput("Username"),
		password: newInput("Password"),
		filter:   ti,
		spinner:  sp,
	}
	m.password.EchoMode = textinput.EchoPassword
	m.password.EchoCharacter = '•'
	m.refresh()
	return m
}

func newInput(placeholder string) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.Width = 40
	in.CharLimit = 200
	in.Prompt = ""
	return in
}

// Init loads the contacts
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.run("load", m.app.Init), m.spinner.Tick)
}

// run executes a backend operation off the update loop
func (m Model) run(op string, fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg{op: op, err: fn(context.Background())}
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// Update input widths when window size changes
		if m.width > 0 {
			listWidth := m.width / 3
			m.filter.Width = listWidth - 4 // account for borders and padding
			formWidth := m.width - listWidth - 24
			if formWidth > 10 {
				m.first.Width = formWidth
				m.last.Width = formWidth
				m.newEmail.Width = formWidth
			}
		}
		return m, nil

	case spinner.TickMsg:
		// Operations run off the update loop, so pick up their busy state here
		m.refresh()
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case opDoneMsg:
		if msg.err != nil && !errors.Is(msg.err, app.ErrBusy) {
			m.log.Debug("operation failed", zap.String("op", msg.op), zap.Error(msg.err))
		}
		m.refresh()
		if msg.op == "delete" && msg.err == nil {
			m.focusList()
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		// Alert handling - any key dismisses
		if m.view.Alert != "" {
			m.app.DismissAlert()
			m.refresh()
			return m, nil
		}

		if m.view.State == app.LoggingIn {
			return m.updateLogin(msg)
		}

		// Delete confirmation mode handling
		if m.view.ConfirmDelete {
			switch msg.String() {
			case "y", "Y":
				m.refresh()
				return m, m.run("delete", m.app.ConfirmDelete)
			default:
				// Any other key cancels
				m.app.CancelDelete()
				m.refresh()
				return m, nil
			}
		}

		if m.filterMode {
			return m.updateFilter(msg)
		}

		if m.focus == paneForm {
			return m.updateForm(msg)
		}

		return m.updateList(msg)
	}

	return m, nil
}

// updateList handles keys while the contact list has focus
func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "j", "down":
		if m.selected < len(m.visible)-1 {
			m.selectIndex(m.selected + 1)
		}

	case "k", "up":
		if m.selected > 0 {
			m.selectIndex(m.selected - 1)
		}

	case "/":
		m.filterMode = true
		m.filter.Reset()
		m.filter.Placeholder = "Filter contacts..."
		if m.width > 0 {
			m.filter.Width = m.width/3 - 6
		} else {
			m.filter.Width = 25
		}
		cmd := m.filter.Focus()
		return m, cmd

	case "esc":
		// Clear a server-side search
		if m.view.Query != "" {
			return m, m.run("search", func(ctx context.Context) error {
				return m.app.Search(ctx, "")
			})
		}

	case "n":
		m.app.NewContact()
		m.refresh()
		cmd := m.focusForm(FieldFirstName)
		return m, cmd

	case "e", "enter":
		if m.selected >= 0 {
			cmd := m.focusForm(FieldFirstName)
			return m, cmd
		}

	case "d":
		m.app.RequestDelete()
		m.refresh()

	case "r":
		return m, m.run("reload", m.app.Reload)

	case "l":
		if m.view.Username == "" {
			m.app.OpenLogin()
			m.refresh()
		}

	case "L":
		if m.view.Username != "" {
			return m, m.run("logout", m.app.Logout)
		}
	}

	return m, nil
}

// updateFilter handles keys while typing a filter
func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.filterMode = false
		m.filter.Reset()
		m.filter.Blur()
		m.refresh()
		return m, nil
	case "enter":
		// Hand the query to the server so it survives reloads
		query := m.filter.Value()
		m.filterMode = false
		m.filter.Reset()
		m.filter.Blur()
		m.refresh()
		return m, m.run("search", func(ctx context.Context) error {
			return m.app.Search(ctx, query)
		})
	case "up":
		if m.selected > 0 {
			m.selectIndex(m.selected - 1)
		}
		return m, nil
	case "down":
		if m.selected < len(m.visible)-1 {
			m.selectIndex(m.selected + 1)
		}
		return m, nil
	}

	// Pass all other keys to the textinput
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.refresh()
	return m, cmd
}

// updateForm handles keys while the contact form has focus
func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.app.Cancel()
		m.refresh()
		m.focusList()
		return m, nil

	case "ctrl+s":
		return m, m.run("save", m.app.Save)

	case "tab", "down":
		cmd := m.focusForm(m.nextField(1))
		return m, cmd

	case "shift+tab", "up":
		cmd := m.focusForm(m.nextField(-1))
		return m, cmd

	case "ctrl+a":
		// Open the entry form, or commit and close it
		m.app.ToggleEmailEntry()
		m.refresh()
		if m.view.EmailEntry {
			cmd := m.focusForm(FieldNewEmail)
			return m, cmd
		}
		cmd := m.focusForm(FieldEmails)
		return m, cmd
	}

	switch m.formField {
	case FieldEmails:
		switch msg.String() {
		case "left", "h":
			if m.chip > 0 {
				m.chip--
			}
		case "right", "l":
			if m.chip < len(m.view.Emails)-1 {
				m.chip++
			}
		case "x", "delete", "backspace":
			if m.chip < len(m.view.Emails) {
				m.app.RemoveEmail(m.chip)
				m.refresh()
			}
		case "+", "a":
			if !m.view.EmailEntry {
				m.app.ToggleEmailEntry()
				m.refresh()
			}
			cmd := m.focusForm(FieldNewEmail)
			return m, cmd
		}
		return m, nil

	case FieldNewEmail:
		if msg.String() == "enter" {
			if m.app.CommitPendingEmail() == email.CommitAdded {
				m.chip = len(m.view.Emails)
			}
			m.refresh()
			return m, nil
		}
		var cmd tea.Cmd
		m.newEmail, cmd = m.newEmail.Update(msg)
		m.app.SetPendingEmail(m.newEmail.Value())
		return m, cmd

	case FieldFirstName:
		if msg.String() == "enter" {
			cmd := m.focusForm(FieldLastName)
			return m, cmd
		}
		var cmd tea.Cmd
		m.first, cmd = m.first.Update(msg)
		m.app.SetFirstName(m.first.Value())
		return m, cmd

	case FieldLastName:
		if msg.String() == "enter" {
			cmd := m.focusForm(FieldEmails)
			return m, cmd
		}
		var cmd tea.Cmd
		m.last, cmd = m.last.Update(msg)
		m.app.SetLastName(m.last.Value())
		return m, cmd
	}

	return m, nil
}

// updateLogin handles keys while the login dialog is open
func (m Model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.app.CancelLogin()
		m.refresh()
		return m, nil

	case "tab", "shift+tab", "up", "down":
		cmd := m.focusLogin(1 - m.loginField)
		return m, cmd

	case "enter":
		if m.loginField == LoginFieldUsername && m.password.Value() == "" {
			cmd := m.focusLogin(LoginFieldPassword)
			return m, cmd
		}
		username, password := m.username.Value(), m.password.Value()
		return m, m.run("login", func(ctx context.Context) error {
			return m.app.SubmitLogin(ctx, username, password)
		})
	}

	var cmd tea.Cmd
	if m.loginField == LoginFieldUsername {
		m.username, cmd = m.username.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

// refresh pulls a new snapshot from the coordinator and brings the inputs
// and cursor in line with it
func (m *Model) refresh() {
	wasLoggingIn := m.view.State == app.LoggingIn
	m.view = m.app.Snapshot()

	if m.filterMode && m.filter.Value() != "" {
		m.visible = m.app.Filter(m.filter.Value())
	} else {
		m.visible = m.view.Contacts
	}

	m.selected = -1
	for i, c := range m.visible {
		if c.ID == m.view.SelectedID {
			m.selected = i
			break
		}
	}

	syncValue(&m.first, m.view.FirstName)
	syncValue(&m.last, m.view.LastName)
	syncValue(&m.newEmail, m.view.PendingEmail)
	if m.chip >= len(m.view.Emails) {
		m.chip = max(len(m.view.Emails)-1, 0)
	}
	if m.formField == FieldNewEmail && !m.view.EmailEntry {
		m.focusForm(FieldEmails)
	}

	if m.view.State == app.LoggingIn && !wasLoggingIn {
		m.username.Reset()
		m.password.Reset()
		m.focusLogin(LoginFieldUsername)
	}
}

func syncValue(in *textinput.Model, value string) {
	if in.Value() != value {
		in.SetValue(value)
	}
}

// selectIndex selects the i-th visible contact, which loads it into the form
func (m *Model) selectIndex(i int) {
	if i < 0 || i >= len(m.visible) {
		return
	}
	m.app.Select(m.visible[i].ID)
	m.refresh()
}

// nextField steps through the form fields, skipping the entry field when
// the entry form is closed
func (m Model) nextField(step int) int {
	count := FieldCount
	if !m.view.EmailEntry {
		count = FieldNewEmail
	}
	return (m.formField + step + count) % count
}

func (m *Model) focusForm(field int) tea.Cmd {
	m.focus = paneForm
	m.formField = field
	m.first.Blur()
	m.last.Blur()
	m.newEmail.Blur()

	switch field {
	case FieldFirstName:
		return m.first.Focus()
	case FieldLastName:
		return m.last.Focus()
	case FieldNewEmail:
		return m.newEmail.Focus()
	}
	return nil
}

func (m *Model) focusList() {
	m.focus = paneList
	m.formField = FieldFirstName
	m.first.Blur()
	m.last.Blur()
	m.newEmail.Blur()
}

func (m *Model) focusLogin(field int) tea.Cmd {
	m.loginField = field
	if field == LoginFieldUsername {
		m.password.Blur()
		return m.username.Focus()
	}
	m.username.Blur()
	return m.password.Focus()
}
