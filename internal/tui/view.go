package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pdxmph/addressbook/internal/app"
)

// Styles
var (
	selectedStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("62")).
			Foreground(lipgloss.Color("230"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	stateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // Orange for activity

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	chipStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("238")).
			Padding(0, 1)

	borderStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240"))
)

// View renders the UI
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	// Overlays take the whole screen
	if m.view.State == app.LoggingIn {
		return m.renderLogin()
	}
	if m.view.Alert != "" {
		return m.renderAlert()
	}
	if m.view.ConfirmDelete {
		return m.renderDeleteConfirmation()
	}

	// Calculate pane widths
	listWidth := m.width / 3
	formWidth := m.width - listWidth - 3 // account for borders

	content := lipgloss.JoinHorizontal(
		lipgloss.Top,
		borderStyle.Width(listWidth).Height(m.height-3).Render(m.renderList(listWidth, m.height-3)),
		borderStyle.Width(formWidth).Height(m.height-3).Render(m.renderForm(formWidth)),
	)

	return lipgloss.JoinVertical(lipgloss.Left, content, m.renderHelp())
}

// renderList renders the contact list
func (m Model) renderList(width, height int) string {
	var lines []string

	lines = append(lines, labelStyle.Render(m.view.Greeting()))
	height--

	if m.filterMode {
		// Always show the filter when in filter mode, even if empty
		filterView := m.filter.View()
		if filterView == "" {
			filterView = "> " + m.filter.Placeholder
		}
		lines = append(lines, filterView)
		lines = append(lines, "")
		height -= 2
	}

	// Calculate visible range
	visibleHeight := height - 2 // account for header
	startIdx := 0
	if m.selected >= visibleHeight {
		startIdx = m.selected - visibleHeight + 1
	}

	header := fmt.Sprintf("Contacts (%d)", len(m.visible))
	if m.view.Query != "" {
		header += " [search: " + m.view.Query + "]"
	}
	lines = append(lines, header)
	lines = append(lines, strings.Repeat("─", max(width-2, 0)))

	if len(m.visible) == 0 {
		lines = append(lines, labelStyle.Render("  No contacts"))
	}

	for i := startIdx; i < len(m.visible) && i < startIdx+visibleHeight; i++ {
		c := m.visible[i]
		var addr string
		if c.Email != "" {
			addr = "<" + c.Email + ">"
		}
		line := "  " + c.Name
		switch {
		case i == m.selected:
			line = selectedStyle.Render(strings.TrimRight(line+" "+addr, " "))
		case addr != "":
			line += " " + labelStyle.Render(addr)
		}
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n")
}

// renderForm renders the contact form
func (m Model) renderForm(width int) string {
	var lines []string

	header := "New Contact"
	if !m.view.Mode.IsNew() {
		if c := m.view.Selected(); c != nil {
			header = "Edit Contact: " + c.Name
		} else {
			header = "Edit Contact"
		}
	}
	if m.focus == paneForm {
		header = stateStyle.Render(header)
	}
	lines = append(lines, header)
	lines = append(lines, strings.Repeat("─", max(width-2, 0)))
	lines = append(lines, "")

	lines = append(lines, m.renderField(FieldFirstName, "First name:  ", m.first.View(), m.view.FirstName))
	lines = append(lines, "")
	lines = append(lines, m.renderField(FieldLastName, "Last name:   ", m.last.View(), m.view.LastName))
	lines = append(lines, "")

	// Email chips
	label := "Emails:      "
	if m.focus == paneForm && m.formField == FieldEmails {
		label = stateStyle.Render(label)
	}
	var chips []string
	for i, e := range m.view.Emails {
		if m.focus == paneForm && m.formField == FieldEmails && i == m.chip {
			chips = append(chips, selectedStyle.Padding(0, 1).Render(e+" ×"))
		} else {
			chips = append(chips, chipStyle.Render(e))
		}
	}
	if len(chips) == 0 {
		chips = append(chips, labelStyle.Render("(none)"))
	}
	lines = append(lines, label+strings.Join(chips, " "))

	if m.view.EmailEntry {
		lines = append(lines, "")
		lines = append(lines, m.renderField(FieldNewEmail, "Add email:   ", m.newEmail.View(), m.view.PendingEmail))
	}
	if m.view.EmailError != "" {
		for _, l := range wrapText(m.view.EmailError, width-4) {
			lines = append(lines, errorStyle.Render(l))
		}
	}

	lines = append(lines, "")
	if m.view.FormError != "" {
		for _, l := range wrapText(m.view.FormError, width-4) {
			lines = append(lines, errorStyle.Render(l))
		}
		lines = append(lines, "")
	}

	if m.view.Busy {
		lines = append(lines, m.spinner.View()+" Working...")
	}

	return strings.Join(lines, "\n")
}

func (m Model) renderField(field int, label, input, value string) string {
	if m.focus == paneForm && m.formField == field {
		return stateStyle.Render(label) + input
	}
	if value == "" {
		return label + labelStyle.Render("-")
	}
	return label + value
}

// renderHelp renders the help line
func (m Model) renderHelp() string {
	busy := ""
	if m.view.Busy {
		busy = " " + m.spinner.View()
	}

	if m.filterMode {
		return busy + " Type to filter • ↑/↓: navigate • Enter: search server • Esc: cancel"
	}
	if m.focus == paneForm {
		switch m.formField {
		case FieldEmails:
			return busy + " ←/→: choose • x: remove • a: add email • Tab: next • Ctrl+S: save • Esc: cancel"
		case FieldNewEmail:
			return busy + " Enter: add • Ctrl+A: add and close • Tab: next • Ctrl+S: save • Esc: cancel"
		}
		return busy + " Tab/↓: next • Shift+Tab/↑: prev • Ctrl+A: add email • Ctrl+S: save • Esc: cancel"
	}

	help := busy + " j/k: navigate • /: filter • n: new • e: edit • d: delete • r: reload"
	if m.view.Query != "" {
		help += " • Esc: clear search"
	}
	if m.view.Username != "" {
		help += " • L: logout"
	} else {
		help += " • l: login"
	}
	help += " • q: quit"
	return help
}

// renderLogin renders the login overlay
func (m Model) renderLogin() string {
	var lines []string
	lines = append(lines, "Login to access contacts")
	lines = append(lines, "")

	userLabel, passLabel := "Username: ", "Password: "
	if m.loginField == LoginFieldUsername {
		userLabel = stateStyle.Render(userLabel)
	} else {
		passLabel = stateStyle.Render(passLabel)
	}
	lines = append(lines, userLabel+m.username.View())
	lines = append(lines, passLabel+m.password.View())
	lines = append(lines, "")

	if m.view.LoginError != "" {
		lines = append(lines, errorStyle.Render(m.view.LoginError))
		lines = append(lines, "")
	}
	if m.view.Busy {
		lines = append(lines, m.spinner.View()+" Logging in...")
		lines = append(lines, "")
	}

	lines = append(lines, "Tab: switch field • Enter: login • Esc: cancel")

	return m.center(borderStyle.
		Padding(1).
		Width(50).
		Background(lipgloss.Color("235")).
		Render(strings.Join(lines, "\n")))
}

// renderAlert renders a blocking notification
func (m Model) renderAlert() string {
	width := 60
	text := strings.Join(wrapText(m.view.Alert, width-8), "\n")
	content := lipgloss.NewStyle().
		Width(width - 4).
		Align(lipgloss.Center).
		Render(errorStyle.Render(text) + "\n\n" + labelStyle.Render("Press any key to continue"))

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("196")).
		Padding(1).
		Width(width).
		Render(content)

	return m.center(box)
}

// renderDeleteConfirmation renders the delete confirmation prompt
func (m Model) renderDeleteConfirmation() string {
	var contactName string
	if c := m.view.Selected(); c != nil {
		contactName = c.Name
	}

	// Build the confirmation prompt
	width := 60
	height := 7
	prompt := fmt.Sprintf("Delete contact '%s'? (y/n)", contactName)
	content := lipgloss.NewStyle().
		Width(width-4).
		Height(height-4).
		Align(lipgloss.Center, lipgloss.Center).
		Render(prompt)

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Width(width).
		Height(height).
		Render(content)

	return m.center(box)
}

// center places box in the middle of the screen
func (m Model) center(box string) string {
	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(box)
}

// wrapText wraps text to fit within the specified width
func wrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}

	var lines []string
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{}
	}

	currentLine := words[0]
	for _, word := range words[1:] {
		if len(currentLine)+1+len(word) <= width {
			currentLine += " " + word
		} else {
			lines = append(lines, currentLine)
			currentLine = word
		}
	}

	if currentLine != "" {
		lines = append(lines, currentLine)
	}

	return lines
}
