package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/booktracker/internal/api"
	"github.com/five82/booktracker/internal/prefs"
)

const emptyCredentialsText = "Please enter email and password"

type loginDoneMsg struct {
	seq     uint64
	email   string
	session api.Session
	err     error
}

func keyMatches(msg tea.KeyMsg, b key.Binding) bool {
	return key.Matches(msg, b)
}

// focusLogin focuses the first empty field, or the password when the email
// was remembered from the last run.
func (m *Model) focusLogin() tea.Cmd {
	if strings.TrimSpace(m.login.email.Value()) == "" {
		m.login.focus = 0
	} else {
		m.login.focus = 1
	}
	return m.applyLoginFocus()
}

func (m *Model) applyLoginFocus() tea.Cmd {
	if m.login.focus == 0 {
		m.login.password.Blur()
		return m.login.email.Focus()
	}
	m.login.email.Blur()
	return m.login.password.Focus()
}

func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.login.busy {
		return m, nil
	}

	switch {
	case keyMatches(msg, m.keys.Submit):
		return m.submitLogin()
	case keyMatches(msg, m.keys.NextField), keyMatches(msg, m.keys.PrevField):
		m.login.focus = 1 - m.login.focus
		cmd := m.applyLoginFocus()
		return m, cmd
	}

	var cmd tea.Cmd
	if m.login.focus == 0 {
		m.login.email, cmd = m.login.email.Update(msg)
	} else {
		m.login.password, cmd = m.login.password.Update(msg)
	}
	return m, cmd
}

// updateLoginInputs forwards non-key messages (cursor blink) to the inputs.
func (m Model) updateLoginInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var emailCmd, passwordCmd tea.Cmd
	m.login.email, emailCmd = m.login.email.Update(msg)
	m.login.password, passwordCmd = m.login.password.Update(msg)
	return m, tea.Batch(emailCmd, passwordCmd)
}

func (m Model) submitLogin() (tea.Model, tea.Cmd) {
	email := strings.TrimSpace(m.login.email.Value())
	password := m.login.password.Value()
	if email == "" || password == "" {
		m.login.err = emptyCredentialsText
		return m, nil
	}

	m.login.err = ""
	m.login.busy = true
	ctx, seq := m.beginRequest()
	client := m.client
	return m, func() tea.Msg {
		s, err := client.Login(ctx, email, password)
		return loginDoneMsg{seq: seq, email: email, session: s, err: err}
	}
}

func (m Model) handleLoginDone(msg loginDoneMsg) (tea.Model, tea.Cmd) {
	if !m.finishRequest(msg.seq) {
		return m, nil
	}
	m.login.busy = false
	if msg.err != nil {
		m.log.Info("login failed", "error", msg.err)
		m.login.err = loginErrorText(msg.err)
		m.login.password.SetValue("")
		m.login.focus = 1
		cmd := m.applyLoginFocus()
		return m, cmd
	}

	if m.session != nil {
		m.session.MarkLoggedIn()
	}
	m.savePrefs(func(p *prefs.Prefs) { p.LastEmail = msg.email })
	m.login.err = ""
	m.login.password.SetValue("")
	m.login.password.Blur()
	m.login.email.Blur()

	m.shelves = shelvesState{}
	m.screen = ScreenShelves
	cmd := m.loadShelves()
	return m, cmd
}

func (m Model) renderLogin() string {
	styles := m.theme.Styles()

	lines := []string{
		styles.Title.Render("Log in"),
		"",
		m.login.email.View(),
		m.login.password.View(),
		"",
	}
	switch {
	case m.login.busy:
		lines = append(lines, m.spinner.View()+" "+styles.MutedText.Render("Logging in…"))
	case m.login.err != "":
		lines = append(lines, styles.DangerText.Render(m.login.err))
	default:
		lines = append(lines, styles.FaintText.Render("enter to log in"))
	}

	panel := styles.Panel.Width(min(60, max(30, m.width-4)))
	return panel.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
